// Package server exposes the dashboard HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosribasgomez/chatters-dashboard/internal/archive"
	"github.com/carlosribasgomez/chatters-dashboard/internal/config"
	"github.com/carlosribasgomez/chatters-dashboard/internal/obs"
	"github.com/carlosribasgomez/chatters-dashboard/internal/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewEngine builds the gin engine with the shared middleware and the
// liveness and metrics endpoints.
func NewEngine(metrics *obs.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	return r
}

// Server wires the report endpoints onto the engine.
type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	store    *archive.Store
	pipeline *pipeline.Pipeline
	log      *zap.Logger
}

// ServerParams are the server dependencies.
type ServerParams struct {
	fx.In

	Gin      *gin.Engine
	Cfg      config.Config
	Store    *archive.Store
	Pipeline *pipeline.Pipeline
	Log      *zap.Logger
}

// NewServer registers the report routes.
func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:   p.Gin,
		cfg:      p.Cfg,
		store:    p.Store,
		pipeline: p.Pipeline,
		log:      p.Log.Named("server"),
	}

	api := s.engine.Group("/api")
	api.GET("/reports", s.listReports)
	api.GET("/reports/latest", s.latestReport)
	api.GET("/reports/:id", s.reportByID)
	api.POST("/reports/run", s.runPipeline)

	return s
}

func (s *Server) listReports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := s.store.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": records})
}

func (s *Server) latestReport(c *gin.Context) {
	record, err := s.store.Latest(c.Request.Context())
	if errors.Is(err, archive.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report_not_found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.writeRecord(c, record)
}

func (s *Server) reportByID(c *gin.Context) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_report_id"})
		return
	}
	record, err := s.store.ByID(c.Request.Context(), id)
	if errors.Is(err, archive.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report_not_found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.writeRecord(c, record)
}

func (s *Server) runPipeline(c *gin.Context) {
	record, err := s.pipeline.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":           record.ID.String(),
		"period_label": record.PeriodLabel,
		"generated_at": record.GeneratedAt,
	})
}

// writeRecord serves the archived payload verbatim; it was marshalled at
// archive time and re-encoding would re-round its numbers.
func (s *Server) writeRecord(c *gin.Context, record *archive.ReportRecord) {
	c.Data(http.StatusOK, "application/json", record.Payload)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// Module wires the HTTP server.
var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)
