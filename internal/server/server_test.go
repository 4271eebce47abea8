package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	aggdomain "github.com/carlosribasgomez/chatters-dashboard/internal/aggregate/domain"
	aggservice "github.com/carlosribasgomez/chatters-dashboard/internal/aggregate/service"
	"github.com/carlosribasgomez/chatters-dashboard/internal/archive"
	"github.com/carlosribasgomez/chatters-dashboard/internal/clock"
	"github.com/carlosribasgomez/chatters-dashboard/internal/config"
	"github.com/carlosribasgomez/chatters-dashboard/internal/ingest"
	"github.com/carlosribasgomez/chatters-dashboard/internal/obs"
	"github.com/carlosribasgomez/chatters-dashboard/internal/pipeline"
	"github.com/carlosribasgomez/chatters-dashboard/internal/reconcile"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) (*gin.Engine, *archive.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&archive.ReportRecord{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := archive.NewStore(archive.Params{DB: db, Node: node, Log: log})

	// Sources deliberately point at missing files so a triggered run fails.
	p := pipeline.New(pipeline.Params{
		Log:        log,
		Clock:      fake,
		Loader:     ingest.NewLoader(ingest.Params{Log: log}),
		Reconciler: reconcile.NewReconciler(reconcile.Params{Log: log}),
		Aggregator: aggservice.NewService(aggservice.Params{Log: log, Clock: fake}),
		Sources: config.NewStaticSourcesHolder(config.SourcesConfig{
			Messages: []string{"/nonexistent/messages.csv"},
		}),
		Store: store,
	})

	engine := NewEngine(obs.New())
	NewServer(ServerParams{
		Gin:      engine,
		Cfg:      config.Config{HTTPAddr: ":0"},
		Store:    store,
		Pipeline: p,
		Log:      log,
	})
	return engine, store
}

func doRequest(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doRequest(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doRequest(engine, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLatestReportEmptyArchive(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doRequest(engine, http.MethodGet, "/api/reports/latest")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLatestReportServesArchivedPayload(t *testing.T) {
	engine, store := newTestServer(t)
	_, err := store.Save(context.Background(), &aggdomain.Report{
		PeriodLabel: "Feb 2026",
		General:     aggdomain.GeneralKPIs{TotalMessages: 150},
	})
	require.NoError(t, err)

	w := doRequest(engine, http.MethodGet, "/api/reports/latest")
	require.Equal(t, http.StatusOK, w.Code)

	var report aggdomain.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "Feb 2026", report.PeriodLabel)
	assert.Equal(t, 150, report.General.TotalMessages)
}

func TestReportByID(t *testing.T) {
	engine, store := newTestServer(t)
	record, err := store.Save(context.Background(), &aggdomain.Report{PeriodLabel: "Feb 2026"})
	require.NoError(t, err)

	w := doRequest(engine, http.MethodGet, "/api/reports/"+record.ID.String())
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/reports/not-a-snowflake")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListReports(t *testing.T) {
	engine, store := newTestServer(t)
	for _, period := range []string{"Jan 2026", "Feb 2026"} {
		_, err := store.Save(context.Background(), &aggdomain.Report{PeriodLabel: period})
		require.NoError(t, err)
	}

	w := doRequest(engine, http.MethodGet, "/api/reports?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Reports []archive.ReportRecord `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Reports, 1)
	assert.Equal(t, "Feb 2026", body.Reports[0].PeriodLabel)
}

func TestRunEndpointFailsOnBrokenSources(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doRequest(engine, http.MethodPost, "/api/reports/run")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
