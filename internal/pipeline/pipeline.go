// Package pipeline runs one full aggregation pass: load the configured
// exports, reconcile them, build the dashboard aggregate and archive it.
package pipeline

import (
	"context"

	aggdomain "github.com/carlosribasgomez/chatters-dashboard/internal/aggregate/domain"
	aggservice "github.com/carlosribasgomez/chatters-dashboard/internal/aggregate/service"
	"github.com/carlosribasgomez/chatters-dashboard/internal/archive"
	"github.com/carlosribasgomez/chatters-dashboard/internal/clock"
	"github.com/carlosribasgomez/chatters-dashboard/internal/config"
	"github.com/carlosribasgomez/chatters-dashboard/internal/identity"
	"github.com/carlosribasgomez/chatters-dashboard/internal/ingest"
	"github.com/carlosribasgomez/chatters-dashboard/internal/obs"
	"github.com/carlosribasgomez/chatters-dashboard/internal/reconcile"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params are the pipeline dependencies.
type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	Loader     *ingest.Loader
	Reconciler *reconcile.Reconciler
	Aggregator *aggservice.Service
	Sources    *config.SourcesConfigHolder
	Store      *archive.Store
	Metrics    *obs.Metrics `optional:"true"`
}

// Pipeline orchestrates a full load-reconcile-aggregate-archive run.
type Pipeline struct {
	log        *zap.Logger
	clock      clock.Clock
	loader     *ingest.Loader
	reconciler *reconcile.Reconciler
	aggregator *aggservice.Service
	sources    *config.SourcesConfigHolder
	store      *archive.Store
	metrics    *obs.Metrics
}

// New builds a Pipeline.
func New(p Params) *Pipeline {
	return &Pipeline{
		log:        p.Log.Named("pipeline"),
		clock:      p.Clock,
		loader:     p.Loader,
		reconciler: p.Reconciler,
		aggregator: p.Aggregator,
		sources:    p.Sources,
		store:      p.Store,
		metrics:    p.Metrics,
	}
}

// Run executes one aggregation pass against the current sources config
// and returns the archived record.
func (p *Pipeline) Run(ctx context.Context) (*archive.ReportRecord, error) {
	record, err := p.run(ctx)
	if err != nil {
		if p.metrics != nil {
			p.metrics.PipelineFailures.Inc()
		}
		p.log.Error("pipeline run failed", zap.Error(err))
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.PipelineRuns.Inc()
		p.metrics.LastRunUnix.Set(float64(p.clock.Now().Unix()))
	}
	return record, nil
}

func (p *Pipeline) run(ctx context.Context) (*archive.ReportRecord, error) {
	cfg := p.sources.Get()

	tables, err := p.loader.Load(cfg)
	if err != nil {
		return nil, err
	}

	labels, err := identity.LoadClassificationMap(cfg.ClassificationPath)
	if err != nil {
		return nil, err
	}
	resolver := identity.NewResolver(labels, p.log)

	stats := p.reconciler.MergeSnapshots(tables.Snapshots)

	report := p.aggregator.Build(aggservice.BuildInput{
		Tables:      tables,
		Stats:       stats,
		Resolver:    resolver,
		PeriodLabel: cfg.PeriodLabel,
	})

	hours, err := identity.LoadTrackedHours(cfg.TrackedHoursPath)
	if err != nil {
		return nil, err
	}
	attachTrackedHours(report.Operators, hours)

	return p.store.Save(ctx, report)
}

// attachTrackedHours joins the external time-tracking feed onto the
// operator views by canonical name. Operators absent from the feed keep
// zero tracked time.
func attachTrackedHours(operators []aggdomain.OperatorReport, hours map[string]identity.TrackedHours) {
	if len(hours) == 0 {
		return
	}
	byKey := make(map[string]identity.TrackedHours, len(hours))
	for name, h := range hours {
		byKey[identity.CanonicalKey(name)] = h
	}
	for i := range operators {
		if h, ok := byKey[identity.CanonicalKey(operators[i].Name)]; ok {
			operators[i].TrackedMinutes = h.TotalMinutes
			operators[i].TrackedHours = h.TotalHours
		}
	}
}

// runOnStart triggers the first aggregation pass once the app is up. A
// failed initial run leaves the archive empty but keeps the API serving;
// the next POST /api/reports/run retries.
func runOnStart(lc fx.Lifecycle, p *Pipeline) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if _, err := p.Run(context.Background()); err != nil {
					p.log.Warn("initial aggregation failed", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

// Module wires the pipeline.
var Module = fx.Module("pipeline",
	fx.Provide(New),
	fx.Invoke(runOnStart),
)
