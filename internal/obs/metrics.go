// Package obs exposes the engine's prometheus instruments.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics holds the application-level instruments.
type Metrics struct {
	registry *prometheus.Registry

	RowsLoaded             *prometheus.CounterVec
	DuplicatesRemoved      *prometheus.CounterVec
	RowsDropped            *prometheus.CounterVec
	UnknownClassifications prometheus.Counter
	PipelineRuns           prometheus.Counter
	PipelineFailures       prometheus.Counter
	LastRunUnix            prometheus.Gauge
}

// New registers the instruments on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatters_rows_loaded_total",
			Help: "Rows loaded per source family, after deduplication.",
		}, []string{"family"}),
		DuplicatesRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatters_duplicates_removed_total",
			Help: "Rows removed as duplicates across overlapping export windows.",
		}, []string{"family"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatters_rows_dropped_total",
			Help: "Malformed rows whose contribution degraded to nothing.",
		}, []string{"family"}),
		UnknownClassifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatters_unknown_classifications_total",
			Help: "Creators the identity resolver could not classify.",
		}),
		PipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatters_pipeline_runs_total",
			Help: "Completed aggregation runs.",
		}),
		PipelineFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatters_pipeline_failures_total",
			Help: "Aggregation runs aborted before producing output.",
		}),
		LastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chatters_last_run_timestamp_seconds",
			Help: "Unix time of the last completed aggregation run.",
		}),
	}

	registry.MustRegister(
		m.RowsLoaded,
		m.DuplicatesRemoved,
		m.RowsDropped,
		m.UnknownClassifications,
		m.PipelineRuns,
		m.PipelineFailures,
		m.LastRunUnix,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Module wires the prometheus instruments.
var Module = fx.Module("obs",
	fx.Provide(New),
)
