// Package metrics exposes the engine's refresh-progress counters as
// Prometheus instruments, mirroring the gauge/counter shape
// drpcorg-chotki registers for its storage engine, adapted from a
// custom Collector to plain promauto instruments since these values
// are cheap running totals rather than a derived snapshot of external
// state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gauges and counters a Controller updates while a
// refresh runs, per spec.md §7.
type Metrics struct {
	SourceFileCount        prometheus.Gauge
	IndexedSourceFileCount prometheus.Gauge
	IndexerCount           prometheus.Gauge
	RefreshesTotal         *prometheus.CounterVec
}

// New registers the engine's instruments against reg and returns a
// handle to them. Pass prometheus.NewRegistry() in tests to avoid
// colliding with the global default registry across runs.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SourceFileCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trailindex_source_file_count",
			Help: "Number of source files selected for the in-flight or most recent refresh.",
		}),
		IndexedSourceFileCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trailindex_indexed_source_file_count",
			Help: "Number of source files the in-flight refresh has indexed so far.",
		}),
		IndexerCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trailindex_indexer_count",
			Help: "Number of indexer workers currently parsing a command.",
		}),
		RefreshesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trailindex_refreshes_total",
			Help: "Total refreshes run, partitioned by outcome.",
		}, []string{"outcome"}),
	}
}

// Outcome labels for RefreshesTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeCanceled = "canceled"
	OutcomeDeferred = "deferred"
)

// Observe records blackboard counters and the terminal outcome of one
// refresh run.
func (m *Metrics) Observe(sourceFileCount, indexedSourceFileCount int, outcome string) {
	m.SourceFileCount.Set(float64(sourceFileCount))
	m.IndexedSourceFileCount.Set(float64(indexedSourceFileCount))
	m.RefreshesTotal.WithLabelValues(outcome).Inc()
}
