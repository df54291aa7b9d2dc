// Package metrics defines the Prometheus collectors of the engine and
// exposes an HTTP handler for scraping.
//
// A nil *Metrics is valid and records nothing, so services can be built
// without metrics in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Embedding outcomes.
const (
	OutcomeOK                = "ok"
	OutcomeDegraded          = "degraded"
	OutcomeDimensionMismatch = "dimension_mismatch"
)

// Search result types.
const (
	ResultHit        = "hit"
	ResultZeroResult = "zero_result"
	ResultError      = "error"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsIngestedTotal prometheus.Counter
	DocumentsSkippedTotal  prometheus.Counter
	IngestFailuresTotal    prometheus.Counter
	EntriesWrittenTotal    prometheus.Counter
	EmbeddingRequestsTotal *prometheus.CounterVec
	VersionSwapsTotal      *prometheus.CounterVec
	SearchQueriesTotal     *prometheus.CounterVec
	SearchLatency          prometheus.Histogram
}

// New creates all collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocumentsIngestedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_documents_ingested_total",
				Help: "Total documents chunked and written.",
			},
		),
		DocumentsSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_documents_skipped_total",
				Help: "Total documents skipped for being too short.",
			},
		),
		IngestFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_ingest_failures_total",
				Help: "Total documents or chunks that could not be written.",
			},
		),
		EntriesWrittenTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_entries_written_total",
				Help: "Total index entries upserted.",
			},
		),
		EmbeddingRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_embedding_requests_total",
				Help: "Embedding requests by outcome (ok, degraded, dimension_mismatch).",
			},
			[]string{"outcome"},
		),
		VersionSwapsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_version_swaps_total",
				Help: "Active version swaps by result (ok, rejected).",
			},
			[]string{"result"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_search_queries_total",
				Help: "Search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rag_search_latency_seconds",
				Help:    "Search latency in seconds, including query embedding.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
	}

	m.registry.MustRegister(
		m.DocumentsIngestedTotal,
		m.DocumentsSkippedTotal,
		m.IngestFailuresTotal,
		m.EntriesWrittenTotal,
		m.EmbeddingRequestsTotal,
		m.VersionSwapsTotal,
		m.SearchQueriesTotal,
		m.SearchLatency,
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEmbedding counts one embedding request.
func (m *Metrics) ObserveEmbedding(outcome string) {
	if m == nil {
		return
	}
	m.EmbeddingRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveIngest adds the counts of one ingestion run.
func (m *Metrics) ObserveIngest(ingested, skipped, failed, written int) {
	if m == nil {
		return
	}
	m.DocumentsIngestedTotal.Add(float64(ingested))
	m.DocumentsSkippedTotal.Add(float64(skipped))
	m.IngestFailuresTotal.Add(float64(failed))
	m.EntriesWrittenTotal.Add(float64(written))
}

// ObserveSwap counts one swap attempt.
func (m *Metrics) ObserveSwap(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "rejected"
	}
	m.VersionSwapsTotal.WithLabelValues(result).Inc()
}

// ObserveSearch counts one search and records its latency.
func (m *Metrics) ObserveSearch(resultType string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	m.SearchLatency.Observe(elapsed.Seconds())
}
