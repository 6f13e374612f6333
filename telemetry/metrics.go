// Package telemetry exports pipeline execution as Prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rotemx/RAG-sub001/cache"
	"github.com/rotemx/RAG-sub001/core"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestsInFlight  prometheus.Gauge
	PhaseDurationMs   *prometheus.HistogramVec
	PassagesRetrieved prometheus.Histogram
	TokensTotal       *prometheus.CounterVec
	CostUSDTotal      *prometheus.CounterVec
	CacheEventsTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers all pipeline metrics. A nil
// registerer falls back to the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lawrag_requests_total",
			Help: "Total number of pipeline queries, labeled ok or by error code.",
		}, []string{"provider", "model", "status"}),

		RequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lawrag_requests_in_flight",
			Help: "Number of queries currently executing.",
		}),

		PhaseDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lawrag_phase_duration_ms",
			Help:    "Per-phase pipeline latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"phase"}),

		PassagesRetrieved: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lawrag_passages_retrieved",
			Help:    "Number of passages returned per retrieval.",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		}),

		TokensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lawrag_tokens_total",
			Help: "Total tokens consumed by generation.",
		}, []string{"provider", "model", "direction"}),

		CostUSDTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lawrag_cost_usd_total",
			Help: "Estimated generation cost in USD.",
		}, []string{"provider", "model"}),

		CacheEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lawrag_cache_events_total",
			Help: "Response cache events by type.",
		}, []string{"event"}),
	}
}

// RecordRequest records one completed query. Zero-valued phases and
// token counts are skipped so cached responses do not skew histograms.
func (m *Metrics) RecordRequest(provider, model, status string, metrics core.Metrics) {
	m.RequestsTotal.WithLabelValues(provider, model, status).Inc()

	phases := map[string]float64{
		"cache-lookup": metrics.CacheLookupMs,
		"embedding":    metrics.EmbeddingMs,
		"retrieval":    metrics.RetrievalMs,
		"prompt-build": metrics.PromptMs,
		"generation":   metrics.GenerationMs,
		"total":        metrics.TotalMs,
	}
	for phase, durationMs := range phases {
		if durationMs > 0 {
			m.PhaseDurationMs.WithLabelValues(phase).Observe(durationMs)
		}
	}

	if metrics.InputTokens > 0 {
		m.TokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(metrics.InputTokens))
	}
	if metrics.OutputTokens > 0 {
		m.TokensTotal.WithLabelValues(provider, model, "completion").Add(float64(metrics.OutputTokens))
	}
	if metrics.EstimatedCost > 0 {
		m.CostUSDTotal.WithLabelValues(provider, model).Add(metrics.EstimatedCost)
	}
}

// CacheObserver returns an observer that counts response cache events.
// It runs under the cache lock, so it only increments a counter.
func (m *Metrics) CacheObserver() cache.Observer {
	return func(event cache.Event) {
		m.CacheEventsTotal.WithLabelValues(string(event.Type)).Inc()
	}
}
