package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotemx/RAG-sub001/cache"
	"github.com/rotemx/RAG-sub001/core"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return NewMetrics(prometheus.NewRegistry())
}

func TestRecordRequest(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordRequest("openai", "gpt-4o-mini", "ok", core.Metrics{
		TotalMs:       240,
		EmbeddingMs:   30,
		RetrievalMs:   15,
		PromptMs:      1,
		GenerationMs:  190,
		InputTokens:   120,
		OutputTokens:  40,
		EstimatedCost: 0.00096,
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("openai", "gpt-4o-mini", "ok")))
	assert.Equal(t, float64(120), testutil.ToFloat64(m.TokensTotal.WithLabelValues("openai", "gpt-4o-mini", "prompt")))
	assert.Equal(t, float64(40), testutil.ToFloat64(m.TokensTotal.WithLabelValues("openai", "gpt-4o-mini", "completion")))
	assert.InDelta(t, 0.00096, testutil.ToFloat64(m.CostUSDTotal.WithLabelValues("openai", "gpt-4o-mini")), 1e-9)

	// One sample per non-zero phase plus total.
	require.Equal(t, 5, testutil.CollectAndCount(m.PhaseDurationMs))
}

func TestRecordRequestSkipsZeroSamples(t *testing.T) {
	m := newTestMetrics(t)

	// A cached response carries only lookup and total latency.
	m.RecordRequest("openai", "gpt-4o-mini", "ok", core.Metrics{
		TotalMs:       2,
		CacheLookupMs: 1,
	})

	assert.Equal(t, 2, testutil.CollectAndCount(m.PhaseDurationMs))
	assert.Equal(t, 0, testutil.CollectAndCount(m.TokensTotal))
	assert.Equal(t, 0, testutil.CollectAndCount(m.CostUSDTotal))
}

func TestRecordRequestErrorStatus(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordRequest("openai", "gpt-4o-mini", "no_results", core.Metrics{})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("openai", "gpt-4o-mini", "no_results")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("openai", "gpt-4o-mini", "ok")))
}

func TestCacheObserver(t *testing.T) {
	m := newTestMetrics(t)
	observe := m.CacheObserver()

	observe(cache.Event{Type: cache.EventMiss, Key: "k", Query: "q"})
	observe(cache.Event{Type: cache.EventSet, Key: "k", Query: "q"})
	observe(cache.Event{Type: cache.EventHit, Key: "k", Query: "q"})
	observe(cache.Event{Type: cache.EventHit, Key: "k", Query: "q"})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheEventsTotal.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheEventsTotal.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheEventsTotal.WithLabelValues("set")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CacheEventsTotal.WithLabelValues("evict")))
}

func TestNewMetricsDefaultRegisterer(t *testing.T) {
	// Registering against an isolated registry must not touch the
	// default one twice; construction here uses an explicit registry.
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m.RequestsTotal)
	require.NotNil(t, m.PhaseDurationMs)
	require.NotNil(t, m.CacheEventsTotal)

	m.RequestsTotal.WithLabelValues("openai", "gpt-4o-mini", "ok").Inc()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
