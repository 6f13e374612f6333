package telemetry

import (
	"github.com/rotemx/RAG-sub001/core"
	"github.com/rotemx/RAG-sub001/rag"
)

// PipelineMonitor feeds pipeline execution into Prometheus metrics.
// Cache hits are not counted here; the cache observer already sees them.
type PipelineMonitor struct {
	metrics  *Metrics
	provider string
	model    string
}

var _ rag.Monitor = (*PipelineMonitor)(nil)

// NewPipelineMonitor creates a monitor recording against the given
// metrics. Provider and model label every sample.
func NewPipelineMonitor(metrics *Metrics, provider, model string) *PipelineMonitor {
	return &PipelineMonitor{
		metrics:  metrics,
		provider: provider,
		model:    model,
	}
}

// Start marks a query in flight.
func (m *PipelineMonitor) Start(_, _ string) {
	m.metrics.RequestsInFlight.Inc()
}

// CacheHit is a no-op; see CacheObserver.
func (m *PipelineMonitor) CacheHit(_ string) {}

// AfterEmbedding is a no-op; embedding latency arrives with Finish.
func (m *PipelineMonitor) AfterEmbedding(_ string, _ bool) {}

// AfterRetrieval records the retrieval depth.
func (m *PipelineMonitor) AfterRetrieval(_ string, passages []core.RetrievedPassage) {
	m.metrics.PassagesRetrieved.Observe(float64(len(passages)))
}

// AfterPromptBuild is a no-op.
func (m *PipelineMonitor) AfterPromptBuild(_ string, _ *core.BuiltPrompt) {}

// Finish records the completed request with status ok.
func (m *PipelineMonitor) Finish(_ string, response *core.PipelineResponse) {
	m.metrics.RequestsInFlight.Dec()
	m.metrics.RecordRequest(m.provider, m.model, "ok", response.Metrics)
}

// Failed records the request under its error code.
func (m *PipelineMonitor) Failed(_ string, err error) {
	m.metrics.RequestsInFlight.Dec()
	m.metrics.RecordRequest(m.provider, m.model, string(rag.CodeOf(err)), core.Metrics{})
}
