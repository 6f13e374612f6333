package rag

import "github.com/rotemx/RAG-sub001/core"

// Monitor provides hooks to observe pipeline execution.
// Implement this interface to track phase boundaries for logging or
// metrics. Start opens every request and exactly one Finish or Failed
// closes it; a stream abandoned by its consumer closes with Failed.
// Monitors must not affect control flow and must be safe for concurrent
// use when requests overlap.
type Monitor interface {
	Start(requestId, query string)
	CacheHit(requestId string)
	AfterEmbedding(requestId string, cached bool)
	AfterRetrieval(requestId string, passages []core.RetrievedPassage)
	AfterPromptBuild(requestId string, prompt *core.BuiltPrompt)
	Finish(requestId string, response *core.PipelineResponse)
	Failed(requestId string, err error)
}

// noopMonitor is a no-op implementation of Monitor.
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                                  {}
func (n *noopMonitor) CacheHit(_ string)                                  {}
func (n *noopMonitor) AfterEmbedding(_ string, _ bool)                    {}
func (n *noopMonitor) AfterRetrieval(_ string, _ []core.RetrievedPassage) {}
func (n *noopMonitor) AfterPromptBuild(_ string, _ *core.BuiltPrompt)     {}
func (n *noopMonitor) Finish(_ string, _ *core.PipelineResponse)          {}
func (n *noopMonitor) Failed(_ string, _ error)                           {}
