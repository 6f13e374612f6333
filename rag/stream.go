package rag

import (
	"context"
	"iter"
	"strings"

	"github.com/rotemx/RAG-sub001/core"
	"github.com/rotemx/RAG-sub001/index"
	"github.com/rotemx/RAG-sub001/latency"
)

// StreamEventType identifies one kind of streamed query event.
type StreamEventType string

const (
	// StreamEventStarting opens every stream and carries the request id.
	StreamEventStarting StreamEventType = "starting"
	// StreamEventEmbedding precedes the query embedding phase.
	StreamEventEmbedding StreamEventType = "embedding"
	// StreamEventRetrieving precedes the vector search phase.
	StreamEventRetrieving StreamEventType = "retrieving"
	// StreamEventContext delivers the passages grounding the answer.
	// Emitted exactly once, before any content.
	StreamEventContext StreamEventType = "context"
	// StreamEventContent carries one answer text delta.
	StreamEventContent StreamEventType = "content"
	// StreamEventDone terminates a successful stream with the full response.
	StreamEventDone StreamEventType = "done"
	// StreamEventError terminates a failed stream.
	StreamEventError StreamEventType = "error"
)

// StreamEvent is one element of a streamed query. Only the fields
// matching the event type are set.
type StreamEvent struct {
	Type      StreamEventType
	RequestId string
	Passages  []core.RetrievedPassage // context events
	Content   string                  // content events
	Response  *core.PipelineResponse  // done events
	Err       error                   // error events
}

// QueryStream runs the pipeline for one input, yielding progress events
// and answer deltas as they happen. Every stream begins with a starting
// event and ends with exactly one done or error event. A consumer that
// stops ranging early cancels the in-flight generation.
//
// A response served from the cache skips the embedding and retrieving
// events: the stream is starting, context, one content event carrying
// the whole answer, then done.
func (p *Pipeline) QueryStream(ctx context.Context, input *core.QueryInput) iter.Seq[StreamEvent] {
	return func(yield func(StreamEvent) bool) {
		requestId := newRequestID()
		tracker := latency.NewTracker(requestId)
		p.monitor.Start(requestId, queryText(input))

		// Every started request ends with exactly one Finish or Failed,
		// including streams the consumer walks away from.
		terminal := false
		defer func() {
			if !terminal {
				p.monitor.Failed(requestId, wrapError(CodeUnknown, "stream abandoned",
					ErrStreamAbandoned, queryMetadata(requestId, queryText(input))))
			}
		}()

		emitError := func(err error) {
			terminal = true
			p.fail(requestId, err)
			yield(StreamEvent{Type: StreamEventError, RequestId: requestId, Err: err})
		}

		if !yield(StreamEvent{Type: StreamEventStarting, RequestId: requestId}) {
			return
		}

		if !p.initialized.Load() {
			emitError(wrapError(CodeNotInitialized, "query rejected",
				ErrNotInitialized, queryMetadata(requestId, queryText(input))))
			return
		}
		if err := core.ValidateQueryInput(input); err != nil {
			emitError(wrapError(CodeInvalidConfig, "invalid query input",
				err, queryMetadata(requestId, queryText(input))))
			return
		}

		effective, genOpts := p.applyDefaults(input)

		cacheable := p.cache != nil && !effective.Conversational()
		if cacheable {
			tracker.StartPhase(latency.PhaseCacheLookup)
			cached, ok := p.cache.Get(effective)
			lookupMs := tracker.EndPhase(latency.PhaseCacheLookup)
			if ok {
				response := p.finishCached(requestId, tracker, lookupMs, cached)
				terminal = true
				if !yield(StreamEvent{Type: StreamEventContext, RequestId: requestId, Passages: response.RetrievedPassages}) {
					return
				}
				if !yield(StreamEvent{Type: StreamEventContent, RequestId: requestId, Content: response.Answer}) {
					return
				}
				yield(StreamEvent{Type: StreamEventDone, RequestId: requestId, Response: response})
				return
			}
		}

		metadata := queryMetadata(requestId, effective.Query)

		// 1. Embed the query.
		if !yield(StreamEvent{Type: StreamEventEmbedding, RequestId: requestId}) {
			return
		}
		if err := ctx.Err(); err != nil {
			emitError(wrapError(CodeEmbeddingError, "query embedding canceled", err, metadata))
			return
		}
		tracker.StartPhase(latency.PhaseEmbedding)
		embedRes, err := p.embedder.EmbedQuery(ctx, effective.Query)
		if err != nil {
			tracker.EndPhase(latency.PhaseEmbedding)
			emitError(wrapError(CodeEmbeddingError, "query embedding failed", err, metadata))
			return
		}
		if embedRes.Cached {
			tracker.MarkCached(latency.PhaseEmbedding)
		} else {
			tracker.EndPhase(latency.PhaseEmbedding)
		}
		p.monitor.AfterEmbedding(requestId, embedRes.Cached)

		// 2. Retrieve passages.
		if !yield(StreamEvent{Type: StreamEventRetrieving, RequestId: requestId}) {
			return
		}
		if err := ctx.Err(); err != nil {
			emitError(wrapError(CodeRetrievalError, "retrieval canceled", err, metadata))
			return
		}
		tracker.StartPhase(latency.PhaseRetrieval)
		passages, err := p.index.Search(ctx, embedRes.Vector, index.SearchParams{
			Limit:          effective.TopK,
			ScoreThreshold: effective.ScoreThreshold,
			Filter:         effective.Filter,
		})
		tracker.EndPhase(latency.PhaseRetrieval)
		if err != nil {
			emitError(wrapError(CodeRetrievalError, "passage retrieval failed", err, metadata))
			return
		}
		if len(passages) == 0 {
			emitError(wrapError(CodeNoResults, "query matched no passages", ErrNoResults, metadata))
			return
		}
		p.monitor.AfterRetrieval(requestId, passages)

		// 3. Build the prompt and surface the grounding passages.
		tracker.StartPhase(latency.PhasePromptBuild)
		built := p.builder.Build(effective.Query, passages, effective.ConversationHistory, p.config.MaxContextTokens)
		tracker.EndPhase(latency.PhasePromptBuild)
		p.monitor.AfterPromptBuild(requestId, built)

		if !yield(StreamEvent{Type: StreamEventContext, RequestId: requestId, Passages: passages}) {
			return
		}

		// 4. Stream the generation.
		if err := ctx.Err(); err != nil {
			emitError(wrapError(CodeGenerationError, "generation canceled", err, metadata))
			return
		}
		var answer strings.Builder
		var usage core.Usage
		tracker.StartPhase(latency.PhaseGeneration)
		for chunk, err := range p.generator.Stream(ctx, promptMessages(built), genOpts) {
			if err != nil {
				tracker.EndPhase(latency.PhaseGeneration)
				emitError(wrapError(CodeGenerationError, "answer generation failed", err, metadata))
				return
			}
			if chunk.Done {
				if chunk.Usage != nil {
					usage = *chunk.Usage
				}
				continue
			}
			if chunk.Content == "" {
				continue
			}
			answer.WriteString(chunk.Content)
			if !yield(StreamEvent{Type: StreamEventContent, RequestId: requestId, Content: chunk.Content}) {
				tracker.EndPhase(latency.PhaseGeneration)
				return
			}
		}
		tracker.EndPhase(latency.PhaseGeneration)

		// 5. Assemble, cache and finish.
		tracker.Complete()
		response := &core.PipelineResponse{
			Answer:            answer.String(),
			Citations:         core.CitationsFromPassages(passages),
			RetrievedPassages: passages,
			Metrics:           p.buildMetrics(tracker.Summary(), len(passages), embedRes.Cached, usage),
			Model:             p.generator.Model(),
			Provider:          p.generator.Provider(),
			RequestId:         requestId,
		}
		if cacheable {
			p.cache.Set(effective, response)
		}
		terminal = true
		p.monitor.Finish(requestId, response)
		p.observeSummary(tracker.Summary())
		yield(StreamEvent{Type: StreamEventDone, RequestId: requestId, Response: response})
	}
}
