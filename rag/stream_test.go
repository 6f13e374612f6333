package rag

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotemx/RAG-sub001/ai"
	aimock "github.com/rotemx/RAG-sub001/ai/mock"
	"github.com/rotemx/RAG-sub001/core"
	indexmock "github.com/rotemx/RAG-sub001/index/mock"
)

func collectEvents(seq iter.Seq[StreamEvent]) []StreamEvent {
	var events []StreamEvent
	for event := range seq {
		events = append(events, event)
	}
	return events
}

func eventTypes(events []StreamEvent) []StreamEventType {
	types := make([]StreamEventType, len(events))
	for i, event := range events {
		types[i] = event.Type
	}
	return types
}

func TestQueryStream(t *testing.T) {
	pipeline, _, _, _ := newTestPipeline(t)

	events := collectEvents(pipeline.QueryStream(context.Background(), &core.QueryInput{
		Query: "What are the elements of fair use?",
	}))

	require.Equal(t, []StreamEventType{
		StreamEventStarting,
		StreamEventEmbedding,
		StreamEventRetrieving,
		StreamEventContext,
		StreamEventContent,
		StreamEventDone,
	}, eventTypes(events))

	// Every event carries the same request id.
	assert.Regexp(t, requestIdPattern, events[0].RequestId)
	for _, event := range events[1:] {
		assert.Equal(t, events[0].RequestId, event.RequestId)
	}

	contextEvent := events[3]
	require.Len(t, contextEvent.Passages, 3)
	assert.Equal(t, float32(0.9), contextEvent.Passages[0].Score)

	assert.Equal(t, "Based on the retrieved provisions, the answer is yes.", events[4].Content)

	done := events[5]
	require.NotNil(t, done.Response)
	assert.Equal(t, "Based on the retrieved provisions, the answer is yes.", done.Response.Answer)
	assert.Len(t, done.Response.Citations, 2)
	assert.Equal(t, 3, done.Response.Metrics.ChunksRetrieved)
	assert.Equal(t, 100, done.Response.Metrics.InputTokens)
	assert.Equal(t, "mock", done.Response.Provider)
}

func TestQueryStreamAccumulatesDeltas(t *testing.T) {
	pipeline, _, _, generator := newTestPipeline(t)
	generator.StreamFunc = func(ctx context.Context, messages []core.Message, opts core.GenerationOptions) iter.Seq2[ai.StreamChunk, error] {
		return func(yield func(ai.StreamChunk, error) bool) {
			for _, delta := range []string{"Fair use ", "is a ", "defense."} {
				if !yield(ai.StreamChunk{Content: delta}, nil) {
					return
				}
			}
			yield(ai.StreamChunk{Done: true, Usage: &core.Usage{InputTokens: 80, OutputTokens: 12}}, nil)
		}
	}

	events := collectEvents(pipeline.QueryStream(context.Background(), &core.QueryInput{Query: "fair use"}))

	var deltas []string
	for _, event := range events {
		if event.Type == StreamEventContent {
			deltas = append(deltas, event.Content)
		}
	}
	assert.Equal(t, []string{"Fair use ", "is a ", "defense."}, deltas)

	done := events[len(events)-1]
	require.Equal(t, StreamEventDone, done.Type)
	assert.Equal(t, "Fair use is a defense.", done.Response.Answer)
	assert.Equal(t, 80, done.Response.Metrics.InputTokens)
	assert.Equal(t, 12, done.Response.Metrics.OutputTokens)
}

func TestQueryStreamContextPrecedesContent(t *testing.T) {
	pipeline, _, _, _ := newTestPipeline(t)

	events := collectEvents(pipeline.QueryStream(context.Background(), &core.QueryInput{Query: "fair use"}))

	contextAt, firstContentAt, contextCount := -1, -1, 0
	for i, event := range events {
		switch event.Type {
		case StreamEventContext:
			contextAt = i
			contextCount++
		case StreamEventContent:
			if firstContentAt < 0 {
				firstContentAt = i
			}
		}
	}
	assert.Equal(t, 1, contextCount)
	require.GreaterOrEqual(t, firstContentAt, 0)
	assert.Less(t, contextAt, firstContentAt)
}

func TestQueryStreamGenerationError(t *testing.T) {
	pipeline, _, _, generator := newTestPipeline(t)
	generator.StreamFunc = func(ctx context.Context, messages []core.Message, opts core.GenerationOptions) iter.Seq2[ai.StreamChunk, error] {
		return func(yield func(ai.StreamChunk, error) bool) {
			if !yield(ai.StreamChunk{Content: "Fair use "}, nil) {
				return
			}
			yield(ai.StreamChunk{}, errors.New("stream interrupted"))
		}
	}

	events := collectEvents(pipeline.QueryStream(context.Background(), &core.QueryInput{Query: "fair use"}))

	last := events[len(events)-1]
	require.Equal(t, StreamEventError, last.Type)
	assert.Equal(t, CodeGenerationError, CodeOf(last.Err))

	// The partial delta was delivered before the failure.
	assert.Equal(t, StreamEventContent, events[len(events)-2].Type)
	for _, event := range events {
		assert.NotEqual(t, StreamEventDone, event.Type)
	}
}

func TestQueryStreamNoResults(t *testing.T) {
	pipeline, _, idx, generator := newTestPipeline(t)
	idx.Passages = nil

	events := collectEvents(pipeline.QueryStream(context.Background(), &core.QueryInput{Query: "fair use"}))

	require.Equal(t, []StreamEventType{
		StreamEventStarting,
		StreamEventEmbedding,
		StreamEventRetrieving,
		StreamEventError,
	}, eventTypes(events))
	assert.Equal(t, CodeNoResults, CodeOf(events[3].Err))
	assert.Zero(t, generator.CallCount())
}

func TestQueryStreamRejectedBeforeInitialize(t *testing.T) {
	idx := indexmock.NewMockIndex()
	idx.Passages = testPassages()
	pipeline, err := New(aimock.NewMockEmbedder(), idx, aimock.NewMockGenerator())
	require.NoError(t, err)

	events := collectEvents(pipeline.QueryStream(context.Background(), &core.QueryInput{Query: "fair use"}))

	require.Equal(t, []StreamEventType{StreamEventStarting, StreamEventError}, eventTypes(events))
	assert.Equal(t, CodeNotInitialized, CodeOf(events[1].Err))
}

func TestQueryStreamInvalidInput(t *testing.T) {
	pipeline, _, _, _ := newTestPipeline(t)

	events := collectEvents(pipeline.QueryStream(context.Background(), &core.QueryInput{Query: "   "}))

	require.Equal(t, []StreamEventType{StreamEventStarting, StreamEventError}, eventTypes(events))
	assert.Equal(t, CodeInvalidConfig, CodeOf(events[1].Err))
}

func TestQueryStreamCanceledContext(t *testing.T) {
	pipeline, _, _, _ := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := collectEvents(pipeline.QueryStream(ctx, &core.QueryInput{Query: "fair use"}))

	last := events[len(events)-1]
	require.Equal(t, StreamEventError, last.Type)
	assert.Equal(t, CodeEmbeddingError, CodeOf(last.Err))
	assert.ErrorIs(t, last.Err, context.Canceled)
}

func TestQueryStreamCacheHit(t *testing.T) {
	pipeline, _, _, generator := newTestPipeline(t, WithCache(true))
	ctx := context.Background()

	_, err := pipeline.Query(ctx, &core.QueryInput{Query: "What is fair use?"})
	require.NoError(t, err)

	events := collectEvents(pipeline.QueryStream(ctx, &core.QueryInput{Query: "What is fair use?"}))

	// A cached answer skips the embedding and retrieving phases and
	// arrives as a single content event.
	require.Equal(t, []StreamEventType{
		StreamEventStarting,
		StreamEventContext,
		StreamEventContent,
		StreamEventDone,
	}, eventTypes(events))

	assert.Equal(t, 1, generator.CallCount())
	assert.Len(t, events[1].Passages, 3)
	assert.Equal(t, "Based on the retrieved provisions, the answer is yes.", events[2].Content)
	assert.True(t, events[3].Response.Metrics.EmbeddingCached)
}

func TestQueryStreamPopulatesCache(t *testing.T) {
	pipeline, _, _, generator := newTestPipeline(t, WithCache(true))
	ctx := context.Background()

	events := collectEvents(pipeline.QueryStream(ctx, &core.QueryInput{Query: "What is fair use?"}))
	require.Equal(t, StreamEventDone, events[len(events)-1].Type)

	_, err := pipeline.Query(ctx, &core.QueryInput{Query: "What is fair use?"})
	require.NoError(t, err)
	assert.Equal(t, 1, generator.CallCount())
	assert.Equal(t, int64(1), pipeline.CacheStats().Hits)
}

func TestQueryStreamConsumerStops(t *testing.T) {
	pipeline, embedder, _, generator := newTestPipeline(t)

	t.Run("before any work", func(t *testing.T) {
		for event := range pipeline.QueryStream(context.Background(), &core.QueryInput{Query: "fair use"}) {
			require.Equal(t, StreamEventStarting, event.Type)
			break
		}
		assert.Zero(t, embedder.CallCount())
		assert.Zero(t, generator.CallCount())
	})

	t.Run("mid generation", func(t *testing.T) {
		produced := 0
		generator.StreamFunc = func(ctx context.Context, messages []core.Message, opts core.GenerationOptions) iter.Seq2[ai.StreamChunk, error] {
			return func(yield func(ai.StreamChunk, error) bool) {
				for range 100 {
					produced++
					if !yield(ai.StreamChunk{Content: "delta "}, nil) {
						return
					}
				}
				yield(ai.StreamChunk{Done: true}, nil)
			}
		}

		seen := 0
		for event := range pipeline.QueryStream(context.Background(), &core.QueryInput{Query: "fair use"}) {
			if event.Type == StreamEventContent {
				seen++
				break
			}
		}
		assert.Equal(t, 1, seen)
		assert.Equal(t, 1, produced)
	})
}

func TestQueryStreamAbandonmentClosesMonitor(t *testing.T) {
	monitor := &recordingMonitor{}
	pipeline, _, _, _ := newTestPipeline(t, WithMonitor(monitor))

	for event := range pipeline.QueryStream(context.Background(), &core.QueryInput{Query: "fair use"}) {
		if event.Type == StreamEventContext {
			break
		}
	}

	require.NotEmpty(t, monitor.events)
	assert.Equal(t, "start", monitor.events[0])
	assert.Equal(t, "failed", monitor.events[len(monitor.events)-1])
}
