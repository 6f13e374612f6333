package ai

import (
	"context"
	"iter"

	"github.com/rotemx/RAG-sub001/core"
)

// EmbedResult is the outcome of embedding one query.
type EmbedResult struct {
	// Vector is the embedding.
	Vector []float32

	// Cached reports whether the vector came from an embedding cache
	// rather than a model call. The pipeline marks the embedding phase
	// cached when set, but still proceeds with retrieval.
	Cached bool
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// Initialize prepares the embedder for use, verifying that the
	// backing service is reachable and the model is available.
	// Must be called before EmbedQuery or EmbedTexts.
	Initialize(ctx context.Context) error

	// EmbedQuery generates a vector embedding for a single query string.
	// The Cached flag reports whether the result was served from an
	// upstream embedding cache.
	EmbedQuery(ctx context.Context, text string) (EmbedResult, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedQuery multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completion is the result of one blocking generation call.
type Completion struct {
	// Content is the generated answer text.
	Content string

	// Model is the model identifier that produced the answer.
	Model string

	// Usage reports token consumption of the call.
	Usage core.Usage
}

// StreamChunk is one increment of a streamed generation.
type StreamChunk struct {
	// Content is the text delta. Empty on the final chunk.
	Content string

	// Done marks the final chunk of the stream.
	Done bool

	// Usage reports token consumption. Only set when Done.
	Usage *core.Usage
}

// Generator produces answers from chat messages.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Complete generates a full answer in one blocking call.
	Complete(ctx context.Context, messages []core.Message, opts core.GenerationOptions) (*Completion, error)

	// Stream generates an answer incrementally. The sequence yields
	// content chunks followed by exactly one chunk with Done set, or a
	// non-nil error in place of further chunks. The producer stops when
	// the consumer stops iterating.
	Stream(ctx context.Context, messages []core.Message, opts core.GenerationOptions) iter.Seq2[StreamChunk, error]

	// CalculateCost estimates the cost in USD of the given token usage.
	// Returns 0 when no pricing is configured.
	CalculateCost(usage core.Usage) float64

	// Provider returns the backend name, e.g. "openai".
	Provider() string

	// Model returns the model identifier answers are generated with.
	Model() string
}
