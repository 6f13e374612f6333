package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/rotemx/RAG-sub001/ai"
	"github.com/rotemx/RAG-sub001/core"
	"github.com/rotemx/RAG-sub001/index"
)

// BatchProcessor handles embedding generation for batches of chunks.
type BatchProcessor struct {
	store          index.VectorIndex
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(store index.VectorIndex, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		store:          store,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates fresh embeddings for a batch of chunks and writes
// them back to the index. Vectors are normalized after embedding so the
// index's dot product behaves as cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	now := time.Now().UTC()
	for i := range chunks {
		chunks[i].Vector = index.NormalizeVector(embeddings[i])
		chunks[i].UpdatedAt = now
	}

	if err := bp.store.Upsert(ctx, chunks...); err != nil {
		return fmt.Errorf("failed to update chunks: %w", err)
	}

	return nil
}
