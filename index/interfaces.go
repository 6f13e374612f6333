package index

import (
	"context"

	"github.com/rotemx/RAG-sub001/core"
)

// SearchParams control one similarity search.
type SearchParams struct {
	// Limit is the maximum number of passages to return.
	Limit int

	// ScoreThreshold drops results scoring below it. Zero means no minimum.
	ScoreThreshold float32

	// Filter restricts results to chunks whose attributes match.
	// A nil or empty filter matches everything.
	Filter core.AttributeFilter
}

// VectorIndex provides similarity search over embedded document chunks.
// Implementations must be thread-safe and support concurrent access.
type VectorIndex interface {
	// CollectionExists reports whether the index holds a queryable
	// collection. The pipeline checks this during initialization.
	CollectionExists(ctx context.Context) (bool, error)

	// Search returns the chunks most similar to the given vector,
	// ordered by descending score, honoring params.
	Search(ctx context.Context, vector []float32, params SearchParams) ([]core.RetrievedPassage, error)

	// Upsert inserts or replaces chunks by ID.
	// Chunks must carry their embedding vectors.
	Upsert(ctx context.Context, chunks ...*core.DocChunk) error

	// Delete removes chunks by their IDs.
	// Missing IDs are not an error.
	Delete(ctx context.Context, ids ...core.ID) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases the backend and its resources.
	Close() error
}

// ChunkStore is a VectorIndex that can enumerate and annotate its
// contents. The embedded backend implements it; remote backends need not.
// Maintenance jobs (reindexing, stats) depend on this interface.
type ChunkStore interface {
	VectorIndex

	// AllChunks returns every stored chunk. Order is unspecified.
	AllChunks(ctx context.Context) ([]*core.DocChunk, error)

	// DeleteBySource removes all chunks ingested from the given source
	// and returns the number removed.
	DeleteBySource(ctx context.Context, sourceId string) (int, error)

	// Meta returns the index metadata, or nil if none has been recorded.
	Meta(ctx context.Context) (*core.IndexMeta, error)

	// SetMeta records which embedding model produced the stored vectors.
	SetMeta(ctx context.Context, meta *core.IndexMeta) error
}
