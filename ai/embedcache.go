package ai

import (
	"context"
	"slices"
	"sync"

	"github.com/rotemx/RAG-sub001/core"
)

// DefaultEmbedCacheSize is the default entry bound for CachedEmbedder.
const DefaultEmbedCacheSize = 512

// CachedEmbedder wraps an Embedder and memoizes query vectors in
// process. Repeated queries skip the model call and report Cached: true.
// Entries are bounded; once full, the oldest entry is overwritten.
//
// This is the upstream embedding cache, orthogonal to the pipeline's
// response cache: a hit here still runs retrieval and generation.
type CachedEmbedder struct {
	inner      Embedder
	maxEntries int

	mu      sync.Mutex
	entries map[core.ID][]float32
	ring    []core.ID // insertion order, oldest at next
	next    int
	hits    int64
	misses  int64
}

var _ Embedder = (*CachedEmbedder)(nil)

// EmbedCacheStats reports cache occupancy and effectiveness.
type EmbedCacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// NewCachedEmbedder wraps inner with an in-process query vector cache
// bounded to maxEntries. maxEntries <= 0 uses DefaultEmbedCacheSize.
func NewCachedEmbedder(inner Embedder, maxEntries int) *CachedEmbedder {
	if maxEntries <= 0 {
		maxEntries = DefaultEmbedCacheSize
	}
	return &CachedEmbedder{
		inner:      inner,
		maxEntries: maxEntries,
		entries:    make(map[core.ID][]float32),
	}
}

// Initialize prepares the underlying embedder.
func (ce *CachedEmbedder) Initialize(ctx context.Context) error {
	return ce.inner.Initialize(ctx)
}

// EmbedQuery returns the memoized vector for text when present,
// otherwise embeds through the underlying embedder and stores the result.
// Vectors are copied in both directions so callers and cache never share
// a slice.
func (ce *CachedEmbedder) EmbedQuery(ctx context.Context, text string) (EmbedResult, error) {
	key := core.IDFromContent(text)

	ce.mu.Lock()
	vec, ok := ce.entries[key]
	if ok {
		ce.hits++
		out := slices.Clone(vec)
		ce.mu.Unlock()
		return EmbedResult{Vector: out, Cached: true}, nil
	}
	ce.misses++
	ce.mu.Unlock()

	res, err := ce.inner.EmbedQuery(ctx, text)
	if err != nil {
		return EmbedResult{}, err
	}

	ce.mu.Lock()
	ce.store(key, slices.Clone(res.Vector))
	ce.mu.Unlock()

	return res, nil
}

// EmbedTexts passes batches straight through. Ingestion batches would
// churn the query cache without ever being queried.
func (ce *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return ce.inner.EmbedTexts(ctx, texts)
}

// Stats returns a snapshot of cache occupancy and hit counts.
func (ce *CachedEmbedder) Stats() EmbedCacheStats {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	return EmbedCacheStats{
		Entries: len(ce.entries),
		Hits:    ce.hits,
		Misses:  ce.misses,
	}
}

// store inserts under ce.mu, overwriting the oldest entry once full.
func (ce *CachedEmbedder) store(key core.ID, vec []float32) {
	if _, exists := ce.entries[key]; exists {
		ce.entries[key] = vec
		return
	}

	if len(ce.entries) < ce.maxEntries {
		ce.entries[key] = vec
		ce.ring = append(ce.ring, key)
		return
	}

	oldest := ce.ring[ce.next]
	delete(ce.entries, oldest)
	ce.ring[ce.next] = key
	ce.next = (ce.next + 1) % ce.maxEntries
	ce.entries[key] = vec
}
