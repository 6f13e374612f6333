package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder is a minimal in-package test double. The full-featured
// mock lives in ai/mock, which cannot be imported here without a cycle.
type countingEmbedder struct {
	calls  int
	vector []float32
	err    error
}

func (c *countingEmbedder) Initialize(ctx context.Context) error {
	return nil
}

func (c *countingEmbedder) EmbedQuery(ctx context.Context, text string) (EmbedResult, error) {
	c.calls++
	if c.err != nil {
		return EmbedResult{}, c.err
	}
	return EmbedResult{Vector: c.vector}, nil
}

func (c *countingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = c.vector
	}
	return out, nil
}

func TestCachedEmbedder_HitSkipsModel(t *testing.T) {
	inner := &countingEmbedder{vector: []float32{0.1, 0.2}}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	first, err := cached.EmbedQuery(ctx, "query")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, inner.calls)

	second, err := cached.EmbedQuery(ctx, "query")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, inner.calls, "hit must not call the model")
	assert.Equal(t, first.Vector, second.Vector)

	stats := cached.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCachedEmbedder_DistinctQueries(t *testing.T) {
	inner := &countingEmbedder{vector: []float32{0.1}}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	_, err := cached.EmbedQuery(ctx, "first")
	require.NoError(t, err)
	_, err = cached.EmbedQuery(ctx, "second")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.Stats().Entries)
}

func TestCachedEmbedder_Bounded(t *testing.T) {
	inner := &countingEmbedder{vector: []float32{1}}
	cached := NewCachedEmbedder(inner, 2)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		_, err := cached.EmbedQuery(ctx, q)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, cached.Stats().Entries)

	// "a" was the oldest entry and must have been evicted.
	res, err := cached.EmbedQuery(ctx, "a")
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 4, inner.calls)
}

func TestCachedEmbedder_CallerCannotMutateCache(t *testing.T) {
	inner := &countingEmbedder{vector: []float32{0.5, 0.5}}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	first, err := cached.EmbedQuery(ctx, "query")
	require.NoError(t, err)
	first.Vector[0] = 99

	second, err := cached.EmbedQuery(ctx, "query")
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), second.Vector[0], "cached vector must be isolated from callers")

	second.Vector[1] = 42
	third, err := cached.EmbedQuery(ctx, "query")
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), third.Vector[1])
}

func TestCachedEmbedder_ErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("model offline")}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	_, err := cached.EmbedQuery(ctx, "query")
	require.Error(t, err)
	assert.Equal(t, 0, cached.Stats().Entries)

	// Recovery: the next call goes back to the model.
	inner.err = nil
	inner.vector = []float32{1}
	res, err := cached.EmbedQuery(ctx, "query")
	require.NoError(t, err)
	assert.False(t, res.Cached)
}

func TestCachedEmbedder_EmbedTextsPassthrough(t *testing.T) {
	inner := &countingEmbedder{vector: []float32{1}}
	cached := NewCachedEmbedder(inner, 10)

	out, err := cached.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 0, cached.Stats().Entries, "batches must not populate the query cache")
}
