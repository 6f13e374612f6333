package reindex

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotemx/RAG-sub001/core"
	"github.com/rotemx/RAG-sub001/index"
	"github.com/rotemx/RAG-sub001/index/badger"
)

func setupTestStore(t *testing.T) (index.ChunkStore, func()) {
	store, err := badger.NewMemoryIndex()
	require.NoError(t, err)

	cleanup := func() {
		store.Close()
	}

	return store, cleanup
}

// seedChunks inserts n chunks carrying stale three-dimensional vectors.
func seedChunks(t *testing.T, store index.ChunkStore, n int) []*core.DocChunk {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	chunks := make([]*core.DocChunk, n)
	for i := 0; i < n; i++ {
		content := fmt.Sprintf("stored passage %d", i)
		chunks[i] = &core.DocChunk{
			Id:         core.IDFromContent(content),
			Content:    content,
			SourceId:   "seed-source",
			SourceName: "Seed Source",
			Vector:     []float32{1.0, 0.0, 0.0},
			InsertedAt: now,
			UpdatedAt:  now,
		}
	}

	require.NoError(t, store.Upsert(context.Background(), chunks...))
	return chunks
}

func TestRecordIterator_Basic(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	seedChunks(t, store, 3)

	iter := NewRecordIterator(store, 2)
	count := 0
	var ids []core.ID

	err := iter.ForEach(ctx, func(chunks []*core.DocChunk) error {
		count += len(chunks)
		for _, c := range chunks {
			ids = append(ids, c.Id)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, count, "should iterate all 3 chunks")
	assert.Len(t, ids, 3, "should have 3 IDs")
}

func TestRecordIterator_BatchSizes(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	seedChunks(t, store, 10)

	tests := []struct {
		name          string
		batchSize     int
		expectedBatch int
	}{
		{"batch size 1", 1, 10},
		{"batch size 3", 3, 4}, // 3+3+3+1
		{"batch size 5", 5, 2}, // 5+5
		{"batch size 10", 10, 1},
		{"batch size 100", 100, 1}, // All in one batch
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iter := NewRecordIterator(store, tt.batchSize)
			batchCount := 0
			totalChunks := 0

			err := iter.ForEach(ctx, func(chunks []*core.DocChunk) error {
				batchCount++
				totalChunks += len(chunks)
				assert.LessOrEqual(t, len(chunks), tt.batchSize, "batch should not exceed batchSize")
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedBatch, batchCount, "batch count")
			assert.Equal(t, 10, totalChunks, "total chunks")
		})
	}
}

func TestRecordIterator_EmptyStore(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	iter := NewRecordIterator(store, 10)
	called := false

	err := iter.ForEach(ctx, func(chunks []*core.DocChunk) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called, "callback should not be called for an empty store")
}

func TestRecordIterator_ErrorHandling(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	seedChunks(t, store, 2)

	iter := NewRecordIterator(store, 1)
	called := 0

	expectedErr := assert.AnError
	err := iter.ForEach(ctx, func(chunks []*core.DocChunk) error {
		called++
		if called == 1 {
			return expectedErr
		}
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return callback error")
	assert.Equal(t, 1, called, "should stop on first error")
}

func TestRecordIterator_ContextCancellation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	seedChunks(t, store, 5)

	iter := NewRecordIterator(store, 1)
	called := 0

	err := iter.ForEach(ctx, func(chunks []*core.DocChunk) error {
		called++
		if called == 2 {
			cancel()
		}
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, called, "should process until context canceled")
}

func TestRecordIterator_InvalidBatchSize(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// Zero batch size should be handled gracefully
	iter := NewRecordIterator(store, 0)
	assert.Greater(t, iter.batchSize, 0, "should use default batch size for invalid input")

	// Negative batch size
	iter = NewRecordIterator(store, -10)
	assert.Greater(t, iter.batchSize, 0, "should use default batch size for negative input")
}
