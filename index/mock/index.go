// Package mock provides a test double implementation of index.VectorIndex.
package mock

import (
	"context"

	"github.com/rotemx/RAG-sub001/core"
	"github.com/rotemx/RAG-sub001/index"
)

// MockIndex is a test double for index.VectorIndex.
// It allows custom behavior injection via function fields.
type MockIndex struct {
	// CollectionExistsFunc is called by CollectionExists if set.
	// If nil, the collection exists.
	CollectionExistsFunc func(ctx context.Context) (bool, error)

	// SearchFunc is called by Search if set.
	// If nil, returns Passages filtered by the search params.
	SearchFunc func(ctx context.Context, vector []float32, params index.SearchParams) ([]core.RetrievedPassage, error)

	// UpsertFunc is called by Upsert if set. If nil, Upsert succeeds.
	UpsertFunc func(ctx context.Context, chunks ...*core.DocChunk) error

	// DeleteFunc is called by Delete if set. If nil, Delete succeeds.
	DeleteFunc func(ctx context.Context, ids ...core.ID) error

	// CountFunc is called by Count if set. If nil, returns len(Passages).
	CountFunc func(ctx context.Context) (int, error)

	// CloseFunc is called by Close if set. If nil, Close succeeds.
	CloseFunc func() error

	// Passages seeds the default Search behavior. Results honor the
	// score threshold and limit of the search params, in slice order.
	Passages []core.RetrievedPassage

	searchCount int
	upsertCount int
}

var _ index.VectorIndex = (*MockIndex)(nil)

// NewMockIndex creates a mock index with default behavior.
func NewMockIndex() *MockIndex {
	return &MockIndex{}
}

// CollectionExists reports whether the collection exists.
func (m *MockIndex) CollectionExists(ctx context.Context) (bool, error) {
	if m.CollectionExistsFunc != nil {
		return m.CollectionExistsFunc(ctx)
	}
	return true, nil
}

// Search returns the seeded passages, filtered like a real backend would.
func (m *MockIndex) Search(ctx context.Context, vector []float32, params index.SearchParams) ([]core.RetrievedPassage, error) {
	m.searchCount++

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, vector, params)
	}

	var results []core.RetrievedPassage
	for _, passage := range m.Passages {
		if passage.Score < params.ScoreThreshold {
			continue
		}
		results = append(results, passage)
		if params.Limit > 0 && len(results) == params.Limit {
			break
		}
	}
	return results, nil
}

// Upsert records the call and delegates to UpsertFunc if set.
func (m *MockIndex) Upsert(ctx context.Context, chunks ...*core.DocChunk) error {
	m.upsertCount++

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, chunks...)
	}
	return nil
}

// Delete delegates to DeleteFunc if set.
func (m *MockIndex) Delete(ctx context.Context, ids ...core.ID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ids...)
	}
	return nil
}

// Count returns the number of seeded passages by default.
func (m *MockIndex) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return len(m.Passages), nil
}

// Close delegates to CloseFunc if set.
func (m *MockIndex) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// SearchCount returns the number of Search calls made.
func (m *MockIndex) SearchCount() int {
	return m.searchCount
}

// UpsertCount returns the number of Upsert calls made.
func (m *MockIndex) UpsertCount() int {
	return m.upsertCount
}

// Reset clears call counts and injected behavior.
func (m *MockIndex) Reset() {
	m.searchCount = 0
	m.upsertCount = 0
	m.CollectionExistsFunc = nil
	m.SearchFunc = nil
	m.UpsertFunc = nil
	m.DeleteFunc = nil
	m.CountFunc = nil
	m.CloseFunc = nil
}
