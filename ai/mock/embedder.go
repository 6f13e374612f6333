package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/rotemx/RAG-sub001/ai"
)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// InitializeFunc is called by Initialize if set.
	// If nil, Initialize succeeds.
	InitializeFunc func(ctx context.Context) error

	// EmbedQueryFunc is called by EmbedQuery if set.
	// If nil, uses default deterministic behavior.
	EmbedQueryFunc func(ctx context.Context, text string) (ai.EmbedResult, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions sets the width of default vectors. Zero means 384.
	Dimensions int

	// mu guards the counters. Batch embedding runs on worker goroutines.
	mu        sync.Mutex
	callCount int
	initCount int
}

var _ ai.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// Initialize records the call and delegates to InitializeFunc if set.
func (m *MockEmbedder) Initialize(ctx context.Context) error {
	m.mu.Lock()
	m.initCount++
	m.mu.Unlock()

	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx)
	}
	return nil
}

// EmbedQuery generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) (ai.EmbedResult, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EmbedQueryFunc != nil {
		return m.EmbedQueryFunc(ctx, text)
	}

	return ai.EmbedResult{Vector: generateDeterministicVector(text, m.dimensions())}, nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = generateDeterministicVector(text, m.dimensions())
	}
	return embeddings, nil
}

// CallCount returns the number of embed calls made.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// InitCount returns the number of Initialize calls made.
func (m *MockEmbedder) InitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initCount
}

// Reset clears call counts and injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.initCount = 0
	m.InitializeFunc = nil
	m.EmbedQueryFunc = nil
	m.EmbedTextsFunc = nil
}

func (m *MockEmbedder) dimensions() int {
	if m.Dimensions > 0 {
		return m.Dimensions
	}
	return 384
}

// generateDeterministicVector creates a unit vector from a text hash.
// The same text always produces the same vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	var sumSquares float64
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
		sumSquares += float64(vector[i]) * float64(vector[i])
	}

	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
