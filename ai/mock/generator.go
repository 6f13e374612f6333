package mock

import (
	"context"
	"iter"

	"github.com/rotemx/RAG-sub001/ai"
	"github.com/rotemx/RAG-sub001/core"
)

const defaultAnswer = "Based on the retrieved provisions, the answer is yes."

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns Answer with fixed usage.
	CompleteFunc func(ctx context.Context, messages []core.Message, opts core.GenerationOptions) (*ai.Completion, error)

	// StreamFunc is called by Stream if set.
	// If nil, yields Answer as a single chunk followed by a done chunk.
	StreamFunc func(ctx context.Context, messages []core.Message, opts core.GenerationOptions) iter.Seq2[ai.StreamChunk, error]

	// CalculateCostFunc is called by CalculateCost if set. If nil, cost is zero.
	CalculateCostFunc func(usage core.Usage) float64

	// Answer overrides the default canned response.
	Answer string

	// ProviderName and ModelName override the default identifiers.
	ProviderName string
	ModelName    string

	callCount int
}

var _ ai.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a mock generator with a canned answer.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Complete returns the canned answer with fixed token usage.
func (m *MockGenerator) Complete(ctx context.Context, messages []core.Message, opts core.GenerationOptions) (*ai.Completion, error) {
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages, opts)
	}

	return &ai.Completion{
		Content: m.answer(),
		Model:   m.Model(),
		Usage:   core.Usage{InputTokens: 100, OutputTokens: 25},
	}, nil
}

// Stream yields the canned answer as one content chunk and one done chunk.
func (m *MockGenerator) Stream(ctx context.Context, messages []core.Message, opts core.GenerationOptions) iter.Seq2[ai.StreamChunk, error] {
	m.callCount++

	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, messages, opts)
	}

	return func(yield func(ai.StreamChunk, error) bool) {
		if !yield(ai.StreamChunk{Content: m.answer()}, nil) {
			return
		}
		usage := core.Usage{InputTokens: 100, OutputTokens: 25}
		yield(ai.StreamChunk{Done: true, Usage: &usage}, nil)
	}
}

// CalculateCost delegates to CalculateCostFunc if set, otherwise zero.
func (m *MockGenerator) CalculateCost(usage core.Usage) float64 {
	if m.CalculateCostFunc != nil {
		return m.CalculateCostFunc(usage)
	}
	return 0
}

// Provider returns the configured provider name, defaulting to "mock".
func (m *MockGenerator) Provider() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

// Model returns the configured model name, defaulting to "mock-model".
func (m *MockGenerator) Model() string {
	if m.ModelName != "" {
		return m.ModelName
	}
	return "mock-model"
}

// CallCount returns the number of Complete and Stream calls made.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.CompleteFunc = nil
	m.StreamFunc = nil
	m.CalculateCostFunc = nil
}

func (m *MockGenerator) answer() string {
	if m.Answer != "" {
		return m.Answer
	}
	return defaultAnswer
}
