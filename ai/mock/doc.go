// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder and ai.Generator
// for use in unit tests. The mocks allow tests to run without external AI
// services and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	result, err := embedder.EmbedQuery(ctx, "test")
//
//	// Custom behavior injection
//	embedder.EmbedQueryFunc = func(ctx context.Context, text string) (ai.EmbedResult, error) {
//	    return ai.EmbedResult{Vector: []float32{0.1, 0.2, 0.3}}, nil
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockGenerator: Returns a canned answer with fixed token usage
package mock
