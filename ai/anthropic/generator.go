// Package anthropic provides an ai.Generator backed by the Anthropic
// Messages API.
//
// Anthropic exposes no embedding endpoint, so deployments pairing this
// generator with retrieval still use an OpenAI-compatible embedder.
package anthropic

import (
	"github.com/tmc/langchaingo/llms/anthropic"

	"github.com/rotemx/RAG-sub001/ai"
	"github.com/rotemx/RAG-sub001/ai/llm"
)

// NewGenerator creates a generator backed by an Anthropic model.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := anthropic.New(
		anthropic.WithToken(config.APIKey),
		anthropic.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return llm.New(client, config)
}
