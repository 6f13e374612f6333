// Package googleai provides an ai.Generator backed by the Google AI
// (Gemini) API.
package googleai

import (
	"context"

	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/rotemx/RAG-sub001/ai"
	"github.com/rotemx/RAG-sub001/ai/llm"
)

// NewGenerator creates a generator backed by a Gemini model. The context
// is used for client setup only, not for later completion calls.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(ctx context.Context, config *ai.Config) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(config.APIKey),
		googleai.WithDefaultModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return llm.New(client, config)
}
