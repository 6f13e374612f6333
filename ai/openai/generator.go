package openai

import (
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rotemx/RAG-sub001/ai"
	"github.com/rotemx/RAG-sub001/ai/llm"
)

// NewGenerator creates a generator backed by an OpenAI-compatible chat
// completion API.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(tokenOrNone(config.APIKey)),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return llm.New(client, config)
}
