// Copyright 2025 the lawrag authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package llm implements ai.Generator on top of a langchaingo chat
// model. Provider packages (ai/openai, ai/anthropic, ai/googleai)
// construct their client and delegate completion, streaming and cost
// accounting here.
package llm

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/tmc/langchaingo/llms"

	"github.com/rotemx/RAG-sub001/ai"
	"github.com/rotemx/RAG-sub001/core"
)

var (
	// ErrNilClient indicates a generator was constructed without a model client.
	ErrNilClient = errors.New("llm: model client is required")

	// ErrNoChoices indicates the model returned an empty response.
	ErrNoChoices = errors.New("llm: model returned no choices")
)

// Generator produces answers through a langchaingo chat model.
type Generator struct {
	client          llms.Model
	provider        string
	model           string
	inputCostPer1M  float64
	outputCostPer1M float64
	logger          *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

// New creates a generator over an initialized langchaingo model client.
// Provider and model names and pricing come from the config.
func New(client llms.Model, config *ai.Config) (*Generator, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	return &Generator{
		client:          client,
		provider:        config.Provider,
		model:           config.GenerationModel,
		inputCostPer1M:  config.InputCostPer1M,
		outputCostPer1M: config.OutputCostPer1M,
		logger:          slog.Default().With("component", "generator", "provider", config.Provider),
	}, nil
}

// Complete generates a full answer in one blocking call.
func (g *Generator) Complete(ctx context.Context, messages []core.Message, opts core.GenerationOptions) (*ai.Completion, error) {
	content := toMessageContent(messages)

	resp, err := g.client.GenerateContent(ctx, content, g.callOptions(opts)...)
	if err != nil {
		g.logger.Error("completion failed", "model", g.model, "err", err)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	usage := usageFromInfo(choice.GenerationInfo)
	g.logger.Debug("completion finished",
		"model", g.model,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens)

	return &ai.Completion{
		Content: choice.Content,
		Model:   g.model,
		Usage:   usage,
	}, nil
}

type streamOutcome struct {
	resp *llms.ContentResponse
	err  error
}

// Stream generates an answer incrementally. Deltas are yielded as they
// arrive from the model; the final chunk carries Done and usage. When
// the consumer stops iterating, the model call is canceled.
func (g *Generator) Stream(ctx context.Context, messages []core.Message, opts core.GenerationOptions) iter.Seq2[ai.StreamChunk, error] {
	return func(yield func(ai.StreamChunk, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		deltas := make(chan string)
		outcome := make(chan streamOutcome, 1)

		content := toMessageContent(messages)
		callOpts := append(g.callOptions(opts),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				select {
				case deltas <- string(chunk):
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}))

		go func() {
			resp, err := g.client.GenerateContent(ctx, content, callOpts...)
			outcome <- streamOutcome{resp: resp, err: err}
		}()

		for {
			select {
			case delta := <-deltas:
				if !yield(ai.StreamChunk{Content: delta}, nil) {
					return
				}
			case out := <-outcome:
				if out.err != nil {
					g.logger.Error("stream failed", "model", g.model, "err", out.err)
					yield(ai.StreamChunk{}, out.err)
					return
				}
				if len(out.resp.Choices) == 0 {
					yield(ai.StreamChunk{}, ErrNoChoices)
					return
				}
				usage := usageFromInfo(out.resp.Choices[0].GenerationInfo)
				yield(ai.StreamChunk{Done: true, Usage: &usage}, nil)
				return
			}
		}
	}
}

// CalculateCost estimates the cost in USD of the given token usage.
func (g *Generator) CalculateCost(usage core.Usage) float64 {
	return float64(usage.InputTokens)*g.inputCostPer1M/1e6 +
		float64(usage.OutputTokens)*g.outputCostPer1M/1e6
}

// Provider returns the backend name.
func (g *Generator) Provider() string {
	return g.provider
}

// Model returns the model identifier.
func (g *Generator) Model() string {
	return g.model
}

func (g *Generator) callOptions(opts core.GenerationOptions) []llms.CallOption {
	callOpts := []llms.CallOption{llms.WithTemperature(opts.Temperature)}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	return callOpts
}

// toMessageContent maps conversation messages onto langchaingo roles.
func toMessageContent(messages []core.Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var role llms.ChatMessageType
		switch msg.Role {
		case core.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case core.RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}
	return content
}
