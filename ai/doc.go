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


// Package ai provides abstractions for the AI services used in lawrag.
//
// This package defines interfaces for text embedding and answer
// generation. It follows the dependency inversion principle, allowing
// the query pipeline to depend on abstractions rather than concrete
// implementations.
//
// # Design Principles
//
// The package is designed around two capability interfaces:
//
//   - Embedder: generates vector embeddings from text
//   - Generator: produces answers from chat messages, blocking or streamed
//
// # Implementation Packages
//
// The ai package includes several implementation sub-packages:
//
//   - ai/llm: the langchaingo-backed generator core shared by providers
//   - ai/openai: embeddings and generation via OpenAI-compatible APIs
//   - ai/anthropic: generation via the Anthropic API
//   - ai/googleai: generation via the Google AI API
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewEmbedder, anthropic.NewGenerator, etc.)
// return INTERFACE types to enforce abstraction and prevent accidental
// coupling to concrete implementations.
//
//	gen, err := anthropic.NewGenerator(cfg)  // returns ai.Generator
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockGenerator)
// return CONCRETE types to enable test assertions and behavior injection
// via the mock's public fields and methods (CallCount, EmbedQueryFunc, etc.).
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	    ai.WithGenerationModel("qwen2.5:7b"),
//	)
//	embedder, err := openai.NewEmbedder(cfg)
//	generator, err := openai.NewGenerator(cfg)
//
// Wrap the embedder to memoize repeated queries:
//
//	cached := ai.NewCachedEmbedder(embedder, 512)
package ai
