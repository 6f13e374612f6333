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


// Package rag orchestrates retrieval-augmented generation over a legal
// document corpus.
//
// A Pipeline wires together an embedder, a vector index, a prompt
// builder and a generation backend. Each query flows through five
// phases:
//   - Response cache lookup (optional, skipped for conversational input)
//   - Query embedding
//   - Vector similarity search with attribute filtering
//   - Prompt construction under a context token budget
//   - Answer generation, blocking via Query or incremental via QueryStream
//
// Every failure carries an ErrorCode identifying the phase that failed,
// so callers can distinguish a misconfigured pipeline from an empty
// result set or an unreachable backend.
//
// Typical use:
//
//	pipeline, err := rag.New(embedder, idx, generator,
//		rag.WithTopK(5),
//		rag.WithCache(true),
//	)
//	if err != nil {
//		return err
//	}
//	if err := pipeline.Initialize(ctx); err != nil {
//		return err
//	}
//	defer pipeline.Close()
//
//	response, err := pipeline.Query(ctx, &core.QueryInput{
//		Query: "What are the elements of fair use?",
//	})
package rag
