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


// Package index provides the vector index abstraction for lawrag.
//
// This package defines the VectorIndex interface that decouples retrieval
// from a concrete search engine. It allows different backends (an embedded
// BadgerDB store, a remote Milvus collection, mocks) to be used
// interchangeably by the query pipeline.
//
// # Constructor Return Type Pattern
//
// Public backend constructors return the interface type to enforce
// abstraction:
//
//	idx, err := badger.Open("/path/to/index")  // returns index.ChunkStore
//	idx, err := milvus.Open(ctx, cfg)          // returns index.VectorIndex
//
// Internal constructors may return concrete types since they are only used
// within the implementation package.
//
// # Backends
//
//   - index/badger: embedded store, brute-force cosine scan, suitable for
//     corpora that fit on one machine. Also implements ChunkStore, so
//     maintenance jobs can enumerate stored chunks.
//   - index/milvus: remote Milvus collection via the v2 SDK, for larger
//     corpora and shared deployments.
//   - index/mock: test double with injectable behavior.
//
// # Thread Safety
//
// All index implementations must be safe for concurrent use from multiple
// goroutines.
//
// # Context Support
//
// All index methods accept context.Context for cancellation and timeout
// support.
package index
