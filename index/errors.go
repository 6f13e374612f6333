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


package index

import "errors"

var (
	// ErrNotFound indicates that the requested chunk was not found.
	ErrNotFound = errors.New("chunk not found")

	// ErrIndexClosed indicates that the index backend is closed.
	ErrIndexClosed = errors.New("index is closed")

	// ErrEmptyVector indicates a search with an empty query vector.
	ErrEmptyVector = errors.New("query vector is empty")

	// ErrDimensionMismatch indicates a vector whose dimensions differ
	// from the vectors stored in the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrMissingVector indicates an upsert of a chunk without an embedding.
	ErrMissingVector = errors.New("chunk has no embedding vector")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
