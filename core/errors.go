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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidQueryInput indicates a QueryInput failed validation.
	ErrInvalidQueryInput = errors.New("invalid query input")

	// ErrInvalidChunk indicates a DocChunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyQuery indicates the Query field is empty or whitespace.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptySource indicates the SourceId field is empty.
	ErrEmptySource = errors.New("source id cannot be empty")

	// ErrInvalidRole indicates an invalid Role value.
	ErrInvalidRole = errors.New("invalid role")

	// ErrNegativeTopK indicates a negative TopK value.
	ErrNegativeTopK = errors.New("topK cannot be negative")
)
