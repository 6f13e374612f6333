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


package rag

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a pipeline failure by the phase that caused it.
type ErrorCode string

const (
	CodeEmbeddingError  ErrorCode = "embedding_error"
	CodeRetrievalError  ErrorCode = "retrieval_error"
	CodeGenerationError ErrorCode = "generation_error"
	CodeNoResults       ErrorCode = "no_results"
	CodeNotInitialized  ErrorCode = "not_initialized"
	CodeInvalidConfig   ErrorCode = "invalid_config"
	CodeUnknown         ErrorCode = "unknown"
)

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrNotInitialized is returned when a query arrives before Initialize
	// has completed.
	ErrNotInitialized = errors.New("pipeline not initialized")

	// ErrNoResults is returned when retrieval produces zero passages. An
	// answer without grounding must not be generated.
	ErrNoResults = errors.New("no passages retrieved")

	// ErrStreamAbandoned marks a stream whose consumer stopped iterating
	// before a terminal event. Surfaces only through Monitor.Failed.
	ErrStreamAbandoned = errors.New("stream abandoned by consumer")
)

// metadataQueryLimit bounds the query text copied into error metadata.
const metadataQueryLimit = 200

// Error is the pipeline failure type. Every error escaping the
// orchestrator is one of these, carrying the phase code, the request id
// and a truncated copy of the query as metadata, and the original
// failure as a wrapped cause.
type Error struct {
	Code     ErrorCode
	Message  string
	Cause    error
	Metadata map[string]string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CodeOf extracts the pipeline error code from an error chain,
// returning CodeUnknown for foreign errors and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var pipelineErr *Error
	if errors.As(err, &pipelineErr) {
		return pipelineErr.Code
	}
	return CodeUnknown
}

// wrapError classifies a collaborator failure. An error that already
// carries a pipeline code passes through unchanged.
func wrapError(code ErrorCode, message string, cause error, metadata map[string]string) error {
	var pipelineErr *Error
	if errors.As(cause, &pipelineErr) {
		return pipelineErr
	}
	return &Error{
		Code:     code,
		Message:  message,
		Cause:    cause,
		Metadata: metadata,
	}
}

// queryMetadata builds the metadata attached to every pipeline error.
func queryMetadata(requestId, query string) map[string]string {
	if len(query) > metadataQueryLimit {
		query = query[:metadataQueryLimit]
	}
	return map[string]string{
		"requestId": requestId,
		"query":     query,
	}
}
