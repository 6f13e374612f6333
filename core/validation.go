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

import (
	"fmt"
	"strings"
)

// ValidateQueryInput validates a QueryInput according to domain rules.
//
// Validation rules:
//   - Query must contain at least one non-whitespace character
//   - TopK must not be negative (0 means "use the default")
//   - Every ConversationHistory message must have a valid role and content
//
// NOT validated:
//   - Filter (an unknown attribute key simply matches nothing)
//   - CompletionOptions (provider-specific limits are enforced downstream)
func ValidateQueryInput(input *QueryInput) error {
	if input == nil {
		return fmt.Errorf("%w: input is nil", ErrInvalidQueryInput)
	}

	if strings.TrimSpace(input.Query) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQueryInput, ErrEmptyQuery)
	}

	if input.TopK < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidQueryInput, ErrNegativeTopK)
	}

	for i, msg := range input.ConversationHistory {
		if err := ValidateRole(msg.Role); err != nil {
			return fmt.Errorf("%w: history[%d]: %w", ErrInvalidQueryInput, i, err)
		}
		if msg.Content == "" {
			return fmt.Errorf("%w: history[%d]: %w", ErrInvalidQueryInput, i, ErrEmptyContent)
		}
	}

	return nil
}

// ValidateChunk validates a DocChunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - SourceId must not be empty
//
// NOT validated (populated during ingestion):
//   - Vector (can be empty until the embedding stage runs)
//   - Id (derived from content by the ingestion pipeline)
func ValidateChunk(chunk *DocChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.SourceId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySource)
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant && role != RoleSystem {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}
