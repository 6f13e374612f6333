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


package cache

import (
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"

	"github.com/go-crypt/x/blake2b"

	"github.com/rotemx/RAG-sub001/core"
)

// keyMaterial is the canonical form hashed into a cache key. Maps
// marshal with sorted keys, so equal inputs always produce equal JSON.
type keyMaterial struct {
	Query  string              `json:"query"`
	TopK   int                 `json:"topk,omitempty"`
	Filter map[string][]string `json:"filter,omitempty"`
}

// Fingerprint derives the cache key for a query input. The query text is
// normalized (trimmed, lowercased, internal whitespace collapsed) so
// cosmetic variations of the same question share an entry. When
// includeParams is set, TopK and the attribute filter join the key with
// filter keys and values sorted, making the key invariant under filter
// ordering. Keys with no allowed values are dropped, matching how the
// index backends treat them.
func Fingerprint(input *core.QueryInput, includeParams bool) string {
	material := keyMaterial{Query: NormalizeQuery(input.Query)}

	if includeParams {
		material.TopK = input.TopK
		if len(input.Filter) > 0 {
			filter := make(map[string][]string, len(input.Filter))
			for key, values := range input.Filter {
				if len(values) == 0 {
					continue
				}
				sorted := slices.Clone(values)
				slices.Sort(sorted)
				filter[key] = sorted
			}
			if len(filter) > 0 {
				material.Filter = filter
			}
		}
	}

	encoded, _ := json.Marshal(material)

	hasher, _ := blake2b.New(32, nil)
	hasher.Write(encoded)
	return hex.EncodeToString(hasher.Sum(nil))
}

// NormalizeQuery trims, lowercases and collapses internal whitespace.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
