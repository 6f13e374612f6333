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


// Package cache provides an in-memory LRU response cache keyed by a
// normalized query fingerprint.
//
// The cache memoizes complete pipeline responses so repeated questions
// skip embedding, retrieval and generation entirely. Entries expire
// after a configurable TTL and the least recently used entry is evicted
// when the cache is full. Responses are deep-copied on both read and
// write so callers can never mutate cached state.
//
// No cache operation returns an error: lookup ambiguity degrades to a
// miss and callers treat the cache as purely advisory.
//
// # Usage
//
//	rc := cache.NewResponseCache(
//	    cache.WithMaxSize(500),
//	    cache.WithTTL(5*time.Minute),
//	)
//
//	if resp, ok := rc.Get(input); ok {
//	    return resp
//	}
//	// ... run the pipeline ...
//	rc.Set(input, resp)
package cache
