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


// Package latency instruments pipeline requests with per-phase timing.
//
// A Tracker lives for one request and times the cache-lookup, embedding,
// retrieval, prompt-build and generation phases. Phases served from a
// cache are marked instead of timed and report a duration of zero.
//
// CheckThresholds and Aggregate are pure functions over completed
// summaries: the former flags phases that ran longer than configured
// limits, the latter reduces a batch of summaries to per-phase averages
// and cache-hit rates.
package latency
