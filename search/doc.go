// Copyright 2025 Poiesic Systems
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

// Package search implements the retrieval pipeline: scope resolution
// against a visibility predicate, pluggable candidate retrieval (postings
// index or sharded scan), weighted relevance ranking, and the Engine that
// orchestrates the whole request including result-set caching, pagination
// and display rendering.
//
// Retrieval backends operate at topic granularity. A candidate is a topic
// with its first matching message as the anchor; ranking then scores the
// topic as a whole. Both backends evaluate the same compiled predicate, so
// a query matches identically whether it was narrowed by the index or
// found by a scan.
package search
