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

// Package suggest produces "did you mean" alternatives for queries that
// found nothing. Providers are pluggable: a dictionary provider proposes
// near-spellings from the corpus vocabulary, an LLM provider asks a chat
// model for related terms. The Advisor chains providers and merges their
// proposals.
//
// Suggestions are advisory. A provider failure degrades to no suggestions,
// never to a failed search.
package suggest
