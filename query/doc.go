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


// Package query turns raw search text into classified term groups.
//
// Parsing happens in two stages:
//   - Parse normalizes the text and extracts phrases, words and exclusions.
//     It never fails; an unusable query is only detected by the next stage.
//   - Classify filters stop-words and short terms, deduplicates, caps the
//     term count and partitions the survivors into OR groups according to
//     the search type. Exclusions are appended to every group.
//
// The output OrGroups are the retrieval contract: terms within a group are
// AND-combined, groups are OR-combined, and excluded terms are AND-NOT
// regardless of search type.
package query
