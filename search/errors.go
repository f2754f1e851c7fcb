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

package search

import "errors"

var (
	// ErrNoVisibleScope indicates the resolved scope contains no boards.
	ErrNoVisibleScope = errors.New("no visible boards in scope")

	// ErrNotFound indicates an explicitly requested topic or board does not
	// exist or is not visible to the caller.
	ErrNotFound = errors.New("requested scope not found")

	// ErrQueryNotSpecific indicates the force-index policy is active and the
	// query has no indexable term.
	ErrQueryNotSpecific = errors.New("query not specific enough for indexed search")

	// ErrTimeout indicates retrieval exceeded its deadline.
	ErrTimeout = errors.New("search timed out")

	// ErrZeroWeights indicates the relevance weight configuration cannot
	// rank anything.
	ErrZeroWeights = errors.New("all relevance weights are zero")

	// ErrMessageRepositoryRequired is returned when a message repository is not provided.
	ErrMessageRepositoryRequired = errors.New("message repository required")

	// ErrTopicRepositoryRequired is returned when a topic repository is not provided.
	ErrTopicRepositoryRequired = errors.New("topic repository required")

	// ErrBoardRepositoryRequired is returned when a board repository is not provided.
	ErrBoardRepositoryRequired = errors.New("board repository required")

	// ErrCacheRequired is returned when a result cache is not provided.
	ErrCacheRequired = errors.New("result cache required")
)
