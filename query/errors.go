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


package query

import "errors"

var (
	// ErrEmptyQuery indicates no usable term survived classification.
	ErrEmptyQuery = errors.New("no usable search terms")

	// ErrAllBlacklisted is the EmptyQuery sub-reason when every term was a
	// stop-word.
	ErrAllBlacklisted = errors.New("all terms blacklisted")

	// ErrAllTooShort is the EmptyQuery sub-reason when every term was under
	// the minimum length.
	ErrAllTooShort = errors.New("all terms too short")

	// ErrAllExcluded is the EmptyQuery sub-reason when every included term
	// was also excluded.
	ErrAllExcluded = errors.New("all terms excluded")

	// ErrQueryTooLong indicates the raw query exceeds the character limit.
	ErrQueryTooLong = errors.New("query too long")
)
