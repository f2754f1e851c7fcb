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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidBoard indicates a Board failed validation.
	ErrInvalidBoard = errors.New("invalid board")

	// ErrInvalidTopic indicates a Topic failed validation.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyBody indicates the Body field is empty.
	ErrEmptyBody = errors.New("body cannot be empty")

	// ErrEmptyBoardName indicates the board Name field is empty.
	ErrEmptyBoardName = errors.New("board name cannot be empty")

	// ErrMissingBoard indicates a topic or message has no owning board.
	ErrMissingBoard = errors.New("board id required")

	// ErrMissingTopic indicates a message has no owning topic.
	ErrMissingTopic = errors.New("topic id required")

	// ErrNegativeWeight indicates a relevance weight below zero.
	ErrNegativeWeight = errors.New("relevance weight cannot be negative")

	// ErrZeroWeightSum indicates all relevance weights are zero.
	ErrZeroWeightSum = errors.New("relevance weights sum to zero")

	// ErrInvalidPolicy indicates a SearchPolicy failed validation.
	ErrInvalidPolicy = errors.New("invalid search policy")

	// ErrInvalidEncoding indicates a malformed serialized record.
	ErrInvalidEncoding = errors.New("invalid encoding")
)
