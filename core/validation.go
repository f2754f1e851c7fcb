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

import (
	"fmt"
	"time"
)

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Body must not be empty
//   - BoardId and TopicId must be set
//   - PostedAt must not be in the future
//
// NOT validated:
//   - ID (0 is valid from database sequences)
//   - Subject (subject-less replies are legal)
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if msg.Body == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyBody)
	}

	if msg.BoardId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrMissingBoard)
	}

	if msg.TopicId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrMissingTopic)
	}

	if !IsValidTimestamp(msg.PostedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateBoard validates a Board according to domain rules.
func ValidateBoard(board *Board) error {
	if board == nil {
		return fmt.Errorf("%w: board is nil", ErrInvalidBoard)
	}

	if board.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidBoard, ErrEmptyBoardName)
	}

	return nil
}

// ValidateTopic validates a Topic according to domain rules.
func ValidateTopic(topic *Topic) error {
	if topic == nil {
		return fmt.Errorf("%w: topic is nil", ErrInvalidTopic)
	}

	if topic.BoardId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTopic, ErrMissingBoard)
	}

	if topic.ReplyCount < 0 {
		return fmt.Errorf("%w: reply count %d", ErrInvalidTopic, topic.ReplyCount)
	}

	return nil
}

// ValidateWeights validates a RelevanceWeights configuration.
//
// Validation rules:
//   - No weight may be negative
//   - The weight sum must be positive (a zero-weight configuration
//     cannot rank anything)
func ValidateWeights(w RelevanceWeights) error {
	for _, v := range []int{w.Frequency, w.Age, w.Length, w.Subject, w.FirstMessage, w.Sticky} {
		if v < 0 {
			return fmt.Errorf("%w: value %d", ErrNegativeWeight, v)
		}
	}
	if w.Sum() == 0 {
		return ErrZeroWeightSum
	}
	return nil
}

// ValidatePolicy validates a SearchPolicy configuration.
func ValidatePolicy(p SearchPolicy) error {
	if p.MaxQueryLength < 1 {
		return fmt.Errorf("%w: MaxQueryLength %d", ErrInvalidPolicy, p.MaxQueryLength)
	}
	if p.MinTermLength < 1 {
		return fmt.Errorf("%w: MinTermLength %d", ErrInvalidPolicy, p.MinTermLength)
	}
	if p.MaxTerms < 1 {
		return fmt.Errorf("%w: MaxTerms %d", ErrInvalidPolicy, p.MaxTerms)
	}
	if p.MaxIndexedTerms < 1 {
		return fmt.Errorf("%w: MaxIndexedTerms %d", ErrInvalidPolicy, p.MaxIndexedTerms)
	}
	if p.ResultLimit < 1 {
		return fmt.Errorf("%w: ResultLimit %d", ErrInvalidPolicy, p.ResultLimit)
	}
	if p.RecentWindowDivisor < 1 {
		return fmt.Errorf("%w: RecentWindowDivisor %d", ErrInvalidPolicy, p.RecentWindowDivisor)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
