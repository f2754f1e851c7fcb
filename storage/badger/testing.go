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


package badger

import "github.com/poiesic/boardsearch/storage"

// MemoryRepositories bundles in-memory repositories for testing.
type MemoryRepositories struct {
	Backend  *Backend
	Boards   storage.BoardRepository
	Topics   storage.TopicRepository
	Messages storage.MessageRepository
	Postings storage.PostingsIndex
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the bundle when done.
func NewMemoryRepositories() (*MemoryRepositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	boards, err := NewBoardRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	topics, err := NewTopicRepository(backend)
	if err != nil {
		boards.Close()
		backend.Close()
		return nil, err
	}

	messages, err := NewMessageRepository(backend)
	if err != nil {
		topics.Close()
		boards.Close()
		backend.Close()
		return nil, err
	}

	return &MemoryRepositories{
		Backend:  backend,
		Boards:   boards,
		Topics:   topics,
		Messages: messages,
		Postings: NewPostingsIndex(backend),
	}, nil
}

// Close releases every repository and the backend.
func (m *MemoryRepositories) Close() error {
	m.Messages.Close()
	m.Topics.Close()
	m.Boards.Close()
	return m.Backend.Close()
}
