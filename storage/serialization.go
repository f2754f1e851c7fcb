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


package storage

import (
	"github.com/poiesic/boardsearch/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalMessage serializes a Message to bytes.
func MarshalMessage(msg *core.Message) []byte {
	buf := make([]byte, core.MessageMUS.Size(*msg))
	core.MessageMUS.Marshal(*msg, buf)
	return buf
}

// UnmarshalMessage deserializes a Message from bytes.
func UnmarshalMessage(data []byte) (*core.Message, error) {
	msg, _, err := core.MessageMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarshalBoard serializes a Board to bytes.
func MarshalBoard(board *core.Board) []byte {
	buf := make([]byte, core.BoardMUS.Size(*board))
	core.BoardMUS.Marshal(*board, buf)
	return buf
}

// UnmarshalBoard deserializes a Board from bytes.
func UnmarshalBoard(data []byte) (*core.Board, error) {
	board, _, err := core.BoardMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// MarshalTopic serializes a Topic to bytes.
func MarshalTopic(topic *core.Topic) []byte {
	buf := make([]byte, core.TopicMUS.Size(*topic))
	core.TopicMUS.Marshal(*topic, buf)
	return buf
}

// UnmarshalTopic deserializes a Topic from bytes.
func UnmarshalTopic(data []byte) (*core.Topic, error) {
	topic, _, err := core.TopicMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

// MarshalResultSet serializes a ResultSet to bytes.
func MarshalResultSet(set *core.ResultSet) []byte {
	buf := make([]byte, core.ResultSetMUS.Size(*set))
	core.ResultSetMUS.Marshal(*set, buf)
	return buf
}

// UnmarshalResultSet deserializes a ResultSet from bytes.
func UnmarshalResultSet(data []byte) (*core.ResultSet, error) {
	set, _, err := core.ResultSetMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &set, nil
}
