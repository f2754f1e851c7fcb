package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted domain types. Timestamps are
// stored as Unix microseconds, floats as their IEEE-754 bit pattern.

// IDMUS serializes an ID.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func marshalTime(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

// MessageMUS serializes a Message.
var MessageMUS = messageMUS{}

type messageMUS struct{}

func (messageMUS) Marshal(m Message, bs []byte) (n int) {
	n = IDMUS.Marshal(m.Id, bs)
	n += IDMUS.Marshal(m.TopicId, bs[n:])
	n += IDMUS.Marshal(m.BoardId, bs[n:])
	n += IDMUS.Marshal(m.AuthorId, bs[n:])
	n += ord.String.Marshal(m.AuthorName, bs[n:])
	n += ord.String.Marshal(m.Subject, bs[n:])
	n += ord.String.Marshal(m.Body, bs[n:])
	n += marshalTime(m.PostedAt, bs[n:])
	n += marshalTime(m.InsertedAt, bs[n:])
	n += marshalTime(m.UpdatedAt, bs[n:])
	return n
}

func (messageMUS) Unmarshal(bs []byte) (m Message, n int, err error) {
	var n1 int
	if m.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if m.TopicId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.BoardId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.AuthorId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.AuthorName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Subject, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Body, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.PostedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	return m, n, nil
}

func (messageMUS) Size(m Message) (size int) {
	size = IDMUS.Size(m.Id)
	size += IDMUS.Size(m.TopicId)
	size += IDMUS.Size(m.BoardId)
	size += IDMUS.Size(m.AuthorId)
	size += ord.String.Size(m.AuthorName)
	size += ord.String.Size(m.Subject)
	size += ord.String.Size(m.Body)
	size += sizeTime(m.PostedAt)
	size += sizeTime(m.InsertedAt)
	size += sizeTime(m.UpdatedAt)
	return size
}

// BoardMUS serializes a Board.
var BoardMUS = boardMUS{}

type boardMUS struct{}

func (boardMUS) Marshal(b Board, bs []byte) (n int) {
	n = IDMUS.Marshal(b.Id, bs)
	n += ord.String.Marshal(b.Name, bs[n:])
	n += ord.Bool.Marshal(b.RecycleBin, bs[n:])
	n += marshalTime(b.InsertedAt, bs[n:])
	n += marshalTime(b.UpdatedAt, bs[n:])
	return n
}

func (boardMUS) Unmarshal(bs []byte) (b Board, n int, err error) {
	var n1 int
	if b.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if b.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.RecycleBin, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	if b.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return b, n + n1, err
	}
	n += n1
	return b, n, nil
}

func (boardMUS) Size(b Board) (size int) {
	size = IDMUS.Size(b.Id)
	size += ord.String.Size(b.Name)
	size += ord.Bool.Size(b.RecycleBin)
	size += sizeTime(b.InsertedAt)
	size += sizeTime(b.UpdatedAt)
	return size
}

// TopicMUS serializes a Topic.
var TopicMUS = topicMUS{}

type topicMUS struct{}

func (topicMUS) Marshal(t Topic, bs []byte) (n int) {
	n = IDMUS.Marshal(t.Id, bs)
	n += IDMUS.Marshal(t.BoardId, bs[n:])
	n += IDMUS.Marshal(t.FirstMsgId, bs[n:])
	n += IDMUS.Marshal(t.LastMsgId, bs[n:])
	n += varint.Int.Marshal(t.ReplyCount, bs[n:])
	n += ord.Bool.Marshal(t.Sticky, bs[n:])
	n += marshalTime(t.InsertedAt, bs[n:])
	n += marshalTime(t.UpdatedAt, bs[n:])
	return n
}

func (topicMUS) Unmarshal(bs []byte) (t Topic, n int, err error) {
	var n1 int
	if t.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if t.BoardId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.FirstMsgId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.LastMsgId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.ReplyCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.Sticky, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	return t, n, nil
}

func (topicMUS) Size(t Topic) (size int) {
	size = IDMUS.Size(t.Id)
	size += IDMUS.Size(t.BoardId)
	size += IDMUS.Size(t.FirstMsgId)
	size += IDMUS.Size(t.LastMsgId)
	size += varint.Int.Size(t.ReplyCount)
	size += ord.Bool.Size(t.Sticky)
	size += sizeTime(t.InsertedAt)
	size += sizeTime(t.UpdatedAt)
	return size
}

// CheckpointMUS serializes a Checkpoint.
var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (checkpointMUS) Marshal(c Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(c.Kind, bs)
	n += IDMUS.Marshal(c.LastMsgId, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return n
}

func (checkpointMUS) Unmarshal(bs []byte) (c Checkpoint, n int, err error) {
	var n1 int
	if c.Kind, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if c.LastMsgId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (checkpointMUS) Size(c Checkpoint) (size int) {
	size = ord.String.Size(c.Kind)
	size += IDMUS.Size(c.LastMsgId)
	size += sizeTime(c.UpdatedAt)
	return size
}

// ResultEntryMUS serializes a ResultEntry.
var ResultEntryMUS = resultEntryMUS{}

type resultEntryMUS struct{}

func (resultEntryMUS) Marshal(e ResultEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(e.BoardId, bs)
	n += IDMUS.Marshal(e.TopicId, bs[n:])
	n += IDMUS.Marshal(e.MsgId, bs[n:])
	n += varint.Uint64.Marshal(math.Float64bits(e.Relevance), bs[n:])
	n += varint.Int.Marshal(e.MatchCount, bs[n:])
	return n
}

func (resultEntryMUS) Unmarshal(bs []byte) (e ResultEntry, n int, err error) {
	var n1 int
	if e.BoardId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if e.TopicId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.MsgId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	var bits uint64
	if bits, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	e.Relevance = math.Float64frombits(bits)
	if e.MatchCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	return e, n, nil
}

func (resultEntryMUS) Size(e ResultEntry) (size int) {
	size = IDMUS.Size(e.BoardId)
	size += IDMUS.Size(e.TopicId)
	size += IDMUS.Size(e.MsgId)
	size += varint.Uint64.Size(math.Float64bits(e.Relevance))
	size += varint.Int.Size(e.MatchCount)
	return size
}

// ResultSetMUS serializes a ResultSet, entries length-prefixed.
var ResultSetMUS = resultSetMUS{}

type resultSetMUS struct{}

func (resultSetMUS) Marshal(rs ResultSet, bs []byte) (n int) {
	n = ord.String.Marshal(rs.Fingerprint, bs)
	n += varint.Int.Marshal(len(rs.Entries), bs[n:])
	for _, e := range rs.Entries {
		n += ResultEntryMUS.Marshal(e, bs[n:])
	}
	n += marshalTime(rs.CreatedAt, bs[n:])
	n += varint.Int.Marshal(rs.TotalCount, bs[n:])
	return n
}

func (resultSetMUS) Unmarshal(bs []byte) (rs ResultSet, n int, err error) {
	var n1 int
	if rs.Fingerprint, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	var count int
	if count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return rs, n + n1, err
	}
	n += n1
	if count < 0 {
		return rs, n, ErrInvalidEncoding
	}
	rs.Entries = make([]ResultEntry, 0, count)
	for i := 0; i < count; i++ {
		var e ResultEntry
		if e, n1, err = ResultEntryMUS.Unmarshal(bs[n:]); err != nil {
			return rs, n + n1, err
		}
		n += n1
		rs.Entries = append(rs.Entries, e)
	}
	if rs.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return rs, n + n1, err
	}
	n += n1
	if rs.TotalCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return rs, n + n1, err
	}
	n += n1
	return rs, n, nil
}

func (resultSetMUS) Size(rs ResultSet) (size int) {
	size = ord.String.Size(rs.Fingerprint)
	size += varint.Int.Size(len(rs.Entries))
	for _, e := range rs.Entries {
		size += ResultEntryMUS.Size(e)
	}
	size += sizeTime(rs.CreatedAt)
	size += varint.Int.Size(rs.TotalCount)
	return size
}
