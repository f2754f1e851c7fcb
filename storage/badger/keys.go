package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/boardsearch/core"
)

// Key prefixes for different data types
const (
	messagePrefix    = "msgrec"
	messageIDSeq     = "msgrecseq"
	boardPrefix      = "brdrec"
	boardIDSeq       = "brdrecseq"
	topicPrefix      = "tpcrec"
	topicIDSeq       = "tpcrecseq"
	topicBoardPrefix = "tpcbrd"
	postingPrefix    = "pstg"
)

// appendBigEndianID appends an 8-byte big-endian ID so lexicographic key
// order matches numeric ID order.
func appendBigEndianID(buf []byte, id core.ID) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return append(buf, b[:]...)
}

// makeMessageKey generates a key for a message by ID.
// Big-endian encoding keeps range scans in ascending ID order.
func makeMessageKey(id core.ID) []byte {
	buf := make([]byte, 0, len(messagePrefix)+1+8)
	buf = append(buf, messagePrefix...)
	buf = append(buf, ':')
	return appendBigEndianID(buf, id)
}

// messageKeyID extracts the ID from a message key.
func messageKeyID(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeBoardKey generates a key for a board by ID.
func makeBoardKey(id core.ID) []byte {
	buf := make([]byte, 0, len(boardPrefix)+1+8)
	buf = append(buf, boardPrefix...)
	buf = append(buf, ':')
	return appendBigEndianID(buf, id)
}

// makeTopicKey generates a key for a topic by ID.
func makeTopicKey(id core.ID) []byte {
	buf := make([]byte, 0, len(topicPrefix)+1+8)
	buf = append(buf, topicPrefix...)
	buf = append(buf, ':')
	return appendBigEndianID(buf, id)
}

// makeTopicBoardKey generates a composite key for the board index.
// Format: prefix:boardID:topicID
func makeTopicBoardKey(boardID, topicID core.ID) []byte {
	buf := make([]byte, 0, len(topicBoardPrefix)+1+16)
	buf = append(buf, topicBoardPrefix...)
	buf = append(buf, ':')
	buf = appendBigEndianID(buf, boardID)
	return appendBigEndianID(buf, topicID)
}

// makePartialTopicBoardKey generates a partial key for board queries.
func makePartialTopicBoardKey(boardID core.ID) []byte {
	buf := make([]byte, 0, len(topicBoardPrefix)+1+8)
	buf = append(buf, topicBoardPrefix...)
	buf = append(buf, ':')
	return appendBigEndianID(buf, boardID)
}

// topicBoardKeyTopicID extracts the topic ID from a board index key.
func topicBoardKeyTopicID(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makePostingKey generates a composite key for a term posting.
// Format: prefix:term:msgID, big-endian so iteration yields ascending IDs.
func makePostingKey(term string, msgID core.ID) []byte {
	buf := make([]byte, 0, len(postingPrefix)+2+len(term)+8)
	buf = append(buf, postingPrefix...)
	buf = append(buf, ':')
	buf = append(buf, term...)
	buf = append(buf, ':')
	return appendBigEndianID(buf, msgID)
}

// makePartialPostingKey generates the prefix covering a term's postings.
func makePartialPostingKey(term string) []byte {
	buf := make([]byte, 0, len(postingPrefix)+2+len(term))
	buf = append(buf, postingPrefix...)
	buf = append(buf, ':')
	buf = append(buf, term...)
	buf = append(buf, ':')
	return buf
}

// postingKeyID extracts the message ID from a posting key.
func postingKeyID(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeCheckpointKey generates a key for indexing checkpoints.
func makeCheckpointKey(kind string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", kind))
}
