package badger

import (
	"encoding/binary"

	"github.com/poiesic/recall/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix = "chunk|"
	convIndexPrefix   = "convix|"
	eventLogPrefix    = "evlog|"
	cursorPrefix      = "cursor|"
	eventLogSeq       = "evlogseq"
)

// makeChunkKey generates a key for a chunk record by id.
func makeChunkKey(id string) []byte {
	return []byte(chunkRecordPrefix + id)
}

// makeConvIndexPrefix generates the scan prefix for one conversation's index
// entries. The NUL terminator keeps conversations whose ids share a prefix
// out of each other's scans.
func makeConvIndexPrefix(conversationId string) []byte {
	buf := make([]byte, 0, len(convIndexPrefix)+len(conversationId)+1)
	buf = append(buf, convIndexPrefix...)
	buf = append(buf, conversationId...)
	buf = append(buf, 0)
	return buf
}

// makeConvIndexKey generates a composite key for the conversation index.
// Format: convix|conv\x00(start)(end)(version)
func makeConvIndexKey(conversationId string, turns core.TurnRange, version int) []byte {
	prefix := makeConvIndexPrefix(conversationId)
	totalSize := len(prefix) + 24 // 8 bytes each for start, end, and version
	buf := make([]byte, totalSize)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(turns.Start))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(turns.End))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(version))
	return buf
}

// parseConvIndexKey recovers the turn range from a conversation index key.
// prefix must be the value the key was built with.
func parseConvIndexKey(key, prefix []byte) (core.TurnRange, bool) {
	if len(key) != len(prefix)+24 {
		return core.TurnRange{}, false
	}
	suffix := key[len(prefix):]
	return core.TurnRange{
		Start: int(binary.BigEndian.Uint64(suffix[0:8])),
		End:   int(binary.BigEndian.Uint64(suffix[8:16])),
	}, true
}

// makeEventLogPrefix generates the scan prefix for one conversation's journal.
func makeEventLogPrefix(conversationId string) []byte {
	buf := make([]byte, 0, len(eventLogPrefix)+len(conversationId)+1)
	buf = append(buf, eventLogPrefix...)
	buf = append(buf, conversationId...)
	buf = append(buf, 0)
	return buf
}

// makeEventLogKey generates a composite key for a journaled event.
// Format: evlog|conv\x00(turn)(seq)
func makeEventLogKey(conversationId string, turnId int, seq uint64) []byte {
	prefix := makeEventLogPrefix(conversationId)
	totalSize := len(prefix) + 16 // 8 bytes for turn + 8 bytes for sequence
	buf := make([]byte, totalSize)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(turnId))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeCursorKey generates a key for a conversation's cursor.
func makeCursorKey(conversationId string) []byte {
	return []byte(cursorPrefix + conversationId)
}
