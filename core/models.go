package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// SpeakerType identifies which side of the conversation produced a turn.
type SpeakerType int

const (
	// SpeakerTypeUser represents the human side of the conversation.
	SpeakerTypeUser SpeakerType = iota + 1
	// SpeakerTypeAssistant represents the assistant side of the conversation.
	SpeakerTypeAssistant
)

// String returns the wire name of the speaker type ("user", "assistant").
func (s SpeakerType) String() string {
	switch s {
	case SpeakerTypeUser:
		return "user"
	case SpeakerTypeAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("speaker(%d)", int(s))
	}
}

// ParseSpeakerType converts a wire name back into a SpeakerType.
func ParseSpeakerType(s string) (SpeakerType, error) {
	switch s {
	case "user":
		return SpeakerTypeUser, nil
	case "assistant":
		return SpeakerTypeAssistant, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSpeakerType, s)
	}
}

// MemoryEvent is one conversational turn delivered by the upstream event
// producer. Events for a single conversation arrive in non-decreasing TurnId
// order; no ordering is guaranteed across conversations.
type MemoryEvent struct {
	EventId        string
	ConversationId string
	TurnId         int
	Speaker        SpeakerType
	Text           string
	Timestamp      time.Time
	Participants   []string // Human identities present at this turn
}

// TurnRange is an inclusive range of turn ids within one conversation.
type TurnRange struct {
	Start int
	End   int
}

// Contains reports whether the turn falls inside the range.
func (r TurnRange) Contains(turn int) bool {
	return turn >= r.Start && turn <= r.End
}

// Overlaps reports whether two ranges share at least one turn.
func (r TurnRange) Overlaps(other TurnRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// TimestampRange is the inclusive time window covered by a chunk.
// A zero bound is treated as open on that side.
type TimestampRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two windows intersect.
func (r TimestampRange) Overlaps(other TimestampRange) bool {
	if !r.Start.IsZero() && !other.End.IsZero() && r.Start.After(other.End) {
		return false
	}
	if !r.End.IsZero() && !other.Start.IsZero() && other.Start.After(r.End) {
		return false
	}
	return true
}

// ChunkMetadata carries a chunk's provenance and every field retrieval
// filters evaluate against. It is returned to callers verbatim; upper layers
// may use it for their own enforcement decisions.
type ChunkMetadata struct {
	ConversationId string
	Turns          TurnRange
	Timestamps     TimestampRange
	Participants   []string      // Union of event participants over the span, sorted
	Speakers       []SpeakerType // Speakers present in the span, sorted
	IntentTag      string
	Version        int    // Chunking strategy version, starts at 1
	Source         string // Origin of the span text, e.g. "dialogue" or "summary"
	Deleted        bool   // Tombstone flag; excluded from reads by default
	Extra          map[string]string
}

// HasSpeaker reports whether the span contains a turn by the given speaker.
func (m *ChunkMetadata) HasSpeaker(speaker SpeakerType) bool {
	for _, s := range m.Speakers {
		if s == speaker {
			return true
		}
	}
	return false
}

// ChunkRecord is the unit of storage and retrieval: a bounded span of
// conversation text with provenance metadata and an embedding vector.
type ChunkRecord struct {
	Id         string
	Text       string
	Vector     []float32 // L2-normalized embedding; unset until embedded
	Metadata   ChunkMetadata
	InsertedAt time.Time // When the record was first written to the index
	UpdatedAt  time.Time // When the record was last overwritten
}

// ChunkIdPrefix starts every identifier produced by ChunkIdFor.
const ChunkIdPrefix = "chk_"

// ChunkIdFor derives the stable chunk identifier from its source coordinates
// using BLAKE2b hashing. Identical coordinates always produce the same id,
// which makes re-chunking an unchanged range an idempotent upsert; bumping the
// version yields an id disjoint from every earlier version.
func ChunkIdFor(conversationId string, turns TurnRange, version int) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	fmt.Fprintf(h, "%s|%d|%d|v%d", conversationId, turns.Start, turns.End, version)
	return ChunkIdPrefix + hex.EncodeToString(h.Sum(nil))
}

// Cursor tracks one conversation's indexing progress: the highest turn whose
// chunks have been committed and every chunk version written so far.
type Cursor struct {
	ConversationId string
	CommittedTurn  int
	Versions       []int // Ascending; the last entry is the current version
	UpdatedAt      time.Time
}

// CurrentVersion returns the version new chunks are written with.
func (c *Cursor) CurrentVersion() int {
	if len(c.Versions) == 0 {
		return 1
	}
	return c.Versions[len(c.Versions)-1]
}

// ObserveVersion records a version in the history, keeping it sorted and
// deduplicated.
func (c *Cursor) ObserveVersion(version int) {
	for i, v := range c.Versions {
		if v == version {
			return
		}
		if v > version {
			c.Versions = append(c.Versions[:i], append([]int{version}, c.Versions[i:]...)...)
			return
		}
	}
	c.Versions = append(c.Versions, version)
}

// ScoredChunk pairs a full record with its similarity score. It stays inside
// the storage and retrieval layers; callers receive SearchHit views.
type ScoredChunk struct {
	Record *ChunkRecord
	Score  float32
}

// SearchHit is the caller-facing view of one ranked match. The stored vector
// is deliberately absent.
type SearchHit struct {
	ChunkId  string
	Score    float32
	Text     string
	Metadata ChunkMetadata
}

// RecordError attributes a failure to a single chunk within a batch.
type RecordError struct {
	ChunkId string
	Err     error
}

func (e RecordError) Error() string {
	return e.ChunkId + ": " + e.Err.Error()
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// WriteResult reports the outcome of a best-effort batch upsert. Upserted
// counts newly inserted ids and Updated counts overwrites; the split is
// informational. Errors carries per-record failures; unaffected records in
// the same batch still commit.
type WriteResult struct {
	Upserted int
	Updated  int
	Errors   []RecordError
}

// DeleteResult reports the outcome of a logical delete. Deleted counts records
// that actually transitioned to the tombstoned state; already-deleted and
// unknown ids count zero.
type DeleteResult struct {
	Deleted int
	Errors  []RecordError
}
