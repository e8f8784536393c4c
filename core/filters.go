package core

import "slices"

// QueryFilters restricts retrieval to chunks whose metadata matches every set
// field. The zero value matches all live records: tombstones are excluded
// unless a maintenance caller explicitly sets Deleted to true, in which case
// only tombstones are returned.
type QueryFilters struct {
	ConversationId string          // Exact match
	Participants   []string        // At least one shared identity
	Timestamps     *TimestampRange // Window overlap
	Speakers       []SpeakerType   // Every requested speaker present in the span
	Deleted        bool            // false selects live records, true selects tombstones
}

// Matches evaluates the filter against chunk metadata. All storage backends
// route candidate selection through this predicate, so filter semantics cannot
// drift between implementations.
func (f QueryFilters) Matches(m *ChunkMetadata) bool {
	if m == nil {
		return false
	}

	if m.Deleted != f.Deleted {
		return false
	}

	if f.ConversationId != "" && m.ConversationId != f.ConversationId {
		return false
	}

	if len(f.Participants) > 0 && !intersects(f.Participants, m.Participants) {
		return false
	}

	if f.Timestamps != nil && !f.Timestamps.Overlaps(m.Timestamps) {
		return false
	}

	for _, speaker := range f.Speakers {
		if !m.HasSpeaker(speaker) {
			return false
		}
	}

	return true
}

func intersects(a, b []string) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}

// CompareScored orders scored chunks for ranking: descending score, ties
// broken by later span end, then by chunk id for determinism.
func CompareScored(a, b *ScoredChunk) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	ae, be := a.Record.Metadata.Timestamps.End, b.Record.Metadata.Timestamps.End
	if !ae.Equal(be) {
		if ae.After(be) {
			return -1
		}
		return 1
	}
	if a.Record.Id != b.Record.Id {
		if a.Record.Id < b.Record.Id {
			return -1
		}
		return 1
	}
	return 0
}
