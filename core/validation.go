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
	"strings"
	"time"
)

// ValidateEvent validates a MemoryEvent according to domain rules.
//
// Validation rules:
//   - ConversationId must not be empty
//   - TurnId must not be negative
//   - Text must not be empty
//   - Speaker must be valid (user or assistant)
//   - Timestamp must be set and not in the future
//
// NOT validated:
//   - EventId (optional upstream identity)
//   - Participants (may be empty on any given turn)
func ValidateEvent(event *MemoryEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event is nil", ErrInvalidInput)
	}

	if event.ConversationId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyConversationId)
	}

	if event.TurnId < 0 {
		return fmt.Errorf("%w: %w: turn %d", ErrInvalidInput, ErrInvalidTurnRange, event.TurnId)
	}

	if strings.TrimSpace(event.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyText)
	}

	if err := ValidateSpeakerType(event.Speaker); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if event.Timestamp.IsZero() || !IsValidTimestamp(event.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateChunkRecord validates a ChunkRecord according to domain rules.
//
// Validation rules:
//   - Id must carry the chunk id prefix
//   - Text must not be empty
//   - Metadata.ConversationId must not be empty
//   - Metadata.Turns must be a well-formed range
//   - Metadata.Version must be at least 1
//   - Metadata.Speakers values must be valid
//
// NOT validated:
//   - Vector (unset until the embedding stage runs)
//   - InsertedAt/UpdatedAt (maintained by storage)
func ValidateChunkRecord(record *ChunkRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidInput)
	}

	if !strings.HasPrefix(record.Id, ChunkIdPrefix) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidInput, ErrInvalidChunkId, record.Id)
	}

	if record.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyText)
	}

	if record.Metadata.ConversationId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyConversationId)
	}

	if err := ValidateTurnRange(record.Metadata.Turns); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if record.Metadata.Version < 1 {
		return fmt.Errorf("%w: %w: got %d", ErrInvalidInput, ErrInvalidVersion, record.Metadata.Version)
	}

	for _, speaker := range record.Metadata.Speakers {
		if err := ValidateSpeakerType(speaker); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	return nil
}

// ValidateTurnRange validates that a TurnRange is well-formed.
func ValidateTurnRange(turns TurnRange) error {
	if turns.Start < 0 || turns.End < turns.Start {
		return fmt.Errorf("%w: [%d,%d]", ErrInvalidTurnRange, turns.Start, turns.End)
	}
	return nil
}

// ValidateSpeakerType validates that a SpeakerType has a valid value.
func ValidateSpeakerType(speaker SpeakerType) error {
	if speaker != SpeakerTypeUser && speaker != SpeakerTypeAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidSpeakerType, speaker)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
