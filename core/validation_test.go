package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateEvent(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		event   *MemoryEvent
		wantErr error
	}{
		{
			name: "valid event",
			event: &MemoryEvent{
				ConversationId: "conv_abc",
				TurnId:         18,
				Speaker:        SpeakerTypeUser,
				Text:           "我的护照下个月到期",
				Timestamp:      validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid event with participants",
			event: &MemoryEvent{
				EventId:        "evt_001",
				ConversationId: "conv_abc",
				TurnId:         19,
				Speaker:        SpeakerTypeAssistant,
				Text:           "Renewal takes about two weeks",
				Timestamp:      validTime,
				Participants:   []string{"alice", "assistant"},
			},
			wantErr: nil,
		},
		{
			name: "valid event at turn 0",
			event: &MemoryEvent{
				ConversationId: "conv_abc",
				TurnId:         0,
				Speaker:        SpeakerTypeUser,
				Text:           "hello",
				Timestamp:      validTime,
			},
			wantErr: nil,
		},
		{
			name:    "nil event",
			event:   nil,
			wantErr: ErrInvalidInput,
		},
		{
			name: "empty conversation id",
			event: &MemoryEvent{
				TurnId:    1,
				Speaker:   SpeakerTypeUser,
				Text:      "hello",
				Timestamp: validTime,
			},
			wantErr: ErrEmptyConversationId,
		},
		{
			name: "negative turn id",
			event: &MemoryEvent{
				ConversationId: "conv_abc",
				TurnId:         -1,
				Speaker:        SpeakerTypeUser,
				Text:           "hello",
				Timestamp:      validTime,
			},
			wantErr: ErrInvalidTurnRange,
		},
		{
			name: "empty text",
			event: &MemoryEvent{
				ConversationId: "conv_abc",
				TurnId:         1,
				Speaker:        SpeakerTypeUser,
				Text:           "",
				Timestamp:      validTime,
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "whitespace only text",
			event: &MemoryEvent{
				ConversationId: "conv_abc",
				TurnId:         1,
				Speaker:        SpeakerTypeUser,
				Text:           "   \t\n",
				Timestamp:      validTime,
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "invalid speaker type",
			event: &MemoryEvent{
				ConversationId: "conv_abc",
				TurnId:         1,
				Speaker:        SpeakerType(999),
				Text:           "hello",
				Timestamp:      validTime,
			},
			wantErr: ErrInvalidSpeakerType,
		},
		{
			name: "zero timestamp",
			event: &MemoryEvent{
				ConversationId: "conv_abc",
				TurnId:         1,
				Speaker:        SpeakerTypeUser,
				Text:           "hello",
			},
			wantErr: ErrInvalidTimestamp,
		},
		{
			name: "future timestamp",
			event: &MemoryEvent{
				ConversationId: "conv_abc",
				TurnId:         1,
				Speaker:        SpeakerTypeUser,
				Text:           "hello",
				Timestamp:      futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvent(tt.event)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEvent() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateEvent() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEvent() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ValidateEvent() error = %v, want wrapped %v", err, ErrInvalidInput)
			}
		})
	}
}

func TestValidateChunkRecord(t *testing.T) {
	validMeta := ChunkMetadata{
		ConversationId: "conv_abc",
		Turns:          TurnRange{Start: 18, End: 19},
		Speakers:       []SpeakerType{SpeakerTypeUser, SpeakerTypeAssistant},
		Version:        1,
	}

	tests := []struct {
		name    string
		record  *ChunkRecord
		wantErr error
	}{
		{
			name: "valid record",
			record: &ChunkRecord{
				Id:       ChunkIdFor("conv_abc", TurnRange{Start: 18, End: 19}, 1),
				Text:     "user: passport expires next month",
				Metadata: validMeta,
			},
			wantErr: nil,
		},
		{
			name: "valid record without vector",
			record: &ChunkRecord{
				Id:       ChunkIdFor("conv_abc", TurnRange{Start: 18, End: 19}, 1),
				Text:     "user: passport expires next month",
				Vector:   nil,
				Metadata: validMeta,
			},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidInput,
		},
		{
			name: "id without prefix",
			record: &ChunkRecord{
				Id:       "abc123",
				Text:     "some text",
				Metadata: validMeta,
			},
			wantErr: ErrInvalidChunkId,
		},
		{
			name: "empty text",
			record: &ChunkRecord{
				Id:       ChunkIdFor("conv_abc", TurnRange{Start: 18, End: 19}, 1),
				Text:     "",
				Metadata: validMeta,
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "empty conversation id",
			record: &ChunkRecord{
				Id:   ChunkIdFor("conv_abc", TurnRange{Start: 18, End: 19}, 1),
				Text: "some text",
				Metadata: ChunkMetadata{
					Turns:   TurnRange{Start: 18, End: 19},
					Version: 1,
				},
			},
			wantErr: ErrEmptyConversationId,
		},
		{
			name: "inverted turn range",
			record: &ChunkRecord{
				Id:   ChunkIdFor("conv_abc", TurnRange{Start: 19, End: 18}, 1),
				Text: "some text",
				Metadata: ChunkMetadata{
					ConversationId: "conv_abc",
					Turns:          TurnRange{Start: 19, End: 18},
					Version:        1,
				},
			},
			wantErr: ErrInvalidTurnRange,
		},
		{
			name: "zero version",
			record: &ChunkRecord{
				Id:   ChunkIdFor("conv_abc", TurnRange{Start: 18, End: 19}, 0),
				Text: "some text",
				Metadata: ChunkMetadata{
					ConversationId: "conv_abc",
					Turns:          TurnRange{Start: 18, End: 19},
					Version:        0,
				},
			},
			wantErr: ErrInvalidVersion,
		},
		{
			name: "invalid speaker in metadata",
			record: &ChunkRecord{
				Id:   ChunkIdFor("conv_abc", TurnRange{Start: 18, End: 19}, 1),
				Text: "some text",
				Metadata: ChunkMetadata{
					ConversationId: "conv_abc",
					Turns:          TurnRange{Start: 18, End: 19},
					Version:        1,
					Speakers:       []SpeakerType{SpeakerType(0)},
				},
			},
			wantErr: ErrInvalidSpeakerType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunkRecord(tt.record)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunkRecord() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateChunkRecord() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunkRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTurnRange(t *testing.T) {
	tests := []struct {
		name    string
		turns   TurnRange
		wantErr bool
	}{
		{name: "single turn", turns: TurnRange{Start: 0, End: 0}, wantErr: false},
		{name: "ascending range", turns: TurnRange{Start: 3, End: 7}, wantErr: false},
		{name: "negative start", turns: TurnRange{Start: -1, End: 2}, wantErr: true},
		{name: "end before start", turns: TurnRange{Start: 5, End: 4}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTurnRange(tt.turns)

			if tt.wantErr && err == nil {
				t.Error("ValidateTurnRange() error = nil, want error")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("ValidateTurnRange() error = %v, want nil", err)
			}

			if err != nil && !errors.Is(err, ErrInvalidTurnRange) {
				t.Errorf("ValidateTurnRange() error = %v, want %v", err, ErrInvalidTurnRange)
			}
		})
	}
}

func TestValidateSpeakerType(t *testing.T) {
	tests := []struct {
		name    string
		speaker SpeakerType
		wantErr bool
	}{
		{
			name:    "user speaker",
			speaker: SpeakerTypeUser,
			wantErr: false,
		},
		{
			name:    "assistant speaker",
			speaker: SpeakerTypeAssistant,
			wantErr: false,
		},
		{
			name:    "invalid speaker (0)",
			speaker: SpeakerType(0),
			wantErr: true,
		},
		{
			name:    "invalid speaker (999)",
			speaker: SpeakerType(999),
			wantErr: true,
		},
		{
			name:    "invalid speaker (-1)",
			speaker: SpeakerType(-1),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpeakerType(tt.speaker)

			if tt.wantErr && err == nil {
				t.Error("ValidateSpeakerType() error = nil, want error")
			}

			if !tt.wantErr && err != nil {
				t.Errorf("ValidateSpeakerType() error = %v, want nil", err)
			}

			if err != nil && !errors.Is(err, ErrInvalidSpeakerType) {
				t.Errorf("ValidateSpeakerType() error = %v, want %v", err, ErrInvalidSpeakerType)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{
			name: "past timestamp",
			ts:   time.Now().Add(-1 * time.Hour),
			want: true,
		},
		{
			name: "current time (approximately)",
			ts:   time.Now(),
			want: true,
		},
		{
			name: "future timestamp",
			ts:   time.Now().Add(1 * time.Hour),
			want: false,
		},
		{
			name: "zero time",
			ts:   time.Time{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidTimestamp(tt.ts)
			if got != tt.want {
				t.Errorf("IsValidTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}
