package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/recall/core"
)

func testEvent(conversationId string, turn int, text string) core.MemoryEvent {
	return core.MemoryEvent{
		EventId:        fmt.Sprintf("evt_%s_%d", conversationId, turn),
		ConversationId: conversationId,
		TurnId:         turn,
		Speaker:        core.SpeakerTypeUser,
		Text:           text,
		Timestamp:      testBase.Add(time.Duration(turn) * time.Minute),
		Participants:   []string{"李明"},
	}
}

func TestEventJournalAppendAndGet(t *testing.T) {
	chunkRepo, journal, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		journal.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	events := []core.MemoryEvent{
		testEvent("conv_a", 0, "我想三月去东京"),
		testEvent("conv_a", 1, "好的，我帮你查一下航班"),
		testEvent("conv_a", 2, "顺便看看酒店"),
	}
	if err := journal.AppendEvents(ctx, events...); err != nil {
		t.Fatalf("Failed to append events: %v", err)
	}

	journaled, err := journal.GetConversationEvents(ctx, "conv_a")
	if err != nil {
		t.Fatalf("Failed to get events: %v", err)
	}
	if len(journaled) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(journaled))
	}
	for i, event := range journaled {
		if event.TurnId != i {
			t.Fatalf("Expected turn %d at position %d, got %d", i, i, event.TurnId)
		}
		if event.Text != events[i].Text {
			t.Fatalf("Expected %q, got %q", events[i].Text, event.Text)
		}
		if !event.Timestamp.Equal(events[i].Timestamp) {
			t.Fatalf("Timestamp mismatch at turn %d", i)
		}
	}
}

func TestEventJournal_ConversationIsolation(t *testing.T) {
	chunkRepo, journal, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		journal.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// Interleave appends across two conversations
	if err := journal.AppendEvents(ctx, testEvent("conv_a", 0, "first a")); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := journal.AppendEvents(ctx, testEvent("conv_b", 0, "first b")); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := journal.AppendEvents(ctx, testEvent("conv_a", 1, "second a")); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	journaled, err := journal.GetConversationEvents(ctx, "conv_a")
	if err != nil {
		t.Fatalf("Failed to get events: %v", err)
	}
	if len(journaled) != 2 {
		t.Fatalf("Expected 2 events for conv_a, got %d", len(journaled))
	}
	for _, event := range journaled {
		if event.ConversationId != "conv_a" {
			t.Fatalf("Leaked event from %s", event.ConversationId)
		}
	}
}

func TestEventJournal_ReplaysKeepArrivalOrder(t *testing.T) {
	chunkRepo, journal, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		journal.Close()
		chunkRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	original := testEvent("conv_a", 1, "original delivery")
	replay := testEvent("conv_a", 1, "replayed delivery")
	replay.EventId = "evt_conv_a_1_replay"

	if err := journal.AppendEvents(ctx, testEvent("conv_a", 0, "turn zero"), original); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := journal.AppendEvents(ctx, replay); err != nil {
		t.Fatalf("Failed to append replay: %v", err)
	}

	journaled, err := journal.GetConversationEvents(ctx, "conv_a")
	if err != nil {
		t.Fatalf("Failed to get events: %v", err)
	}
	if len(journaled) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(journaled))
	}

	// Both turn-1 deliveries are kept, original before replay
	if journaled[1].EventId != original.EventId {
		t.Fatalf("Expected the original delivery second, got %s", journaled[1].EventId)
	}
	if journaled[2].EventId != replay.EventId {
		t.Fatalf("Expected the replay last, got %s", journaled[2].EventId)
	}
}
