package chunk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recall/core"
)

// testCursor implements Cursor for testing
type testCursor struct {
	committed map[string]int
}

func (c *testCursor) CommittedTurn(conversationId string) (int, bool) {
	turn, ok := c.committed[conversationId]
	return turn, ok
}

// testLabeler implements Labeler for testing
type testLabeler struct {
	label string
	err   error
	calls int
}

func (l *testLabeler) LabelTopic(ctx context.Context, text string) (string, error) {
	l.calls++
	if l.err != nil {
		return "", l.err
	}
	return l.label, nil
}

func testBase() time.Time {
	return time.Now().Add(-3 * time.Hour).Truncate(time.Second)
}

// userEvents builds single-speaker events at turns 0..n-1, one minute apart.
func userEvents(conversationId string, base time.Time, texts ...string) []core.MemoryEvent {
	events := make([]core.MemoryEvent, len(texts))
	for i, text := range texts {
		events[i] = core.MemoryEvent{
			ConversationId: conversationId,
			TurnId:         i,
			Speaker:        core.SpeakerTypeUser,
			Text:           text,
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
			Participants:   []string{"alice"},
		}
	}
	return events
}

func TestBuilder_SingleSpan(t *testing.T) {
	base := testBase()
	events := []core.MemoryEvent{
		{
			ConversationId: "conv_travel_2026",
			TurnId:         18,
			Speaker:        core.SpeakerTypeUser,
			Text:           "我的护照明年3月到期，需要提前多久续签？",
			Timestamp:      base,
			Participants:   []string{"李明"},
		},
		{
			ConversationId: "conv_travel_2026",
			TurnId:         19,
			Speaker:        core.SpeakerTypeAssistant,
			Text:           "一般建议提前三个月办理护照续签，避免影响签证申请。",
			Timestamp:      base.Add(time.Minute),
			Participants:   []string{"李明"},
		},
	}

	builder, err := NewBuilder(DefaultOptions())
	require.NoError(t, err)

	chunks, err := builder.Build(context.Background(), "conv_travel_2026", events)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	chunk := chunks[0]
	assert.Equal(t, core.ChunkIdFor("conv_travel_2026", core.TurnRange{Start: 18, End: 19}, 1), chunk.Id)
	assert.Equal(t, core.TurnRange{Start: 18, End: 19}, chunk.Metadata.Turns)
	assert.Equal(t, IntentDocumentCheck, chunk.Metadata.IntentTag)
	assert.Equal(t, []string{"李明"}, chunk.Metadata.Participants)
	assert.ElementsMatch(t, []core.SpeakerType{core.SpeakerTypeUser, core.SpeakerTypeAssistant}, chunk.Metadata.Speakers)
	assert.Equal(t, 1, chunk.Metadata.Version)
	assert.Equal(t, "dialogue", chunk.Metadata.Source)
	assert.True(t, chunk.Metadata.Timestamps.Start.Equal(base))
	assert.True(t, chunk.Metadata.Timestamps.End.Equal(base.Add(time.Minute)))
	assert.Nil(t, chunk.Vector)

	wantPrefix := "[context: " + base.Format(time.DateOnly) + " 李明 topic:document_check] "
	assert.True(t, strings.HasPrefix(chunk.Text, wantPrefix), "text %q missing prefix %q", chunk.Text, wantPrefix)
	assert.Contains(t, chunk.Text, "user: 我的护照")
	assert.Contains(t, chunk.Text, "assistant: 一般建议")
}

func TestBuilder_Deterministic(t *testing.T) {
	events := userEvents("conv_abc", testBase(), "护照快过期了", "建议尽快续签")

	builder, err := NewBuilder(DefaultOptions())
	require.NoError(t, err)

	first, err := builder.Build(context.Background(), "conv_abc", events)
	require.NoError(t, err)
	second, err := builder.Build(context.Background(), "conv_abc", events)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Id, second[i].Id)
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Metadata, second[i].Metadata)
	}
}

func TestBuilder_OverlappingSpans(t *testing.T) {
	opts := Options{MaxChars: 40, OverlapChars: 20, Version: 1, Source: "dialogue"}
	builder, err := NewBuilder(opts)
	require.NoError(t, err)

	// Each line renders to exactly 18 runes ("user: turn 00 line").
	texts := make([]string, 6)
	for i := range texts {
		texts[i] = fmt.Sprintf("turn %02d line", i)
	}
	events := userEvents("conv_abc", testBase(), texts...)

	chunks, err := builder.Build(context.Background(), "conv_abc", events)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, core.TurnRange{Start: 0, End: 2}, chunks[0].Metadata.Turns)
	assert.Equal(t, core.TurnRange{Start: 2, End: 4}, chunks[1].Metadata.Turns)
	assert.Equal(t, core.TurnRange{Start: 4, End: 5}, chunks[2].Metadata.Turns)

	// The carried tail is shared verbatim between adjacent spans.
	assert.True(t, strings.HasSuffix(chunks[0].Text, "user: turn 02 line"))
	assert.True(t, strings.HasPrefix(chunks[1].Text, "user: turn 02 line"))

	seen := make(map[string]bool)
	for _, chunk := range chunks {
		assert.False(t, seen[chunk.Id], "duplicate id %s", chunk.Id)
		seen[chunk.Id] = true
	}
}

func TestBuilder_NoTrailingOverlapOnlySpan(t *testing.T) {
	opts := Options{MaxChars: 40, OverlapChars: 20, Version: 1, Source: "dialogue"}
	builder, err := NewBuilder(opts)
	require.NoError(t, err)

	// The third line triggers a flush; the carried tail alone must not
	// produce a second span.
	events := userEvents("conv_abc", testBase(), "turn 00 line", "turn 01 line", "turn 02 line")

	chunks, err := builder.Build(context.Background(), "conv_abc", events)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, core.TurnRange{Start: 0, End: 2}, chunks[0].Metadata.Turns)
}

func TestBuilder_EmptyEvents(t *testing.T) {
	builder, err := NewBuilder(DefaultOptions())
	require.NoError(t, err)

	chunks, err := builder.Build(context.Background(), "conv_abc", nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestBuilder_InputValidation(t *testing.T) {
	base := testBase()

	tests := []struct {
		name    string
		events  []core.MemoryEvent
		wantErr error
	}{
		{
			name: "conversation mismatch",
			events: []core.MemoryEvent{
				{ConversationId: "conv_other", TurnId: 0, Speaker: core.SpeakerTypeUser, Text: "hi", Timestamp: base},
			},
			wantErr: ErrConversationMismatch,
		},
		{
			name: "decreasing turns",
			events: []core.MemoryEvent{
				{ConversationId: "conv_abc", TurnId: 2, Speaker: core.SpeakerTypeUser, Text: "hi", Timestamp: base},
				{ConversationId: "conv_abc", TurnId: 1, Speaker: core.SpeakerTypeUser, Text: "again", Timestamp: base},
			},
			wantErr: ErrTurnOrder,
		},
		{
			name: "malformed event",
			events: []core.MemoryEvent{
				{ConversationId: "conv_abc", TurnId: 0, Speaker: core.SpeakerTypeUser, Text: "   ", Timestamp: base},
			},
			wantErr: core.ErrEmptyText,
		},
	}

	builder, err := NewBuilder(DefaultOptions())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := builder.Build(context.Background(), "conv_abc", tt.events)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestBuilder_GapDetection(t *testing.T) {
	cursor := &testCursor{committed: map[string]int{"conv_abc": 5}}
	builder, err := NewBuilder(DefaultOptions(), WithCursor(cursor))
	require.NoError(t, err)

	event := func(turn int) []core.MemoryEvent {
		return []core.MemoryEvent{{
			ConversationId: "conv_abc",
			TurnId:         turn,
			Speaker:        core.SpeakerTypeUser,
			Text:           "hello",
			Timestamp:      testBase(),
		}}
	}

	t.Run("gap above committed turn", func(t *testing.T) {
		_, err := builder.Build(context.Background(), "conv_abc", event(7))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTurnGap)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("contiguous turn accepted", func(t *testing.T) {
		_, err := builder.Build(context.Background(), "conv_abc", event(6))
		assert.NoError(t, err)
	})

	t.Run("replay below committed turn accepted", func(t *testing.T) {
		_, err := builder.Build(context.Background(), "conv_abc", event(3))
		assert.NoError(t, err)
	})

	t.Run("unknown conversation accepted", func(t *testing.T) {
		events := []core.MemoryEvent{{
			ConversationId: "conv_new",
			TurnId:         9,
			Speaker:        core.SpeakerTypeUser,
			Text:           "hello",
			Timestamp:      testBase(),
		}}
		_, err := builder.Build(context.Background(), "conv_new", events)
		assert.NoError(t, err)
	})
}

func TestBuilder_OversizedTurn(t *testing.T) {
	opts := Options{MaxChars: 30, OverlapChars: 0, Version: 1, Source: "dialogue"}
	builder, err := NewBuilder(opts)
	require.NoError(t, err)

	text := strings.Repeat("这一句话有点长。", 6)
	events := userEvents("conv_abc", testBase(), text)

	chunks, err := builder.Build(context.Background(), "conv_abc", events)
	require.NoError(t, err)

	// A single turn never splits across spans, so its id stays unique.
	require.Len(t, chunks, 1)
	assert.Equal(t, core.TurnRange{Start: 0, End: 0}, chunks[0].Metadata.Turns)

	// The oversized utterance is cut at sentence boundaries, each piece
	// keeping its speaker label.
	assert.GreaterOrEqual(t, strings.Count(chunks[0].Text, "user: "), 2)
}

func TestBuilder_VersionStamp(t *testing.T) {
	events := userEvents("conv_abc", testBase(), "护照快过期了")

	builder, err := NewBuilder(DefaultOptions())
	require.NoError(t, err)

	v1, err := builder.Build(context.Background(), "conv_abc", events)
	require.NoError(t, err)
	v2, err := builder.BuildVersion(context.Background(), "conv_abc", events, 2)
	require.NoError(t, err)

	require.Len(t, v1, 1)
	require.Len(t, v2, 1)
	assert.Equal(t, 1, v1[0].Metadata.Version)
	assert.Equal(t, 2, v2[0].Metadata.Version)
	assert.NotEqual(t, v1[0].Id, v2[0].Id)

	_, err = builder.BuildVersion(context.Background(), "conv_abc", events, 0)
	assert.ErrorIs(t, err, core.ErrInvalidVersion)
}

func TestBuilder_LabelerOverride(t *testing.T) {
	events := userEvents("conv_abc", testBase(), "护照快过期了")

	t.Run("label replaces keyword tag", func(t *testing.T) {
		labeler := &testLabeler{label: "passport_renewal"}
		builder, err := NewBuilder(DefaultOptions(), WithLabeler(labeler))
		require.NoError(t, err)

		chunks, err := builder.Build(context.Background(), "conv_abc", events)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "passport_renewal", chunks[0].Metadata.IntentTag)
		assert.Contains(t, chunks[0].Text, "topic:passport_renewal]")
		assert.Equal(t, 1, labeler.calls)
	})

	t.Run("keyword rules on labeler failure", func(t *testing.T) {
		labeler := &testLabeler{err: errors.New("model offline")}
		builder, err := NewBuilder(DefaultOptions(), WithLabeler(labeler))
		require.NoError(t, err)

		chunks, err := builder.Build(context.Background(), "conv_abc", events)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, IntentDocumentCheck, chunks[0].Metadata.IntentTag)
	})
}

func TestBuilder_PrefixDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.PrefixEnabled = false
	builder, err := NewBuilder(opts)
	require.NoError(t, err)

	chunks, err := builder.Build(context.Background(), "conv_abc", userEvents("conv_abc", testBase(), "hello there"))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "user: hello there", chunks[0].Text)
}

func TestBuilder_ParticipantsUnion(t *testing.T) {
	base := testBase()
	events := []core.MemoryEvent{
		{
			ConversationId: "conv_abc",
			TurnId:         0,
			Speaker:        core.SpeakerTypeUser,
			Text:           "first",
			Timestamp:      base,
			Participants:   []string{"alice", "bob"},
		},
		{
			ConversationId: "conv_abc",
			TurnId:         1,
			Speaker:        core.SpeakerTypeAssistant,
			Text:           "second",
			Timestamp:      base.Add(time.Minute),
			Participants:   []string{"bob", "carol", "dave"},
		},
	}

	builder, err := NewBuilder(DefaultOptions())
	require.NoError(t, err)

	chunks, err := builder.Build(context.Background(), "conv_abc", events)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, chunks[0].Metadata.Participants)
	// The prefix names at most three participants.
	assert.Contains(t, chunks[0].Text, " alice,bob,carol topic:")
}

func TestNewBuilder_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "zero max chars", opts: Options{MaxChars: 0, OverlapChars: 0, Version: 1}},
		{name: "overlap at budget", opts: Options{MaxChars: 100, OverlapChars: 100, Version: 1}},
		{name: "negative overlap", opts: Options{MaxChars: 100, OverlapChars: -1, Version: 1}},
		{name: "zero version", opts: Options{MaxChars: 100, OverlapChars: 10, Version: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}
