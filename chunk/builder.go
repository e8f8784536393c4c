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


package chunk

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/poiesic/recall/core"
)

// Options control span construction.
type Options struct {
	// MaxChars is the span budget. Measured in characters unless
	// TokenEncoding is set.
	MaxChars int

	// OverlapChars caps the tail of lines carried into the next span.
	// Must be smaller than MaxChars.
	OverlapChars int

	// Version stamped on spans produced by Build. BuildVersion overrides it
	// per call.
	Version int

	// Source recorded in span metadata.
	Source string

	// PrefixEnabled prepends the synthesized context prefix to span text.
	PrefixEnabled bool

	// TokenEncoding switches the budget from characters to tiktoken tokens
	// when set, e.g. "cl100k_base".
	TokenEncoding string
}

// DefaultOptions returns the production chunking configuration.
func DefaultOptions() Options {
	return Options{
		MaxChars:      600,
		OverlapChars:  80,
		Version:       1,
		Source:        "dialogue",
		PrefixEnabled: true,
	}
}

// Cursor reports the highest committed turn for a conversation. A builder
// uses it to reject event batches that leave a hole above the committed
// turn. Replays at or below the committed turn are allowed.
type Cursor interface {
	CommittedTurn(conversationId string) (int, bool)
}

// Labeler assigns a topic label to span text.
type Labeler interface {
	LabelTopic(ctx context.Context, text string) (string, error)
}

// Builder slices ordered conversation events into overlapping spans.
type Builder struct {
	opts    Options
	cursor  Cursor
	labeler Labeler
	logger  *slog.Logger
	measure func(string) int
}

// Option configures a Builder.
type Option func(*Builder) error

// WithCursor wires committed-turn lookups for gap detection.
func WithCursor(cursor Cursor) Option {
	return func(b *Builder) error {
		b.cursor = cursor
		return nil
	}
}

// WithLabeler wires a topic labeler. Its label replaces the keyword-rule
// intent tag; the rules remain the fallback when labeling fails.
func WithLabeler(labeler Labeler) Option {
	return func(b *Builder) error {
		b.labeler = labeler
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a builder for the given options.
func NewBuilder(opts Options, options ...Option) (*Builder, error) {
	if opts.MaxChars <= 0 {
		return nil, fmt.Errorf("%w: max chars must be positive, got %d", core.ErrInvalidInput, opts.MaxChars)
	}
	if opts.OverlapChars < 0 || opts.OverlapChars >= opts.MaxChars {
		return nil, fmt.Errorf("%w: overlap %d must be in [0,%d)", core.ErrInvalidInput, opts.OverlapChars, opts.MaxChars)
	}
	if opts.Version < 1 {
		return nil, fmt.Errorf("%w: %w: got %d", core.ErrInvalidInput, core.ErrInvalidVersion, opts.Version)
	}

	b := &Builder{
		opts:    opts,
		logger:  slog.Default(),
		measure: runeCount,
	}

	if opts.TokenEncoding != "" {
		encoding, err := tiktoken.GetEncoding(opts.TokenEncoding)
		if err != nil {
			return nil, fmt.Errorf("%w: token encoding %q: %w", core.ErrInvalidInput, opts.TokenEncoding, err)
		}
		b.measure = func(s string) int {
			return len(encoding.Encode(s, nil, nil))
		}
	}

	// Apply options
	for _, opt := range options {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}

// line is a rendered dialogue line pinned to its source event.
type line struct {
	text  string
	cost  int
	event *core.MemoryEvent
}

// Build slices events into spans stamped with the configured version.
func (b *Builder) Build(ctx context.Context, conversationId string, events []core.MemoryEvent) ([]*core.ChunkRecord, error) {
	return b.BuildVersion(ctx, conversationId, events, b.opts.Version)
}

// BuildVersion slices events into spans stamped with an explicit version.
// Events must all belong to conversationId and be ordered by non-decreasing
// turn id; violations fail with core.ErrInvalidInput.
func (b *Builder) BuildVersion(ctx context.Context, conversationId string, events []core.MemoryEvent, version int) ([]*core.ChunkRecord, error) {
	if conversationId == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidInput, core.ErrEmptyConversationId)
	}
	if version < 1 {
		return nil, fmt.Errorf("%w: %w: got %d", core.ErrInvalidInput, core.ErrInvalidVersion, version)
	}
	if len(events) == 0 {
		return nil, nil
	}

	for i := range events {
		event := &events[i]
		if err := core.ValidateEvent(event); err != nil {
			return nil, err
		}
		if event.ConversationId != conversationId {
			return nil, fmt.Errorf("%w: %w: %q at turn %d",
				core.ErrInvalidInput, ErrConversationMismatch, event.ConversationId, event.TurnId)
		}
		if i > 0 && event.TurnId < events[i-1].TurnId {
			return nil, fmt.Errorf("%w: %w: turn %d after %d",
				core.ErrInvalidInput, ErrTurnOrder, event.TurnId, events[i-1].TurnId)
		}
	}

	if b.cursor != nil {
		if committed, ok := b.cursor.CommittedTurn(conversationId); ok && events[0].TurnId > committed+1 {
			return nil, fmt.Errorf("%w: %w: first turn %d, committed turn %d",
				core.ErrInvalidInput, ErrTurnGap, events[0].TurnId, committed)
		}
	}

	var (
		chunks []*core.ChunkRecord
		buf    []line
		cost   int
		fresh  int
	)

	for i := range events {
		event := &events[i]
		for _, rendered := range b.render(event) {
			l := line{text: rendered, cost: b.measure(rendered), event: event}
			buf = append(buf, l)
			cost += l.cost
			fresh++
		}

		// Spans close only on event boundaries. Turn ranges therefore never
		// repeat within a build, which keeps span ids unique even when a
		// single turn blows past the budget.
		if cost >= b.opts.MaxChars {
			chunks = append(chunks, b.seal(ctx, conversationId, buf, version))
			buf = b.carryOverlap(buf)
			cost = totalCost(buf)
			fresh = 0
		}
	}

	// Flush the remainder, but never re-emit a buffer that is pure overlap
	// carry with no fresh lines.
	if fresh > 0 {
		chunks = append(chunks, b.seal(ctx, conversationId, buf, version))
	}

	return chunks, nil
}

// render produces the dialogue lines for one event. A line that alone
// exceeds the budget is split at sentence boundaries, each piece keeping
// the speaker prefix.
func (b *Builder) render(event *core.MemoryEvent) []string {
	prefix := event.Speaker.String() + ": "
	text := normalizeText(event.Text)

	full := prefix + text
	if b.measure(full) <= b.opts.MaxChars {
		return []string{full}
	}

	avail := b.opts.MaxChars - b.measure(prefix)
	if avail < 1 {
		avail = 1
	}

	pieces := splitOversized(text, avail, b.measure)
	rendered := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		rendered = append(rendered, prefix+piece)
	}
	return rendered
}

// carryOverlap returns a copy of the trailing lines whose combined cost
// fits the overlap budget. The copy keeps later appends from clobbering
// the sealed span's backing array.
func (b *Builder) carryOverlap(buf []line) []line {
	if b.opts.OverlapChars <= 0 {
		return nil
	}

	total := 0
	start := len(buf)
	for start > 0 && total+buf[start-1].cost <= b.opts.OverlapChars {
		total += buf[start-1].cost
		start--
	}
	if start == len(buf) {
		return nil
	}

	carried := make([]line, len(buf)-start)
	copy(carried, buf[start:])
	return carried
}

func totalCost(buf []line) int {
	total := 0
	for _, l := range buf {
		total += l.cost
	}
	return total
}

// seal turns the buffered lines into a chunk record with full metadata and
// the deterministic id for its coordinates.
func (b *Builder) seal(ctx context.Context, conversationId string, buf []line, version int) *core.ChunkRecord {
	parts := make([]string, len(buf))
	for i, l := range buf {
		parts[i] = l.text
	}
	text := normalizeText(strings.Join(parts, " "))

	meta := core.ChunkMetadata{
		ConversationId: conversationId,
		Turns: core.TurnRange{
			Start: buf[0].event.TurnId,
			End:   buf[len(buf)-1].event.TurnId,
		},
		Version: version,
		Source:  b.opts.Source,
	}

	seenSpeaker := make(map[core.SpeakerType]bool)
	seenParticipant := make(map[string]bool)
	for _, l := range buf {
		event := l.event
		if meta.Timestamps.Start.IsZero() || event.Timestamp.Before(meta.Timestamps.Start) {
			meta.Timestamps.Start = event.Timestamp
		}
		if event.Timestamp.After(meta.Timestamps.End) {
			meta.Timestamps.End = event.Timestamp
		}
		if !seenSpeaker[event.Speaker] {
			seenSpeaker[event.Speaker] = true
			meta.Speakers = append(meta.Speakers, event.Speaker)
		}
		for _, participant := range event.Participants {
			if !seenParticipant[participant] {
				seenParticipant[participant] = true
				meta.Participants = append(meta.Participants, participant)
			}
		}
	}

	slices.Sort(meta.Speakers)
	slices.Sort(meta.Participants)

	meta.IntentTag = b.intentFor(ctx, text)

	if b.opts.PrefixEnabled {
		text = contextPrefix(meta.Timestamps.Start, meta.Participants, meta.IntentTag) + text
	}

	return &core.ChunkRecord{
		Id:       core.ChunkIdFor(conversationId, meta.Turns, version),
		Text:     text,
		Metadata: meta,
	}
}

func (b *Builder) intentFor(ctx context.Context, text string) string {
	if b.labeler != nil {
		label, err := b.labeler.LabelTopic(ctx, text)
		if err == nil && label != "" {
			return label
		}
		if err != nil {
			b.logger.Warn("topic labeler failed, using keyword rules", "err", err)
		}
	}
	return DetectIntent(text)
}
