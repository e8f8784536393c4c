package chunk

import "errors"

var (
	// ErrConversationMismatch indicates an event carried a conversation id
	// different from the one being built.
	ErrConversationMismatch = errors.New("event conversation id does not match build target")

	// ErrTurnOrder indicates events arrived with decreasing turn ids.
	ErrTurnOrder = errors.New("events are not ordered by turn id")

	// ErrTurnGap indicates the first event leaves a hole above the
	// conversation's committed turn.
	ErrTurnGap = errors.New("turn gap above committed cursor")
)
