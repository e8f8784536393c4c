package badger

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// EventJournal implements storage.EventJournal for BadgerDB.
type EventJournal struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.EventJournal = (*EventJournal)(nil)

// NewEventJournal creates a new EventJournal.
func NewEventJournal(backend *Backend) (*EventJournal, error) {
	seq, err := backend.GetSequence(eventLogSeq)
	if err != nil {
		return nil, err
	}

	return &EventJournal{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the journal sequence.
func (j *EventJournal) Close() error {
	return j.seq.Release()
}

// WithTransaction delegates to the backend.
func (j *EventJournal) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return j.backend.WithTransaction(ctx, fn)
}

// AppendEvents appends events to the journal in arrival order. The sequence
// number keeps multiple appends of the same turn ordered, so replays land
// after the original event.
func (j *EventJournal) AppendEvents(ctx context.Context, events ...core.MemoryEvent) error {
	return j.backend.WithTx(func(tx *badger.Txn) error {
		for i := range events {
			event := &events[i]

			seq, err := j.seq.Next()
			if err != nil {
				return err
			}

			key := makeEventLogKey(event.ConversationId, event.TurnId, seq)
			if err := tx.Set(key, storage.MarshalMemoryEvent(event)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetConversationEvents retrieves every journaled event of a conversation in
// turn order.
func (j *EventJournal) GetConversationEvents(ctx context.Context, conversationId string) ([]core.MemoryEvent, error) {
	var results []core.MemoryEvent
	err := j.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeEventLogPrefix(conversationId)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}

			if err := iter.Item().Value(func(val []byte) error {
				event, err := storage.UnmarshalMemoryEvent(val)
				if err != nil {
					return err
				}
				results = append(results, *event)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	}, false)

	return results, err
}
