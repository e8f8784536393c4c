package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ChunkRepository has no resources to release.
func (r *ChunkRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, filters core.QueryFilters, limit int) ([]*core.ScoredChunk, error) {
	return r.backend.FindSimilar(ctx, vector, filters, limit)
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertChunks inserts or overwrites chunk records keyed by id. Each record
// commits in its own transaction, so one bad record cannot abort the batch
// and readers never observe a half-written record.
func (r *ChunkRepository) UpsertChunks(ctx context.Context, records ...*core.ChunkRecord) (*core.WriteResult, error) {
	result := &core.WriteResult{}

	for _, record := range records {
		if err := core.ValidateChunkRecord(record); err != nil {
			result.Errors = append(result.Errors, core.RecordError{ChunkId: record.Id, Err: err})
			continue
		}

		inserted := false
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			key := makeChunkKey(record.Id)

			// Read old record to preserve InsertedAt across overwrites
			old, err := r.readChunkRecord(tx, key)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if old == nil {
				record.InsertedAt = now
				inserted = true
			} else {
				record.InsertedAt = old.InsertedAt
			}
			record.UpdatedAt = now

			// Store primary record
			if err := tx.Set(key, storage.MarshalChunkRecord(record)); err != nil {
				return err
			}

			// Update conversation index. The id is derived from
			// (conversation, turns, version), so an overwrite lands on the
			// same index key and old entries never go stale.
			ixKey := makeConvIndexKey(record.Metadata.ConversationId, record.Metadata.Turns, record.Metadata.Version)
			if err := tx.Set(ixKey, []byte(record.Id)); err != nil {
				return err
			}

			return tx.Commit()
		}, true)
		if err != nil {
			result.Errors = append(result.Errors, core.RecordError{ChunkId: record.Id, Err: err})
			continue
		}

		if inserted {
			result.Upserted++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

// GetChunk retrieves a single chunk record by id.
func (r *ChunkRepository) GetChunk(ctx context.Context, id string) (*core.ChunkRecord, error) {
	var result *core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readChunkRecord(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunks retrieves multiple chunk records by their ids.
// Missing ids are skipped.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...string) ([]*core.ChunkRecord, error) {
	var result []*core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := r.readChunkRecord(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetChunksByConversation retrieves every chunk of a conversation in turn
// order, tombstoned records included.
func (r *ChunkRepository) GetChunksByConversation(ctx context.Context, conversationId string) ([]*core.ChunkRecord, error) {
	var results []*core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeConvIndexPrefix(conversationId)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}

			// Read the id from the index
			var id string
			if err := iter.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			// Look up the full record
			record, err := r.readChunkRecord(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)

	return results, err
}

// ListChunks pages through every stored chunk in id order. Pages follow the
// chunk keyspace directly, so a page boundary never skips or repeats a record
// even when writes land between calls.
func (r *ChunkRepository) ListChunks(ctx context.Context, afterId string, limit int) ([]*core.ChunkRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := []byte(chunkRecordPrefix)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		seek := prefix
		if afterId != "" {
			// Seek just past the previous page's last key.
			seek = append(makeChunkKey(afterId), 0)
		}

		for iter.Seek(seek); iter.Valid() && len(results) < limit; iter.Next() {
			if !bytes.HasPrefix(iter.Item().Key(), prefix) {
				break
			}

			var record *core.ChunkRecord
			if err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				record, unmarshalErr = storage.UnmarshalChunkRecord(val)
				return unmarshalErr
			}); err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)

	return results, err
}

// MarkDeleted sets the tombstone flag on the given records. Unknown and
// already-deleted ids are skipped, which keeps replayed deletes idempotent.
func (r *ChunkRepository) MarkDeleted(ctx context.Context, ids ...string) (*core.DeleteResult, error) {
	result := &core.DeleteResult{}

	for _, id := range ids {
		transitioned := false
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			key := makeChunkKey(id)
			record, err := r.readChunkRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil || record.Metadata.Deleted {
				return nil
			}

			record.Metadata.Deleted = true
			record.UpdatedAt = time.Now().UTC()
			if err := tx.Set(key, storage.MarshalChunkRecord(record)); err != nil {
				return err
			}

			transitioned = true
			return tx.Commit()
		}, true)
		if err != nil {
			result.Errors = append(result.Errors, core.RecordError{ChunkId: id, Err: err})
			continue
		}
		if transitioned {
			result.Deleted++
		}
	}

	return result, nil
}

// DeleteBySource tombstones every chunk of the conversation whose turn range
// overlaps turns. A nil range targets the whole conversation. Overlap is
// resolved from the conversation index without reading the records.
func (r *ChunkRepository) DeleteBySource(ctx context.Context, conversationId string, turns *core.TurnRange) (*core.DeleteResult, error) {
	var ids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeConvIndexPrefix(conversationId)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}

			if turns != nil {
				span, ok := parseConvIndexKey(key, prefix)
				if !ok {
					continue
				}
				if !turns.Overlaps(span) {
					continue
				}
			}

			if err := iter.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return r.MarkDeleted(ctx, ids...)
}

// Helper methods

// readChunkRecord reads a chunk record from the transaction.
func (r *ChunkRepository) readChunkRecord(tx *badger.Txn, key []byte) (*core.ChunkRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ChunkRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalChunkRecord(val)
		return unmarshalErr
	})
	return record, err
}
