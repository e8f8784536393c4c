package chromem

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

const collectionName = "chunks"

// Metadata keys pushed down to chromem where filters
const (
	metaConversationId = "conversation_id"
	metaDeleted        = "deleted"
)

// Store implements storage.ChunkRepository over chromem-go. Everything lives
// in process memory, which makes it the ephemeral profile for tests and local
// runs. The map holds the authoritative records because chromem has no
// get-by-id or listing; the collection only serves similarity queries.
type Store struct {
	mu      sync.RWMutex
	coll    *chromem.Collection
	records map[string]*core.ChunkRecord
	closed  bool
	logger  *slog.Logger
}

var _ storage.ChunkRepository = (*Store)(nil)

// NewStore creates an empty in-memory chunk repository.
func NewStore() (*Store, error) {
	db := chromem.NewDB()
	coll, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, err
	}

	return &Store{
		coll:    coll,
		records: make(map[string]*core.ChunkRecord),
		logger:  slog.Default().With("component", "chromem-store"),
	}, nil
}

// Close marks the store closed. Chromem keeps everything in process memory,
// so there is nothing to flush.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// WithTransaction executes fn. Chromem has no transactions; every store
// operation is individually consistent under the store lock.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return storage.ErrStorageClosed
	}
	return fn(ctx)
}

// UpsertChunks inserts or overwrites chunk records keyed by id. The batch is
// best-effort: per-record failures are reported in WriteResult.Errors while
// the remaining records commit.
func (s *Store) UpsertChunks(ctx context.Context, records ...*core.ChunkRecord) (*core.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	result := &core.WriteResult{}
	now := time.Now().UTC()

	for _, record := range records {
		if err := core.ValidateChunkRecord(record); err != nil {
			result.Errors = append(result.Errors, core.RecordError{ChunkId: record.Id, Err: err})
			continue
		}

		old, exists := s.records[record.Id]
		if exists {
			record.InsertedAt = old.InsertedAt
		} else {
			record.InsertedAt = now
		}
		record.UpdatedAt = now

		if err := s.syncDocument(ctx, record, old); err != nil {
			result.Errors = append(result.Errors, core.RecordError{ChunkId: record.Id, Err: err})
			continue
		}
		s.records[record.Id] = record

		if exists {
			result.Updated++
		} else {
			result.Upserted++
		}
	}

	return result, nil
}

// GetChunk retrieves a single chunk record by id.
func (s *Store) GetChunk(ctx context.Context, id string) (*core.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	record, ok := s.records[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// GetChunks retrieves multiple chunk records by their ids.
// Missing ids are skipped.
func (s *Store) GetChunks(ctx context.Context, ids ...string) ([]*core.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	var result []*core.ChunkRecord
	for _, id := range ids {
		if record, ok := s.records[id]; ok {
			clone := *record
			result = append(result, &clone)
		}
	}
	return result, nil
}

// GetChunksByConversation retrieves every chunk of a conversation in turn
// order, tombstoned records included.
func (s *Store) GetChunksByConversation(ctx context.Context, conversationId string) ([]*core.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	var results []*core.ChunkRecord
	for _, record := range s.records {
		if record.Metadata.ConversationId != conversationId {
			continue
		}
		clone := *record
		results = append(results, &clone)
	}

	slices.SortFunc(results, func(a, b *core.ChunkRecord) int {
		if a.Metadata.Turns.Start != b.Metadata.Turns.Start {
			return a.Metadata.Turns.Start - b.Metadata.Turns.Start
		}
		if a.Metadata.Turns.End != b.Metadata.Turns.End {
			return a.Metadata.Turns.End - b.Metadata.Turns.End
		}
		return a.Metadata.Version - b.Metadata.Version
	})

	return results, nil
}

// ListChunks pages through every stored chunk in id order.
func (s *Store) ListChunks(ctx context.Context, afterId string, limit int) ([]*core.ChunkRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		if id > afterId {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	if len(ids) > limit {
		ids = ids[:limit]
	}

	results := make([]*core.ChunkRecord, len(ids))
	for i, id := range ids {
		clone := *s.records[id]
		results[i] = &clone
	}
	return results, nil
}

// MarkDeleted sets the tombstone flag on the given records. Unknown and
// already-deleted ids are skipped, which keeps replayed deletes idempotent.
func (s *Store) MarkDeleted(ctx context.Context, ids ...string) (*core.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	result := &core.DeleteResult{}
	now := time.Now().UTC()

	for _, id := range ids {
		record, ok := s.records[id]
		if !ok || record.Metadata.Deleted {
			continue
		}

		tombstoned := *record
		tombstoned.Metadata.Deleted = true
		tombstoned.UpdatedAt = now
		if err := s.syncDocument(ctx, &tombstoned, record); err != nil {
			result.Errors = append(result.Errors, core.RecordError{ChunkId: id, Err: err})
			continue
		}
		s.records[id] = &tombstoned
		result.Deleted++
	}

	return result, nil
}

// DeleteBySource tombstones every chunk of the conversation whose turn range
// overlaps turns. A nil range targets the whole conversation.
func (s *Store) DeleteBySource(ctx context.Context, conversationId string, turns *core.TurnRange) (*core.DeleteResult, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, storage.ErrStorageClosed
	}
	var ids []string
	for id, record := range s.records {
		if record.Metadata.ConversationId != conversationId {
			continue
		}
		if turns != nil && !turns.Overlaps(record.Metadata.Turns) {
			continue
		}
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	slices.Sort(ids)
	return s.MarkDeleted(ctx, ids...)
}

// FindSimilar scores chunks matching the filters against the query vector.
// The deleted flag and conversation id are pushed down to chromem as where
// filters; the remaining predicates post-filter through QueryFilters.Matches.
func (s *Store) FindSimilar(ctx context.Context, vector []float32, filters core.QueryFilters, limit int) ([]*core.ScoredChunk, error) {
	if len(vector) == 0 || limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	// Count the documents the where clause will leave. Chromem rejects
	// queries asking for more results than it can return, and post-filtering
	// may drop hits, so the query fetches every pushdown candidate.
	candidates := 0
	for _, record := range s.records {
		if len(record.Vector) == 0 {
			continue
		}
		if len(record.Vector) != len(vector) {
			return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
				core.ErrDimensionMismatch, len(vector), len(record.Vector))
		}
		if record.Metadata.Deleted != filters.Deleted {
			continue
		}
		if filters.ConversationId != "" && record.Metadata.ConversationId != filters.ConversationId {
			continue
		}
		candidates++
	}
	if candidates == 0 {
		return nil, nil
	}

	where := map[string]string{metaDeleted: strconv.FormatBool(filters.Deleted)}
	if filters.ConversationId != "" {
		where[metaConversationId] = filters.ConversationId
	}

	hits, err := s.coll.QueryEmbedding(ctx, vector, candidates, where, nil)
	if err != nil {
		return nil, err
	}

	var results []*core.ScoredChunk
	for _, hit := range hits {
		record, ok := s.records[hit.ID]
		if !ok {
			s.logger.Warn("dropping stale chromem document", "id", hit.ID)
			continue
		}
		if !filters.Matches(&record.Metadata) {
			continue
		}
		clone := *record
		results = append(results, &core.ScoredChunk{
			Record: &clone,
			Score:  hit.Similarity,
		})
	}

	// Re-rank with the shared comparator so both backends break ties the
	// same way
	slices.SortFunc(results, core.CompareScored)

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// syncDocument mirrors a record into the chromem collection. Records without
// vectors are not searchable and stay out of the collection.
func (s *Store) syncDocument(ctx context.Context, record *core.ChunkRecord, old *core.ChunkRecord) error {
	if len(record.Vector) == 0 {
		if old != nil && len(old.Vector) > 0 {
			return s.coll.Delete(ctx, nil, nil, record.Id)
		}
		return nil
	}

	return s.coll.AddDocument(ctx, chromem.Document{
		ID:        record.Id,
		Content:   record.Text,
		Embedding: record.Vector,
		Metadata:  flattenMetadata(&record.Metadata),
	})
}

// flattenMetadata converts chunk metadata to the string map chromem stores
// with each document. The authoritative metadata stays on the record; this
// projection only feeds where filters and debugging.
func flattenMetadata(m *core.ChunkMetadata) map[string]string {
	meta := map[string]string{
		metaConversationId: m.ConversationId,
		metaDeleted:        strconv.FormatBool(m.Deleted),
		"intent":           m.IntentTag,
		"source":           m.Source,
		"version":          strconv.Itoa(m.Version),
		"turn_start":       strconv.Itoa(m.Turns.Start),
		"turn_end":         strconv.Itoa(m.Turns.End),
	}
	if len(m.Participants) > 0 {
		meta["participants"] = strings.Join(m.Participants, ",")
	}
	return meta
}
