package storage

import (
	"context"

	"github.com/poiesic/recall/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing chunk records and the
// similarity index built over their vectors.
type ChunkRepository interface {
	Repository

	// UpsertChunks inserts or overwrites chunk records keyed by Id.
	// The last write wins for text, metadata, and vector. InsertedAt is
	// preserved across overwrites; UpdatedAt is refreshed on every write.
	// The batch is best-effort: per-record validation and write failures are
	// reported in WriteResult.Errors while the remaining records commit.
	// Each record write is atomic, so readers never observe a partial record.
	UpsertChunks(ctx context.Context, records ...*core.ChunkRecord) (*core.WriteResult, error)

	// GetChunk retrieves a single chunk record by id.
	// Returns ErrNotFound if the record doesn't exist.
	GetChunk(ctx context.Context, id string) (*core.ChunkRecord, error)

	// GetChunks retrieves multiple chunk records by their ids.
	// Returns only the records that exist (no error for missing records).
	GetChunks(ctx context.Context, ids ...string) ([]*core.ChunkRecord, error)

	// GetChunksByConversation retrieves every chunk of a conversation,
	// tombstoned records included, ordered by turn range.
	GetChunksByConversation(ctx context.Context, conversationId string) ([]*core.ChunkRecord, error)

	// MarkDeleted sets the tombstone flag on the given records. The operation
	// is idempotent: already-deleted and unknown ids count zero, not an error.
	// Deleted counts only records that transitioned on this call.
	MarkDeleted(ctx context.Context, ids ...string) (*core.DeleteResult, error)

	// DeleteBySource tombstones every chunk of the conversation whose turn
	// range overlaps turns. A nil range targets the whole conversation.
	DeleteBySource(ctx context.Context, conversationId string, turns *core.TurnRange) (*core.DeleteResult, error)

	// ListChunks pages through every stored chunk in id order, tombstoned
	// records included. afterId is the last id of the previous page; pass ""
	// for the first page. Returns at most limit records; an empty result
	// means the listing is exhausted.
	ListChunks(ctx context.Context, afterId string, limit int) ([]*core.ChunkRecord, error)

	// FindSimilar scores chunks matching the filters against the query vector.
	// Results are ordered by descending cosine score, ties broken by later
	// span end and then by id, truncated to limit. An empty vector or a
	// non-positive limit fails with ErrInvalidQuery; records whose vectors
	// have a different dimension than the query fail the call with
	// core.ErrDimensionMismatch.
	FindSimilar(ctx context.Context, vector []float32, filters core.QueryFilters, limit int) ([]*core.ScoredChunk, error)
}

// EventJournal provides a durable append-only log of memory events. The
// journal is the write-ahead record of everything the indexer has been asked
// to process; replayed events append again and are deduplicated downstream by
// chunk identity.
type EventJournal interface {
	Repository

	// AppendEvents appends events to the journal in arrival order.
	// Events are sequence-numbered within their conversation.
	AppendEvents(ctx context.Context, events ...core.MemoryEvent) error

	// GetConversationEvents retrieves every journaled event of a conversation
	// in turn order. Replays appear once per append.
	GetConversationEvents(ctx context.Context, conversationId string) ([]core.MemoryEvent, error)
}

// CursorRepository tracks per-conversation indexing progress.
type CursorRepository interface {
	// PutCursor persists the cursor for its conversation.
	PutCursor(ctx context.Context, cursor *core.Cursor) error

	// GetCursor retrieves the cursor for a conversation.
	// Returns nil, nil if no cursor exists yet.
	GetCursor(ctx context.Context, conversationId string) (*core.Cursor, error)
}
