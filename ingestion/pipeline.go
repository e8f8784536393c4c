package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/chunk"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

const (
	defaultQueueCapacity  = 64
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 200 * time.Millisecond
)

// Pipeline orchestrates the flow from memory events to indexed chunks.
// The write path journals events and returns; the index path chunks, embeds,
// and upserts them in the background, one conversation at a time.
type Pipeline struct {
	chunkRepo storage.ChunkRepository
	journal   storage.EventJournal
	cursors   storage.CursorRepository
	embedder  ai.Embedder
	labeler   ai.TopicLabeler
	builder   *chunk.Builder
	pool      *ants.Pool

	queueCapacity  int
	maxRetries     int
	retryBaseDelay time.Duration
	chunkOpts      chunk.Options
	logger         *slog.Logger

	mu       sync.Mutex
	convs    map[string]*conversationState
	released bool

	eventsAccepted    atomic.Int64
	runsEnqueued      atomic.Int64
	runsIndexed       atomic.Int64
	runsFailed        atomic.Int64
	chunksUpserted    atomic.Int64
	embedRetries      atomic.Int64
	backlogRejections atomic.Int64
}

// conversationState carries one conversation's queued work and indexing
// progress. The queue and active flag are guarded by Pipeline.mu; the cursor
// fields are guarded by procMu, which serializes the index path and
// corrections for this conversation.
type conversationState struct {
	queue  []*workItem
	active bool

	procMu    sync.Mutex
	loaded    bool
	hasCursor bool
	cursor    core.Cursor
}

// workItem is one enqueued event run. The id correlates log lines across the
// async stages.
type workItem struct {
	id     string
	events []core.MemoryEvent
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for the index path.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size, ants.WithNonblocking(true))
		if err != nil {
			return err
		}

		p.pool = pool
		return nil
	}
}

// WithQueueCapacity caps the number of queued runs per conversation. A full
// queue rejects Ingest with core.ErrBacklog.
// Default is 64.
func WithQueueCapacity(capacity int) Option {
	return func(p *Pipeline) error {
		if capacity < 1 {
			capacity = 1
		}
		p.queueCapacity = capacity
		return nil
	}
}

// WithMaxRetries bounds embedding retry attempts per run.
// Default is 3.
func WithMaxRetries(maxRetries int) Option {
	return func(p *Pipeline) error {
		if maxRetries < 1 {
			maxRetries = 1
		}
		p.maxRetries = maxRetries
		return nil
	}
}

// WithRetryBaseDelay sets the base delay for exponential backoff between
// embedding attempts.
// Default is 200ms.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(p *Pipeline) error {
		if delay > 0 {
			p.retryBaseDelay = delay
		}
		return nil
	}
}

// WithChunkOptions sets the span construction configuration.
// Default is chunk.DefaultOptions().
func WithChunkOptions(opts chunk.Options) Option {
	return func(p *Pipeline) error {
		p.chunkOpts = opts
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunkRepo storage.ChunkRepository,
	journal storage.EventJournal,
	cursors storage.CursorRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if chunkRepo == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if journal == nil {
		return nil, ErrEventJournalRequired
	}
	if cursors == nil {
		return nil, ErrCursorRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		chunkRepo:      chunkRepo,
		journal:        journal,
		cursors:        cursors,
		embedder:       provider.Embedder(),
		labeler:        provider.Labeler(),
		pool:           pool,
		queueCapacity:  defaultQueueCapacity,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		chunkOpts:      chunk.DefaultOptions(),
		logger:         slog.Default(),
		convs:          make(map[string]*conversationState),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the builder after options are applied so it sees the final
	// chunking configuration. The pipeline itself serves committed-turn
	// lookups for gap detection.
	builderOpts := []chunk.Option{
		chunk.WithCursor(p),
		chunk.WithLogger(p.logger),
	}
	if p.labeler != nil {
		builderOpts = append(builderOpts, chunk.WithLabeler(p.labeler))
	}

	builder, err := chunk.NewBuilder(p.chunkOpts, builderOpts...)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.builder = builder

	return p, nil
}

// Ingest validates events, appends them durably to the event journal, and
// enqueues one index-path run per conversation. It returns without waiting
// for chunking, embedding, or indexing. A full conversation queue or an
// exhausted worker pool rejects with core.ErrBacklog; the caller retries and
// no event is silently dropped.
func (p *Pipeline) Ingest(ctx context.Context, events ...core.MemoryEvent) error {
	if len(events) == 0 {
		return nil
	}

	for i := range events {
		if err := core.ValidateEvent(&events[i]); err != nil {
			return err
		}
	}

	// Group into per-conversation runs, preserving arrival order.
	runOrder := make([]string, 0, 1)
	runs := make(map[string][]core.MemoryEvent)
	for _, event := range events {
		if _, seen := runs[event.ConversationId]; !seen {
			runOrder = append(runOrder, event.ConversationId)
		}
		runs[event.ConversationId] = append(runs[event.ConversationId], event)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return ErrPipelineReleased
	}

	// Check capacity before journaling so a rejected batch leaves no trace.
	for _, conversationId := range runOrder {
		st := p.stateLocked(conversationId)
		if len(st.queue) >= p.queueCapacity {
			p.backlogRejections.Add(1)
			return fmt.Errorf("%w: conversation %q has %d queued runs",
				core.ErrBacklog, conversationId, len(st.queue))
		}
	}

	// Durable write-path append. Indexing resumes from the journal after a
	// crash, so this must commit before the caller sees success.
	if err := p.journal.AppendEvents(ctx, events...); err != nil {
		return err
	}

	p.eventsAccepted.Add(int64(len(events)))

	var backlogErr error
	for _, conversationId := range runOrder {
		st := p.stateLocked(conversationId)
		st.queue = append(st.queue, &workItem{
			id:     uuid.NewString(),
			events: runs[conversationId],
		})
		p.runsEnqueued.Add(1)

		if err := p.kickLocked(conversationId, st); err != nil {
			// Events are journaled and queued; a later kick drains them.
			backlogErr = err
		}
	}

	return backlogErr
}

// kickLocked starts a drain worker for the conversation if none is running.
// Callers must hold p.mu.
func (p *Pipeline) kickLocked(conversationId string, st *conversationState) error {
	if st.active || len(st.queue) == 0 {
		return nil
	}

	st.active = true
	err := p.pool.Submit(func() {
		p.drain(conversationId, st)
	})
	if err != nil {
		st.active = false
		p.backlogRejections.Add(1)
		return fmt.Errorf("%w: worker pool exhausted: %v", core.ErrBacklog, err)
	}
	return nil
}

// stateLocked returns the conversation's state, creating it on first use.
// Callers must hold p.mu.
func (p *Pipeline) stateLocked(conversationId string) *conversationState {
	st, ok := p.convs[conversationId]
	if !ok {
		st = &conversationState{}
		p.convs[conversationId] = st
	}
	return st
}

// CommittedTurn reports the conversation's highest indexed turn. It serves
// the builder's gap detection; a conversation with no committed chunks
// reports no cursor.
func (p *Pipeline) CommittedTurn(conversationId string) (int, bool) {
	p.mu.Lock()
	st, ok := p.convs[conversationId]
	p.mu.Unlock()
	if !ok || !st.loaded || !st.hasCursor {
		return 0, false
	}
	return st.cursor.CommittedTurn, true
}

// Flush blocks until every queued run has been processed or the context
// expires. Queues stalled by earlier pool exhaustion are re-kicked.
func (p *Pipeline) Flush(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if p.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Pipeline) idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	idle := true
	for conversationId, st := range p.convs {
		if len(st.queue) > 0 && !st.active {
			if err := p.kickLocked(conversationId, st); err != nil {
				p.logger.Warn("re-kick failed", "conversation", conversationId, "err", err)
			}
		}
		if len(st.queue) > 0 || st.active {
			idle = false
		}
	}
	return idle
}

// Release releases the worker pool. Queued runs that have not started are
// abandoned; journaled events can be re-driven later because upsert is
// idempotent by chunk id. The pipeline should not be used after Release.
func (p *Pipeline) Release() {
	p.mu.Lock()
	p.released = true
	p.mu.Unlock()

	if p.pool != nil {
		p.pool.Release()
	}
}

// Stats is a point-in-time snapshot of pipeline counters.
type Stats struct {
	EventsAccepted    int64
	RunsEnqueued      int64
	RunsIndexed       int64
	RunsFailed        int64
	ChunksUpserted    int64
	EmbedRetries      int64
	BacklogRejections int64
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		EventsAccepted:    p.eventsAccepted.Load(),
		RunsEnqueued:      p.runsEnqueued.Load(),
		RunsIndexed:       p.runsIndexed.Load(),
		RunsFailed:        p.runsFailed.Load(),
		ChunksUpserted:    p.chunksUpserted.Load(),
		EmbedRetries:      p.embedRetries.Load(),
		BacklogRejections: p.backlogRejections.Load(),
	}
}
