package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// Engine executes metadata-filtered similarity queries over the chunk index.
type Engine struct {
	repo     storage.ChunkRepository
	embedder ai.Embedder
	cache    *ristretto.Cache[string, []float32]
	monitor  QueryMonitor
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithQueryCache caches query embeddings keyed by query text. Repeated
// queries skip the embedding call. The engine does not own the cache; the
// caller closes it.
func WithQueryCache(cache *ristretto.Cache[string, []float32]) Option {
	return func(e *Engine) error {
		e.cache = cache
		return nil
	}
}

// WithMonitor sets a default QueryMonitor applied to every Query call.
// QueryWithMonitor overrides it per call.
func WithMonitor(monitor QueryMonitor) Option {
	return func(e *Engine) error {
		e.monitor = monitor
		return nil
	}
}

// NewQueryCache creates a ristretto cache sized for query embeddings,
// suitable for WithQueryCache.
func NewQueryCache(maxQueries int64) (*ristretto.Cache[string, []float32], error) {
	if maxQueries <= 0 {
		maxQueries = 1024
	}
	return ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: maxQueries * 10,
		MaxCost:     maxQueries,
		BufferItems: 64,
	})
}

// NewEngine creates a new retrieval engine.
func NewEngine(repo storage.ChunkRepository, provider ai.Provider, opts ...Option) (*Engine, error) {
	if repo == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		repo:     repo,
		embedder: provider.Embedder(),
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Query embeds the query text and returns the topK most similar chunks that
// match the filters, ranked by descending cosine score with deterministic
// tie-breaks. Tombstoned records never appear unless the caller explicitly
// sets filters.Deleted, which flips the query into the maintenance view and
// returns tombstones only.
func (e *Engine) Query(ctx context.Context, queryText string, topK int, filters core.QueryFilters) ([]*core.SearchHit, error) {
	return e.QueryWithMonitor(ctx, queryText, topK, filters, e.monitor)
}

// QueryWithMonitor runs Query with stage callbacks.
// The monitor receives the query embedding, the scored candidate set, and the
// final hits.
func (e *Engine) QueryWithMonitor(ctx context.Context, queryText string, topK int, filters core.QueryFilters, monitor QueryMonitor) ([]*core.SearchHit, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if strings.TrimSpace(queryText) == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidInput, core.ErrEmptyText)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", core.ErrInvalidInput, topK)
	}

	monitor.Start(queryText, topK, filters)

	vector, cached, err := e.queryVector(ctx, queryText)
	if err != nil {
		e.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(vector, cached)

	candidates, err := e.repo.FindSimilar(ctx, vector, filters, topK)
	if err != nil {
		e.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterCandidates(candidates)

	hits := make([]*core.SearchHit, 0, len(candidates))
	for _, candidate := range candidates {
		hits = append(hits, &core.SearchHit{
			ChunkId:  candidate.Record.Id,
			Score:    candidate.Score,
			Text:     candidate.Record.Text,
			Metadata: candidate.Record.Metadata,
		})
	}
	monitor.Finish(hits)

	return hits, nil
}

// queryVector returns the embedding for the query text, consulting the cache
// first when one is wired.
func (e *Engine) queryVector(ctx context.Context, queryText string) ([]float32, bool, error) {
	if e.cache != nil {
		if vector, ok := e.cache.Get(queryText); ok {
			return vector, true, nil
		}
	}

	vector, err := e.embedder.EmbedText(ctx, queryText)
	if err != nil {
		return nil, false, err
	}

	if e.cache != nil {
		e.cache.Set(queryText, vector, 1)
	}
	return vector, false, nil
}
