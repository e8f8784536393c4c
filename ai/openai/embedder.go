package openai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/core"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// The backing client is built once, on first use, and shared by every
// concurrent caller.
type Embedder struct {
	config *ai.Config
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
	embedder embeddings.Embedder
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Embedder{
		config: config,
		logger: slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
// The backing client is not constructed until the first embedding call.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// init builds the shared langchaingo client. sync.Once keeps concurrent
// first callers from constructing duplicate clients; a failed build is
// remembered and surfaced as core.ErrEmbeddingUnavailable on every call.
func (e *Embedder) init() error {
	e.initOnce.Do(func() {
		// Use "none" as token for local OpenAI-compatible services that
		// don't require authentication
		client, err := openai.New(
			openai.WithBaseURL(e.config.EmbeddingHost),
			openai.WithToken("none"),
			openai.WithEmbeddingModel(e.config.EmbeddingModel),
		)
		if err != nil {
			e.initErr = fmt.Errorf("%w: %w", core.ErrEmbeddingUnavailable, err)
			return
		}

		embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
		if err != nil {
			e.initErr = fmt.Errorf("%w: %w", core.ErrEmbeddingUnavailable, err)
			return
		}

		e.embedder = embedder
	})
	return e.initErr
}

// EmbedText generates a unit-length vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := e.init(); err != nil {
		return nil, err
	}

	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}

	return core.NormalizeVector(vectors[0]), nil
}

// EmbedTexts generates unit-length vector embeddings for multiple text
// strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.init(); err != nil {
		return nil, err
	}

	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	// Not every OpenAI-compatible backend returns normalized vectors.
	for i := range vectors {
		vectors[i] = core.NormalizeVector(vectors[i])
	}
	return vectors, nil
}
