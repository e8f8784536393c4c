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


package recall

import (
	"io"
	"log/slog"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/mock"
	"github.com/poiesic/recall/ai/openai"
	"github.com/poiesic/recall/ingestion"
	"github.com/poiesic/recall/reembed"
	"github.com/poiesic/recall/search"
	"github.com/poiesic/recall/storage"
	"github.com/poiesic/recall/storage/badger"
	"github.com/poiesic/recall/storage/chromem"
)

// Database bundles the chunk index, event journal, and cursor store together
// with an AI provider, and hands out the pipelines and engines that run on
// top of them.
type Database struct {
	backend    *badger.Backend
	chunkRepo  storage.ChunkRepository
	journal    storage.EventJournal
	cursorRepo storage.CursorRepository
	provider   ai.Provider
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig  *ai.Config
	mockAI    bool
	ephemeral bool
}

// WithAIConfig overrides the AI provider configuration read from the
// environment.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithMockAI swaps in deterministic in-process embedding and labeling
// services. Useful for tests and offline runs.
func WithMockAI() DatabaseOption {
	return func(o *databaseOptions) {
		o.mockAI = true
	}
}

// WithEphemeralIndex keeps the chunk index in a chromem collection and the
// journal and cursors in an in-memory key-value store. Nothing survives
// Close.
func WithEphemeralIndex() DatabaseOption {
	return func(o *databaseOptions) {
		o.ephemeral = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// The ephemeral profile backs the journal and cursors with an in-memory
	// key-value store; the persistent profile shares one on-disk backend
	// across all three repositories.
	backend, err := badger.OpenBackend(filePath, options.ephemeral)
	if err != nil {
		return nil, err
	}

	var chunkRepo storage.ChunkRepository
	if options.ephemeral {
		chunkRepo, err = chromem.NewStore()
	} else {
		chunkRepo, err = badger.NewChunkRepository(backend)
	}
	if err != nil {
		backend.Close()
		return nil, err
	}

	journal, err := badger.NewEventJournal(backend)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	cursorRepo := badger.NewCursorRepository(backend)

	var provider ai.Provider
	if options.mockAI {
		provider = mock.NewMockProvider()
	} else {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			journal.Close()
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:    backend,
		chunkRepo:  chunkRepo,
		journal:    journal,
		cursorRepo: cursorRepo,
		provider:   provider,
		logger:     slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.journal.Close(); err != nil {
		db.logger.Error("error closing event journal", "err", err)
		return err
	}
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) EventJournal() storage.EventJournal {
	return db.journal
}

func (db *Database) CursorRepository() storage.CursorRepository {
	return db.cursorRepo
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.chunkRepo, db.journal, db.cursorRepo, db.provider, opts...)
}

func (db *Database) NewEngine(opts ...search.Option) (*search.Engine, error) {
	return search.NewEngine(db.chunkRepo, db.provider, opts...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.chunkRepo, db.provider.Embedder(), config, progress)
}
