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


// Package storage provides the storage abstraction layer for recall.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. It allows for different storage backends (BadgerDB,
// chromem-go, etc.) to be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - ChunkRepository: chunk records, tombstones, and vector similarity search
//   - EventJournal: durable append-only log of ingested events
//   - CursorRepository: per-conversation indexing progress
//
// Chunk ids are content-derived (core.ChunkIdFor), so re-writing an unchanged
// span is an idempotent overwrite rather than a duplicate. Deletes are logical:
// MarkDeleted sets a tombstone flag and FindSimilar excludes tombstones unless
// the query filters ask for them.
//
// # Backends
//
// The badger subpackage is the persistent profile; the chromem subpackage is
// an in-process profile backed by chromem-go. Both implement ChunkRepository
// with identical filter and ordering semantics: candidate matching always goes
// through core.QueryFilters.Matches and ranking through core.CompareScored.
//
// # Usage
//
// Create repositories over a shared badger backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	chunks, err := badger.NewChunkRepository(backend)
//
// Use in tests with in-memory storage:
//
//	chunks, journal, cursors, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
