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


package core

import "errors"

// Failure taxonomy shared across the service
var (
	// ErrInvalidInput indicates malformed or out-of-order events. The failure
	// is deterministic and is never retried automatically.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding backend could not be
	// initialized or reached. Transient; retried with backoff.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrIndexWrite indicates an index write failed for a single record.
	ErrIndexWrite = errors.New("index write failed")

	// ErrBacklog indicates a conversation's ingestion queue is full.
	// The caller should retry; events are never silently dropped.
	ErrBacklog = errors.New("ingestion backlog")

	// ErrDimensionMismatch indicates a query vector whose dimension differs
	// from the vectors already stored in the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidSpeakerType indicates an invalid SpeakerType value.
	ErrInvalidSpeakerType = errors.New("invalid speaker type")

	// ErrEmptyText indicates event or chunk text is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyConversationId indicates a missing conversation id.
	ErrEmptyConversationId = errors.New("conversation id cannot be empty")

	// ErrInvalidTimestamp indicates a missing timestamp or one in the future.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidTurnRange indicates a negative turn id or Start > End.
	ErrInvalidTurnRange = errors.New("invalid turn range")

	// ErrInvalidVersion indicates a chunk version below 1.
	ErrInvalidVersion = errors.New("chunk version must be at least 1")

	// ErrInvalidChunkId indicates an identifier not produced by ChunkIdFor.
	ErrInvalidChunkId = errors.New("invalid chunk id")
)
