// Package ingestion provides pipeline orchestration from memory events to
// indexed chunks.
//
// The Pipeline type accepts event batches on the synchronous write path,
// journals them durably, and hands them to the asynchronous index path:
//   - Chunking events into overlapping spans
//   - Generating embeddings (batched, retried with backoff)
//   - Upserting the resulting chunk records into the index
//   - Advancing per-conversation cursors
//
// Each conversation drains its queued work strictly in arrival order while
// different conversations proceed in parallel on a shared worker pool. Errors
// during async processing are logged and counted but do not fail the original
// ingestion call; a full conversation queue rejects with core.ErrBacklog so
// events are never silently dropped.
package ingestion
