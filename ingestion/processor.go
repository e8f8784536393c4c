package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/reembed"
)

// drain processes a conversation's queued runs in arrival order. It exits
// when the queue is empty; the next enqueue starts a fresh drain.
func (p *Pipeline) drain(conversationId string, st *conversationState) {
	for {
		p.mu.Lock()
		if len(st.queue) == 0 {
			st.active = false
			p.mu.Unlock()
			return
		}
		item := st.queue[0]
		st.queue = st.queue[1:]
		p.mu.Unlock()

		p.processRun(context.Background(), conversationId, st, item)
	}
}

// processRun drives one run through chunking, embedding, and upsert, then
// advances the conversation cursor. Failures are counted and logged; the run
// is abandoned rather than retried because journaled events can always be
// re-driven and upsert is idempotent by chunk id.
func (p *Pipeline) processRun(ctx context.Context, conversationId string, st *conversationState, item *workItem) {
	st.procMu.Lock()
	defer st.procMu.Unlock()

	logger := p.logger.With("run", item.id, "conversation", conversationId)
	logger.Debug("processing run", "events", len(item.events))

	if err := p.loadCursorLocked(ctx, conversationId, st); err != nil {
		p.runsFailed.Add(1)
		logger.Error("error loading cursor", "err", err)
		return
	}

	version := st.cursor.CurrentVersion()
	records, err := p.builder.BuildVersion(ctx, conversationId, item.events, version)
	if err != nil {
		// Construction errors are deterministic; retrying reproduces them.
		p.runsFailed.Add(1)
		logger.Error("error building chunks", "err", err)
		return
	}

	if len(records) > 0 {
		if err := p.embedRecords(ctx, records); err != nil {
			p.runsFailed.Add(1)
			logger.Error("abandoning run, embedding exhausted retries", "err", err)
			return
		}

		result, err := p.chunkRepo.UpsertChunks(ctx, records...)
		if err != nil {
			p.runsFailed.Add(1)
			logger.Error("error upserting chunks", "err", err)
			return
		}
		p.chunksUpserted.Add(int64(result.Upserted + result.Updated))
		for _, recordErr := range result.Errors {
			logger.Error("chunk rejected by index", "chunk", recordErr.ChunkId, "err", recordErr.Err)
		}
	}

	if err := p.advanceCursorLocked(ctx, st, item.events[len(item.events)-1].TurnId, version); err != nil {
		p.runsFailed.Add(1)
		logger.Error("error advancing cursor", "err", err)
		return
	}

	p.runsIndexed.Add(1)
	logger.Debug("run indexed", "chunks", len(records), "committedTurn", st.cursor.CommittedTurn)
}

// embedRecords fills in record vectors with retried, re-normalized
// embeddings. Attempts beyond the first count as retries in the stats.
func (p *Pipeline) embedRecords(ctx context.Context, records []*core.ChunkRecord) error {
	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}

	var vectors [][]float32
	attempts := 0
	err := reembed.RetryWithBackoff(ctx, func() error {
		attempts++
		var embedErr error
		vectors, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.maxRetries, p.retryBaseDelay)
	if attempts > 1 {
		p.embedRetries.Add(int64(attempts - 1))
	}
	if err != nil {
		return fmt.Errorf("embedding failed after %d attempts: %w", attempts, err)
	}

	if len(vectors) != len(records) {
		return fmt.Errorf("embedding result mismatch: expected %d, received %d", len(records), len(vectors))
	}

	for i := range records {
		records[i].Vector = core.NormalizeVector(vectors[i])
	}
	return nil
}

// loadCursorLocked populates the conversation's cursor state from storage on
// first use. Callers must hold st.procMu.
func (p *Pipeline) loadCursorLocked(ctx context.Context, conversationId string, st *conversationState) error {
	if st.loaded {
		return nil
	}

	cursor, err := p.cursors.GetCursor(ctx, conversationId)
	if err != nil {
		return err
	}
	if cursor != nil {
		st.cursor = *cursor
		st.hasCursor = true
	} else {
		st.cursor = core.Cursor{ConversationId: conversationId}
	}
	st.loaded = true
	return nil
}

// advanceCursorLocked records indexing progress for the conversation.
// Callers must hold st.procMu.
func (p *Pipeline) advanceCursorLocked(ctx context.Context, st *conversationState, lastTurn, version int) error {
	if lastTurn > st.cursor.CommittedTurn {
		st.cursor.CommittedTurn = lastTurn
	}
	st.cursor.ObserveVersion(version)
	st.cursor.UpdatedAt = time.Now().UTC()

	if err := p.cursors.PutCursor(ctx, &st.cursor); err != nil {
		return err
	}
	st.hasCursor = true
	return nil
}
