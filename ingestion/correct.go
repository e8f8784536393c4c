package ingestion

import (
	"context"
	"fmt"

	"github.com/poiesic/recall/core"
)

// CorrectBehavior selects how corrected events replace previously indexed
// chunks.
type CorrectBehavior int

const (
	// CorrectReplace tombstones every chunk overlapping the corrected turn
	// range, bumps the conversation's chunk version, and rebuilds under new
	// ids. Old-version records stay addressable until explicitly deleted.
	CorrectReplace CorrectBehavior = iota

	// CorrectOverwrite rebuilds the corrected turn range at the current
	// version, overwriting the existing records in place under the same ids.
	CorrectOverwrite
)

// Correct applies corrected source events synchronously: the corrected range
// is re-journaled, re-chunked, re-embedded, and upserted before Correct
// returns. Events must carry the turns being corrected in order; batches may
// span conversations and are applied one conversation at a time, serialized
// with that conversation's index path.
func (p *Pipeline) Correct(ctx context.Context, events []core.MemoryEvent, behavior CorrectBehavior) error {
	if len(events) == 0 {
		return nil
	}

	for i := range events {
		if err := core.ValidateEvent(&events[i]); err != nil {
			return err
		}
	}

	runOrder := make([]string, 0, 1)
	runs := make(map[string][]core.MemoryEvent)
	for _, event := range events {
		if _, seen := runs[event.ConversationId]; !seen {
			runOrder = append(runOrder, event.ConversationId)
		}
		runs[event.ConversationId] = append(runs[event.ConversationId], event)
	}

	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return ErrPipelineReleased
	}
	states := make(map[string]*conversationState, len(runOrder))
	for _, conversationId := range runOrder {
		states[conversationId] = p.stateLocked(conversationId)
	}
	p.mu.Unlock()

	for _, conversationId := range runOrder {
		st := states[conversationId]
		st.procMu.Lock()
		err := p.correctRun(ctx, conversationId, st, runs[conversationId], behavior)
		st.procMu.Unlock()
		if err != nil {
			return fmt.Errorf("correcting conversation %q: %w", conversationId, err)
		}
	}
	return nil
}

// correctRun applies one conversation's correction. Callers must hold
// st.procMu.
func (p *Pipeline) correctRun(ctx context.Context, conversationId string, st *conversationState, events []core.MemoryEvent, behavior CorrectBehavior) error {
	if err := p.journal.AppendEvents(ctx, events...); err != nil {
		return err
	}

	if err := p.loadCursorLocked(ctx, conversationId, st); err != nil {
		return err
	}

	version := st.cursor.CurrentVersion()
	turns := core.TurnRange{Start: events[0].TurnId, End: events[len(events)-1].TurnId}

	if behavior == CorrectReplace {
		result, err := p.chunkRepo.DeleteBySource(ctx, conversationId, &turns)
		if err != nil {
			return err
		}
		if len(result.Errors) > 0 {
			return result.Errors[0]
		}
		version++
	}

	records, err := p.builder.BuildVersion(ctx, conversationId, events, version)
	if err != nil {
		return err
	}

	if len(records) > 0 {
		if err := p.embedRecords(ctx, records); err != nil {
			return err
		}

		result, err := p.chunkRepo.UpsertChunks(ctx, records...)
		if err != nil {
			return err
		}
		if len(result.Errors) > 0 {
			return fmt.Errorf("%w: %d of %d records rejected: %w",
				core.ErrIndexWrite, len(result.Errors), len(records), result.Errors[0].Err)
		}
		p.chunksUpserted.Add(int64(result.Upserted + result.Updated))
	}

	return p.advanceCursorLocked(ctx, st, turns.End, version)
}
