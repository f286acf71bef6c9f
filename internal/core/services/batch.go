package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driving"
	"github.com/danielfleischer/elfeed-ai/internal/logger"
)

// Ensure BatchOrchestrator implements the interface.
var _ driving.Summarizer = (*BatchOrchestrator)(nil)

// BatchOrchestrator dispatches one concurrent summarization request per
// selected entry and aggregates the independently-arriving results into
// a single report, shown only once every request has resolved.
type BatchOrchestrator struct {
	entryStore driven.EntryStore
	selection  driven.SelectionStore
	extractor  driven.Extractor
	sink       driven.ReportSink
	notifier   driven.Notifier
}

// NewBatchOrchestrator creates a new batch orchestrator.
func NewBatchOrchestrator(
	entryStore driven.EntryStore,
	selection driven.SelectionStore,
	extractor driven.Extractor,
	sink driven.ReportSink,
	notifier driven.Notifier,
) *BatchOrchestrator {
	return &BatchOrchestrator{
		entryStore: entryStore,
		selection:  selection,
		extractor:  extractor,
		sink:       sink,
		notifier:   notifier,
	}
}

// batchState is owned by one batch run. completed and the sink are
// shared across all jobs of the batch and mutated only inside mu.
// Invariant: 0 <= completed <= total; the batch is done exactly when
// completed == total.
type batchState struct {
	mu        sync.Mutex
	total     int
	completed int
	sink      driven.ReportSink
	notifier  driven.Notifier
	done      chan struct{}
}

// job binds one entry to its batch state. It replaces closure capture
// of per-entry context in the completion handler.
type job struct {
	entry *domain.Entry
	state *batchState
}

// onComplete is the one-shot completion handler for the job's request.
// The summary client guarantees it runs at most once, asynchronously.
func (j *job) onComplete(c driven.Completion) {
	j.state.resolve(j.entry, c)
}

// resolve records one resolved request. Failed requests are notified
// and produce no report block; successful ones are appended to the
// sink if it is still live.
func (s *batchState) resolve(entry *domain.Entry, c driven.Completion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case c.Err != nil:
		s.notifier.Failed(entry.Title, c.Err)
	case s.sink.Live():
		s.sink.Append(entry, c.Summary)
	}
	s.finish()
}

// skip records an entry with no extractable content. It counts toward
// completion without a request or a report block.
func (s *batchState) skip(entry *domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifier.Skipped(entry.Title)
	s.finish()
}

// finish increments the completion counter and, if this is the
// increment that reaches total, finalizes the batch. Must be called
// with mu held so that increment-and-compare is a single indivisible
// step: only one caller can observe the completed == total transition.
func (s *batchState) finish() {
	s.completed++
	s.notifier.Progress(s.completed, s.total)

	if s.completed == s.total {
		if s.sink.Live() {
			s.sink.Show()
		}
		close(s.done)
	}
}

// batchHandle observes a running batch.
type batchHandle struct {
	state *batchState
}

// Ensure batchHandle implements the interface.
var _ driving.BatchHandle = (*batchHandle)(nil)

// Done returns a channel closed once every entry has completed.
func (h *batchHandle) Done() <-chan struct{} {
	return h.state.done
}

// Completed returns the number of entries that have completed so far.
func (h *batchHandle) Completed() int {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	return h.state.completed
}

// Total returns the fixed number of entries in the batch.
func (h *batchHandle) Total() int {
	return h.state.total
}

// Wait blocks until the batch completes or ctx is done. A batch with a
// permanently unresponsive request never completes; ctx bounds the
// wait without cancelling the batch.
func (h *batchHandle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.state.done:
		return nil
	}
}

// StartBatch dispatches one summarization request per entry with
// non-empty extracted content and returns without waiting for results.
//
// The completion counter is fixed at len(entries) before dispatch:
// entries with empty content count as completed immediately, so even a
// batch of only empty entries finalizes. Selection marks for every
// entry in the batch are cleared before StartBatch returns, regardless
// of individual request outcome.
func (o *BatchOrchestrator) StartBatch(
	ctx context.Context,
	entries []domain.Entry,
	client driven.SummaryClient,
	instruction string,
) (driving.BatchHandle, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptySelection
	}

	state := &batchState{
		total:    len(entries),
		sink:     o.sink,
		notifier: o.notifier,
		done:     make(chan struct{}),
	}

	if state.sink.Live() {
		state.sink.Clear()
		state.sink.WriteHeader(domain.ReportMeta{
			GeneratedAt: time.Now(),
			Model:       client.ModelName(),
			EntryCount:  len(entries),
		})
	}

	logger.Info("Starting batch: %d entries, model %s", len(entries), client.ModelName())

	for i := range entries {
		entry := &entries[i]

		text := o.extractor.Extract(entry)
		if strings.TrimSpace(text) == "" {
			// No request for empty entries; still counts toward total.
			state.skip(entry)
			continue
		}

		j := &job{entry: entry, state: state}
		client.Submit(ctx, text, instruction, j.onComplete)
		logger.Debug("Dispatched: %s", entry.Title)
	}

	// Marks are cleared as soon as dispatch finishes, before results
	// arrive. Selection state is not linked to request success.
	for i := range entries {
		if err := o.selection.Deselect(ctx, entries[i].ID); err != nil {
			logger.Warn("Failed to deselect %s: %v", entries[i].ID, err)
		}
	}

	return &batchHandle{state: state}, nil
}

// SummarizeSelected snapshots the selection store and starts a batch
// over the selected entries in selection order.
func (o *BatchOrchestrator) SummarizeSelected(
	ctx context.Context,
	client driven.SummaryClient,
	instruction string,
) (driving.BatchHandle, error) {
	ids, err := o.selection.SelectedIDs(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := o.entryStore.GetEntry(ctx, id)
		if err != nil {
			logger.Warn("Selected entry %s not found, skipping", id)
			continue
		}
		entries = append(entries, *entry)
	}

	return o.StartBatch(ctx, entries, client, instruction)
}
