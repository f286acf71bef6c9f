package driving

import (
	"context"

	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
)

// Summarizer starts concurrent summarization batches over feed entries.
type Summarizer interface {
	// StartBatch dispatches one summarization request per entry with
	// non-empty extracted content and returns without waiting for
	// results. Entries with empty content are counted as completed
	// immediately. Selection marks for every entry in the batch are
	// cleared before StartBatch returns, regardless of request outcome.
	//
	// Returns domain.ErrEmptySelection if entries is empty; in that
	// case nothing is mutated.
	StartBatch(ctx context.Context, entries []domain.Entry, client driven.SummaryClient, instruction string) (BatchHandle, error)

	// SummarizeSelected snapshots the selection store and starts a
	// batch over the selected entries.
	SummarizeSelected(ctx context.Context, client driven.SummaryClient, instruction string) (BatchHandle, error)
}

// BatchHandle observes a running batch. A batch with a permanently
// unresponsive request never completes; waiting callers can bound the
// wait with a context, which does not cancel the batch itself.
type BatchHandle interface {
	// Done returns a channel closed once every entry has completed.
	Done() <-chan struct{}

	// Completed returns the number of entries that have completed.
	Completed() int

	// Total returns the fixed number of entries in the batch.
	Total() int

	// Wait blocks until the batch completes or ctx is done.
	Wait(ctx context.Context) error
}
