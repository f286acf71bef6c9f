package driven

import (
	"context"

	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
)

// FetchResult is the outcome of fetching one feed URL.
// If Err != nil, Entries may be incomplete or empty.
type FetchResult struct {
	URL     string
	Entries []domain.Entry
	Err     error
}

// FeedParser fetches and parses feeds (RSS/Atom) into domain entries.
//
// FetchMany must send exactly one FetchResult per URL and then close
// the channel. Result order is not guaranteed. Implementations must
// respect ctx cancellation.
type FeedParser interface {
	FetchMany(ctx context.Context, urls []string) <-chan FetchResult
}
