package driving

import "context"

// FetchStatus summarizes what happened during a feed fetch.
type FetchStatus struct {
	// FeedsFetched is the number of feeds fetched successfully.
	FeedsFetched int

	// EntriesStored is the number of entries saved or updated.
	EntriesStored int

	// ErrorCount is the number of feeds that failed.
	ErrorCount int
}

// FeedFetcher refreshes the entry store from configured feeds.
type FeedFetcher interface {
	// Fetch fetches the given feed URLs concurrently and stores the
	// resulting entries. Per-feed failures are counted, not fatal.
	Fetch(ctx context.Context, urls []string) (*FetchStatus, error)
}
