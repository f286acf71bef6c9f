package services

import (
	"context"

	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driving"
	"github.com/danielfleischer/elfeed-ai/internal/logger"
)

// Ensure FetchService implements the interface.
var _ driving.FeedFetcher = (*FetchService)(nil)

// FetchService refreshes the entry store from configured feeds.
type FetchService struct {
	parser     driven.FeedParser
	entryStore driven.EntryStore
}

// NewFetchService creates a new feed fetch service.
func NewFetchService(parser driven.FeedParser, entryStore driven.EntryStore) *FetchService {
	return &FetchService{
		parser:     parser,
		entryStore: entryStore,
	}
}

// Fetch fetches the given feed URLs concurrently and stores the
// resulting entries. Per-feed failures are counted, never fatal.
func (s *FetchService) Fetch(ctx context.Context, urls []string) (*driving.FetchStatus, error) {
	status := &driving.FetchStatus{}

	for result := range s.parser.FetchMany(ctx, urls) {
		if result.Err != nil {
			status.ErrorCount++
			logger.Warn("Fetch failed for %s: %v", result.URL, result.Err)
			continue
		}

		status.FeedsFetched++
		for i := range result.Entries {
			if err := s.entryStore.SaveEntry(ctx, &result.Entries[i]); err != nil {
				logger.Warn("Failed to save entry %q: %v", result.Entries[i].Title, err)
				continue
			}
			status.EntriesStored++
		}
		logger.Debug("Fetched %d entries from %s", len(result.Entries), result.URL)
	}

	if err := ctx.Err(); err != nil {
		return status, err
	}
	return status, nil
}
