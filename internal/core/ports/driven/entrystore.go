package driven

import (
	"context"

	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
)

// EntryStore persists feed entries between invocations.
// Backed by SQLite; an in-memory implementation exists for tests.
type EntryStore interface {
	// SaveEntry stores or updates an entry. Entries are deduplicated by
	// link: saving an entry whose link already exists keeps the
	// existing ID.
	SaveEntry(ctx context.Context, entry *domain.Entry) error

	// GetEntry retrieves an entry by ID.
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)

	// ListEntries returns all entries, newest first.
	ListEntries(ctx context.Context) ([]domain.Entry, error)

	// DeleteEntry removes an entry.
	DeleteEntry(ctx context.Context, id string) error
}
