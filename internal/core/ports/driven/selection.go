package driven

import "context"

// SelectionStore tracks which entries are marked for the next batch.
// Mutations are idempotent: selecting a selected entry or deselecting a
// deselected one is a no-op.
type SelectionStore interface {
	// Select marks an entry for summarization.
	Select(ctx context.Context, entryID string) error

	// Deselect clears the mark on an entry.
	Deselect(ctx context.Context, entryID string) error

	// DeselectAll clears every mark.
	DeselectAll(ctx context.Context) error

	// IsSelected reports whether an entry is marked.
	IsSelected(ctx context.Context, entryID string) (bool, error)

	// SelectedIDs returns a snapshot of marked entry IDs in selection
	// order. Later mutations do not affect a returned snapshot.
	SelectedIDs(ctx context.Context) ([]string, error)
}
