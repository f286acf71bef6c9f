package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEntry(id, link string) *domain.Entry {
	return &domain.Entry{
		ID:        id,
		FeedTitle: "Planet Go",
		FeedURL:   "https://planet.example.com/feed.xml",
		Title:     "Entry " + id,
		Link:      link,
		Published: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Content:   "<p>body</p>",
	}
}

func TestStore_Migrate_Idempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening runs migrations against an up-to-date schema.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	err = store.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestEntryStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	entries := store.EntryStore()
	ctx := context.Background()

	entry := testEntry("e1", "https://example.com/post-1")
	require.NoError(t, entries.SaveEntry(ctx, entry))

	got, err := entries.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Entry e1", got.Title)
	assert.Equal(t, "https://example.com/post-1", got.Link)
	assert.Equal(t, entry.Published, got.Published.UTC())
	assert.False(t, got.FetchedAt.IsZero())
}

func TestEntryStore_GetEntry_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.EntryStore().GetEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryStore_SaveEntry_DedupsByLink(t *testing.T) {
	store := newTestStore(t)
	entries := store.EntryStore()
	ctx := context.Background()

	require.NoError(t, entries.SaveEntry(ctx, testEntry("e1", "https://example.com/post-1")))

	// Refetching the same link under a fresh ID updates in place.
	updated := testEntry("e2", "https://example.com/post-1")
	updated.Title = "Updated Title"
	require.NoError(t, entries.SaveEntry(ctx, updated))

	all, err := entries.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "e1", all[0].ID)
	assert.Equal(t, "Updated Title", all[0].Title)
}

func TestEntryStore_SaveEntry_EmptyLinksNotDeduped(t *testing.T) {
	store := newTestStore(t)
	entries := store.EntryStore()
	ctx := context.Background()

	require.NoError(t, entries.SaveEntry(ctx, testEntry("e1", "")))
	require.NoError(t, entries.SaveEntry(ctx, testEntry("e2", "")))

	all, err := entries.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEntryStore_ListEntries_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	entries := store.EntryStore()
	ctx := context.Background()

	older := testEntry("e1", "https://example.com/post-1")
	older.Published = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := testEntry("e2", "https://example.com/post-2")
	newer.Published = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, entries.SaveEntry(ctx, older))
	require.NoError(t, entries.SaveEntry(ctx, newer))

	all, err := entries.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "e2", all[0].ID)
	assert.Equal(t, "e1", all[1].ID)
}

func TestEntryStore_DeleteEntry_CascadesSelection(t *testing.T) {
	store := newTestStore(t)
	entries := store.EntryStore()
	selections := store.SelectionStore()
	ctx := context.Background()

	require.NoError(t, entries.SaveEntry(ctx, testEntry("e1", "https://example.com/post-1")))
	require.NoError(t, selections.Select(ctx, "e1"))

	require.NoError(t, entries.DeleteEntry(ctx, "e1"))

	_, err := entries.GetEntry(ctx, "e1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ids, err := selections.SelectedIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSelectionStore_SelectPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	entries := store.EntryStore()
	selections := store.SelectionStore()
	ctx := context.Background()

	for _, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, entries.SaveEntry(ctx, testEntry(id, "https://example.com/"+id)))
	}

	require.NoError(t, selections.Select(ctx, "e3"))
	require.NoError(t, selections.Select(ctx, "e1"))
	require.NoError(t, selections.Select(ctx, "e2"))

	ids, err := selections.SelectedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e3", "e1", "e2"}, ids)
}

func TestSelectionStore_Select_Idempotent(t *testing.T) {
	store := newTestStore(t)
	entries := store.EntryStore()
	selections := store.SelectionStore()
	ctx := context.Background()

	for _, id := range []string{"e1", "e2"} {
		require.NoError(t, entries.SaveEntry(ctx, testEntry(id, "https://example.com/"+id)))
	}

	require.NoError(t, selections.Select(ctx, "e1"))
	require.NoError(t, selections.Select(ctx, "e2"))
	// Re-selecting keeps the original position.
	require.NoError(t, selections.Select(ctx, "e1"))

	ids, err := selections.SelectedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, ids)
}

func TestSelectionStore_DeselectAndIsSelected(t *testing.T) {
	store := newTestStore(t)
	entries := store.EntryStore()
	selections := store.SelectionStore()
	ctx := context.Background()

	require.NoError(t, entries.SaveEntry(ctx, testEntry("e1", "https://example.com/e1")))
	require.NoError(t, selections.Select(ctx, "e1"))

	selected, err := selections.IsSelected(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, selected)

	require.NoError(t, selections.Deselect(ctx, "e1"))
	// Deselecting an unmarked entry is a no-op.
	require.NoError(t, selections.Deselect(ctx, "e1"))

	selected, err = selections.IsSelected(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, selected)
}

func TestSelectionStore_DeselectAll(t *testing.T) {
	store := newTestStore(t)
	entries := store.EntryStore()
	selections := store.SelectionStore()
	ctx := context.Background()

	for _, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, entries.SaveEntry(ctx, testEntry(id, "https://example.com/"+id)))
		require.NoError(t, selections.Select(ctx, id))
	}

	require.NoError(t, selections.DeselectAll(ctx))

	ids, err := selections.SelectedIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
