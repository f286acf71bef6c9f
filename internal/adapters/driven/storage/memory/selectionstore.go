package memory

import (
	"context"
	"sync"

	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
)

// Ensure SelectionStore implements the interface.
var _ driven.SelectionStore = (*SelectionStore)(nil)

// SelectionStore is an in-memory implementation of driven.SelectionStore.
// Marks are kept in selection order.
type SelectionStore struct {
	mu    sync.RWMutex
	order []string
	marks map[string]bool
}

// NewSelectionStore creates a new in-memory selection store.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{
		marks: make(map[string]bool),
	}
}

// Select marks an entry for summarization. Idempotent.
func (s *SelectionStore) Select(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.marks[entryID] {
		s.marks[entryID] = true
		s.order = append(s.order, entryID)
	}
	return nil
}

// Deselect clears the mark on an entry. Idempotent.
func (s *SelectionStore) Deselect(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.marks[entryID] {
		return nil
	}
	delete(s.marks, entryID)
	for i, id := range s.order {
		if id == entryID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeselectAll clears every mark. Idempotent.
func (s *SelectionStore) DeselectAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.marks = make(map[string]bool)
	s.order = nil
	return nil
}

// IsSelected reports whether an entry is marked.
func (s *SelectionStore) IsSelected(_ context.Context, entryID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marks[entryID], nil
}

// SelectedIDs returns a snapshot of marked entry IDs in selection order.
func (s *SelectionStore) SelectedIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids, nil
}
