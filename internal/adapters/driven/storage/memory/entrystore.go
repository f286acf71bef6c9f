// Package memory provides in-memory implementations of the storage
// ports, used in tests and as a fallback when no database is wanted.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
)

// Ensure EntryStore implements the interface.
var _ driven.EntryStore = (*EntryStore)(nil)

// EntryStore is an in-memory implementation of driven.EntryStore.
type EntryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.Entry
	byLink  map[string]string
}

// NewEntryStore creates a new in-memory entry store.
func NewEntryStore() *EntryStore {
	return &EntryStore{
		entries: make(map[string]domain.Entry),
		byLink:  make(map[string]string),
	}
}

// SaveEntry stores or updates an entry. Entries are deduplicated by
// link: saving an entry whose link already exists keeps the existing ID.
func (s *EntryStore) SaveEntry(_ context.Context, entry *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *entry
	if existingID, ok := s.byLink[entry.Link]; ok && entry.Link != "" {
		saved.ID = existingID
	}

	s.entries[saved.ID] = saved
	if saved.Link != "" {
		s.byLink[saved.Link] = saved.ID
	}
	return nil
}

// GetEntry retrieves an entry by ID.
func (s *EntryStore) GetEntry(_ context.Context, id string) (*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// ListEntries returns all entries, newest first.
func (s *EntryStore) ListEntries(_ context.Context) ([]domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Entry, 0, len(s.entries))
	for id := range s.entries {
		result = append(result, s.entries[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Published.After(result[j].Published)
	})
	return result, nil
}

// DeleteEntry removes an entry.
func (s *EntryStore) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[id]; ok {
		delete(s.byLink, entry.Link)
	}
	delete(s.entries, id)
	return nil
}
