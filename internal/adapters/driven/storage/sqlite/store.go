// Package sqlite provides persistent storage for entries and selection
// marks, backed by a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/danielfleischer/elfeed-ai/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
	"github.com/danielfleischer/elfeed-ai/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// entry and selection store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.elfeed-ai/data/entries.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".elfeed-ai", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "entries.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EntryStore returns an EntryStore interface backed by this store.
func (s *Store) EntryStore() driven.EntryStore {
	return &entryStore{store: s}
}

// SelectionStore returns a SelectionStore interface backed by this store.
func (s *Store) SelectionStore() driven.SelectionStore {
	return &selectionStore{store: s}
}

// migrate applies pending schema migrations in version order.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Entry Store ====================

type entryStore struct {
	store *Store
}

var _ driven.EntryStore = (*entryStore)(nil)

// SaveEntry stores or updates an entry, deduplicating by link.
func (s *entryStore) SaveEntry(ctx context.Context, entry *domain.Entry) error {
	id := entry.ID

	// Refetching a known link keeps the existing ID.
	if entry.Link != "" {
		var existingID string
		err := s.store.db.QueryRowContext(ctx,
			"SELECT id FROM entries WHERE link = ?", entry.Link).Scan(&existingID)
		switch {
		case err == nil:
			id = existingID
		case errors.Is(err, sql.ErrNoRows):
			// New link
		default:
			return fmt.Errorf("looking up link: %w", err)
		}
	}

	fetchedAt := entry.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO entries (id, feed_title, feed_url, title, link, published, content, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			feed_title = excluded.feed_title,
			feed_url = excluded.feed_url,
			title = excluded.title,
			link = excluded.link,
			published = excluded.published,
			content = excluded.content,
			fetched_at = excluded.fetched_at
	`, id, entry.FeedTitle, entry.FeedURL, entry.Title, entry.Link,
		entry.Published, entry.Content, fetchedAt)

	if err != nil {
		return fmt.Errorf("saving entry: %w", err)
	}
	return nil
}

// GetEntry retrieves an entry by ID.
func (s *entryStore) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, feed_title, feed_url, title, link, published, content, fetched_at
		FROM entries WHERE id = ?
	`, id)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns all entries, newest first.
func (s *entryStore) ListEntries(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, feed_title, feed_url, title, link, published, content, fetched_at
		FROM entries
		ORDER BY published DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes an entry and its selection mark.
func (s *entryStore) DeleteEntry(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanEntry.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.Entry, error) {
	var entry domain.Entry
	var published, fetchedAt sql.NullTime
	if err := row.Scan(&entry.ID, &entry.FeedTitle, &entry.FeedURL, &entry.Title,
		&entry.Link, &published, &entry.Content, &fetchedAt); err != nil {
		return nil, err
	}
	if published.Valid {
		entry.Published = published.Time
	}
	if fetchedAt.Valid {
		entry.FetchedAt = fetchedAt.Time
	}
	return &entry, nil
}

// ==================== Selection Store ====================

type selectionStore struct {
	store *Store
}

var _ driven.SelectionStore = (*selectionStore)(nil)

// Select marks an entry. Idempotent: selecting a selected entry keeps
// its original position.
func (s *selectionStore) Select(ctx context.Context, entryID string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO selections (entry_id, position)
		SELECT ?, COALESCE(MAX(position), 0) + 1 FROM selections WHERE true
		ON CONFLICT(entry_id) DO NOTHING
	`, entryID)
	if err != nil {
		return fmt.Errorf("selecting entry: %w", err)
	}
	return nil
}

// Deselect clears the mark on an entry. Idempotent.
func (s *selectionStore) Deselect(ctx context.Context, entryID string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM selections WHERE entry_id = ?", entryID); err != nil {
		return fmt.Errorf("deselecting entry: %w", err)
	}
	return nil
}

// DeselectAll clears every mark. Idempotent.
func (s *selectionStore) DeselectAll(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM selections"); err != nil {
		return fmt.Errorf("deselecting all entries: %w", err)
	}
	return nil
}

// IsSelected reports whether an entry is marked.
func (s *selectionStore) IsSelected(ctx context.Context, entryID string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM selections WHERE entry_id = ?", entryID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking selection: %w", err)
	}
	return count > 0, nil
}

// SelectedIDs returns marked entry IDs in selection order.
func (s *selectionStore) SelectedIDs(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT entry_id FROM selections ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying selections: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning selection: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating selections: %w", err)
	}
	return ids, nil
}
