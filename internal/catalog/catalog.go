// Package catalog reads the published movie catalog used to build the
// sitemap.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Kind is the kind of a catalog entry.
type Kind string

const (
	KindFilm  Kind = "film"
	KindSerie Kind = "serie"
	KindListe Kind = "liste"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindFilm, KindSerie, KindListe:
		return true
	}
	return false
}

// Entry is one published page of the catalog.
type Entry struct {
	Kind Kind

	// ID is the catalog id. Lists are addressed by slug only.
	ID string

	Slug      string
	UpdatedAt time.Time
	Published bool
}

// Store reads and writes catalog entries.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite catalog at path. The path can be ":memory:" for an
// in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping catalog: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
	CREATE TABLE IF NOT EXISTS catalog_entries (
		kind       TEXT NOT NULL,
		id         TEXT NOT NULL DEFAULT '',
		slug       TEXT NOT NULL,
		published  INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (kind, id, slug)
	);
	CREATE INDEX IF NOT EXISTS idx_catalog_entries_published
		ON catalog_entries (published, kind);
`

// Migrate creates the catalog table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	return nil
}

// Upsert inserts or updates an entry.
func (s *Store) Upsert(ctx context.Context, e Entry) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("invalid catalog kind %q", e.Kind)
	}
	if e.Slug == "" {
		return fmt.Errorf("catalog entry %s/%s has no slug", e.Kind, e.ID)
	}

	query := `
		INSERT INTO catalog_entries (kind, id, slug, published, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (kind, id, slug) DO UPDATE SET
			published = excluded.published,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, e.Kind, e.ID, e.Slug, e.Published, e.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert catalog entry: %w", err)
	}
	return nil
}

// ListEntries returns every published entry ordered by kind, then most
// recently updated first.
func (s *Store) ListEntries(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT kind, id, slug, published, updated_at
		FROM catalog_entries
		WHERE published = 1
		ORDER BY kind, updated_at DESC, slug
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Kind, &e.ID, &e.Slug, &e.Published, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return entries, nil
}
