// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache snapshots normalized records between runs so already-seen
// works can be skipped. The cache is strictly optional: the pipeline is
// correct without it, just more repetitive.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/litdigest/pkg/types"
)

// Store manages the seen-record SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database, creating parent directories and
// the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			title TEXT,
			abstract TEXT,
			published_at TEXT,
			external_url TEXT,
			sources TEXT,
			first_seen TEXT,
			run_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_first_seen ON records(first_seen)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Seen returns the subset of keys already present in the cache.
func (s *Store) Seen(ctx context.Context, keys []string) (map[string]bool, error) {
	seen := make(map[string]bool)
	if len(keys) == 0 {
		return seen, nil
	}

	// SQLite caps bound parameters; chunk the lookup.
	const chunk = 500
	for start := 0; start < len(keys); start += chunk {
		end := start + chunk
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		placeholders := strings.Repeat("?,", len(batch))
		placeholders = placeholders[:len(placeholders)-1]
		args := make([]any, len(batch))
		for i, k := range batch {
			args[i] = k
		}

		rows, err := s.db.QueryContext(ctx,
			`SELECT key FROM records WHERE key IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("querying seen keys: %w", err)
		}
		for rows.Next() {
			var k string
			if err := rows.Scan(&k); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning seen key: %w", err)
			}
			seen[k] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("reading seen keys: %w", err)
		}
		rows.Close()
	}
	return seen, nil
}

// Put stores records under the given run ID. Records whose key is already
// cached are left untouched, preserving their original first_seen time.
func (s *Store) Put(ctx context.Context, runID string, records []types.NormalizedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning cache transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO records
		(key, title, abstract, published_at, external_url, sources, first_seen, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing cache insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		sources := strings.Join(r.SourceLabels(), ",")
		if _, err := stmt.ExecContext(ctx, r.Key, r.Title, r.Abstract,
			r.PublishedAt.UTC().Format(time.RFC3339), r.ExternalURL, sources, now, runID); err != nil {
			return fmt.Errorf("inserting record %s: %w", r.Key, err)
		}
	}
	return tx.Commit()
}

// Prune deletes records first seen before the given age. Returns the number
// of rows removed.
func (s *Store) Prune(ctx context.Context, age time.Duration) (int64, error) {
	threshold := time.Now().UTC().Add(-age).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE first_seen < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache records: %w", err)
	}
	return n, nil
}
