// Package cache implements the content-addressed extraction cache backed
// by SQLite (modernc.org/sqlite for pure-Go, CGO-free access).
//
// An entry is keyed by file path and is valid only while its content hash
// matches the file's current bytes: a path hit with a differing hash is a
// miss, never a stale read. The cache is a performance optimization, not
// a correctness dependency; every cache error downgrades to a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Entry is one cached extraction.
type Entry struct {
	Path      string
	FileHash  string
	FileType  string
	Text      string
	Summary   string
	Timestamp time.Time
}

// Store is the SQLite-backed extraction cache.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the cache database at path and initializes the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS extractions (
			path TEXT PRIMARY KEY,
			file_hash TEXT NOT NULL,
			file_type TEXT NOT NULL,
			extracted_text TEXT NOT NULL,
			summary TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init cache schema: %w", err)
	}
	return nil
}

// Close closes the cache database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// HashFile returns the content hash used as the cache validity key:
// the first 16 hex characters of the file's SHA-256.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16], nil
}

// Lookup returns the cached entry for (path, hash). Both must match;
// a hash mismatch means the content changed and is a miss.
func (s *Store) Lookup(ctx context.Context, path, hash string) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT path, file_hash, file_type, extracted_text, summary, timestamp
		FROM extractions
		WHERE path = ? AND file_hash = ?
	`

	var e Entry
	err := s.db.QueryRowContext(ctx, query, path, hash).Scan(
		&e.Path, &e.FileHash, &e.FileType, &e.Text, &e.Summary, &e.Timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	return &e, true, nil
}

// Store upserts an entry. One row per path: a re-extraction replaces any
// prior entry unconditionally.
func (s *Store) Store(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	query := `
		INSERT OR REPLACE INTO extractions
			(path, file_hash, file_type, extracted_text, summary, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.Path, e.FileHash, e.FileType, e.Text, e.Summary, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Count returns the number of cached entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM extractions").Scan(&n); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}

// Prune removes entries older than the cutoff. The cache otherwise grows
// without bound; nothing calls this automatically.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM extractions WHERE timestamp < ?", olderThan)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
