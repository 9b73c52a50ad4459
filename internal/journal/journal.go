// Package journal is the append-only conversation store: role-tagged
// text events with timestamps, used to reconstruct session history.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql
)

// Event roles. Every stored line is tagged with who produced it.
const (
	RoleCaller = "caller"
	RoleAura   = "aura"
	RoleSystem = "system"
	RoleError  = "error"
)

// Event is one conversation record.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
}

// Store is the SQLite-backed conversation journal.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	// seq preserves append order even when timestamps collide.
	schema := `
		CREATE TABLE IF NOT EXISTS conversation_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			timestamp DATETIME NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_conversation_events_timestamp
			ON conversation_events(timestamp);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init journal schema: %w", err)
	}
	return nil
}

// Close closes the journal database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append durably records one event. Safe to call concurrently.
func (s *Store) Append(ctx context.Context, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO conversation_events (id, timestamp, role, content)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, uuid.NewString(), time.Now(), role, content)
	if err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

// Recent returns the most recent limit events in chronological order,
// oldest first. The store is queried newest-first, then reversed, so the
// caller-facing contract holds regardless of retrieval order.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, timestamp, role, content
		FROM conversation_events
		ORDER BY seq DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("journal recent: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Role, &e.Content); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal rows: %w", err)
	}

	// Reverse newest-first into oldest-first
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// Count returns the total number of journaled events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversation_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("journal count: %w", err)
	}
	return n, nil
}
