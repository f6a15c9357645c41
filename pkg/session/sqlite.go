package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite as the storage backend.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a SQLite-backed thread store. The dbPath can be a
// file path or ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS threads (
		id TEXT PRIMARY KEY,
		messages TEXT NOT NULL,
		workflow TEXT NOT NULL DEFAULT '',
		pending_output TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Load returns the stored thread, or ErrNotFound.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*Thread, error) {
	query := `SELECT id, messages, workflow, pending_output, version, updated_at
	          FROM threads WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	var (
		thread       Thread
		messagesJSON string
	)

	err := row.Scan(&thread.ID, &messagesJSON, &thread.Workflow,
		&thread.PendingOutput, &thread.Version, &thread.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan thread: %w", err)
	}

	if err := json.Unmarshal([]byte(messagesJSON), &thread.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}

	return &thread, nil
}

// Save persists the thread, bumping its version and timestamp.
func (s *SQLiteStore) Save(ctx context.Context, thread *Thread) error {
	if thread == nil {
		return fmt.Errorf("cannot save nil thread")
	}

	messagesJSON, err := json.Marshal(thread.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	thread.Version++
	thread.UpdatedAt = time.Now().UTC()

	query := `INSERT INTO threads (id, messages, workflow, pending_output, version, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)
	          ON CONFLICT(id) DO UPDATE SET
	            messages = excluded.messages,
	            workflow = excluded.workflow,
	            pending_output = excluded.pending_output,
	            version = excluded.version,
	            updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query, thread.ID, string(messagesJSON),
		thread.Workflow, thread.PendingOutput, thread.Version, thread.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save thread: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
