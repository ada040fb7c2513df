// Package transcript persists serialized conversation histories in SQLite
// using modernc.org/sqlite (pure Go, no CGO) with WAL mode.
package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000 // milliseconds

// ErrNotFound is returned when no transcript exists for a session ID.
var ErrNotFound = errors.New("transcript: session not found")

// SessionInfo describes one stored transcript without its message payload.
type SessionInfo struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Store persists one JSON transcript per session ID.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a transcript database at the given path.
//
// The database uses WAL mode, a 5 s busy timeout, and a single connection
// (SQLite serialises writes). The schema is migrated automatically.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("transcript: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("transcript: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("transcript: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("transcript: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Save inserts or replaces the transcript for a session.
func (s *Store) Save(ctx context.Context, sessionID string, messages []byte) error {
	if sessionID == "" {
		return errors.New("transcript: session ID is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcripts (session_id, messages)
		VALUES (?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			messages   = excluded.messages,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
		sessionID, string(messages))
	if err != nil {
		return fmt.Errorf("transcript: save %s: %w", sessionID, err)
	}
	return nil
}

// Load returns the stored transcript for a session.
func (s *Store) Load(ctx context.Context, sessionID string) ([]byte, error) {
	var messages string
	err := s.db.QueryRowContext(ctx,
		"SELECT messages FROM transcripts WHERE session_id = ?", sessionID).Scan(&messages)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("transcript: load %s: %w", sessionID, err)
	}
	return []byte(messages), nil
}

// List returns all stored sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id, created_at, updated_at FROM transcripts ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("transcript: list: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("transcript: scan row: %w", err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transcript: iterate rows: %w", err)
	}
	return sessions, nil
}

// Delete removes a session's transcript. Deleting a missing session
// returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM transcripts WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("transcript: delete %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transcript: delete %s: %w", sessionID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
