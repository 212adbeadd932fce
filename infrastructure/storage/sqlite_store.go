package storage

import (
	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite
)

// SQLiteStore persists sessions in a single SQLite table, one JSON document per row
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore - opens (and creates if needed) the session database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	if err := createSessionTable(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func createSessionTable(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS sessions(
	  id          TEXT    PRIMARY KEY,
	  state_json  TEXT    NOT NULL CHECK (json_valid(state_json)),
	  created_at  INTEGER NOT NULL,
	  expires_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Close - closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get - loads a session; expired rows are deleted and reported as not found
func (s *SQLiteStore) Get(ctx context.Context, id string) (*entities.SessionState, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT state_json FROM sessions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &entities.SessionNotFoundError{SessionID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var state entities.SessionState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if state.Expired(s.now()) {
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, &entities.SessionNotFoundError{SessionID: id}
	}
	return &state, nil
}

// Put - inserts or replaces a session
func (s *SQLiteStore) Put(ctx context.Context, state *entities.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO sessions(id, state_json, created_at, expires_at) VALUES(?, json(?), ?, ?)
	ON CONFLICT(id) DO UPDATE SET state_json = excluded.state_json, expires_at = excluded.expires_at`,
		state.SessionID, string(data), state.CreatedAt.UnixNano(), expiresAt(state))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete - removes a session, idempotent
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListExpired - ids of sessions whose TTL elapsed at now
func (s *SQLiteStore) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	return s.queryIDs(ctx, `SELECT id FROM sessions WHERE expires_at < ? ORDER BY id`, now.UnixNano())
}

// List - ids of all sessions, oldest first
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, `SELECT id FROM sessions ORDER BY created_at, id`)
}

func (s *SQLiteStore) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// expiresAt - storage form of the expiry; sessions without one never expire
func expiresAt(state *entities.SessionState) int64 {
	if state.ExpiresAt.IsZero() {
		return 1<<63 - 1
	}
	return state.ExpiresAt.UnixNano()
}

// Ensure SQLiteStore implements SessionStore interface
var _ interfaces.SessionStore = (*SQLiteStore)(nil)
