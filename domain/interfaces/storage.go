package interfaces

import (
	"ai_testgen/domain/entities"
	"context"
	"time"
)

// SessionStore is the key-value store behind incremental generation sessions
type SessionStore interface {
	// Get returns the session or a *entities.SessionNotFoundError
	Get(ctx context.Context, id string) (*entities.SessionState, error)

	// Put inserts or replaces a session
	Put(ctx context.Context, state *entities.SessionState) error

	// Delete removes a session; deleting an unknown id is not an error
	Delete(ctx context.Context, id string) error

	// ListExpired returns ids of sessions whose TTL elapsed at now
	ListExpired(ctx context.Context, now time.Time) ([]string, error)

	// List returns ids of all stored sessions ordered by creation time
	List(ctx context.Context) ([]string, error)
}

// SnapshotStorage persists captured snapshots between CLI invocations
type SnapshotStorage interface {
	SaveSnapshot(name string, snapshot *entities.PageSnapshot) (string, error)
	LoadSnapshot(path string) (*entities.PageSnapshot, error)
}
