package storage

import (
	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Expired entries are evicted
// lazily on Get and in bulk by the session janitor.
type MemoryStore struct {
	sessions map[string]*entities.SessionState
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryStore - creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*entities.SessionState),
		now:      time.Now,
	}
}

// Get - returns a copy of the session, evicting it if its TTL elapsed
func (m *MemoryStore) Get(ctx context.Context, id string) (*entities.SessionState, error) {
	m.mu.RLock()
	state, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, &entities.SessionNotFoundError{SessionID: id}
	}
	if state.Expired(m.now()) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return nil, &entities.SessionNotFoundError{SessionID: id}
	}
	return cloneState(state), nil
}

// Put - stores a copy of the session
func (m *MemoryStore) Put(ctx context.Context, state *entities.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[state.SessionID] = cloneState(state)
	return nil
}

// Delete - removes a session, idempotent
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// ListExpired - ids of sessions whose TTL elapsed at now
func (m *MemoryStore) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, state := range m.sessions {
		if state.Expired(now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// List - ids of all sessions, oldest first
func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	states := make([]*entities.SessionState, 0, len(m.sessions))
	for _, state := range m.sessions {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].CreatedAt.Equal(states[j].CreatedAt) {
			return states[i].SessionID < states[j].SessionID
		}
		return states[i].CreatedAt.Before(states[j].CreatedAt)
	})

	ids := make([]string, len(states))
	for i, state := range states {
		ids[i] = state.SessionID
	}
	return ids, nil
}

// cloneState copies the parts of a session that callers append to
func cloneState(state *entities.SessionState) *entities.SessionState {
	c := *state
	c.TestCases = append([]entities.TestCase(nil), state.TestCases...)
	return &c
}

// Ensure MemoryStore implements SessionStore interface
var _ interfaces.SessionStore = (*MemoryStore)(nil)
