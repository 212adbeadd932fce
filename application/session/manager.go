// Package session owns the lifecycle of incremental generation sessions:
// id allocation, TTL, capacity, per-session serialization and sweeping.
package session

import (
	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTTL         = 30 * time.Minute
	DefaultMaxSessions = 1000

	idPrefix   = "sess_"
	idAttempts = 3
)

// Config bounds the sessions a Manager keeps
type Config struct {
	TTL         time.Duration
	MaxSessions int
}

// Progress is what one generation step adds to a session
type Progress struct {
	NewCases        []entities.TestCase
	Cursor          entities.Cursor
	ProcessedCounts entities.ProcessedCounts
	HasMore         bool
}

type Manager struct {
	store  interfaces.SessionStore
	logger *logrus.Logger
	cfg    Config
	locks  *keyedMutex

	// serializes capacity checks on Create; updates never take it
	createMu sync.Mutex

	now   func() time.Time
	newID func() string
}

// NewManager - creates a session manager on top of store
func NewManager(store interfaces.SessionStore, logger *logrus.Logger, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	return &Manager{
		store:  store,
		logger: logger,
		cfg:    cfg,
		locks:  newKeyedMutex(),
		now:    time.Now,
		newID:  func() string { return idPrefix + uuid.NewString() },
	}
}

// Create - stores a new session holding the snapshot and its first batch
func (m *Manager) Create(ctx context.Context, snapshot entities.PageSnapshot, first Progress, note string) (*entities.SessionState, error) {
	m.createMu.Lock()
	defer m.createMu.Unlock()

	id, err := m.allocateID(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.makeRoom(ctx); err != nil {
		return nil, err
	}

	now := m.now()
	state := &entities.SessionState{
		SessionID:       id,
		Snapshot:        snapshot,
		ProcessedCounts: first.ProcessedCounts,
		TestCases:       append([]entities.TestCase{}, first.NewCases...),
		Cursor:          first.Cursor,
		HasMore:         first.HasMore,
		Note:            note,
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       now.Add(m.cfg.TTL),
	}
	if err := m.store.Put(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"session": id,
		"url":     snapshot.URL,
		"cases":   len(state.TestCases),
	}).Info("Session created")

	return state, nil
}

// allocateID - a fresh id that is not already in the store
func (m *Manager) allocateID(ctx context.Context) (string, error) {
	for i := 0; i < idAttempts; i++ {
		id := m.newID()
		_, err := m.store.Get(ctx, id)
		if errors.Is(err, entities.ErrSessionNotFound) {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check session id: %w", err)
		}
		m.logger.WithField("session", id).Warn("Session id collision")
	}
	return "", fmt.Errorf("failed to allocate a unique session id after %d attempts", idAttempts)
}

// makeRoom - evicts expired sessions, then the oldest, until one more fits
func (m *Manager) makeRoom(ctx context.Context) error {
	ids, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) < m.cfg.MaxSessions {
		return nil
	}

	if _, err := m.Sweep(ctx); err != nil {
		return err
	}
	if ids, err = m.store.List(ctx); err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	for len(ids) >= m.cfg.MaxSessions {
		oldest := ids[0]
		if _, err := m.evict(ctx, oldest, false); err != nil {
			return fmt.Errorf("failed to evict session: %w", err)
		}
		m.logger.WithField("session", oldest).Info("Evicted oldest session")
		ids = ids[1:]
	}
	return nil
}

// Get - returns the session or a SessionNotFoundError
func (m *Manager) Get(ctx context.Context, id string) (*entities.SessionState, error) {
	return m.load(ctx, id)
}

// load - reads a session, treating one past its TTL as gone even if the
// store has not evicted it yet
func (m *Manager) load(ctx context.Context, id string) (*entities.SessionState, error) {
	state, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.Expired(m.now()) {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, &entities.SessionNotFoundError{SessionID: id}
	}
	return state, nil
}

// Update - applies fn to the session under its lock, appends the new cases
// and refreshes the TTL. Updates to different sessions run in parallel.
func (m *Manager) Update(ctx context.Context, id string, fn func(*entities.SessionState) (Progress, error)) (*entities.SessionState, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	state, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	progress, err := fn(state)
	if err != nil {
		return nil, err
	}

	now := m.now()
	state.TestCases = append(state.TestCases, progress.NewCases...)
	state.Cursor = progress.Cursor
	state.ProcessedCounts = progress.ProcessedCounts
	state.HasMore = progress.HasMore
	state.UpdatedAt = now
	state.ExpiresAt = now.Add(m.cfg.TTL)

	if err := m.store.Put(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"session": id,
		"added":   len(progress.NewCases),
		"total":   len(state.TestCases),
	}).Debug("Session updated")

	return state, nil
}

// Delete - removes a session; unknown ids are reported as not found
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock := m.locks.Lock(id)
	defer unlock()

	if _, err := m.load(ctx, id); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Sweep - deletes every expired session and returns how many were removed
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	ids, err := m.store.ListExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	swept := 0
	for _, id := range ids {
		removed, err := m.evict(ctx, id, true)
		if err != nil {
			return swept, fmt.Errorf("failed to delete expired session: %w", err)
		}
		if removed {
			swept++
		}
	}
	if swept > 0 {
		m.logger.WithField("count", swept).Info("Swept expired sessions")
	}
	return swept, nil
}

// evict - deletes a session under its lock so an Update in flight cannot
// write it back. With expiredOnly a session refreshed meanwhile is kept.
func (m *Manager) evict(ctx context.Context, id string, expiredOnly bool) (bool, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	if expiredOnly {
		state, err := m.store.Get(ctx, id)
		if errors.Is(err, entities.ErrSessionNotFound) {
			// the store dropped it on read
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if !state.Expired(m.now()) {
			return false, nil
		}
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// RunJanitor - sweeps expired sessions every interval until ctx is done
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(ctx); err != nil {
				m.logger.WithError(err).Warn("Session sweep failed")
			}
		}
	}
}
