// Package store persists battle sessions behind a versioned conditional
// write. Every mutation is read-modify-write: Get returns the session with
// its version, Put only succeeds when the version is unchanged, so a stale
// snapshot can never silently overwrite a concurrent update.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/footycards/attax-backend/internal/engine"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrAlreadyExists   = errors.New("session already exists")
	ErrVersionConflict = errors.New("session version conflict")
)

type SessionStore interface {
	// Create stores a new session and returns its initial version.
	Create(ctx context.Context, s engine.Session) (uint64, error)
	// Get returns the session and the version to pass back to Put.
	Get(ctx context.Context, id string) (engine.Session, uint64, error)
	// Put writes s only if the stored version still equals expected and
	// returns the new version, or ErrVersionConflict.
	Put(ctx context.Context, id string, expected uint64, s engine.Session) (uint64, error)
}

type versioned struct {
	session engine.Session
	version uint64
}

// Memory is an in-process SessionStore for tests and single-node runs.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]versioned
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]versioned)}
}

func (m *Memory) Create(ctx context.Context, s engine.Session) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return 0, ErrAlreadyExists
	}
	m.sessions[s.ID] = versioned{session: s.Clone(), version: 1}
	return 1, nil
}

func (m *Memory) Get(ctx context.Context, id string) (engine.Session, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.sessions[id]
	if !ok {
		return engine.Session{}, 0, ErrNotFound
	}
	return v.session.Clone(), v.version, nil
}

func (m *Memory) Put(ctx context.Context, id string, expected uint64, s engine.Session) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.sessions[id]
	if !ok {
		return 0, ErrNotFound
	}
	if v.version != expected {
		return 0, ErrVersionConflict
	}
	next := v.version + 1
	m.sessions[id] = versioned{session: s.Clone(), version: next}
	return next, nil
}
