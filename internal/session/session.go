// Package session persists the login state the way the web client kept it in
// browser storage: an opaque bearer token, its absolute expiry, and a few
// display-only identity fields. Only Token and Expiry gate access.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/Phantom-VK/icrs/internal/model"
)

// Store is the injectable session store. A zero-valued session (empty token)
// means "not logged in". Mutations happen at login (Set), logout (Clear),
// and on a 401 response (Clear).
type Store interface {
	Get(ctx context.Context) (model.Session, error)
	Set(ctx context.Context, s model.Session) error
	Clear(ctx context.Context) error
}

// IsAuthenticated reports whether a usable session exists: a token is
// present and now is before its expiry. Any other state evicts the stored
// session so later calls observe no session at all. Expiry is terminal;
// there is no refresh.
func IsAuthenticated(ctx context.Context, store Store, now time.Time) bool {
	s, err := store.Get(ctx)
	if err != nil {
		return false
	}
	if s.Token != "" && now.Before(s.Expiry) {
		return true
	}
	_ = store.Clear(ctx)
	return false
}

// Memory is an in-process Store for tests and ephemeral runs.
type Memory struct {
	mu sync.Mutex
	s  model.Session
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Get(ctx context.Context) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *Memory) Set(ctx context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = model.Session{}
	return nil
}
