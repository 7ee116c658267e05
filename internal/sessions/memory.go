package sessions

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	session   Session
	expiresAt time.Time
}

type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

func (m *Memory) Save(_ context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.entries[session.ID] = entry{session: session, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || !m.now().Before(e.expiresAt) {
		delete(m.entries, id)
		return Session{}, ErrNotFound
	}
	return e.session, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// sweep drops expired entries; callers hold mu.
func (m *Memory) sweep() {
	now := m.now()
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
		}
	}
}
