package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is a process-local Gateway for development and tests.
type Memory struct {
	mu    sync.RWMutex
	docs  map[Kind]map[string][]byte
	order map[Kind][]string
}

func NewMemory() *Memory {
	return &Memory{
		docs:  make(map[Kind]map[string][]byte),
		order: make(map[Kind][]string),
	}
}

func (m *Memory) FindAll(_ context.Context, kind Kind) ([][]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]byte, 0, len(m.order[kind]))
	for _, id := range m.order[kind] {
		out = append(out, copyBytes(m.docs[kind][id]))
	}
	return out, nil
}

func (m *Memory) FindOne(_ context.Context, kind Kind, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[kind][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBytes(doc), nil
}

func (m *Memory) Insert(_ context.Context, kind Kind, id string, doc []byte) ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[kind] == nil {
		m.docs[kind] = make(map[string][]byte)
	}
	if _, exists := m.docs[kind][id]; exists {
		return nil, ErrDuplicateID
	}
	m.docs[kind][id] = copyBytes(doc)
	m.order[kind] = append(m.order[kind], id)
	return copyBytes(doc), nil
}

func (m *Memory) Replace(_ context.Context, kind Kind, id string, doc []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[kind][id]; !exists {
		return nil, ErrNotFound
	}
	m.docs[kind][id] = copyBytes(doc)
	return copyBytes(doc), nil
}

func (m *Memory) Delete(_ context.Context, kind Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[kind][id]; !exists {
		return ErrNotFound
	}
	delete(m.docs[kind], id)
	ids := m.order[kind]
	for i, existing := range ids {
		if existing == id {
			m.order[kind] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) DeleteAll(_ context.Context, kind Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, kind)
	delete(m.order, kind)
	return nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
