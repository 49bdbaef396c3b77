package kvstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store used in tests and as a fallback when
// no Redis address is configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string

	// FailWrites makes Set and Remove return this error, for
	// exercising persistence-failure paths in tests.
	FailWrites error
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (m *Memory) Set(ctx context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}
	delete(m.data, key)
	return nil
}

// Len reports how many entries are currently stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
