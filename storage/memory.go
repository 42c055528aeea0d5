package storage

import (
	"context"
	"sync"
)

// Memory is an in-process KV used in tests and for running without a
// database file.
type Memory struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]map[string]string)}
}

func (m *Memory) Get(_ context.Context, shopperID, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[shopperID][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Set(_ context.Context, shopperID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.values[shopperID] == nil {
		m.values[shopperID] = make(map[string]string)
	}
	m.values[shopperID][key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, shopperID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values[shopperID], key)
	return nil
}
