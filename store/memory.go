package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
)

// DefaultCapacity bounds a MemoryAdapter created with a capacity of zero.
const DefaultCapacity = 1000

// MemoryAdapter provides thread-safe in-memory storage. Once full, the
// oldest key is evicted to make room for a new one.
type MemoryAdapter struct {
	mu       sync.RWMutex
	data     map[string]json.RawMessage
	order    []string
	capacity int
}

// NewMemoryAdapter creates an in-memory adapter holding at most capacity
// keys. Zero or less means DefaultCapacity.
func NewMemoryAdapter(capacity int) *MemoryAdapter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryAdapter{
		data:     make(map[string]json.RawMessage),
		capacity: capacity,
	}
}

// Get retrieves a value by key.
func (m *MemoryAdapter) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores a value by key.
func (m *MemoryAdapter) Set(_ context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		for len(m.order) >= m.capacity {
			delete(m.data, m.order[0])
			m.order = m.order[1:]
		}
		m.order = append(m.order, key)
	}
	m.data[key] = slices.Clone(value)
	return nil
}

// Delete removes a key.
func (m *MemoryAdapter) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return nil
	}
	delete(m.data, key)
	if i := slices.Index(m.order, key); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	return nil
}

// Keys returns all keys, oldest first.
func (m *MemoryAdapter) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order), nil
}

// Close is a no-op.
func (m *MemoryAdapter) Close() error { return nil }

var _ Adapter = (*MemoryAdapter)(nil)
