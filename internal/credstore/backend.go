package credstore

import (
	"context"
	"maps"
	"sync"
)

// Backend persists the raw key/value pairs of one session record.
// Save must apply the whole group or none of it.
type Backend interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
	Clear(ctx context.Context) error
}

// MemoryBackend keeps the record in process memory. It does not survive a
// restart and exists for tests and throwaway sessions.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Load(context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.values), nil
}

func (m *MemoryBackend) Save(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.values, values)
	return nil
}

func (m *MemoryBackend) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.values)
	return nil
}
