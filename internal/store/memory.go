package store

import (
	"context"
	"sync"
)

type memoryBackend struct {
	mu    sync.RWMutex
	byKey map[string][]byte
}

// NewMemoryBackend returns a process-local backend. Data is lost on exit.
func NewMemoryBackend() Backend {
	return &memoryBackend{
		byKey: make(map[string][]byte),
	}
}

func (m *memoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.byKey[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *memoryBackend) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.byKey[key] = v
	return nil
}

func (m *memoryBackend) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.byKey, key)
	return nil
}

func (m *memoryBackend) Ping(ctx context.Context) error { return nil }

func (m *memoryBackend) Close() error { return nil }
