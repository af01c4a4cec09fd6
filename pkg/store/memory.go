package store

import (
	"context"
	"sync"
)

// NewMemory returns a Tree that keeps everything in process memory.
func NewMemory(opts ...Option) *Tree {
	return newTree(&memoryBackend{docs: map[string][]byte{}}, opts...)
}

type memoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func (m *memoryBackend) get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *memoryBackend) put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.docs[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *memoryBackend) del(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.docs, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryBackend) scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string][]byte{}
	for k, v := range m.docs {
		if Within(k, prefix) {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (m *memoryBackend) atomic(ctx context.Context, fn func(backend) error) error {
	return withJournal(ctx, m, fn)
}

func (m *memoryBackend) close() error {
	return nil
}
