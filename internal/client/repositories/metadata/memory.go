package metadata

import (
	"bytes"
	"context"
	"sync"
)

// MemoryRepository keeps values in process memory. Used by tests and when
// the session should not outlive the process.
type MemoryRepository struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{values: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.values[key]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(v), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = bytes.Clone(value)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, key)
	return nil
}
