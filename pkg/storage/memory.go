package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore holds results in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]Result
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]Result)}
}

// Put replaces the result stored for result.Source.
func (m *MemoryStore) Put(ctx context.Context, result Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result.Source == "" {
		return fmt.Errorf("result has no source")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result.Source] = result
	return nil
}

// GetLatest returns the stored result for source.
func (m *MemoryStore) GetLatest(ctx context.Context, source string) (Result, bool, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[source]
	return r, ok, nil
}
