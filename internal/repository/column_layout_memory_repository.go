package repository

import (
	"context"
	"sync"

	appErrors "github.com/noah-isme/sma-registration-console/pkg/errors"
)

// MemoryColumnLayoutRepository keeps layouts in process memory.
type MemoryColumnLayoutRepository struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemoryColumnLayoutRepository constructs an empty store.
func NewMemoryColumnLayoutRepository() *MemoryColumnLayoutRepository {
	return &MemoryColumnLayoutRepository{slots: make(map[string]string)}
}

// Get returns the payload stored under key.
func (r *MemoryColumnLayoutRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	raw, ok := r.slots[key]
	if !ok {
		return "", appErrors.ErrLayoutNotFound
	}
	return raw, nil
}

// Set overwrites the payload stored under key.
func (r *MemoryColumnLayoutRepository) Set(_ context.Context, key, raw string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[key] = raw
	return nil
}

// Ping always succeeds.
func (r *MemoryColumnLayoutRepository) Ping(context.Context) error {
	return nil
}
