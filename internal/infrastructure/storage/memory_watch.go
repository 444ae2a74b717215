package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
)

type memoryWatchRepository struct {
	mu      sync.RWMutex
	watches map[string]entity.Watch
}

// NewMemoryWatchRepository in-memory watch registry
func NewMemoryWatchRepository() repository.WatchRepository {
	return &memoryWatchRepository{
		watches: make(map[string]entity.Watch),
	}
}

// Save inserts or replaces a watch
func (m *memoryWatchRepository) Save(ctx context.Context, watch entity.Watch) error {
	if watch.ID == "" {
		return fmt.Errorf("watch id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.watches[watch.ID] = watch
	return nil
}

// Get returns a copy of the watch
func (m *memoryWatchRepository) Get(ctx context.Context, id string) (*entity.Watch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.watches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrWatchNotFound, id)
	}
	return &w, nil
}

// List newest first
func (m *memoryWatchRepository) List(ctx context.Context) ([]entity.Watch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entity.Watch, 0, len(m.watches))
	for _, w := range m.watches {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update mutates the stored watch under the write lock
func (m *memoryWatchRepository) Update(ctx context.Context, id string, fn func(*entity.Watch)) (*entity.Watch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.watches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrWatchNotFound, id)
	}
	fn(&w)
	m.watches[id] = w
	return &w, nil
}

// Delete removes a watch
func (m *memoryWatchRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.watches[id]; !ok {
		return fmt.Errorf("%w: %s", repository.ErrWatchNotFound, id)
	}
	delete(m.watches, id)
	return nil
}
