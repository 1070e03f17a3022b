package database

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps analyses in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	analyses map[string]StoredAnalysis
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{analyses: make(map[string]StoredAnalysis)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*StoredAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.analyses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

// List returns analyses newest first; ties are ordered by ID.
func (m *MemoryStore) List(ctx context.Context, limit int) ([]StoredAnalysis, error) {
	m.mu.RLock()
	all := make([]StoredAnalysis, 0, len(m.analyses))
	for _, a := range m.analyses {
		all = append(all, a)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryStore) Latest(ctx context.Context) (*StoredAnalysis, error) {
	list, err := m.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.analyses), nil
}

func (m *MemoryStore) Save(ctx context.Context, a *StoredAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses[a.ID] = *a
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.analyses[id]; !ok {
		return ErrNotFound
	}
	delete(m.analyses, id)
	return nil
}
