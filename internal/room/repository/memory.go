package repository

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository for tests and DB-less dev runs.
type MemoryRepository struct {
	mu    sync.RWMutex
	rooms map[string]string // id -> owner
}

// NewMemoryRepository returns an in-memory room repository pre-seeded with the given ids.
func NewMemoryRepository(ids ...string) *MemoryRepository {
	r := &MemoryRepository{rooms: make(map[string]string)}
	for _, id := range ids {
		r.rooms[id] = ""
	}
	return r
}

func (r *MemoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[id]
	return ok, nil
}

func (r *MemoryRepository) Create(ctx context.Context, id, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		r.rooms[id] = owner
	}
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
