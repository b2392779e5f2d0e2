package repository

import (
	"context"
	"sync"

	"github.com/Divyam-11/ExamJudge/internal/domain"
)

// MemoryRepository is an in-memory Repository for tests and DB-less dev runs.
// Entries do not survive a restart; the Postgres repository is the durable one.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []domain.LogEntry
}

// NewMemoryRepository returns an empty in-memory audit trail.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

// Append stores a copy of the entry and returns its assigned id.
func (r *MemoryRepository) Append(ctx context.Context, e *domain.LogEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *e
	stored.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, stored)
	return stored.ID, nil
}

// ListByRoom returns copies of the room's entries newest first.
func (r *MemoryRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.LogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].RoomID == roomID {
			e := r.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}
