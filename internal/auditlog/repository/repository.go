package repository

import (
	"context"

	"github.com/Divyam-11/ExamJudge/internal/domain"
)

// Repository defines persistence for the append-only audit trail.
type Repository interface {
	// Append persists the entry and returns its assigned id. Ids are strictly
	// increasing across all rooms. Append is synchronous: the entry is durable
	// before it returns. Storage failures are returned, never swallowed.
	Append(ctx context.Context, e *domain.LogEntry) (int64, error)
	// ListByRoom returns all entries for the room, newest first
	// (timestamp, then insertion order).
	ListByRoom(ctx context.Context, roomID string) ([]*domain.LogEntry, error)
}
