package repository

import (
	"context"
	"database/sql"

	"github.com/Divyam-11/ExamJudge/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit trail repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts the entry and returns the BIGSERIAL id assigned by Postgres.
func (r *PostgresRepository) Append(ctx context.Context, e *domain.LogEntry) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO logs (timestamp, room_id, student_id, event_type, message, details)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		e.Timestamp, e.RoomID, e.SubjectID, string(e.EventType), e.Message, e.Details,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ListByRoom returns the room's entries newest first. Same-timestamp entries
// (second-resolution agent clocks are common) fall back to insertion order.
func (r *PostgresRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, timestamp, room_id, student_id, event_type, message, details
		 FROM logs WHERE room_id = $1 ORDER BY timestamp DESC, id DESC`,
		roomID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		var eventType string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.RoomID, &e.SubjectID, &eventType, &e.Message, &e.Details); err != nil {
			return nil, err
		}
		e.EventType = domain.Category(eventType)
		out = append(out, &e)
	}
	return out, rows.Err()
}
