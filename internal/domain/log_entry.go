package domain

import "time"

// LogEntry is an immutable audit record of a classified event.
// ID is assigned by the store on append and is strictly increasing across
// all rooms. Entries are never mutated or deleted by the pipeline.
type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RoomID    string    `json:"room_id"`
	SubjectID string    `json:"student_id"`
	EventType Category  `json:"event_type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
}
