// Package observe is the operator channel: pipeline failures that must reach
// an operator (persistence failures, dropped subscribers) without ever
// surfacing to the student agent or blocking the request path.
package observe

import (
	"context"
	"time"
)

// Event is one operator-visible occurrence.
type Event struct {
	// Component names the emitting part of the pipeline (e.g. "gateway", "broadcast").
	Component string
	// RoomID scopes the event to a room when one is involved; may be empty.
	RoomID string
	// Message is the human-readable description.
	Message string
	// Err is the underlying failure, if any.
	Err error
	// Time defaults to emit time when zero.
	Time time.Time
}

// Emitter emits operator events (e.g. to OTel Logs). Best-effort; callers log
// and ignore errors.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}
