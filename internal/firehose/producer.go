// Package firehose defines the optional alert firehose: every broadcast alert
// is also emitted (best-effort) to a durable stream for later archival.
package firehose

import (
	"context"

	"github.com/Divyam-11/ExamJudge/internal/domain"
)

// Producer emits alerts to the firehose. Callers use it best-effort: log and ignore errors.
type Producer interface {
	// Emit sends a single alert. Implementations may block briefly; call from a goroutine if needed.
	// Returns an error only on write failure; callers typically log and ignore.
	Emit(ctx context.Context, alert domain.Alert) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
