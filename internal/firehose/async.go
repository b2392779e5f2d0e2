package firehose

import (
	"context"
	"log"
	"time"

	"github.com/Divyam-11/ExamJudge/internal/domain"
)

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not blocked.
// Use from request handlers for fire-and-forget emission; errors are logged.
//
// producer may be nil (firehose disabled); EmitAsync then returns immediately.
// The goroutine uses context.Background() with emitTimeout so request cancellation
// does not abort an in-flight emit.
func EmitAsync(producer Producer, alert domain.Alert) {
	if producer == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := producer.Emit(emitCtx, alert); err != nil {
			log.Printf("firehose: async emit failed: %v", err)
		}
	}()
}
