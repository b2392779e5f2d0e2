// Package auditlog persists the immutable audit trail of classified events
// and session lifecycle changes.
package auditlog

import (
	"context"
	"log"
	"time"

	"github.com/Divyam-11/ExamJudge/internal/auditlog/repository"
	"github.com/Divyam-11/ExamJudge/internal/domain"
)

// ConnectionLogger writes Connection-category audit entries for student
// join/leave events. LogConnection is best-effort: failures are logged and do
// not affect the caller, so a broken store never blocks presence updates.
type ConnectionLogger struct {
	repo repository.Repository
	nowF func() time.Time
}

// NewConnectionLogger returns a logger that persists to repo. repo may be nil;
// then entries are dropped.
func NewConnectionLogger(repo repository.Repository) *ConnectionLogger {
	return &ConnectionLogger{repo: repo, nowF: func() time.Time { return time.Now().UTC() }}
}

// LogConnection writes one Connection audit entry ("Student Joined" /
// "Student Left"). Best-effort: errors are logged and not returned.
func (l *ConnectionLogger) LogConnection(ctx context.Context, roomID string, subject domain.Identity, message string) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.LogEntry{
		Timestamp: l.nowF(),
		RoomID:    roomID,
		SubjectID: subject.SubjectID(),
		EventType: domain.CategoryConnection,
		Message:   message,
		Details:   subject.PresenceString(),
	}
	if _, err := l.repo.Append(ctx, entry); err != nil {
		log.Printf("auditlog: failed to log connection event %q for room %s: %v", message, roomID, err)
	}
}
