// Package presence tracks which student identities are currently connected to
// which room. The registry is the single owner of Session objects; every
// mutation and snapshot runs under one mutex so racing detaches cannot corrupt
// the room index or double-delete an emptied room.
package presence

import (
	"context"
	"sort"
	"sync"

	"github.com/Divyam-11/ExamJudge/internal/broadcast"
	"github.com/Divyam-11/ExamJudge/internal/domain"
)

// Publisher delivers presence events to a room's dashboard subscribers.
// Satisfied by *broadcast.Hub; enqueue must never block.
type Publisher interface {
	Publish(roomID string, ev broadcast.Envelope)
}

// ConnectionAuditor persists Connection-category audit entries, best-effort.
// Satisfied by *auditlog.ConnectionLogger.
type ConnectionAuditor interface {
	LogConnection(ctx context.Context, roomID string, subject domain.Identity, message string)
}

// Registry is the live presence table: connection id -> Session, with a
// per-room index. A room appears in the index iff it has at least one session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session            // connectionID -> session
	rooms    map[string]map[string]*domain.Session // roomID -> connectionID -> session

	pub     Publisher
	auditor ConnectionAuditor
}

// NewRegistry returns an empty registry. pub and auditor may be nil (no
// presence pushes / no audit entries), which the tests use.
func NewRegistry(pub Publisher, auditor ConnectionAuditor) *Registry {
	return &Registry{
		sessions: make(map[string]*domain.Session),
		rooms:    make(map[string]map[string]*domain.Session),
		pub:      pub,
		auditor:  auditor,
	}
}

// Attach registers a student session for the connection. Returns
// ErrDuplicateSession if the connection already holds a session (a client bug:
// attach without detach). On success it pushes student_joined and a presence
// snapshot to the room and records one "Student Joined" audit entry.
func (r *Registry) Attach(ctx context.Context, connectionID, roomID string, subject domain.Identity) error {
	r.mu.Lock()
	if _, ok := r.sessions[connectionID]; ok {
		r.mu.Unlock()
		return domain.ErrDuplicateSession
	}
	ses := &domain.Session{ConnectionID: connectionID, RoomID: roomID, Identity: subject}
	r.sessions[connectionID] = ses
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]*domain.Session)
		r.rooms[roomID] = members
	}
	members[connectionID] = ses
	students := r.snapshotLocked(roomID)
	// Push while holding the lock: snapshot order then matches mutation order.
	r.publish(roomID, broadcast.EventStudentJoined, broadcast.StudentPayload{Name: subject.DisplayName})
	r.publish(roomID, broadcast.EventUpdateStudentList, broadcast.StudentListPayload{Students: students})
	r.mu.Unlock()

	if r.auditor != nil {
		r.auditor.LogConnection(ctx, roomID, subject, "Student Joined")
	}
	return nil
}

// Detach removes the connection's session wherever it is found. Not finding
// one is normal (dashboards and never-registered connections disconnect too)
// and reported via ok=false, not an error. On success it pushes student_left
// and a presence snapshot and records one "Student Left" audit entry. The
// room index entry is deleted when its last session detaches.
func (r *Registry) Detach(ctx context.Context, connectionID string) (subject domain.Identity, roomID string, ok bool) {
	r.mu.Lock()
	ses, found := r.sessions[connectionID]
	if !found {
		r.mu.Unlock()
		return domain.Identity{}, "", false
	}
	delete(r.sessions, connectionID)
	roomID = ses.RoomID
	subject = ses.Identity
	if members, ok := r.rooms[roomID]; ok {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
	students := r.snapshotLocked(roomID)
	r.publish(roomID, broadcast.EventStudentLeft, broadcast.StudentPayload{Name: subject.DisplayName})
	r.publish(roomID, broadcast.EventUpdateStudentList, broadcast.StudentListPayload{Students: students})
	r.mu.Unlock()

	if r.auditor != nil {
		r.auditor.LogConnection(ctx, roomID, subject, "Student Left")
	}
	return subject, roomID, true
}

// Snapshot returns the room's presence strings, sorted lexicographically.
// An unknown or emptied room yields an empty slice.
func (r *Registry) Snapshot(roomID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(roomID)
}

// RoomActive reports whether the room currently has at least one session.
// The live index holds a room iff it does.
func (r *Registry) RoomActive(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rooms[roomID]
	return ok
}

func (r *Registry) snapshotLocked(roomID string) []string {
	members := r.rooms[roomID]
	out := make([]string, 0, len(members))
	for _, ses := range members {
		out = append(out, ses.Identity.PresenceString())
	}
	sort.Strings(out)
	return out
}

func (r *Registry) publish(roomID, event string, data any) {
	if r.pub == nil {
		return
	}
	r.pub.Publish(roomID, broadcast.Envelope{Event: event, Data: data})
}
