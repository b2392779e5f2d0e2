package gateway

import (
	"encoding/json"

	"github.com/Divyam-11/ExamJudge/internal/domain"
)

// telemetryRequest is the JSON body of an agent's POST /log.
// Either student (full identity) or student_id (legacy agents) identifies the
// subject; the kind-specific fields follow event_type.
type telemetryRequest struct {
	RoomID    string           `json:"room_id"`
	EventType string           `json:"event_type"`
	Student   *domain.Identity `json:"student,omitempty"`
	StudentID string           `json:"student_id,omitempty"`

	Keystrokes        string `json:"keystrokes,omitempty"`
	PastedContent     string `json:"pasted_content,omitempty"`
	Title             string `json:"title,omitempty"`
	SourceWindow      string `json:"source_window,omitempty"`
	DestinationWindow string `json:"destination_window,omitempty"`
}

// subject resolves the record's identity, defaulting like the legacy server did.
func (r *telemetryRequest) subject() domain.Identity {
	if r.Student != nil && r.Student.DisplayName != "" {
		return *r.Student
	}
	if r.StudentID != "" {
		return domain.LegacyIdentity(r.StudentID)
	}
	return domain.LegacyIdentity("Unknown Student")
}

// record builds the TelemetryRecord for classification. ReceivedAt is set by the caller.
func (r *telemetryRequest) record() domain.TelemetryRecord {
	return domain.TelemetryRecord{
		RoomID:          r.RoomID,
		Subject:         r.subject(),
		Kind:            domain.Kind(r.EventType),
		Keystrokes:      r.Keystrokes,
		PastedContent:   r.PastedContent,
		WindowTitle:     r.Title,
		DragSource:      r.SourceWindow,
		DragDestination: r.DestinationWindow,
	}
}

// statusResponse is the body of /log and error responses.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// inboundMessage is one socket event from a dashboard or student client.
type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Socket event names accepted from clients.
const (
	eventJoinRoom       = "join_room"
	eventStudentConnect = "student_connect"
)

type joinRoomData struct {
	RoomID string `json:"room_id"`
}

type studentConnectData struct {
	RoomID    string           `json:"room_id"`
	Student   *domain.Identity `json:"student"`
	StudentID string           `json:"student_id"`
}

func (d *studentConnectData) subject() domain.Identity {
	if d.Student != nil && d.Student.DisplayName != "" {
		return *d.Student
	}
	return domain.LegacyIdentity(d.StudentID)
}

// errorPayload is the data of an outbound error event.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Outbound error codes.
const (
	errCodeRoleConflict     = "role_conflict"
	errCodeUnknownRoom      = "unknown_room"
	errCodeDuplicateSession = "duplicate_session"
	errCodeBadEvent         = "bad_event"
)
