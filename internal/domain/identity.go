package domain

import "fmt"

// Identity describes a student as registered by the telemetry agent.
// Immutable once attached to a session.
type Identity struct {
	DisplayName  string `json:"name"`
	EnrollmentID string `json:"enrollment_id,omitempty"`
	Subsection   string `json:"section,omitempty"`
	ContactEmail string `json:"email,omitempty"`
}

// LegacyIdentity wraps a bare student id (the old agent wire format) in an Identity.
func LegacyIdentity(studentID string) Identity {
	return Identity{DisplayName: studentID}
}

// PresenceString renders the identity for dashboard presence lists.
// Legacy identities (display name only) render as the bare name.
func (i Identity) PresenceString() string {
	if i.EnrollmentID == "" && i.Subsection == "" {
		return i.DisplayName
	}
	return fmt.Sprintf("%s (%s) - Section: %s", i.DisplayName, i.EnrollmentID, i.Subsection)
}

// SubjectID returns the identifier recorded in audit entries: the enrollment
// id when known, otherwise the display name (legacy agents send only an id).
func (i Identity) SubjectID() string {
	if i.EnrollmentID != "" {
		return i.EnrollmentID
	}
	return i.DisplayName
}

// Session binds a live transport connection to a room for one student.
// A connection holds at most one session; a session never changes rooms.
type Session struct {
	ConnectionID string
	RoomID       string
	Identity     Identity
}
