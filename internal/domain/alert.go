package domain

import "time"

// Category classifies an alert for dashboards and the audit trail.
type Category string

const (
	CategoryKeywordDetected    Category = "Keyword Detected"
	CategoryPasteDetected      Category = "Paste Detected"
	CategoryHighCharacterPaste Category = "High Character Paste"
	CategorySuspiciousWindow   Category = "Suspicious Window"
	CategoryDragDropDetected   Category = "Drag & Drop Detected"
	// CategoryConnection covers student join/leave audit entries.
	CategoryConnection Category = "Connection"
)

// Severity tags an alert for dashboard rendering.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a derived, human-readable notification of a suspicious event.
// Alerts are transient values: always passed by value, never shared across
// goroutines by reference, and never persisted as their own entity.
type Alert struct {
	RoomID    string    `json:"room_id"`
	Subject   Identity  `json:"student"`
	Category  Category  `json:"type"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	// Details carries the raw payload excerpt (e.g. the full pasted text).
	// Live broadcasts carry this untruncated.
	Details string `json:"details,omitempty"`
}
