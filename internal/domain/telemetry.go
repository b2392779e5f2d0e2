package domain

import "time"

// Kind is the telemetry record kind reported by the agent.
type Kind string

const (
	KindKeystroke   Kind = "keystroke"
	KindPaste       Kind = "paste"
	KindWindowTitle Kind = "window_title"
	KindDragDrop    Kind = "drag_drop"
)

// TelemetryRecord is one raw activity record as received from the agent.
// Exactly one of the kind-specific fields is meaningful for a given Kind;
// the rest are empty. ReceivedAt is assigned by the server on receipt.
type TelemetryRecord struct {
	RoomID  string
	Subject Identity
	Kind    Kind

	Keystrokes      string
	PastedContent   string
	WindowTitle     string
	DragSource      string
	DragDestination string

	ReceivedAt time.Time
}
