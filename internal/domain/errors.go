package domain

import "errors"

var (
	// ErrDuplicateSession indicates a connection tried to attach a second
	// student session without detaching first.
	ErrDuplicateSession = errors.New("connection already holds a student session")

	// ErrRoleConflict indicates a connection tried to take a second role
	// (dashboard subscriber vs student session) on the same transport.
	ErrRoleConflict = errors.New("connection already holds a different role")

	// ErrUnknownRoom indicates the referenced room is not provisioned.
	ErrUnknownRoom = errors.New("room not found")

	// ErrMalformedRecord indicates a telemetry record missing its room or kind.
	ErrMalformedRecord = errors.New("telemetry record is missing room id or kind")
)
