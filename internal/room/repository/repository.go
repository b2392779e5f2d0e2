package repository

import "context"

// Repository is the room collaborator surface. The pipeline only consults
// Exists; Create/Delete/List serve the provisioning CLI (cmd/seed).
type Repository interface {
	// Exists reports whether the room is provisioned. The gateway rejects
	// telemetry for unknown rooms before classification.
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, id, owner string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}
