package identity

import (
	"context"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Upsert creates the user for externalID if absent. When the user exists
	// and handle is non-empty, the stored handle is replaced. Returns the stored row.
	Upsert(ctx context.Context, externalID, handle string) (*User, error)

	// FindByExternalID finds a user by external id
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
}
