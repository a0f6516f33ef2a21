package wizard

import (
	"context"
)

// SessionStore keeps wizard sessions keyed by external id.
// Implementations expire sessions after a configured TTL.
type SessionStore interface {
	// Get returns the session for externalID, or shared.ErrNotFound
	Get(ctx context.Context, externalID string) (*Session, error)

	// Put stores the session, replacing any existing one for the same sender
	Put(ctx context.Context, session *Session) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, externalID string) error
}
