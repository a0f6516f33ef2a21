package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/shared"
)

// User is a chat participant, identified by the platform's external id.
// Users are created implicitly on first contact and never deleted.
type User struct {
	shared.BaseEntity
	ExternalID string
	Handle     *string
}

// NewUser creates a user for the given external id. An empty handle is stored as nil.
func NewUser(externalID, handle string) (*User, error) {
	if err := ValidateExternalID(externalID); err != nil {
		return nil, err
	}
	u := &User{
		BaseEntity: shared.NewBaseEntity(),
		ExternalID: externalID,
	}
	u.RefreshHandle(handle)
	return u, nil
}

// RefreshHandle replaces the handle when the new value is non-empty.
// Returns true if the handle changed.
func (u *User) RefreshHandle(handle string) bool {
	if handle == "" {
		return false
	}
	if u.Handle != nil && *u.Handle == handle {
		return false
	}
	h := handle
	u.Handle = &h
	u.UpdatedAt = time.Now()
	return true
}

// HandleOrEmpty returns the handle, or "" when none is known
func (u *User) HandleOrEmpty() string {
	if u.Handle == nil {
		return ""
	}
	return *u.Handle
}

// IDOrNil returns the user's ID, or uuid.Nil for a nil user
func (u *User) IDOrNil() uuid.UUID {
	if u == nil {
		return uuid.Nil
	}
	return u.ID
}

// ValidateExternalID checks that an external id is usable as a key
func ValidateExternalID(externalID string) error {
	if strings.TrimSpace(externalID) == "" {
		return shared.NewValidationError(shared.CodeInvalidInput, "External id cannot be empty")
	}
	if len(externalID) > 64 {
		return shared.NewValidationError(shared.CodeInvalidInput, "External id cannot exceed 64 characters")
	}
	return nil
}
