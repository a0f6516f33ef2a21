package identity

import (
	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/identity"
)

// CreateUserRequest registers a chat user by platform id
type CreateUserRequest struct {
	TgID       string `json:"tgId" binding:"required,max=64"`
	TgUsername string `json:"tg_username" binding:"omitempty,max=64"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	TgID       string    `json:"tgId"`
	TgUsername *string   `json:"tg_username"`
}

// ToUserResponse converts a domain User to a response
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		TgID:       u.ExternalID,
		TgUsername: u.Handle,
	}
}
