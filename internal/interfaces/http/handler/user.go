package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	identityapp "github.com/tradepost/backend/internal/application/identity"
)

// UserCreator registers chat users
type UserCreator interface {
	Create(ctx context.Context, req identityapp.CreateUserRequest) (*identityapp.UserResponse, error)
}

// UserHandler handles user registration
type UserHandler struct {
	BaseHandler
	users UserCreator
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserCreator) *UserHandler {
	return &UserHandler{users: users}
}

// Create godoc
// @ID           createUser
// @Summary      Register a chat user
// @Description  Creates the user keyed by tgId, or refreshes the stored handle when the user exists. An empty tg_username never overwrites a stored one.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body identityapp.CreateUserRequest true "User registration"
// @Success      201 {object} APIResponse[identityapp.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req identityapp.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}
