package identity

import (
	"context"

	"github.com/tradepost/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// UserService binds chat senders to persistent users
type UserService struct {
	users  identity.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger}
}

// EnsureUser returns the user for externalID, creating it on first contact.
// A non-empty handle replaces the stored one; an empty handle never clears it.
// Calling it repeatedly with the same arguments is a no-op after the first call.
func (s *UserService) EnsureUser(ctx context.Context, externalID, handle string) (*identity.User, error) {
	if err := identity.ValidateExternalID(externalID); err != nil {
		return nil, err
	}

	user, err := s.users.Upsert(ctx, externalID, handle)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("user bound",
		zap.String("external_id", externalID),
		zap.String("user_id", user.ID.String()),
	)
	return user, nil
}

// Create handles an explicit registration request
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	user, err := s.EnsureUser(ctx, req.TgID, req.TgUsername)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("external_id", req.TgID))
	resp := ToUserResponse(user)
	return &resp, nil
}
