package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ashford-college/admissions-api/internal/models"
)

// AdminUserRepository extends UserRepository with the listing and mutation
// operations the admin surface needs.
type AdminUserRepository interface {
	UserRepository
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
}

// SessionInvalidator is the force-logout primitive, satisfied by AuthService.
type SessionInvalidator interface {
	InvalidateAllSessions(ctx context.Context, principalID string) int64
}

// UserService implements the admin account-management operations.
type UserService struct {
	repo     AdminUserRepository
	sessions SessionInvalidator
	logger   *slog.Logger
}

func NewUserService(repo AdminUserRepository, sessions SessionInvalidator, logger *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

// UserResponse is the admin view of an account.
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	TOTPEnabled bool   `json:"totp_enabled"`
}

func userToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		Status:      user.Status,
		TOTPEnabled: user.TOTPEnabled,
	}
}

// List returns a page of accounts.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*UserResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, userToResponse(user))
	}
	return responses, nil
}

// Get returns one account by ID.
func (s *UserService) Get(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return userToResponse(user), nil
}

// SetStatus changes an account's state. Moving an account out of active
// also forces it out of every live session.
func (s *UserService) SetStatus(ctx context.Context, id, status string) (*UserResponse, error) {
	switch status {
	case models.StatusActive, models.StatusSuspended, models.StatusDisabled:
	default:
		return nil, models.ErrBadRequest
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user.Status = status
	updated, err := s.repo.Update(ctx, id, user)
	if err != nil {
		s.logger.Error("failed to update user status", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if status != models.StatusActive {
		s.sessions.InvalidateAllSessions(ctx, id)
	}

	s.logger.Info("account status changed",
		slog.String("user_id", id),
		slog.String("status", status))

	return userToResponse(updated), nil
}

// SetRole promotes or demotes an account.
func (s *UserService) SetRole(ctx context.Context, id, role string) (*UserResponse, error) {
	if !models.ValidRole(role) {
		return nil, models.ErrBadRequest
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user.Role = role
	updated, err := s.repo.Update(ctx, id, user)
	if err != nil {
		s.logger.Error("failed to update user role", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Role now disagrees with every outstanding token's role claim.
	s.sessions.InvalidateAllSessions(ctx, id)

	s.logger.Info("account role changed",
		slog.String("user_id", id),
		slog.String("role", role))

	return userToResponse(updated), nil
}
