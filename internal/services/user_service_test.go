package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashford-college/admissions-api/internal/models"
)

func TestUserService_List(t *testing.T) {
	repo := &MockUserRepository{
		ListFunc: func(ctx context.Context, limit, offset int) ([]*models.User, error) {
			assert.Equal(t, 50, limit, "out-of-range limit should fall back to default")
			return []*models.User{
				NewTestUser("user-1", "alice@example.edu", "Alice"),
				NewTestUser("user-2", "bob@example.edu", "Bob"),
			}, nil
		},
	}
	svc := NewUserService(repo, &MockSessionInvalidator{}, discardLogger())

	users, err := svc.List(context.Background(), 0, -5)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice@example.edu", users[0].Email)
}

func TestUserService_SetStatus_SuspendForcesLogout(t *testing.T) {
	user := NewTestUser("user-1", "alice@example.edu", "Alice")
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}
	invalidator := &MockSessionInvalidator{}
	svc := NewUserService(repo, invalidator, discardLogger())

	updated, err := svc.SetStatus(context.Background(), "user-1", models.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, updated.Status)
	assert.Equal(t, []string{"user-1"}, invalidator.Invalidated)
}

func TestUserService_SetStatus_ReactivateKeepsSessions(t *testing.T) {
	user := NewTestUser("user-1", "alice@example.edu", "Alice")
	user.Status = models.StatusSuspended
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}
	invalidator := &MockSessionInvalidator{}
	svc := NewUserService(repo, invalidator, discardLogger())

	updated, err := svc.SetStatus(context.Background(), "user-1", models.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)
	assert.Empty(t, invalidator.Invalidated)
}

func TestUserService_SetStatus_InvalidStatus(t *testing.T) {
	svc := NewUserService(&MockUserRepository{}, &MockSessionInvalidator{}, discardLogger())

	_, err := svc.SetStatus(context.Background(), "user-1", "banned")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUserService_SetStatus_NotFound(t *testing.T) {
	svc := NewUserService(&MockUserRepository{}, &MockSessionInvalidator{}, discardLogger())

	_, err := svc.SetStatus(context.Background(), "missing", models.StatusDisabled)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserService_SetRole_AlwaysForcesLogout(t *testing.T) {
	user := NewTestUser("user-1", "alice@example.edu", "Alice")
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}
	invalidator := &MockSessionInvalidator{}
	svc := NewUserService(repo, invalidator, discardLogger())

	updated, err := svc.SetRole(context.Background(), "user-1", models.RoleOfficer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOfficer, updated.Role)
	assert.Equal(t, []string{"user-1"}, invalidator.Invalidated,
		"outstanding tokens carry the old role claim")
}

func TestUserService_SetRole_InvalidRole(t *testing.T) {
	svc := NewUserService(&MockUserRepository{}, &MockSessionInvalidator{}, discardLogger())

	_, err := svc.SetRole(context.Background(), "user-1", "superuser")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}
