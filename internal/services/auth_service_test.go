package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashford-college/admissions-api/internal/auth"
	"github.com/ashford-college/admissions-api/internal/models"
)

func TestAuthService_Login_Success(t *testing.T) {
	user := NewTestUserWithPassword("user-1", "alice@example.edu", "Alice", "Str0ngPassword")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			assert.Equal(t, "alice@example.edu", email)
			return user, nil
		},
	}
	svc, registry, _ := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), "Alice@Example.EDU ", "Str0ngPassword", "", "10.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "user-1", resp.Principal.ID)
	assert.Equal(t, models.RoleApplicant, resp.Principal.Role)
	assert.True(t, registry.IsLive("user-1", resp.Token))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	user := NewTestUserWithPassword("user-1", "alice@example.edu", "Alice", "Str0ngPassword")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc, _, _ := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), "alice@example.edu", "wrong-password", "", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail_SameError(t *testing.T) {
	svc, _, _ := newTestAuthService(&MockUserRepository{})

	_, err := svc.Login(context.Background(), "nobody@example.edu", "whatever1", "", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials,
		"unknown email must be indistinguishable from wrong password")
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	user := NewTestUserWithPassword("user-1", "alice@example.edu", "Alice", "Str0ngPassword")
	user.Status = models.StatusDisabled
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc, _, _ := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), "alice@example.edu", "Str0ngPassword", "", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthService_Login_ThrottledAfterFiveFailures(t *testing.T) {
	user := NewTestUserWithPassword("user-1", "alice@example.edu", "Alice", "Str0ngPassword")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc, _, _ := newTestAuthService(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, "alice@example.edu", "wrong-password", "", "")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	}

	// Sixth attempt is rejected before credentials are checked, even with
	// the right password.
	_, err := svc.Login(ctx, "alice@example.edu", "Str0ngPassword", "", "")
	rl, ok := models.IsRateLimited(err)
	require.True(t, ok, "expected rate limited error, got %v", err)
	assert.Positive(t, rl.RetryAfterSeconds)
}

func TestAuthService_Login_SuccessResetsThrottle(t *testing.T) {
	user := NewTestUserWithPassword("user-1", "alice@example.edu", "Alice", "Str0ngPassword")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc, _, _ := newTestAuthService(repo)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.Login(ctx, "alice@example.edu", "wrong-password", "", "")
		require.ErrorIs(t, err, models.ErrInvalidCredentials)
	}

	_, err := svc.Login(ctx, "alice@example.edu", "Str0ngPassword", "", "")
	require.NoError(t, err)

	// A fresh run of failures is allowed after the reset.
	for i := 0; i < 4; i++ {
		_, err := svc.Login(ctx, "alice@example.edu", "wrong-password", "", "")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	}
}

func TestAuthService_Login_SixthSessionEvictsOldest(t *testing.T) {
	user := NewTestUserWithPassword("user-1", "alice@example.edu", "Alice", "Str0ngPassword")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc, registry, _ := newTestAuthService(repo)
	ctx := context.Background()

	tokens := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		resp, err := svc.Login(ctx, "alice@example.edu", "Str0ngPassword", "", "")
		require.NoError(t, err)
		tokens = append(tokens, resp.Token)
	}

	assert.False(t, registry.IsLive("user-1", tokens[0]), "oldest session should be evicted")
	for _, token := range tokens[1:] {
		assert.True(t, registry.IsLive("user-1", token))
	}
	assert.Equal(t, 5, registry.Count("user-1"))
}

func TestAuthService_Login_TOTPRequired(t *testing.T) {
	user := NewTestUserWithPassword("officer-1", "bob@example.edu", "Bob", "Str0ngPassword")
	user.Role = models.RoleOfficer
	user.TOTPEnabled = true
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc, _, _ := newTestAuthService(repo)
	totp, err := auth.NewTOTPManager([]byte("0123456789abcdef0123456789abcdef"), "Test Portal")
	require.NoError(t, err)
	svc.totp = totp

	_, err = svc.Login(context.Background(), "bob@example.edu", "Str0ngPassword", "", "")
	assert.ErrorIs(t, err, models.ErrTOTPRequired)
}

func TestAuthService_Logout_RevokesOnlyPresentedToken(t *testing.T) {
	user := NewTestUserWithPassword("user-1", "alice@example.edu", "Alice", "Str0ngPassword")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc, registry, _ := newTestAuthService(repo)
	ctx := context.Background()

	first, err := svc.Login(ctx, "alice@example.edu", "Str0ngPassword", "", "")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "alice@example.edu", "Str0ngPassword", "", "")
	require.NoError(t, err)

	svc.Logout(ctx, NewTestClaims("user-1", "alice@example.edu", models.RoleApplicant), first.Token)

	assert.False(t, registry.IsLive("user-1", first.Token))
	assert.True(t, registry.IsLive("user-1", second.Token))
}

func TestAuthService_InvalidateAllSessions(t *testing.T) {
	user := NewTestUserWithPassword("user-1", "alice@example.edu", "Alice", "Str0ngPassword")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc, registry, versions := newTestAuthService(repo)
	ctx := context.Background()

	resp, err := svc.Login(ctx, "alice@example.edu", "Str0ngPassword", "", "")
	require.NoError(t, err)

	version := svc.InvalidateAllSessions(ctx, "user-1")
	assert.Equal(t, int64(2), version)
	assert.Equal(t, 0, registry.Count("user-1"))

	// A fresh login carries the bumped version and validates again.
	resp, err = svc.Login(ctx, "alice@example.edu", "Str0ngPassword", "", "")
	require.NoError(t, err)

	claims, err := auth.NewTokenManager(testAuthSecret, 0).Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(2), claims.SessionVersion)
	assert.Equal(t, versions.Current("user-1"), claims.SessionVersion)
}

func TestAuthService_Register(t *testing.T) {
	var created *models.User
	repo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			created = user
			out := *user
			out.ID = "user-new"
			out.Status = models.StatusActive
			return &out, nil
		},
	}
	svc, registry, _ := newTestAuthService(repo)

	resp, err := svc.Register(context.Background(), "Carol@Example.EDU", "Str0ngPassword", "Carol")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "carol@example.edu", created.Email)
	assert.Equal(t, models.RoleApplicant, created.Role)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, registry.IsLive("user-new", resp.Token))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	existing := NewTestUser("user-1", "alice@example.edu", "Alice")
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return existing, nil
		},
	}
	svc, _, _ := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), "alice@example.edu", "Str0ngPassword", "Alice")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(&MockUserRepository{})

	_, err := svc.Register(context.Background(), "dave@example.edu", "short", "Dave")
	assert.Error(t, err)
}

func TestAuthService_Me(t *testing.T) {
	user := NewTestUser("user-1", "alice@example.edu", "Alice")
	repo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			if id == "user-1" {
				return user, nil
			}
			return nil, models.ErrNotFound
		},
	}
	svc, _, _ := newTestAuthService(repo)

	principal, err := svc.Me(context.Background(), NewTestClaims("user-1", "alice@example.edu", models.RoleApplicant))
	require.NoError(t, err)
	assert.Equal(t, "Alice", principal.Name)

	_, err = svc.Me(context.Background(), NewTestClaims("gone", "gone@example.edu", models.RoleApplicant))
	assert.ErrorIs(t, err, models.ErrSessionInvalidated)
}

func TestAuthService_Login_ThrottleKeyedBySubmittedEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(&MockUserRepository{})
	ctx := context.Background()

	// Five failures for one unknown address throttle only that address.
	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, "ghost@example.edu", "whatever1", "", "")
		require.ErrorIs(t, err, models.ErrInvalidCredentials)
	}
	_, err := svc.Login(ctx, "ghost@example.edu", "whatever1", "", "")
	_, ok := models.IsRateLimited(err)
	assert.True(t, ok)

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, fmt.Sprintf("other-%d@example.edu", i), "whatever1", "", "")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	}
}
