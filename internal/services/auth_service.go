package services

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/ashford-college/admissions-api/internal/auth"
	"github.com/ashford-college/admissions-api/internal/models"
	"github.com/ashford-college/admissions-api/internal/session"
	pkgauth "github.com/ashford-college/admissions-api/pkg/auth"
	pkglogger "github.com/ashford-college/admissions-api/pkg/logger"
)

// UserRepository defines the persistence operations the auth service needs.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	SetTOTP(ctx context.Context, id string, secret, nonce string) error
}

// AuthService owns the login/logout state machine: throttle gate, credential
// verification, token issuance, registry bookkeeping, and the force-logout
// primitive.
type AuthService struct {
	repo     UserRepository
	tm       *auth.TokenManager
	totp     *auth.TOTPManager // nil when no encryption key is configured
	registry *session.Registry
	versions *session.VersionStore
	throttle *session.LoginThrottle
	timing   *auth.TimingDelay
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
}

// NewAuthService wires the session subsystem together.
func NewAuthService(
	repo UserRepository,
	tm *auth.TokenManager,
	totp *auth.TOTPManager,
	registry *session.Registry,
	versions *session.VersionStore,
	throttle *session.LoginThrottle,
	timing *auth.TimingDelay,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		repo:     repo,
		tm:       tm,
		totp:     totp,
		registry: registry,
		versions: versions,
		throttle: throttle,
		timing:   timing,
		logger:   logger,
		audit:    audit,
	}
}

// PrincipalResponse represents a principal in HTTP responses.
type PrincipalResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Token     string             `json:"token"`
	Principal *PrincipalResponse `json:"principal"`
}

// Login runs the full authentication flow for a submitted email/password
// (plus TOTP code for enrolled staff). The throttle is keyed by the
// submitted email whether or not an account exists.
func (s *AuthService) Login(ctx context.Context, email, password, totpCode, ipAddress string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, models.ErrInvalidCredentials
	}

	if allowed, retryAfter := s.throttle.Attempt(email); !allowed {
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_throttled",
			IPAddress:     ipAddress,
			FailureReason: "rate_limited",
			Success:       false,
		})
		return nil, &models.RateLimitedError{
			RetryAfterSeconds: int(math.Ceil(retryAfter.Seconds())),
		}
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, s.failLogin(email, "", ipAddress, "unknown_email")
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	switch user.Status {
	case models.StatusDisabled:
		return nil, s.failLogin(email, user.ID, ipAddress, "account_disabled")
	case models.StatusSuspended:
		return nil, s.failLogin(email, user.ID, ipAddress, "account_suspended")
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, s.failLogin(email, user.ID, ipAddress, "invalid_password")
	}

	if user.TOTPEnabled && s.totp != nil {
		if totpCode == "" {
			// Not a failed attempt: the password was right, the client just
			// needs to prompt for the second factor.
			return nil, models.ErrTOTPRequired
		}
		ok, err := s.verifyTOTP(user, totpCode)
		if err != nil {
			s.logger.Error("totp validation failed", slog.String("user_id", user.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		if !ok {
			return nil, s.failLogin(email, user.ID, ipAddress, "invalid_totp")
		}
	}

	token, err := s.tm.Issue(user, s.versions.Current(user.ID))
	if err != nil {
		s.logger.Error("failed to issue session token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	evicted := s.registry.Register(user.ID, token)
	for range evicted {
		s.audit.LogSessionEvent("session_evicted", user.ID, map[string]string{
			"reason": "max_concurrent_sessions",
		})
	}

	s.throttle.RecordSuccess(email)

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &AuthResponse{
		Token:     token,
		Principal: principalToResponse(user),
	}, nil
}

// failLogin records a failed attempt, pads the response time, and returns
// the generic credentials error.
func (s *AuthService) failLogin(email, userID, ipAddress, reason string) error {
	s.throttle.RecordFailure(email)

	s.logger.Info("login failed",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.String("reason", reason))
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		UserID:        userID,
		IPAddress:     ipAddress,
		FailureReason: reason,
		Success:       false,
	})

	if s.timing != nil {
		s.timing.WaitOnFailure(false)
	}
	return models.ErrInvalidCredentials
}

func (s *AuthService) verifyTOTP(user *models.User, code string) (bool, error) {
	if user.TOTPSecret == nil || user.TOTPNonce == nil {
		return false, nil
	}
	secret, err := decodeBase64(*user.TOTPSecret)
	if err != nil {
		return false, err
	}
	nonce, err := decodeBase64(*user.TOTPNonce)
	if err != nil {
		return false, err
	}
	return s.totp.Validate(secret, nonce, code)
}

// Register creates an applicant account and logs it straight in.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, models.ErrBadRequest
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		s.logger.Info("registration failed: email in use",
			slog.String("email", pkglogger.SanitizedEmail(email)))
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check existing user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.repo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         models.RoleApplicant,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.Issue(user, s.versions.Current(user.ID))
	if err != nil {
		s.logger.Error("failed to issue session token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	s.registry.Register(user.ID, token)

	s.logger.Info("applicant registered", slog.String("user_id", user.ID))
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "applicant_registered",
		UserID:    user.ID,
		Success:   true,
	})

	return &AuthResponse{
		Token:     token,
		Principal: principalToResponse(user),
	}, nil
}

// Logout revokes exactly the presented token. Sibling sessions for the same
// principal stay valid; the version counter is untouched.
func (s *AuthService) Logout(ctx context.Context, claims *models.SessionClaims, token string) {
	s.registry.Revoke(claims.UserID, token)

	s.logger.Info("user logged out", slog.String("user_id", claims.UserID))
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "logout",
		UserID:    claims.UserID,
		Success:   true,
	})
}

// Me returns the current principal for a validated session. Doubles as the
// idle tracker's extension ping target.
func (s *AuthService) Me(ctx context.Context, claims *models.SessionClaims) (*PrincipalResponse, error) {
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrSessionInvalidated
		}
		s.logger.Error("failed to load principal", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return principalToResponse(user), nil
}

// InvalidateAllSessions is the administrative "log out everywhere"
// primitive: bump the version so every outstanding token fails validation on
// next use, then clear the registry bookkeeping.
func (s *AuthService) InvalidateAllSessions(ctx context.Context, principalID string) int64 {
	version := s.versions.Bump(principalID)
	s.registry.RevokeAll(principalID)

	s.logger.Info("all sessions invalidated",
		slog.String("user_id", principalID),
		slog.Int64("session_version", version))
	s.audit.LogSessionEvent("sessions_invalidated", principalID, map[string]string{
		"reason": "admin_action",
	})

	return version
}

// LiveSessionCount reports registry bookkeeping for admin visibility.
func (s *AuthService) LiveSessionCount(principalID string) int {
	return s.registry.Count(principalID)
}

// EnrollTOTP provisions the second factor for a staff account and returns
// the QR data URL for the authenticator app.
func (s *AuthService) EnrollTOTP(ctx context.Context, claims *models.SessionClaims) (string, error) {
	if s.totp == nil {
		return "", models.ErrBadRequest
	}

	encrypted, nonce, qr, err := s.totp.Enroll(claims.Email)
	if err != nil {
		s.logger.Error("totp enrollment failed", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if err := s.repo.SetTOTP(ctx, claims.UserID, encodeBase64(encrypted), encodeBase64(nonce)); err != nil {
		s.logger.Error("failed to store totp secret", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.audit.LogSessionEvent("totp_enrolled", claims.UserID, nil)
	return qr, nil
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func principalToResponse(user *models.User) *PrincipalResponse {
	return &PrincipalResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}
