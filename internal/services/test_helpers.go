package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ashford-college/admissions-api/internal/auth"
	"github.com/ashford-college/admissions-api/internal/models"
	"github.com/ashford-college/admissions-api/internal/session"
	pkgauth "github.com/ashford-college/admissions-api/pkg/auth"
	pkglogger "github.com/ashford-college/admissions-api/pkg/logger"
)

// MockUserRepository implements UserRepository and AdminUserRepository for
// testing
type MockUserRepository struct {
	GetByIDFunc    func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	ListFunc       func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CreateFunc     func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc     func(ctx context.Context, id string, user *models.User) (*models.User, error)
	SetTOTPFunc    func(ctx context.Context, id string, secret, nonce string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	created := *user
	created.ID = "user_" + user.Email
	created.Status = models.StatusActive
	return &created, nil
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return user, nil
}

func (m *MockUserRepository) SetTOTP(ctx context.Context, id string, secret, nonce string) error {
	if m.SetTOTPFunc != nil {
		return m.SetTOTPFunc(ctx, id, secret, nonce)
	}
	return nil
}

// MockApplicationRepository implements ApplicationRepository for testing
type MockApplicationRepository struct {
	GetByIDFunc         func(ctx context.Context, id string) (*models.Application, error)
	ListByApplicantFunc func(ctx context.Context, applicantID string) ([]*models.Application, error)
	ListFunc            func(ctx context.Context, status string, limit, offset int) ([]*models.Application, error)
	CreateFunc          func(ctx context.Context, app *models.Application) (*models.Application, error)
	UpdateFunc          func(ctx context.Context, id string, app *models.Application) (*models.Application, error)
	DeleteFunc          func(ctx context.Context, id string) error
}

func (m *MockApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockApplicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]*models.Application, error) {
	if m.ListByApplicantFunc != nil {
		return m.ListByApplicantFunc(ctx, applicantID)
	}
	return []*models.Application{}, nil
}

func (m *MockApplicationRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Application, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, limit, offset)
	}
	return []*models.Application{}, nil
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, app)
	}
	created := *app
	created.ID = "app_test"
	return &created, nil
}

func (m *MockApplicationRepository) Update(ctx context.Context, id string, app *models.Application) (*models.Application, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, app)
	}
	return app, nil
}

func (m *MockApplicationRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendDecisionEmailFunc func(ctx context.Context, email, applicantName string, app *models.Application) error
	Sent                  []string
}

func (m *MockEmailService) SendDecisionEmail(ctx context.Context, email, applicantName string, app *models.Application) error {
	if m.SendDecisionEmailFunc != nil {
		return m.SendDecisionEmailFunc(ctx, email, applicantName, app)
	}
	m.Sent = append(m.Sent, email)
	return nil
}

// MockSessionInvalidator records force-logout calls
type MockSessionInvalidator struct {
	Invalidated []string
}

func (m *MockSessionInvalidator) InvalidateAllSessions(ctx context.Context, principalID string) int64 {
	m.Invalidated = append(m.Invalidated, principalID)
	return 2
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testAuthSecret = "test-secret-key-that-is-long-enough-000"

// newTestAuthService wires a real in-memory session subsystem around the
// given repo mock. The timing delay is omitted so tests do not sleep.
func newTestAuthService(repo UserRepository) (*AuthService, *session.Registry, *session.VersionStore) {
	logger := discardLogger()
	registry := session.NewRegistry(5, logger)
	versions := session.NewVersionStore()
	throttle := session.NewLoginThrottle(session.DefaultThrottleConfig(), logger)
	tm := auth.NewTokenManager(testAuthSecret, time.Hour)

	svc := NewAuthService(repo, tm, nil, registry, versions, throttle, nil, logger, pkglogger.NewAuditLogger(logger))
	return svc, registry, versions
}

// NewTestUser creates an active applicant account
func NewTestUser(id, email, name string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      models.RoleApplicant,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestUserWithPassword creates a user whose password is the given
// plaintext
func NewTestUserWithPassword(id, email, name, password string) *models.User {
	user := NewTestUser(id, email, name)
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	user.PasswordHash = hash
	return user
}

// NewTestApplication creates an application in the given status
func NewTestApplication(id, applicantID, status string) *models.Application {
	now := time.Now()
	return &models.Application{
		ID:          id,
		ApplicantID: applicantID,
		Program:     "Computer Science",
		EntryTerm:   "fall-2027",
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestClaims creates session claims for the given principal
func NewTestClaims(userID, email, role string) *models.SessionClaims {
	return &models.SessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
	}
}
