package handlers

import (
	"context"

	"github.com/ashford-college/admissions-api/internal/models"
	"github.com/ashford-college/admissions-api/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc      func(ctx context.Context, email, password, totpCode, ipAddress string) (*services.AuthResponse, error)
	RegisterFunc   func(ctx context.Context, email, password, name string) (*services.AuthResponse, error)
	LogoutFunc     func(ctx context.Context, claims *models.SessionClaims, token string)
	MeFunc         func(ctx context.Context, claims *models.SessionClaims) (*services.PrincipalResponse, error)
	EnrollTOTPFunc func(ctx context.Context, claims *models.SessionClaims) (string, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, totpCode, ipAddress string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, totpCode, ipAddress)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) Register(ctx context.Context, email, password, name string) (*services.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, name)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Logout(ctx context.Context, claims *models.SessionClaims, token string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, claims, token)
	}
}

func (m *MockAuthService) Me(ctx context.Context, claims *models.SessionClaims) (*services.PrincipalResponse, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, claims)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) EnrollTOTP(ctx context.Context, claims *models.SessionClaims) (string, error) {
	if m.EnrollTOTPFunc != nil {
		return m.EnrollTOTPFunc(ctx, claims)
	}
	return "", models.ErrInternalServer
}

// MockApplicationService implements ApplicationServiceInterface for testing
type MockApplicationService struct {
	CreateFunc func(ctx context.Context, applicantID string, req *services.CreateApplicationRequest) (*models.Application, error)
	GetFunc    func(ctx context.Context, claims *models.SessionClaims, id string) (*models.Application, error)
	ListFunc   func(ctx context.Context, claims *models.SessionClaims, status string, limit, offset int) ([]*models.Application, error)
	UpdateFunc func(ctx context.Context, claims *models.SessionClaims, id string, req *services.CreateApplicationRequest) (*models.Application, error)
	DecideFunc func(ctx context.Context, claims *models.SessionClaims, id string, req *services.DecisionRequest) (*models.Application, error)
	DeleteFunc func(ctx context.Context, claims *models.SessionClaims, id string) error
}

func (m *MockApplicationService) Create(ctx context.Context, applicantID string, req *services.CreateApplicationRequest) (*models.Application, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, applicantID, req)
	}
	return nil, models.ErrInternalServer
}

func (m *MockApplicationService) Get(ctx context.Context, claims *models.SessionClaims, id string) (*models.Application, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, claims, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockApplicationService) List(ctx context.Context, claims *models.SessionClaims, status string, limit, offset int) ([]*models.Application, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, claims, status, limit, offset)
	}
	return []*models.Application{}, nil
}

func (m *MockApplicationService) Update(ctx context.Context, claims *models.SessionClaims, id string, req *services.CreateApplicationRequest) (*models.Application, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, claims, id, req)
	}
	return nil, models.ErrNotFound
}

func (m *MockApplicationService) Decide(ctx context.Context, claims *models.SessionClaims, id string, req *services.DecisionRequest) (*models.Application, error) {
	if m.DecideFunc != nil {
		return m.DecideFunc(ctx, claims, id, req)
	}
	return nil, models.ErrNotFound
}

func (m *MockApplicationService) Delete(ctx context.Context, claims *models.SessionClaims, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, claims, id)
	}
	return models.ErrNotFound
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	ListFunc      func(ctx context.Context, limit, offset int) ([]*services.UserResponse, error)
	GetFunc       func(ctx context.Context, id string) (*services.UserResponse, error)
	SetStatusFunc func(ctx context.Context, id, status string) (*services.UserResponse, error)
	SetRoleFunc   func(ctx context.Context, id, role string) (*services.UserResponse, error)
}

func (m *MockUserService) List(ctx context.Context, limit, offset int) ([]*services.UserResponse, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*services.UserResponse{}, nil
}

func (m *MockUserService) Get(ctx context.Context, id string) (*services.UserResponse, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) SetStatus(ctx context.Context, id, status string) (*services.UserResponse, error) {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserService) SetRole(ctx context.Context, id, role string) (*services.UserResponse, error) {
	if m.SetRoleFunc != nil {
		return m.SetRoleFunc(ctx, id, role)
	}
	return nil, models.ErrNotFound
}

// MockSessionAdmin implements SessionAdminInterface for testing
type MockSessionAdmin struct {
	InvalidateFunc func(ctx context.Context, principalID string) int64
	CountFunc      func(principalID string) int
	Invalidated    []string
}

func (m *MockSessionAdmin) InvalidateAllSessions(ctx context.Context, principalID string) int64 {
	m.Invalidated = append(m.Invalidated, principalID)
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, principalID)
	}
	return 2
}

func (m *MockSessionAdmin) LiveSessionCount(principalID string) int {
	if m.CountFunc != nil {
		return m.CountFunc(principalID)
	}
	return 0
}
