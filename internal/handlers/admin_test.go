package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashford-college/admissions-api/internal/services"
)

func adminRouter(h *AdminHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/admin/users", h.ListUsers)
	r.Get("/api/admin/users/{id}", h.GetUser)
	r.Put("/api/admin/users/{id}/status", h.UpdateStatus)
	r.Put("/api/admin/users/{id}/role", h.UpdateRole)
	r.Post("/api/admin/users/{id}/invalidate-sessions", h.InvalidateSessions)
	r.Get("/api/admin/sessions/{id}", h.GetSessions)
	return r
}

func knownUser(id string) *services.UserResponse {
	return &services.UserResponse{ID: id, Email: "alice@example.edu", Name: "Alice", Role: "applicant", Status: "active"}
}

func TestAdminHandler_InvalidateSessions(t *testing.T) {
	users := &MockUserService{
		GetFunc: func(ctx context.Context, id string) (*services.UserResponse, error) {
			return knownUser(id), nil
		},
	}
	sessions := &MockSessionAdmin{
		InvalidateFunc: func(ctx context.Context, principalID string) int64 { return 3 },
	}
	router := adminRouter(NewAdminHandler(users, sessions))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/users/user-1/invalidate-sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp InvalidateSessionsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "user-1", resp.UserID)
	assert.Equal(t, int64(3), resp.SessionVersion)
	assert.Equal(t, []string{"user-1"}, sessions.Invalidated)
}

func TestAdminHandler_InvalidateSessions_UnknownUser(t *testing.T) {
	sessions := &MockSessionAdmin{}
	router := adminRouter(NewAdminHandler(&MockUserService{}, sessions))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/users/ghost/invalidate-sessions", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, sessions.Invalidated, "session state must not change for unknown accounts")
}

func TestAdminHandler_GetSessions(t *testing.T) {
	users := &MockUserService{
		GetFunc: func(ctx context.Context, id string) (*services.UserResponse, error) {
			return knownUser(id), nil
		},
	}
	sessions := &MockSessionAdmin{
		CountFunc: func(principalID string) int { return 4 },
	}
	router := adminRouter(NewAdminHandler(users, sessions))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/sessions/user-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionInfoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 4, resp.LiveSessions)
}

func TestAdminHandler_ListUsers(t *testing.T) {
	users := &MockUserService{
		ListFunc: func(ctx context.Context, limit, offset int) ([]*services.UserResponse, error) {
			return []*services.UserResponse{knownUser("user-1"), knownUser("user-2")}, nil
		},
	}
	router := adminRouter(NewAdminHandler(users, &MockSessionAdmin{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []*services.UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}

func TestAdminHandler_UpdateStatus(t *testing.T) {
	users := &MockUserService{
		SetStatusFunc: func(ctx context.Context, id, status string) (*services.UserResponse, error) {
			user := knownUser(id)
			user.Status = status
			return user, nil
		},
	}
	router := adminRouter(NewAdminHandler(users, &MockSessionAdmin{}))

	body, err := json.Marshal(UpdateStatusRequest{Status: "suspended"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/admin/users/user-1/status", bytes.NewBuffer(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp services.UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "suspended", resp.Status)
}

func TestAdminHandler_UpdateStatus_Invalid(t *testing.T) {
	router := adminRouter(NewAdminHandler(&MockUserService{}, &MockSessionAdmin{}))

	body, err := json.Marshal(UpdateStatusRequest{Status: "banned"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/admin/users/user-1/status", bytes.NewBuffer(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_UpdateRole(t *testing.T) {
	users := &MockUserService{
		SetRoleFunc: func(ctx context.Context, id, role string) (*services.UserResponse, error) {
			user := knownUser(id)
			user.Role = role
			return user, nil
		},
	}
	router := adminRouter(NewAdminHandler(users, &MockSessionAdmin{}))

	body, err := json.Marshal(UpdateRoleRequest{Role: "officer"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/admin/users/user-1/role", bytes.NewBuffer(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp services.UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "officer", resp.Role)
}
