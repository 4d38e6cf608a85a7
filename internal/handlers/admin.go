package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ashford-college/admissions-api/internal/models"
	"github.com/ashford-college/admissions-api/internal/services"
	pkghttp "github.com/ashford-college/admissions-api/pkg/http"
)

// UserServiceInterface defines the account-management operations the admin
// handler needs.
type UserServiceInterface interface {
	List(ctx context.Context, limit, offset int) ([]*services.UserResponse, error)
	Get(ctx context.Context, id string) (*services.UserResponse, error)
	SetStatus(ctx context.Context, id, status string) (*services.UserResponse, error)
	SetRole(ctx context.Context, id, role string) (*services.UserResponse, error)
}

// SessionAdminInterface exposes the session-registry operations surfaced to
// administrators.
type SessionAdminInterface interface {
	InvalidateAllSessions(ctx context.Context, principalID string) int64
	LiveSessionCount(principalID string) int
}

// AdminHandler handles the administrative account and session endpoints.
type AdminHandler struct {
	users    UserServiceInterface
	sessions SessionAdminInterface
}

func NewAdminHandler(users UserServiceInterface, sessions SessionAdminInterface) *AdminHandler {
	return &AdminHandler{
		users:    users,
		sessions: sessions,
	}
}

// UpdateStatusRequest changes an account's state
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended disabled"`
}

// UpdateRoleRequest changes an account's role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin officer applicant"`
}

// SessionInfoResponse reports registry bookkeeping for one principal
type SessionInfoResponse struct {
	UserID       string `json:"user_id"`
	LiveSessions int    `json:"live_sessions"`
}

// InvalidateSessionsResponse confirms a force-logout
type InvalidateSessionsResponse struct {
	UserID         string `json:"user_id"`
	SessionVersion int64  `json:"session_version"`
}

// ListUsers returns a page of accounts.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser returns one account.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateStatus changes an account's state.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.users.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateRole changes an account's role.
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.users.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		h.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// InvalidateSessions logs a principal out everywhere: version bump plus
// registry clear. Outstanding tokens fail on next use.
func (h *AdminHandler) InvalidateSessions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Confirm the account exists before touching session state.
	if _, err := h.users.Get(r.Context(), id); err != nil {
		h.writeUserError(w, err)
		return
	}

	version := h.sessions.InvalidateAllSessions(r.Context(), id)
	writeJSON(w, http.StatusOK, InvalidateSessionsResponse{
		UserID:         id,
		SessionVersion: version,
	})
}

// GetSessions reports the live session count for one principal.
func (h *AdminHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.users.Get(r.Context(), id); err != nil {
		h.writeUserError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SessionInfoResponse{
		UserID:       id,
		LiveSessions: h.sessions.LiveSessionCount(id),
	})
}

func (h *AdminHandler) writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "User not found")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
