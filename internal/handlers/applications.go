package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashford-college/admissions-api/internal/auth"
	"github.com/ashford-college/admissions-api/internal/models"
	"github.com/ashford-college/admissions-api/internal/services"
	pkghttp "github.com/ashford-college/admissions-api/pkg/http"
)

// ApplicationServiceInterface defines the application operations the handler
// needs.
type ApplicationServiceInterface interface {
	Create(ctx context.Context, applicantID string, req *services.CreateApplicationRequest) (*models.Application, error)
	Get(ctx context.Context, claims *models.SessionClaims, id string) (*models.Application, error)
	List(ctx context.Context, claims *models.SessionClaims, status string, limit, offset int) ([]*models.Application, error)
	Update(ctx context.Context, claims *models.SessionClaims, id string, req *services.CreateApplicationRequest) (*models.Application, error)
	Decide(ctx context.Context, claims *models.SessionClaims, id string, req *services.DecisionRequest) (*models.Application, error)
	Delete(ctx context.Context, claims *models.SessionClaims, id string) error
}

// ApplicationHandler handles application HTTP requests.
type ApplicationHandler struct {
	service ApplicationServiceInterface
}

func NewApplicationHandler(service ApplicationServiceInterface) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// ApplicationResponse is the wire form of an application.
type ApplicationResponse struct {
	ID           string     `json:"id"`
	ApplicantID  string     `json:"applicant_id"`
	Program      string     `json:"program"`
	EntryTerm    string     `json:"entry_term"`
	Essay        string     `json:"essay,omitempty"`
	DocumentKeys []string   `json:"document_keys,omitempty"`
	Status       string     `json:"status"`
	ReviewerID   *string    `json:"reviewer_id,omitempty"`
	DecisionNote *string    `json:"decision_note,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func applicationToResponse(app *models.Application) *ApplicationResponse {
	return &ApplicationResponse{
		ID:           app.ID,
		ApplicantID:  app.ApplicantID,
		Program:      app.Program,
		EntryTerm:    app.EntryTerm,
		Essay:        app.Essay,
		DocumentKeys: app.DocumentKeys,
		Status:       app.Status,
		ReviewerID:   app.ReviewerID,
		DecisionNote: app.DecisionNote,
		SubmittedAt:  app.SubmittedAt,
		DecidedAt:    app.DecidedAt,
		CreatedAt:    app.CreatedAt,
		UpdatedAt:    app.UpdatedAt,
	}
}

func applicationsToResponse(apps []*models.Application) []*ApplicationResponse {
	out := make([]*ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, applicationToResponse(app))
	}
	return out
}

// Create files a new application for the calling applicant.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
		return
	}

	var req services.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	app, err := h.service.Create(r.Context(), claims.UserID, &req)
	if err != nil {
		h.writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, applicationToResponse(app))
}

// List returns the caller's applications (applicant) or a filtered page
// (staff).
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
		return
	}

	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	apps, err := h.service.List(r.Context(), claims, status, limit, offset)
	if err != nil {
		h.writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationsToResponse(apps))
}

// Get returns one application.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
		return
	}

	app, err := h.service.Get(r.Context(), claims, chi.URLParam(r, "id"))
	if err != nil {
		h.writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationToResponse(app))
}

// Update edits a draft (applicant) or pulls a submission into review
// (officer).
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
		return
	}

	var req services.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if claims.Role == models.RoleApplicant {
		if err := ValidateRequest(req); err != nil {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
	}

	app, err := h.service.Update(r.Context(), claims, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationToResponse(app))
}

// Decide records a terminal decision.
func (h *ApplicationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
		return
	}

	var req services.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	app, err := h.service.Decide(r.Context(), claims, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeApplicationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationToResponse(app))
}

// Delete discards a draft.
func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
		return
	}

	if err := h.service.Delete(r.Context(), claims, chi.URLParam(r, "id")); err != nil {
		h.writeApplicationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ApplicationHandler) writeApplicationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Application not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Application is not in an editable state")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "You do not have access to this application")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
