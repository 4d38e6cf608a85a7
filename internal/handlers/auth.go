package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ashford-college/admissions-api/internal/auth"
	"github.com/ashford-college/admissions-api/internal/models"
	"github.com/ashford-college/admissions-api/internal/services"
	pkghttp "github.com/ashford-college/admissions-api/pkg/http"
)

// AuthServiceInterface defines the auth operations the handler needs.
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, totpCode, ipAddress string) (*services.AuthResponse, error)
	Register(ctx context.Context, email, password, name string) (*services.AuthResponse, error)
	Logout(ctx context.Context, claims *models.SessionClaims, token string)
	Me(ctx context.Context, claims *models.SessionClaims) (*services.PrincipalResponse, error)
	EnrollTOTP(ctx context.Context, claims *models.SessionClaims) (string, error)
}

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	TOTPCode string `json:"totp_code" validate:"omitempty,len=6,numeric"`
}

// RegisterRequest represents the request body for applicant registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
}

// TOTPEnrollResponse carries the provisioning QR code
type TOTPEnrollResponse struct {
	QRCode string `json:"qr_code"`
}

// Login authenticates a principal and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password, req.TOTPCode, pkghttp.ClientIP(r))
	if err != nil {
		if rl, ok := models.IsRateLimited(err); ok {
			pkghttp.WriteRateLimited(w, rl.RetryAfterSeconds)
			return
		}
		switch {
		case errors.Is(err, models.ErrTOTPRequired):
			pkghttp.WriteError(w, http.StatusUnauthorized, "totp_required", "A one-time code is required")
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Register creates an applicant account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "An account with this email already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid registration details")
		case errors.Is(err, models.ErrInternalServer):
			pkghttp.WriteInternalError(w, "Internal server error")
		default:
			// Password policy failures carry their own user-safe message.
			pkghttp.WriteBadRequest(w, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Logout revokes the presented session token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r)
	token := auth.TokenFromContext(r)
	if claims == nil || token == "" {
		pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
		return
	}

	h.service.Logout(r.Context(), claims, token)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current principal. Clients also use it as the keep-alive
// ping when extending an idle session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
		return
	}

	principal, err := h.service.Me(r.Context(), claims)
	if err != nil {
		if errors.Is(err, models.ErrSessionInvalidated) {
			pkghttp.WriteSessionError(w, err)
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, principal)
}

// EnrollTOTP provisions the second factor for a staff account.
func (h *AuthHandler) EnrollTOTP(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r)
	if claims == nil {
		pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
		return
	}

	qr, err := h.service.EnrollTOTP(r.Context(), claims)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Two-factor enrollment is not available")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, TOTPEnrollResponse{QRCode: qr})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
