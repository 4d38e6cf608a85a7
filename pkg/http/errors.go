package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ashford-college/admissions-api/internal/models"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Error             string `json:"error"`             // Machine-readable error code
	Message           string `json:"message"`           // Human-readable message
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"` // Populated for rate-limit rejections
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Encoding errors are not surfaced to the client
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}

// WriteRateLimited writes a 429 with both a Retry-After header and a
// retryAfterSeconds body field so browser and non-browser clients can back
// off without parsing headers.
func WriteRateLimited(w http.ResponseWriter, retryAfterSeconds int) {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:             "rate_limited",
		Message:           "Too many login attempts. Please try again later.",
		RetryAfterSeconds: retryAfterSeconds,
	})
}

// WriteSessionError maps the session failure taxonomy to distinct 401 codes.
// Messages stay user-safe: no internal state leaks through this path.
func WriteSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
	case errors.Is(err, models.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, "invalid_token", "Invalid session token")
	case errors.Is(err, models.ErrSessionExpired):
		WriteError(w, http.StatusUnauthorized, "session_expired", "Session expired. Please log in again.")
	case errors.Is(err, models.ErrSessionInvalidated):
		WriteError(w, http.StatusUnauthorized, "session_invalidated", "Session invalidated. Please log in again.")
	default:
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication failed")
	}
}
