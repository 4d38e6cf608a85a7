package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")

	// Session failure taxonomy. All four map to 401 but carry distinct
	// machine-readable codes so clients can tell "log in again" apart
	// from "your clock ran out".
	ErrUnauthenticated    = errors.New("no credentials presented")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionInvalidated = errors.New("session invalidated")

	// Login failures collapse to one sentinel so responses cannot be used
	// to probe which emails have accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Account state errors
	ErrAccountDisabled  = errors.New("account is disabled")
	ErrAccountSuspended = errors.New("account is suspended")
	ErrTOTPRequired     = errors.New("totp code required")
)

// RateLimitedError is returned by the login throttle when an identifier has
// exceeded its attempt budget. RetryAfterSeconds is always > 0.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return "too many login attempts"
}

// IsRateLimited reports whether err is a throttle rejection and returns the
// retry delay when it is.
func IsRateLimited(err error) (*RateLimitedError, bool) {
	var rle *RateLimitedError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}
