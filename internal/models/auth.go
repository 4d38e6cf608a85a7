package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set embedded in every session token.
//
// SessionVersion is compared against the principal's current version counter
// on every request; a mismatch means the token was issued before a
// force-invalidation and must be rejected.
type SessionClaims struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	Role           string `json:"role"`
	SessionVersion int64  `json:"session_version"`
	jwt.RegisteredClaims
}
