package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ashford-college/admissions-api/internal/models"
	pkghttp "github.com/ashford-college/admissions-api/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// ClaimsContextKey is the key for storing session claims in context
	ClaimsContextKey contextKey = "session_claims"
	// TokenContextKey is the key for storing the raw bearer token in context
	TokenContextKey contextKey = "session_token"
)

// VersionReader exposes the current session version for a principal.
type VersionReader interface {
	Current(principalID string) int64
}

// SessionMiddleware gates every protected route. Order of checks:
//
//  1. missing/garbled Authorization header -> unauthenticated
//  2. bad structure or signature           -> invalid_token
//  3. past embedded expiry                 -> session_expired
//  4. stale session version                -> session_invalidated
//
// On success the decoded claims and raw token are injected into the request
// context. The session registry is deliberately not consulted here: registry
// membership is eviction bookkeeping, not a validity gate.
func SessionMiddleware(tm *TokenManager, versions VersionReader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
				return
			}
			tokenString := parts[1]

			claims, err := tm.Verify(tokenString)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					pkghttp.WriteSessionError(w, models.ErrSessionExpired)
					return
				}
				pkghttp.WriteSessionError(w, models.ErrInvalidToken)
				return
			}

			if claims.SessionVersion != versions.Current(claims.UserID) {
				pkghttp.WriteSessionError(w, models.ErrSessionInvalidated)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			ctx = context.WithValue(ctx, TokenContextKey, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces role-based access on top of SessionMiddleware. The
// role comes from the token claims; a forced logout via version bump is the
// recourse when a role changes mid-session.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r)
			if claims == nil {
				pkghttp.WriteSessionError(w, models.ErrUnauthenticated)
				return
			}

			if !allowed[claims.Role] {
				pkghttp.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext extracts session claims from the request context.
func ClaimsFromContext(r *http.Request) *models.SessionClaims {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// TokenFromContext extracts the raw bearer token from the request context.
func TokenFromContext(r *http.Request) string {
	token, ok := r.Context().Value(TokenContextKey).(string)
	if !ok {
		return ""
	}
	return token
}
