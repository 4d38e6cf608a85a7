package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ashford-college/admissions-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification failures. Expiry is distinguished from structural or
// signature problems so the middleware can answer "session expired" rather
// than a generic rejection.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed or badly signed")
)

// TokenManager issues and verifies signed session tokens. Verification does
// not check session-version currency; that comparison belongs to the caller,
// which holds the version store.
type TokenManager struct {
	secret   []byte
	lifetime time.Duration

	now func() time.Time // test hook
}

// NewTokenManager creates a token manager signing with secret. Tokens live
// for lifetime (24h by default upstream in config).
func NewTokenManager(secret string, lifetime time.Duration) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Issue builds and signs a session token for the user at the given session
// version. Pure with respect to shared state: the version is a read-only
// input, registration happens elsewhere.
func (tm *TokenManager) Issue(user *models.User, sessionVersion int64) (string, error) {
	now := tm.now()

	claims := &models.SessionClaims{
		UserID:         user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		SessionVersion: sessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates tokenString, returning its claims. It fails
// with ErrTokenExpired when the embedded expiry has passed, and with
// ErrTokenMalformed for any structural or signature problem.
func (tm *TokenManager) Verify(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return tm.now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
