package models

import (
	"time"
)

// Principal roles. Applicants self-register; officers and admins are seeded
// or created by an admin.
const (
	RoleAdmin     = "admin"
	RoleOfficer   = "officer"
	RoleApplicant = "applicant"
)

// Account states. Suspended and disabled accounts cannot log in; existing
// sessions survive until explicitly invalidated.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDisabled  = "disabled"
)

// User is an authenticated principal of the portal.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string // "admin", "officer", "applicant"
	Status       string // "active", "suspended", "disabled"

	// TOTP second factor, enrolled by admin/officer accounts only.
	TOTPSecret  *string // encrypted, base64
	TOTPNonce   *string // AES-GCM nonce, base64
	TOTPEnabled bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidRole reports whether role is one of the three portal roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOfficer, RoleApplicant:
		return true
	}
	return false
}
