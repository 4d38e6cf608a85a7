package session

import (
	"log/slog"
	"sync"
)

// Registry tracks which tokens are currently live per principal and enforces
// a maximum concurrent-session count by evicting the least recently issued
// token. Membership is bookkeeping for eviction; it is not consulted on the
// request-validation path (see VersionStore for the force-logout primitive).
type Registry struct {
	mu          sync.Mutex
	maxSessions int
	sessions    map[string][]string // principal id -> tokens, oldest first
	logger      *slog.Logger
}

// NewRegistry creates a registry bounded at maxSessions live tokens per
// principal. Values below 1 are clamped to 1.
func NewRegistry(maxSessions int, logger *slog.Logger) *Registry {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &Registry{
		maxSessions: maxSessions,
		sessions:    make(map[string][]string),
		logger:      logger,
	}
}

// Register appends token to the principal's live set and returns any tokens
// evicted to keep the set within the configured maximum.
func (r *Registry) Register(principalID, token string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := append(r.sessions[principalID], token)

	var evicted []string
	if over := len(live) - r.maxSessions; over > 0 {
		evicted = append(evicted, live[:over]...)
		live = live[over:]
	}
	r.sessions[principalID] = live

	if len(evicted) > 0 {
		r.logger.Info("evicted oldest sessions",
			slog.String("user_id", principalID),
			slog.Int("evicted", len(evicted)))
	}

	return evicted
}

// Revoke removes one token from the principal's live set. Absent tokens are
// a no-op, not an error: logout must be idempotent.
func (r *Registry) Revoke(principalID, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.sessions[principalID]
	for i, t := range live {
		if t == token {
			live = append(live[:i], live[i+1:]...)
			break
		}
	}

	if len(live) == 0 {
		delete(r.sessions, principalID)
		return
	}
	r.sessions[principalID] = live
}

// RevokeAll drops every live token for the principal.
func (r *Registry) RevokeAll(principalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, principalID)
}

// IsLive reports whether the token is in the principal's live set.
func (r *Registry) IsLive(principalID, token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.sessions[principalID] {
		if t == token {
			return true
		}
	}
	return false
}

// Count returns the number of live tokens for the principal.
func (r *Registry) Count(principalID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions[principalID])
}

// Trim re-asserts the per-principal bound across the whole map, dropping from
// the oldest end. Register already maintains the bound, so this is defensive
// bookkeeping run by the background sweeper, not time-based expiry (expiry
// lives in the token's own timestamp).
func (r *Registry) Trim() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	trimmed := 0
	for id, live := range r.sessions {
		if over := len(live) - r.maxSessions; over > 0 {
			r.sessions[id] = live[over:]
			trimmed += over
		}
	}
	return trimmed
}
