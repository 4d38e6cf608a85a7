package session

import "sync"

// VersionStore holds a monotonically increasing session version per
// principal. Tokens embed the version current at issuance; bumping the
// counter invalidates every previously issued token on its next use.
type VersionStore struct {
	mu       sync.RWMutex
	versions map[string]int64
}

// NewVersionStore creates an empty version store.
func NewVersionStore() *VersionStore {
	return &VersionStore{versions: make(map[string]int64)}
}

// Current returns the principal's session version, defaulting to 1 for
// principals that have never been bumped.
func (s *VersionStore) Current(principalID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.versions[principalID]; ok {
		return v
	}
	return 1
}

// Bump atomically increments the principal's session version and returns the
// new value. This is the "log out everywhere" primitive.
func (s *VersionStore) Bump(principalID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.versions[principalID]
	if !ok {
		v = 1
	}
	v++
	s.versions[principalID] = v
	return v
}
