package session

import (
	"log/slog"
	"sync"
	"time"
)

// ThrottleConfig holds login throttle tuning.
type ThrottleConfig struct {
	MaxAttempts int           // failed attempts allowed per window
	Window      time.Duration // sliding window length
}

// DefaultThrottleConfig returns the portal defaults: 5 attempts per 15 minutes.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
	}
}

type attemptWindow struct {
	count   int
	resetAt time.Time
}

// LoginThrottle rate-limits login attempts per submitted email. The key is
// the identifier as submitted, whether or not an account exists, which also
// slows enumeration probing. Windows for long-idle identifiers are evicted
// by Cleanup so the map does not grow without bound.
type LoginThrottle struct {
	mu      sync.Mutex
	config  ThrottleConfig
	windows map[string]*attemptWindow
	logger  *slog.Logger

	now func() time.Time // test hook
}

// NewLoginThrottle creates a throttle with the given limits.
func NewLoginThrottle(config ThrottleConfig, logger *slog.Logger) *LoginThrottle {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.Window <= 0 {
		config.Window = 15 * time.Minute
	}
	return &LoginThrottle{
		config:  config,
		windows: make(map[string]*attemptWindow),
		logger:  logger,
		now:     time.Now,
	}
}

// Attempt gates a login attempt for email. It returns (true, 0) when the
// attempt may proceed, or (false, retryAfter) when the identifier has
// exhausted its budget for the current window.
func (t *LoginThrottle) Attempt(email string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	w, ok := t.windows[email]
	if !ok {
		w = &attemptWindow{resetAt: now.Add(t.config.Window)}
		t.windows[email] = w
	}

	// Window elapsed: reset the count and re-arm from now.
	if now.After(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(t.config.Window)
	}

	if w.count >= t.config.MaxAttempts {
		retryAfter := w.resetAt.Sub(now)
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		t.logger.Warn("login throttled",
			slog.Duration("retry_after", retryAfter))
		return false, retryAfter
	}

	return true, 0
}

// RecordFailure counts a failed attempt against the current window.
func (t *LoginThrottle) RecordFailure(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	w, ok := t.windows[email]
	if !ok || now.After(w.resetAt) {
		w = &attemptWindow{resetAt: now.Add(t.config.Window)}
		t.windows[email] = w
	}
	w.count++
}

// RecordSuccess clears the failure count for the identifier. The window
// timestamp is kept; only the count resets.
func (t *LoginThrottle) RecordSuccess(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if w, ok := t.windows[email]; ok {
		w.count = 0
	}
}

// Cleanup evicts windows whose reset time passed more than one full window
// ago. Run periodically by the background sweeper.
func (t *LoginThrottle) Cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.config.Window)
	evicted := 0
	for email, w := range t.windows {
		if w.resetAt.Before(cutoff) {
			delete(t.windows, email)
			evicted++
		}
	}
	return evicted
}
