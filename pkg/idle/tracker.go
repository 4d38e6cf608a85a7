// Package idle implements the client-side inactivity tracker used by portal
// frontends: a warning timer and a hard-logout timer keyed to a single
// last-activity timestamp. The tracker is purely a local UX affordance; the
// server holds no idle timer of its own, so the extend ping only refreshes
// the server's perception of activity.
package idle

import (
	"context"
	"sync"
	"time"
)

// Config holds the idle timeout pair.
type Config struct {
	Timeout     time.Duration // inactivity budget before hard logout (30m default)
	WarningLead time.Duration // how long before logout the warning shows (2m default)
}

// DefaultConfig returns the portal defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Minute,
		WarningLead: 2 * time.Minute,
	}
}

// Callbacks are invoked by the tracker. All of them run serialized against
// Activity/Extend/Stop; none runs after Stop returns effect. Ping is the
// best-effort session-extension call whose failure is observed and dropped.
type Callbacks struct {
	OnWarning   func(remaining time.Duration)
	OnCountdown func(remaining time.Duration) // once per second while warning shows
	OnLogout    func()
	Ping        func(ctx context.Context) error
}

// Tracker schedules the warning/logout timer pair. Every qualifying activity
// event cancels and reschedules both; stale timer callbacks are detected by
// a generation counter so a fire that raced a reschedule never acts.
type Tracker struct {
	mu  sync.Mutex
	cfg Config
	cb  Callbacks

	gen          uint64
	lastActivity time.Time
	deadline     time.Time // fixed logout instant; countdown derives from it
	warnTimer    *time.Timer
	logoutTimer  *time.Timer
	countdown    *time.Ticker
	countdownEnd chan struct{}
	warning      bool
	stopped      bool

	now func() time.Time
}

// NewTracker creates a tracker. Call Start after login to arm the timers.
func NewTracker(cfg Config, cb Callbacks) *Tracker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.WarningLead <= 0 || cfg.WarningLead >= cfg.Timeout {
		cfg.WarningLead = cfg.Timeout / 4
	}
	return &Tracker{
		cfg: cfg,
		cb:  cb,
		now: time.Now,
	}
}

// Start arms both timers as if an activity event just occurred.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = false
	t.rescheduleLocked()
}

// Activity records a qualifying user event (pointer, key, touch, scroll).
// Any visible warning is dismissed and the full cycle restarts.
func (t *Tracker) Activity() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.rescheduleLocked()
}

// Extend is the user's response to the warning: both timers restart from now
// and the server identity endpoint is pinged so server-side activity
// perception stays fresh. Ping failures are ignored.
func (t *Tracker) Extend() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.rescheduleLocked()
	ping := t.cb.Ping
	t.mu.Unlock()

	if ping != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = ping(ctx)
		}()
	}
}

// Stop cancels all pending timers, e.g. on explicit logout.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.gen++
	t.cancelTimersLocked()
}

// WarningActive reports whether the warning is currently showing.
func (t *Tracker) WarningActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.warning
}

// Remaining returns time left until hard logout, computed from the fixed
// deadline rather than by decrementing, so repeated calls never drift.
func (t *Tracker) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.deadline.IsZero() {
		return 0
	}
	remaining := t.deadline.Sub(t.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// rescheduleLocked cancels any pending timers and re-arms both from now.
// Must hold t.mu.
func (t *Tracker) rescheduleLocked() {
	t.gen++
	gen := t.gen

	t.cancelTimersLocked()

	now := t.now()
	t.lastActivity = now
	t.deadline = now.Add(t.cfg.Timeout)
	t.warning = false

	t.warnTimer = time.AfterFunc(t.cfg.Timeout-t.cfg.WarningLead, func() {
		t.warnFired(gen)
	})
	t.logoutTimer = time.AfterFunc(t.cfg.Timeout, func() {
		t.logoutFired(gen)
	})
}

// cancelTimersLocked stops pending timers and the countdown ticker. Must
// hold t.mu.
func (t *Tracker) cancelTimersLocked() {
	if t.warnTimer != nil {
		t.warnTimer.Stop()
		t.warnTimer = nil
	}
	if t.logoutTimer != nil {
		t.logoutTimer.Stop()
		t.logoutTimer = nil
	}
	if t.countdown != nil {
		t.countdown.Stop()
		close(t.countdownEnd)
		t.countdown = nil
		t.countdownEnd = nil
	}
	t.warning = false
}

func (t *Tracker) warnFired(gen uint64) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		t.mu.Unlock()
		return
	}

	// Coalesced events can land between scheduling and firing; if activity
	// is more recent than the warning threshold, reschedule instead.
	threshold := t.cfg.Timeout - t.cfg.WarningLead
	sinceActivity := t.now().Sub(t.lastActivity)
	if sinceActivity < threshold {
		t.warnTimer = time.AfterFunc(threshold-sinceActivity, func() {
			t.warnFired(gen)
		})
		t.mu.Unlock()
		return
	}

	t.warning = true
	deadline := t.deadline
	onWarning := t.cb.OnWarning

	if t.cb.OnCountdown != nil {
		t.countdown = time.NewTicker(time.Second)
		t.countdownEnd = make(chan struct{})
		go t.runCountdown(t.countdown.C, t.countdownEnd, deadline)
	}
	t.mu.Unlock()

	if onWarning != nil {
		onWarning(deadline.Sub(t.now()))
	}
}

// runCountdown recomputes remaining time from the fixed deadline once per
// second until it reaches zero or the warning is dismissed.
func (t *Tracker) runCountdown(tick <-chan time.Time, done <-chan struct{}, deadline time.Time) {
	for {
		select {
		case <-done:
			return
		case <-tick:
			remaining := deadline.Sub(t.now())
			if remaining < 0 {
				remaining = 0
			}
			t.cb.OnCountdown(remaining)
			if remaining == 0 {
				return
			}
		}
	}
}

func (t *Tracker) logoutFired(gen uint64) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.gen++
	t.cancelTimersLocked()
	onLogout := t.cb.OnLogout
	t.mu.Unlock()

	if onLogout != nil {
		onLogout()
	}
}
