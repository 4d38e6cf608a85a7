package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashford-college/admissions-api/internal/session"
)

// SessionSweeper periodically re-asserts the session cap and evicts stale
// throttle windows. Both stores are self-bounding in normal operation; the
// sweeper is a backstop.
type SessionSweeper struct {
	registry *session.Registry
	throttle *session.LoginThrottle
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewSessionSweeper creates a new session sweeper
func NewSessionSweeper(
	registry *session.Registry,
	throttle *session.LoginThrottle,
	logger *slog.Logger,
	interval time.Duration,
) *SessionSweeper {
	return &SessionSweeper{
		registry: registry,
		throttle: throttle,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep task
func (s *SessionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on startup
	s.runSweep()

	for {
		select {
		case <-ticker.C:
			s.runSweep()
		case <-s.stopCh:
			s.logger.Info("session sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("session sweeper context cancelled")
			return
		}
	}
}

func (s *SessionSweeper) runSweep() {
	trimmed := s.registry.Trim()
	evicted := s.throttle.Cleanup()

	if trimmed > 0 || evicted > 0 {
		s.logger.Info("session sweep completed",
			slog.Int("sessions_trimmed", trimmed),
			slog.Int("throttle_windows_evicted", evicted))
	}
}

// Stop signals the sweeper to stop
func (s *SessionSweeper) Stop() {
	close(s.stopCh)
}
