package idle_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashford-college/admissions-api/pkg/idle"
	"github.com/stretchr/testify/assert"
)

// Short durations keep these tests fast; margins are generous enough to
// stay stable under CI scheduling jitter.
func testConfig() idle.Config {
	return idle.Config{
		Timeout:     200 * time.Millisecond,
		WarningLead: 80 * time.Millisecond,
	}
}

func TestTracker_WarningThenLogoutOnInactivity(t *testing.T) {
	var warned, loggedOut atomic.Bool

	tracker := idle.NewTracker(testConfig(), idle.Callbacks{
		OnWarning: func(remaining time.Duration) {
			warned.Store(true)
			assert.Greater(t, remaining, time.Duration(0))
		},
		OnLogout: func() { loggedOut.Store(true) },
	})
	tracker.Start()
	defer tracker.Stop()

	// Before the warning threshold: nothing fired.
	time.Sleep(60 * time.Millisecond)
	assert.False(t, warned.Load())
	assert.False(t, loggedOut.Load())

	// Past (timeout - warningLead): warning, no logout yet.
	time.Sleep(100 * time.Millisecond)
	assert.True(t, warned.Load())
	assert.True(t, tracker.WarningActive())
	assert.False(t, loggedOut.Load())

	// Past timeout: logout fired.
	time.Sleep(100 * time.Millisecond)
	assert.True(t, loggedOut.Load())
}

func TestTracker_ActivityCancelsAndRestarts(t *testing.T) {
	var warned, loggedOut atomic.Bool

	tracker := idle.NewTracker(testConfig(), idle.Callbacks{
		OnWarning: func(time.Duration) { warned.Store(true) },
		OnLogout:  func() { loggedOut.Store(true) },
	})
	tracker.Start()
	defer tracker.Stop()

	// Keep poking before the warning threshold; neither callback may fire.
	for i := 0; i < 4; i++ {
		time.Sleep(80 * time.Millisecond)
		tracker.Activity()
	}

	assert.False(t, warned.Load())
	assert.False(t, loggedOut.Load())
}

func TestTracker_ActivityDismissesWarning(t *testing.T) {
	var loggedOut atomic.Bool

	tracker := idle.NewTracker(testConfig(), idle.Callbacks{
		OnLogout: func() { loggedOut.Store(true) },
	})
	tracker.Start()
	defer tracker.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.True(t, tracker.WarningActive())

	tracker.Activity()
	assert.False(t, tracker.WarningActive())

	// The old logout timer must not fire after the restart.
	time.Sleep(120 * time.Millisecond)
	assert.False(t, loggedOut.Load())
}

func TestTracker_ExtendPingsServerBestEffort(t *testing.T) {
	var pinged atomic.Int32

	tracker := idle.NewTracker(testConfig(), idle.Callbacks{
		Ping: func(ctx context.Context) error {
			pinged.Add(1)
			return context.DeadlineExceeded // failures are swallowed
		},
	})
	tracker.Start()
	defer tracker.Stop()

	tracker.Extend()

	assert.Eventually(t, func() bool { return pinged.Load() == 1 },
		time.Second, 10*time.Millisecond)
	assert.False(t, tracker.WarningActive())
}

func TestTracker_LogoutFiresExactlyOnce(t *testing.T) {
	var logouts atomic.Int32

	tracker := idle.NewTracker(testConfig(), idle.Callbacks{
		OnLogout: func() { logouts.Add(1) },
	})
	tracker.Start()

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), logouts.Load())

	// Stopped tracker ignores further events.
	tracker.Activity()
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), logouts.Load())
}

func TestTracker_RemainingComputedFromFixedDeadline(t *testing.T) {
	tracker := idle.NewTracker(idle.Config{
		Timeout:     time.Minute,
		WarningLead: 10 * time.Second,
	}, idle.Callbacks{})
	tracker.Start()
	defer tracker.Stop()

	r1 := tracker.Remaining()
	time.Sleep(30 * time.Millisecond)
	r2 := tracker.Remaining()

	assert.Greater(t, r1, r2)
	assert.LessOrEqual(t, r1, time.Minute)
}

func TestTracker_StopCancelsPendingTimers(t *testing.T) {
	var fired atomic.Bool

	tracker := idle.NewTracker(testConfig(), idle.Callbacks{
		OnWarning: func(time.Duration) { fired.Store(true) },
		OnLogout:  func() { fired.Store(true) },
	})
	tracker.Start()
	tracker.Stop()

	time.Sleep(300 * time.Millisecond)
	assert.False(t, fired.Load())
}
