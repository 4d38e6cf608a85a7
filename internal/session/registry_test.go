package session_test

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/ashford-college/admissions-api/internal/session"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRegistryRegister_NoEvictionUnderLimit(t *testing.T) {
	r := session.NewRegistry(5, testLogger())

	for i := 0; i < 5; i++ {
		evicted := r.Register("user-1", fmt.Sprintf("token-%d", i))
		assert.Empty(t, evicted)
	}

	assert.Equal(t, 5, r.Count("user-1"))
}

func TestRegistryRegister_EvictsOldestPastLimit(t *testing.T) {
	r := session.NewRegistry(5, testLogger())

	// Six logins with max=5: token-0 (oldest) must go, token-1..token-5 stay.
	var evicted []string
	for i := 0; i < 6; i++ {
		evicted = r.Register("user-1", fmt.Sprintf("token-%d", i))
	}

	assert.Equal(t, []string{"token-0"}, evicted)
	assert.Equal(t, 5, r.Count("user-1"))
	assert.False(t, r.IsLive("user-1", "token-0"))
	for i := 1; i <= 5; i++ {
		assert.True(t, r.IsLive("user-1", fmt.Sprintf("token-%d", i)))
	}
}

func TestRegistryRegister_PrincipalsAreIndependent(t *testing.T) {
	r := session.NewRegistry(2, testLogger())

	r.Register("user-1", "a")
	r.Register("user-1", "b")
	r.Register("user-2", "c")

	evicted := r.Register("user-1", "d")
	assert.Equal(t, []string{"a"}, evicted)
	assert.True(t, r.IsLive("user-2", "c"))
	assert.Equal(t, 1, r.Count("user-2"))
}

func TestRegistryRevoke_RemovesOnlyPresentedToken(t *testing.T) {
	r := session.NewRegistry(5, testLogger())
	r.Register("user-1", "token-a")
	r.Register("user-1", "token-b")

	r.Revoke("user-1", "token-a")

	assert.False(t, r.IsLive("user-1", "token-a"))
	assert.True(t, r.IsLive("user-1", "token-b"))
}

func TestRegistryRevoke_AbsentTokenIsNoop(t *testing.T) {
	r := session.NewRegistry(5, testLogger())
	r.Register("user-1", "token-a")

	r.Revoke("user-1", "no-such-token")
	r.Revoke("no-such-user", "token-a")

	assert.True(t, r.IsLive("user-1", "token-a"))
}

func TestRegistryRevokeAll(t *testing.T) {
	r := session.NewRegistry(5, testLogger())
	r.Register("user-1", "token-a")
	r.Register("user-1", "token-b")

	r.RevokeAll("user-1")

	assert.Equal(t, 0, r.Count("user-1"))
	assert.False(t, r.IsLive("user-1", "token-a"))
}

func TestRegistryTrim_ReassertsBound(t *testing.T) {
	// A registry with a generous bound accumulates sessions, then the bound
	// is re-asserted by a registry configured tighter. Simulate the sweep by
	// registering within bound and confirming Trim is a no-op, since
	// Register already maintains the invariant.
	r := session.NewRegistry(3, testLogger())
	for i := 0; i < 10; i++ {
		r.Register("user-1", fmt.Sprintf("token-%d", i))
	}

	assert.Equal(t, 0, r.Trim())
	assert.Equal(t, 3, r.Count("user-1"))
	assert.True(t, r.IsLive("user-1", "token-9"))
	assert.False(t, r.IsLive("user-1", "token-6"))
}

func TestRegistryConcurrentRegister_KeepsBound(t *testing.T) {
	r := session.NewRegistry(5, testLogger())

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				r.Register("user-1", fmt.Sprintf("g%d-token-%d", g, i))
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 5, r.Count("user-1"))
}
