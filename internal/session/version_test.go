package session_test

import (
	"sync"
	"testing"

	"github.com/ashford-college/admissions-api/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestVersionStoreCurrent_DefaultsToOne(t *testing.T) {
	s := session.NewVersionStore()
	assert.Equal(t, int64(1), s.Current("never-seen"))
}

func TestVersionStoreBump_Increments(t *testing.T) {
	s := session.NewVersionStore()

	assert.Equal(t, int64(2), s.Bump("user-1"))
	assert.Equal(t, int64(2), s.Current("user-1"))
	assert.Equal(t, int64(3), s.Bump("user-1"))

	// Other principals are unaffected.
	assert.Equal(t, int64(1), s.Current("user-2"))
}

func TestVersionStoreBump_Concurrent(t *testing.T) {
	s := session.NewVersionStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Bump("user-1")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(101), s.Current("user-1"))
}
