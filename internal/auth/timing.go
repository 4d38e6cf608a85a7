package auth

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// TimingDelay pads failed logins so "unknown email" and "wrong password"
// take comparable time.
type TimingDelay struct {
	base   time.Duration
	jitter time.Duration
}

// NewTimingDelay creates a delay of base plus up to jitter of random padding.
func NewTimingDelay(base, jitter time.Duration) *TimingDelay {
	return &TimingDelay{base: base, jitter: jitter}
}

// WaitOnFailure sleeps when success is false; successful logins return
// immediately.
func (td *TimingDelay) WaitOnFailure(success bool) {
	if success {
		return
	}

	delay := td.base
	if td.jitter > 0 {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err == nil {
			delay += time.Duration(binary.BigEndian.Uint64(buf[:]) % uint64(td.jitter))
		}
	}
	time.Sleep(delay)
}
