package notify

import (
	"sync"
	"time"
)

// PollBackoff computes the poll delay the server advertises to a client.
// Each failed poll doubles the delay up to the ceiling; a successful poll
// resets it to the base. Safe for concurrent use.
type PollBackoff struct {
	mu      sync.Mutex
	base    time.Duration
	ceiling time.Duration
	current time.Duration
}

// NewPollBackoff builds a backoff starting at base. A non-positive ceiling
// or a ceiling below base clamps to base (constant interval).
func NewPollBackoff(base, ceiling time.Duration) *PollBackoff {
	if base <= 0 {
		base = time.Second
	}
	if ceiling < base {
		ceiling = base
	}
	return &PollBackoff{base: base, ceiling: ceiling, current: base}
}

// Current returns the delay to advertise for the next poll.
func (b *PollBackoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Fail doubles the delay, capped at the ceiling, and returns the new value.
func (b *PollBackoff) Fail() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current *= 2
	if b.current > b.ceiling {
		b.current = b.ceiling
	}
	return b.current
}

// Reset drops the delay back to the base after a successful poll.
func (b *PollBackoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.base
}
