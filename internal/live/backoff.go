package live

import (
	"math"
	"time"
)

// Backoff computes reconnect delays: base * factor^attempts, capped at max.
// Reset is called after a successful connect so the next outage starts over
// from the base delay.
type Backoff struct {
	base     time.Duration
	max      time.Duration
	factor   float64
	attempts int
}

// NewBackoff creates a Backoff. Out-of-range arguments fall back to sane
// values rather than erroring, since they come from config defaults anyway.
func NewBackoff(base, max time.Duration, factor float64) *Backoff {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = 30 * time.Second
	}
	if factor < 1 {
		factor = 1.5
	}
	return &Backoff{base: base, max: max, factor: factor}
}

// Next returns the delay before the upcoming attempt and advances the
// counter.
func (b *Backoff) Next() time.Duration {
	d := float64(b.base) * math.Pow(b.factor, float64(b.attempts))
	if d > float64(b.max) {
		d = float64(b.max)
	}
	b.attempts++
	return time.Duration(d)
}

// Reset clears the attempt counter.
func (b *Backoff) Reset() {
	b.attempts = 0
}

// Attempts returns how many delays have been handed out since the last
// reset.
func (b *Backoff) Attempts() int {
	return b.attempts
}
