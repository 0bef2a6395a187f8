package innerlife

import (
	"sync"
	"time"

	uatomic "go.uber.org/atomic"
)

// circuitBreaker trips after a run of consecutive backing-store failures
// and stays open for a cooldown period. While open, callers skip the
// backing store entirely and serve whatever fallback they have.
type circuitBreaker struct {
	threshold int
	cooldown  time.Duration
	failures  uatomic.Int64

	mu       sync.Mutex
	openedAt time.Time
	now      func() time.Time
}

func newCircuitBreaker(threshold int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call to the backing store may proceed. Once
// the cooldown has elapsed a trial call is let through; the failure
// count stays at the threshold until a success clears it, so a failed
// trial re-opens the breaker immediately.
func (b *circuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openedAt.IsZero() {
		return true
	}
	if b.now().Sub(b.openedAt) >= b.cooldown {
		b.openedAt = time.Time{}
		return true
	}
	return false
}

// RecordSuccess resets the consecutive-failure count.
func (b *circuitBreaker) RecordSuccess() {
	b.failures.Store(0)
	b.mu.Lock()
	b.openedAt = time.Time{}
	b.mu.Unlock()
}

// RecordFailure increments the failure count and trips the breaker when
// the run reaches the threshold.
func (b *circuitBreaker) RecordFailure() {
	if b.failures.Inc() < int64(b.threshold) {
		return
	}
	b.mu.Lock()
	if b.openedAt.IsZero() {
		b.openedAt = b.now()
	}
	b.mu.Unlock()
}

// Open reports whether the breaker is currently tripped.
func (b *circuitBreaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.openedAt.IsZero() && b.now().Sub(b.openedAt) < b.cooldown
}

// Failures returns the current consecutive-failure count.
func (b *circuitBreaker) Failures() int {
	return int(b.failures.Load())
}
