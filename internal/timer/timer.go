// Package timer provides one-shot cancellable countdowns for timed play
// modes. Each Start returns a disposable handle; the expiry callback fires
// at most once, and cancelling an already-fired or already-cancelled handle
// is a no-op. The handle is the single source of truth for "has this timer
// already fired", which the session controller relies on to resolve races
// between answers and expirations.
package timer

import (
	"sync"
	"time"
)

// Handle is a single countdown. The zero value is not usable; obtain
// handles from Start.
type Handle struct {
	mu        sync.Mutex
	t         *time.Timer
	deadline  time.Time
	fired     bool
	cancelled bool
}

// Start begins a countdown of d and invokes fn on natural expiration.
// fn runs on its own goroutine exactly once, or never if the handle is
// cancelled first.
func Start(d time.Duration, fn func()) *Handle {
	h := &Handle{deadline: time.Now().Add(d)}
	h.t = time.AfterFunc(d, func() {
		h.mu.Lock()
		if h.cancelled || h.fired {
			h.mu.Unlock()
			return
		}
		h.fired = true
		h.mu.Unlock()
		fn()
	})
	return h
}

// Cancel stops the countdown. Idempotent: cancelling a nil, already-fired,
// or already-cancelled handle does nothing.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fired || h.cancelled {
		return
	}
	h.cancelled = true
	h.t.Stop()
}

// Fired reports whether the countdown expired naturally.
func (h *Handle) Fired() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fired
}

// Remaining returns the time left before expiry, zero once the countdown
// has fired or been cancelled.
func (h *Handle) Remaining() time.Duration {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fired || h.cancelled {
		return 0
	}
	if r := time.Until(h.deadline); r > 0 {
		return r
	}
	return 0
}
