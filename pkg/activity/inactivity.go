package activity

import (
	"sync"
	"time"
)

// DefaultInactivityTimeout is the quiet period before the system is
// considered inactive.
const DefaultInactivityTimeout = 30 * time.Second

// InactivityTracker is the boolean inactivity state machine behind
// system_inactivity_ind.
type InactivityTracker struct {
	mu sync.Mutex
	// notifyMu serializes change callbacks; it is taken before mu is
	// released so callbacks fire in the order the state flipped.
	notifyMu sync.Mutex
	inactive bool
	timeout  time.Duration
	timer    *time.Timer
	onChange func(inactive bool)
}

// NewInactivityTracker starts in the active state with the quiet timer
// running. Zero timeout selects DefaultInactivityTimeout.
func NewInactivityTracker(timeout time.Duration) *InactivityTracker {
	if timeout <= 0 {
		timeout = DefaultInactivityTimeout
	}
	t := &InactivityTracker{timeout: timeout}
	t.timer = time.AfterFunc(timeout, t.quietExpired)
	return t
}

// OnChange sets the callback fired, outside the lock, when the
// inactivity state flips.
func (t *InactivityTracker) OnChange(fn func(inactive bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Activity records a user activity event: restarts the quiet timer and
// returns to the active state if needed.
func (t *InactivityTracker) Activity() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.timeout, t.quietExpired)

	if !t.inactive {
		t.mu.Unlock()
		return
	}
	t.inactive = false
	fn := t.onChange
	if fn == nil {
		t.mu.Unlock()
		return
	}

	t.notifyMu.Lock()
	t.mu.Unlock()
	fn(false)
	t.notifyMu.Unlock()
}

// Inactive reports the current state.
func (t *InactivityTracker) Inactive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inactive
}

// Stop cancels the quiet timer; used at shutdown.
func (t *InactivityTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *InactivityTracker) quietExpired() {
	t.mu.Lock()
	if t.inactive || t.timer == nil {
		t.mu.Unlock()
		return
	}
	t.inactive = true
	fn := t.onChange
	if fn == nil {
		t.mu.Unlock()
		return
	}

	t.notifyMu.Lock()
	t.mu.Unlock()
	fn(true)
	t.notifyMu.Unlock()
}
