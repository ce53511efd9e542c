package notification

import (
	"sync"
	"time"

	"github.com/modecontrol/mced/pkg/owner"
)

// window is one named display-on interval.
type window struct {
	deadline time.Time
	// cap bounds activity extension: deadline never passes it.
	cap       time.Time
	extend    time.Duration
	lingering bool
}

type windowKey struct {
	owner owner.ClientID
	name  string
}

// Tracker owns all open notification windows.
type Tracker struct {
	mu sync.Mutex
	// notifyMu serializes change callbacks; it is taken before mu is
	// released so callbacks fire in the order the transitions applied.
	notifyMu sync.Mutex
	windows  map[windowKey]*window
	forcing  bool
	onChange func(forcing bool)
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		windows: make(map[windowKey]*window),
	}
}

// OnChange sets the callback fired, outside the lock, when the
// display-on forcing state flips.
func (t *Tracker) OnChange(fn func(forcing bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Begin opens or replaces the window keyed by (client, name). Replacing
// resets the deadline and the extension cap, and cancels a pending
// lingering closure.
func (t *Tracker) Begin(client owner.ClientID, name string, duration, extend time.Duration, now time.Time) {
	t.mu.Lock()
	t.windows[windowKey{client, name}] = &window{
		deadline: now.Add(duration),
		cap:      now.Add(2 * duration),
		extend:   extend,
	}
	t.finishLocked()
}

// End schedules the window's closure after linger; the forcing effect
// stays active for the tail. Non-positive linger closes immediately.
// Ending an unknown window is a no-op.
func (t *Tracker) End(client owner.ClientID, name string, linger time.Duration, now time.Time) {
	t.mu.Lock()
	k := windowKey{client, name}
	w, ok := t.windows[k]
	if !ok {
		t.mu.Unlock()
		return
	}
	if linger <= 0 {
		delete(t.windows, k)
	} else {
		w.deadline = now.Add(linger)
		w.lingering = true
	}
	t.finishLocked()
}

// Activity extends every open (non-lingering) window by its extend step,
// capped so activity alone cannot extend past one un-extended duration
// beyond the last Begin. Windows already past their deadline are left
// for Sweep to close.
func (t *Tracker) Activity(now time.Time) {
	t.mu.Lock()
	for _, w := range t.windows {
		if w.lingering || w.extend <= 0 || !w.deadline.After(now) {
			continue
		}
		next := w.deadline.Add(w.extend)
		if next.After(w.cap) {
			next = w.cap
		}
		if next.After(w.deadline) {
			w.deadline = next
		}
	}
	t.mu.Unlock()
}

// Sweep closes windows whose deadline has passed, lingering or not.
func (t *Tracker) Sweep(now time.Time) {
	t.mu.Lock()
	for k, w := range t.windows {
		if !w.deadline.After(now) {
			delete(t.windows, k)
		}
	}
	t.finishLocked()
}

// EvictOwner closes all of the client's windows immediately, tails
// included.
func (t *Tracker) EvictOwner(client owner.ClientID) {
	t.mu.Lock()
	for k := range t.windows {
		if k.owner == client {
			delete(t.windows, k)
		}
	}
	t.finishLocked()
}

// ForcingDisplayOn reports whether any window (or tail) is open.
func (t *Tracker) ForcingDisplayOn() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows) > 0
}

// Open returns the number of tracked windows.
func (t *Tracker) Open() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}

func (t *Tracker) finishLocked() {
	forcing := len(t.windows) > 0
	changed := forcing != t.forcing
	t.forcing = forcing
	fn := t.onChange
	if !changed || fn == nil {
		t.mu.Unlock()
		return
	}

	t.notifyMu.Lock()
	t.mu.Unlock()
	fn(forcing)
	t.notifyMu.Unlock()
}
