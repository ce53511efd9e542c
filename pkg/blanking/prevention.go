package blanking

import (
	"sync"
	"time"

	"github.com/modecontrol/mced/pkg/lease"
	"github.com/modecontrol/mced/pkg/owner"
	"github.com/modecontrol/mced/pkg/wire"
)

// DefaultPauseDuration is the policy-fixed blanking pause lease length.
// Callers cannot choose it; they renew by repeating the pause request.
const DefaultPauseDuration = 60 * time.Second

// pauseKey is the single lease key per owner; a client holds at most one
// blanking pause.
const pauseKey = "pause"

// DisplayQuerier reports the display collaborator state consulted by the
// pause precondition.
type DisplayQuerier interface {
	// State returns the current display power state.
	State() wire.DisplayState

	// LockActive reports whether the lockscreen is active.
	LockActive() bool
}

// Prevention manages display blanking pause leases.
type Prevention struct {
	mu sync.Mutex
	// notifyMu serializes change callbacks; it is taken before mu is
	// released so callbacks fire in the order the transitions applied.
	notifyMu sync.Mutex
	leases   *lease.Table[struct{}]
	duration time.Duration
	display  DisplayQuerier
	active   bool
	onChange func(active bool)
}

// NewPrevention creates a prevention manager with the given lease
// duration; zero selects DefaultPauseDuration. The querier may be nil, in
// which case pauses are always allowed.
func NewPrevention(duration time.Duration, display DisplayQuerier) *Prevention {
	if duration <= 0 {
		duration = DefaultPauseDuration
	}
	return &Prevention{
		leases:   lease.New[struct{}](),
		duration: duration,
		display:  display,
	}
}

// OnChange sets the callback fired, outside the lock, when the pause
// status flips between active and inactive.
func (p *Prevention) OnChange(fn func(active bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Pause creates or renews the client's pause lease. Rejected only while
// the display is already off with the lockscreen active.
func (p *Prevention) Pause(client owner.ClientID, now time.Time) bool {
	if p.display != nil && p.display.State() == wire.DisplayOff && p.display.LockActive() {
		return false
	}

	p.mu.Lock()
	_ = p.leases.Put(client, pauseKey, struct{}{}, now.Add(p.duration))
	p.finishLocked()
	return true
}

// Cancel removes the client's pause lease. No error if absent.
func (p *Prevention) Cancel(client owner.ClientID) {
	p.mu.Lock()
	p.leases.Remove(client, pauseKey)
	p.finishLocked()
}

// EvictOwner behaves as Cancel; disconnect handling.
func (p *Prevention) EvictOwner(client owner.ClientID) {
	p.mu.Lock()
	p.leases.EvictOwner(client)
	p.finishLocked()
}

// Sweep drops expired leases.
func (p *Prevention) Sweep(now time.Time) {
	p.mu.Lock()
	p.leases.Sweep(now)
	p.finishLocked()
}

// Active reports whether any pause lease is live.
func (p *Prevention) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.leases.Len() > 0
}

// Status returns the wire string for the pause status.
func (p *Prevention) Status() string {
	if p.Active() {
		return wire.PreventBlankActiveString
	}
	return wire.PreventBlankInactiveString
}

func (p *Prevention) finishLocked() {
	active := p.leases.Len() > 0
	changed := active != p.active
	p.active = active
	fn := p.onChange
	if !changed || fn == nil {
		p.mu.Unlock()
		return
	}

	p.notifyMu.Lock()
	p.mu.Unlock()
	fn(active)
	p.notifyMu.Unlock()
}
