package keepalive

import (
	"sync"
	"time"

	"github.com/modecontrol/mced/pkg/lease"
	"github.com/modecontrol/mced/pkg/owner"
)

// DefaultPeriod is the advertised keepalive period.
const DefaultPeriod = 60 * time.Second

// Tracker owns the keepalive lease set and the suspend gate.
type Tracker struct {
	mu sync.Mutex
	// notifyMu serializes gate callbacks; it is taken before mu is
	// released so callbacks fire in the order the transitions applied.
	notifyMu   sync.Mutex
	leases     *lease.Table[struct{}]
	period     time.Duration
	designated owner.ClientID
	credits    int
	blocked    bool
	onGate     func(blocked bool)
}

// New creates a tracker. Zero period selects DefaultPeriod. The
// designated identity is the only one allowed to deposit wakeup credits;
// empty means wakeups are always rejected.
func New(period time.Duration, designated owner.ClientID) *Tracker {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Tracker{
		leases:     lease.New[struct{}](),
		period:     period,
		designated: designated,
	}
}

// Period returns the advertised keepalive period. Informational only.
func (t *Tracker) Period() time.Duration {
	return t.period
}

// OnGateChange sets the callback fired, outside the lock, when the
// suspend gate opens or closes.
func (t *Tracker) OnGateChange(fn func(blocked bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onGate = fn
}

// Start creates or renews the (client, context) lease. Always accepted.
func (t *Tracker) Start(client owner.ClientID, context string, now time.Time) bool {
	t.mu.Lock()
	_ = t.leases.Put(client, context, struct{}{}, now.Add(t.period))
	t.finishLocked()
	return true
}

// Stop removes one lease. Accepted whether or not the lease existed.
func (t *Tracker) Stop(client owner.ClientID, context string) bool {
	t.mu.Lock()
	t.leases.Remove(client, context)
	t.finishLocked()
	return true
}

// EvictOwner removes all leases of the client.
func (t *Tracker) EvictOwner(client owner.ClientID) {
	t.mu.Lock()
	t.leases.EvictOwner(client)
	t.finishLocked()
}

// Sweep drops expired leases; the gate opens when the last one goes.
func (t *Tracker) Sweep(now time.Time) {
	t.mu.Lock()
	t.leases.Sweep(now)
	t.finishLocked()
}

// Blocked reports whether late suspend is currently blocked by leases.
func (t *Tracker) Blocked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leases.Len() > 0
}

// Wakeup deposits one suspend-suppression credit. Only the designated
// collaborator may call it.
func (t *Tracker) Wakeup(client owner.ClientID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.designated == "" || client != t.designated {
		return false
	}
	t.credits++
	return true
}

// ConsumeWakeupCredit is the accounting hook for the suspend controller:
// it reports whether a pending wakeup credit suppresses this suspend
// attempt, spending the credit if so.
func (t *Tracker) ConsumeWakeupCredit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.credits == 0 {
		return false
	}
	t.credits--
	return true
}

func (t *Tracker) finishLocked() {
	blocked := t.leases.Len() > 0
	changed := blocked != t.blocked
	t.blocked = blocked
	fn := t.onGate
	if !changed || fn == nil {
		t.mu.Unlock()
		return
	}

	t.notifyMu.Lock()
	t.mu.Unlock()
	fn(blocked)
	t.notifyMu.Unlock()
}
