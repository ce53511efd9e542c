package callstate

import (
	"sync"
	"time"

	"github.com/modecontrol/mced/pkg/lease"
	"github.com/modecontrol/mced/pkg/owner"
	"github.com/modecontrol/mced/pkg/wire"
)

// claimKey is the single lease key used per owner; a client holds at most
// one call-state claim.
const claimKey = "call"

// noExpiry marks entries in the non-expiring claims table.
var noExpiry time.Time

// Claim is one client's view of the call state.
type Claim struct {
	State wire.CallState
	Type  wire.CallType
}

// Aggregate is the reduced, authoritative call state of the device.
type Aggregate struct {
	State wire.CallState
	Type  wire.CallType
}

// Aggregator reduces all live claims to one Aggregate.
type Aggregator struct {
	mu sync.Mutex
	// notifyMu serializes change callbacks; it is taken before mu is
	// released so callbacks fire in the order the transitions applied.
	notifyMu sync.Mutex
	claims   *lease.Table[Claim]
	last     Aggregate
	onChange func(Aggregate)
}

// New creates an aggregator with no claims; the empty reduction is
// (none, normal).
func New() *Aggregator {
	return &Aggregator{
		claims: lease.NewNonExpiring[Claim](),
	}
}

// OnChange sets the callback invoked, outside the aggregator lock, each
// time the reduced value actually changes.
func (a *Aggregator) OnChange(fn func(Aggregate)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

// Set records the client's claim and re-reduces. A (none, normal) claim
// clears the client's entry. Always accepted; validation of the pair
// happens when the wire strings are parsed.
func (a *Aggregator) Set(client owner.ClientID, state wire.CallState, callType wire.CallType) {
	a.mu.Lock()
	if state == wire.CallStateNone && callType == wire.CallTypeNormal {
		a.claims.Remove(client, claimKey)
	} else {
		_ = a.claims.Put(client, claimKey, Claim{State: state, Type: callType}, noExpiry)
	}
	a.finishLocked()
}

// EvictOwner removes the client's claim, as if it had claimed
// (none, normal). Safe to call for clients without a claim.
func (a *Aggregator) EvictOwner(client owner.ClientID) {
	a.mu.Lock()
	a.claims.EvictOwner(client)
	a.finishLocked()
}

// Current returns the reduced call state.
func (a *Aggregator) Current() Aggregate {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reduce()
}

// finishLocked re-reduces, releases the lock, and fires the change
// callback when the reduction moved. The notify lock is chained in
// before mu is released so overlapping transitions deliver their
// callbacks in apply order.
func (a *Aggregator) finishLocked() {
	reduced := a.reduce()
	changed := reduced != a.last
	a.last = reduced
	fn := a.onChange
	if !changed || fn == nil {
		a.mu.Unlock()
		return
	}

	a.notifyMu.Lock()
	a.mu.Unlock()
	fn(reduced)
	a.notifyMu.Unlock()
}

// reduce folds all live claims into one Aggregate.
func (a *Aggregator) reduce() Aggregate {
	agg := Aggregate{State: wire.CallStateNone, Type: wire.CallTypeNormal}
	for _, e := range a.claims.Entries() {
		if statePriority(e.Value.State) > statePriority(agg.State) {
			agg.State = e.Value.State
		}
		if e.Value.Type == wire.CallTypeEmergency {
			agg.Type = wire.CallTypeEmergency
		}
	}
	return agg
}

// statePriority orders call states: ringing > active > service > none.
func statePriority(s wire.CallState) int {
	switch s {
	case wire.CallStateRinging:
		return 3
	case wire.CallStateActive:
		return 2
	case wire.CallStateService:
		return 1
	default:
		return 0
	}
}
