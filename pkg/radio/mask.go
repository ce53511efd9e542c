package radio

import (
	"sync"

	"github.com/modecontrol/mced/pkg/wire"
)

// Aggregator holds the single authoritative radio state bitmask.
type Aggregator struct {
	mu sync.Mutex
	// notifyMu serializes change callbacks; it is taken before mu is
	// released so callbacks fire in the order the changes applied.
	notifyMu sync.Mutex
	mask     wire.RadioMask
	onChange func(wire.RadioMask)
	onMaster func(enabled bool)
}

// New creates an aggregator seeded with the given mask (e.g. restored
// from the saved state file). Undefined bits are dropped.
func New(initial wire.RadioMask) *Aggregator {
	return &Aggregator{mask: initial & wire.RadioAll}
}

// OnChange sets the callback fired, outside the lock, whenever the mask
// actually changes, whatever the origin of the change.
func (a *Aggregator) OnChange(fn func(wire.RadioMask)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

// OnMasterChange sets the callback that mirrors local master-bit changes
// outward to the offline-mode collaborator. It does not fire for changes
// that arrived from the collaborator.
func (a *Aggregator) OnMasterChange(fn func(enabled bool)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onMaster = fn
}

// Change applies (old &^ mask) | (value & mask) and returns the new
// mask. It always succeeds; undefined bits in value and mask are
// ignored.
func (a *Aggregator) Change(value, mask wire.RadioMask) wire.RadioMask {
	return a.apply(value, mask, true)
}

// SetMasterFromCollaborator applies an offline-mode change from the
// collaborator to the master bit. The change signal fires exactly as for
// a local request, but the master callback does not, so the change is
// never echoed back.
func (a *Aggregator) SetMasterFromCollaborator(enabled bool) wire.RadioMask {
	var value wire.RadioMask
	if enabled {
		value = wire.RadioMaster
	}
	return a.apply(value, wire.RadioMaster, false)
}

// Current returns the mask.
func (a *Aggregator) Current() wire.RadioMask {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mask
}

func (a *Aggregator) apply(value, mask wire.RadioMask, mirrorMaster bool) wire.RadioMask {
	value &= wire.RadioAll
	mask &= wire.RadioAll

	a.mu.Lock()
	old := a.mask
	next := (old &^ mask) | (value & mask)
	a.mask = next

	fire := next != old && a.onChange != nil
	mirror := mirrorMaster && (next^old)&wire.RadioMaster != 0 && a.onMaster != nil
	onChange := a.onChange
	onMaster := a.onMaster
	if !fire && !mirror {
		a.mu.Unlock()
		return next
	}

	// Chain the notify lock in before mu is released so overlapping
	// changes deliver their callbacks in apply order.
	a.notifyMu.Lock()
	a.mu.Unlock()
	if fire {
		onChange(next)
	}
	if mirror {
		onMaster(next&wire.RadioMaster != 0)
	}
	a.notifyMu.Unlock()
	return next
}
