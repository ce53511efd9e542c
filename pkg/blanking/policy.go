package blanking

import (
	"errors"
	"sync"
	"time"

	"github.com/modecontrol/mced/pkg/wire"
)

// DefaultLingerWindow is how long the stack reports linger after the
// last override reason clears.
const DefaultLingerWindow = 5 * time.Second

// ErrInvalidReason is returned for policies that are not override
// reasons (default and linger are outputs, never inputs).
var ErrInvalidReason = errors.New("blanking: invalid policy reason")

// PolicyStack reduces the active override reasons to one visible
// blanking policy.
type PolicyStack struct {
	mu sync.Mutex
	// notifyMu serializes change callbacks; it is taken before mu is
	// released so callbacks fire in the order the policies were adopted.
	notifyMu    sync.Mutex
	active      map[wire.BlankingPolicy]bool
	visible     wire.BlankingPolicy
	lingerFor   time.Duration
	lingerTimer *time.Timer
	onChange    func(wire.BlankingPolicy)
}

// NewPolicyStack creates a stack reporting default; zero linger selects
// DefaultLingerWindow.
func NewPolicyStack(linger time.Duration) *PolicyStack {
	if linger <= 0 {
		linger = DefaultLingerWindow
	}
	return &PolicyStack{
		active:    make(map[wire.BlankingPolicy]bool),
		visible:   wire.PolicyDefault,
		lingerFor: linger,
	}
}

// OnChange sets the callback fired, outside the lock, when the visible
// policy changes.
func (s *PolicyStack) OnChange(fn func(wire.BlankingPolicy)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Enter activates an override reason. Activating a reason below the
// current top records it without changing the visible policy. Entering
// during linger cancels the pending relaxation.
func (s *PolicyStack) Enter(reason wire.BlankingPolicy) error {
	if !isReason(reason) {
		return ErrInvalidReason
	}

	s.mu.Lock()
	s.active[reason] = true
	s.stopLingerLocked()
	s.settleLocked()
	return nil
}

// Leave deactivates an override reason. Leaving a non-active reason is a
// no-op. When the last reason clears, the stack lingers before reporting
// default.
func (s *PolicyStack) Leave(reason wire.BlankingPolicy) error {
	if !isReason(reason) {
		return ErrInvalidReason
	}

	s.mu.Lock()
	if !s.active[reason] {
		s.mu.Unlock()
		return nil
	}
	delete(s.active, reason)

	if len(s.active) == 0 {
		s.stopLingerLocked()
		s.lingerTimer = time.AfterFunc(s.lingerFor, s.lingerExpired)
		s.adoptLocked(wire.PolicyLinger)
		return nil
	}
	s.settleLocked()
	return nil
}

// Current returns the visible policy.
func (s *PolicyStack) Current() wire.BlankingPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// settleLocked adopts the highest-priority active reason, releasing the
// lock and firing the change callback if the visible policy moved.
func (s *PolicyStack) settleLocked() {
	s.adoptLocked(s.topLocked())
}

// adoptLocked publishes the given policy; must hold the lock, releases
// it. The notify lock is chained in before mu is released so overlapping
// adoptions deliver their callbacks in adoption order.
func (s *PolicyStack) adoptLocked(next wire.BlankingPolicy) {
	changed := next != s.visible
	s.visible = next
	fn := s.onChange
	if !changed || fn == nil {
		s.mu.Unlock()
		return
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	fn(next)
	s.notifyMu.Unlock()
}

// topLocked is the reduction: highest-priority active reason or default.
func (s *PolicyStack) topLocked() wire.BlankingPolicy {
	top := wire.PolicyDefault
	for reason := range s.active {
		if reasonPriority(reason) > reasonPriority(top) {
			top = reason
		}
	}
	return top
}

func (s *PolicyStack) stopLingerLocked() {
	if s.lingerTimer != nil {
		s.lingerTimer.Stop()
		s.lingerTimer = nil
	}
}

// lingerExpired relaxes to default unless a reason re-activated while the
// timer ran.
func (s *PolicyStack) lingerExpired() {
	s.mu.Lock()
	if s.visible != wire.PolicyLinger || len(s.active) > 0 {
		s.mu.Unlock()
		return
	}
	s.lingerTimer = nil
	s.adoptLocked(wire.PolicyDefault)
}

// isReason reports whether the policy is a valid override reason.
func isReason(p wire.BlankingPolicy) bool {
	switch p {
	case wire.PolicyNotification, wire.PolicyAlarm, wire.PolicyCall:
		return true
	default:
		return false
	}
}

// reasonPriority orders override reasons: call > alarm > notification.
func reasonPriority(p wire.BlankingPolicy) int {
	switch p {
	case wire.PolicyCall:
		return 3
	case wire.PolicyAlarm:
		return 2
	case wire.PolicyNotification:
		return 1
	default:
		return 0
	}
}
