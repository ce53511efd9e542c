package ledpattern

import (
	"sync"

	"github.com/modecontrol/mced/pkg/owner"
)

// Pattern is one configured LED pattern.
type Pattern struct {
	// Name is the wire name of the pattern.
	Name string `yaml:"name"`

	// Priority orders evaluation; higher wins.
	Priority int `yaml:"priority"`

	// Privileged patterns bypass the global enable toggle.
	Privileged bool `yaml:"privileged"`
}

// Stack reduces all pattern requests to one evaluated pattern.
type Stack struct {
	mu sync.Mutex
	// notifyMu serializes the transition and evaluation callbacks; it is
	// taken before mu is released so callbacks fire in apply order.
	notifyMu sync.Mutex
	defs     map[string]Pattern
	holders  map[string]map[owner.ClientID]struct{}
	enabled  bool

	lastEvaluated string
	lastOK        bool

	onTransition func(pattern string, active bool)
	onEvaluated  func(pattern string, ok bool)
}

// New creates a stack with the configured patterns. The global toggle
// starts enabled.
func New(patterns []Pattern) *Stack {
	defs := make(map[string]Pattern, len(patterns))
	for _, p := range patterns {
		defs[p.Name] = p
	}
	return &Stack{
		defs:    defs,
		holders: make(map[string]map[owner.ClientID]struct{}),
		enabled: true,
	}
}

// OnTransition sets the callback fired, outside the lock, when a known
// pattern's activation flips. Feeds the activated/deactivated signals.
func (s *Stack) OnTransition(fn func(pattern string, active bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTransition = fn
}

// OnEvaluated sets the callback fired, outside the lock, when the
// evaluated pattern changes. Feeds the LED collaborator.
func (s *Stack) OnEvaluated(fn func(pattern string, ok bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvaluated = fn
}

// Activate adds the client's request for the pattern. Idempotent;
// unknown names are accepted silently.
func (s *Stack) Activate(client owner.ClientID, pattern string) {
	s.mu.Lock()
	set := s.holders[pattern]
	if set == nil {
		set = make(map[owner.ClientID]struct{})
		s.holders[pattern] = set
	}
	if _, dup := set[client]; dup {
		s.mu.Unlock()
		return
	}
	set[client] = struct{}{}
	transition := len(set) == 1
	s.finishLocked(pattern, transition, true)
}

// Deactivate removes the client's request for the pattern. Idempotent.
func (s *Stack) Deactivate(client owner.ClientID, pattern string) {
	s.mu.Lock()
	set := s.holders[pattern]
	if set == nil {
		s.mu.Unlock()
		return
	}
	if _, held := set[client]; !held {
		s.mu.Unlock()
		return
	}
	delete(set, client)
	transition := len(set) == 0
	if transition {
		delete(s.holders, pattern)
	}
	s.finishLocked(pattern, transition, false)
}

// EvictOwner deactivates every pattern the client had activated.
func (s *Stack) EvictOwner(client owner.ClientID) {
	s.mu.Lock()
	var released []string
	for pattern, set := range s.holders {
		if _, held := set[client]; !held {
			continue
		}
		delete(set, client)
		if len(set) == 0 {
			delete(s.holders, pattern)
			released = append(released, pattern)
		}
	}

	evalPattern, evalOK, evalChanged := s.reevaluateLocked()
	onTransition := s.onTransition
	onEvaluated := s.onEvaluated
	if len(released) == 0 && !evalChanged {
		s.mu.Unlock()
		return
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	if onTransition != nil {
		for _, pattern := range released {
			if _, known := s.defs[pattern]; known {
				onTransition(pattern, false)
			}
		}
	}
	if evalChanged && onEvaluated != nil {
		onEvaluated(evalPattern, evalOK)
	}
	s.notifyMu.Unlock()
}

// Enable admits normal patterns to evaluation.
func (s *Stack) Enable() { s.setEnabled(true) }

// Disable suppresses normal patterns; privileged patterns stay visible.
func (s *Stack) Disable() { s.setEnabled(false) }

// Enabled reports the global toggle.
func (s *Stack) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Active reports whether the pattern is currently activated by any
// client.
func (s *Stack) Active(pattern string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.holders[pattern]) > 0
}

// Evaluated returns the pattern the LED should show, if any.
func (s *Stack) Evaluated() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluateLocked()
}

func (s *Stack) setEnabled(enabled bool) {
	s.mu.Lock()
	if s.enabled == enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = enabled
	s.finishLocked("", false, false)
}

// finishLocked re-evaluates and fires callbacks; must hold the lock,
// releases it. The notify lock is chained in before mu is released so
// overlapping transitions deliver their callbacks in apply order.
func (s *Stack) finishLocked(pattern string, transition, active bool) {
	_, known := s.defs[pattern]
	evalPattern, evalOK, evalChanged := s.reevaluateLocked()
	fireTransition := transition && known && s.onTransition != nil
	fireEvaluated := evalChanged && s.onEvaluated != nil
	onTransition := s.onTransition
	onEvaluated := s.onEvaluated
	if !fireTransition && !fireEvaluated {
		s.mu.Unlock()
		return
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	if fireTransition {
		onTransition(pattern, active)
	}
	if fireEvaluated {
		onEvaluated(evalPattern, evalOK)
	}
	s.notifyMu.Unlock()
}

func (s *Stack) reevaluateLocked() (string, bool, bool) {
	pattern, ok := s.evaluateLocked()
	changed := pattern != s.lastEvaluated || ok != s.lastOK
	s.lastEvaluated, s.lastOK = pattern, ok
	return pattern, ok, changed
}

// evaluateLocked is the reduction: highest-priority activated pattern
// that is privileged or admitted by the toggle.
func (s *Stack) evaluateLocked() (string, bool) {
	var (
		best  Pattern
		found bool
	)
	for name, set := range s.holders {
		if len(set) == 0 {
			continue
		}
		def, known := s.defs[name]
		if !known {
			continue
		}
		if !def.Privileged && !s.enabled {
			continue
		}
		if !found || def.Priority > best.Priority {
			best = def
			found = true
		}
	}
	if !found {
		return "", false
	}
	return best.Name, true
}
