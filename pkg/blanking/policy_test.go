package blanking

import (
	"testing"
	"time"

	"github.com/modecontrol/mced/pkg/wire"
)

const testLinger = 30 * time.Millisecond

func TestPolicyStackPriority(t *testing.T) {
	s := NewPolicyStack(testLinger)

	if err := s.Enter(wire.PolicyNotification); err != nil {
		t.Fatalf("Enter(notification) error = %v", err)
	}
	if got := s.Current(); got != wire.PolicyNotification {
		t.Errorf("Current() = %v, want notification", got)
	}

	_ = s.Enter(wire.PolicyCall)
	if got := s.Current(); got != wire.PolicyCall {
		t.Errorf("Current() = %v, want call", got)
	}

	// Lower-priority reason while call is active: recorded, not visible.
	_ = s.Enter(wire.PolicyAlarm)
	if got := s.Current(); got != wire.PolicyCall {
		t.Errorf("Current() = %v with alarm under call, want call", got)
	}
}

func TestPolicyStackLeaveRevealsNextReason(t *testing.T) {
	s := NewPolicyStack(testLinger)
	_ = s.Enter(wire.PolicyNotification)
	_ = s.Enter(wire.PolicyCall)

	// Closing call while notification is still active: immediate, no linger.
	_ = s.Leave(wire.PolicyCall)
	if got := s.Current(); got != wire.PolicyNotification {
		t.Errorf("Current() = %v after leaving call, want notification", got)
	}
}

func TestPolicyStackLingerThenDefault(t *testing.T) {
	s := NewPolicyStack(testLinger)
	_ = s.Enter(wire.PolicyAlarm)

	_ = s.Leave(wire.PolicyAlarm)
	if got := s.Current(); got != wire.PolicyLinger {
		t.Fatalf("Current() = %v right after last leave, want linger", got)
	}

	time.Sleep(3 * testLinger)
	if got := s.Current(); got != wire.PolicyDefault {
		t.Errorf("Current() = %v after linger window, want default", got)
	}
}

func TestPolicyStackReenterCancelsLinger(t *testing.T) {
	s := NewPolicyStack(testLinger)
	_ = s.Enter(wire.PolicyNotification)
	_ = s.Leave(wire.PolicyNotification)

	// Re-activation during linger adopts the new reason immediately.
	_ = s.Enter(wire.PolicyCall)
	if got := s.Current(); got != wire.PolicyCall {
		t.Fatalf("Current() = %v after re-enter, want call", got)
	}

	time.Sleep(3 * testLinger)
	if got := s.Current(); got != wire.PolicyCall {
		t.Errorf("linger expiry relaxed an active reason: Current() = %v", got)
	}
}

func TestPolicyStackChangeSignals(t *testing.T) {
	s := NewPolicyStack(testLinger)

	var changes []wire.BlankingPolicy
	s.OnChange(func(p wire.BlankingPolicy) { changes = append(changes, p) })

	_ = s.Enter(wire.PolicyNotification)
	_ = s.Enter(wire.PolicyNotification) // already active, no signal
	_ = s.Enter(wire.PolicyAlarm)
	_ = s.Leave(wire.PolicyAlarm)
	_ = s.Leave(wire.PolicyNotification)

	want := []wire.BlankingPolicy{
		wire.PolicyNotification,
		wire.PolicyAlarm,
		wire.PolicyNotification,
		wire.PolicyLinger,
	}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("changes[%d] = %v, want %v", i, changes[i], want[i])
		}
	}
}

func TestPolicyStackInvalidReason(t *testing.T) {
	s := NewPolicyStack(testLinger)

	if err := s.Enter(wire.PolicyDefault); err != ErrInvalidReason {
		t.Errorf("Enter(default) error = %v, want ErrInvalidReason", err)
	}
	if err := s.Leave(wire.PolicyLinger); err != ErrInvalidReason {
		t.Errorf("Leave(linger) error = %v, want ErrInvalidReason", err)
	}
}

func TestPolicyStackLeaveInactiveReason(t *testing.T) {
	s := NewPolicyStack(testLinger)

	signals := 0
	s.OnChange(func(wire.BlankingPolicy) { signals++ })

	if err := s.Leave(wire.PolicyCall); err != nil {
		t.Errorf("Leave of inactive reason error = %v", err)
	}
	if signals != 0 {
		t.Errorf("Leave of inactive reason emitted %d signals", signals)
	}
	if got := s.Current(); got != wire.PolicyDefault {
		t.Errorf("Current() = %v, want default", got)
	}
}
