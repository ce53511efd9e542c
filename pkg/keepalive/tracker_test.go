package keepalive

import (
	"testing"
	"time"
)

func TestTrackerGate(t *testing.T) {
	tr := New(0, "")
	t0 := time.Now()

	if tr.Blocked() {
		t.Error("Blocked() = true with no leases")
	}

	tr.Start("client-a", "sync", t0)
	if !tr.Blocked() {
		t.Error("Blocked() = false with a live lease")
	}

	tr.Stop("client-a", "sync")
	if tr.Blocked() {
		t.Error("Blocked() = true after stop")
	}
}

func TestTrackerPerContextLeases(t *testing.T) {
	tr := New(0, "")
	t0 := time.Now()

	tr.Start("client-a", "sync", t0)
	tr.Start("client-a", "email", t0)
	tr.Stop("client-a", "sync")

	if !tr.Blocked() {
		t.Error("gate opened while the email context lease is live")
	}
}

func TestTrackerRenewal(t *testing.T) {
	tr := New(0, "")
	t0 := time.Now()

	tr.Start("client-a", "sync", t0)
	tr.Start("client-a", "sync", t0.Add(30*time.Second))

	tr.Sweep(t0.Add(70 * time.Second))
	if !tr.Blocked() {
		t.Error("renewed lease swept at original expiry")
	}
	tr.Sweep(t0.Add(91 * time.Second))
	if tr.Blocked() {
		t.Error("lease survived past renewed expiry")
	}
}

func TestTrackerDisconnectOpensGate(t *testing.T) {
	tr := New(0, "")
	t0 := time.Now()

	tr.Start("client-a", "sync", t0)
	// Client disconnects 5s in; the next sweep must observe an open gate.
	tr.EvictOwner("client-a")
	tr.Sweep(t0.Add(5 * time.Second))

	if tr.Blocked() {
		t.Error("gate still blocked after owner disconnect")
	}
}

func TestTrackerGateChangeEdges(t *testing.T) {
	tr := New(0, "")
	t0 := time.Now()

	var edges []bool
	tr.OnGateChange(func(blocked bool) { edges = append(edges, blocked) })

	tr.Start("client-a", "sync", t0)
	tr.Start("client-b", "backup", t0) // still blocked, no edge
	tr.Stop("client-a", "sync")
	tr.Stop("client-b", "backup")

	if len(edges) != 2 || edges[0] != true || edges[1] != false {
		t.Errorf("gate edges = %v, want [true false]", edges)
	}
}

func TestTrackerPeriod(t *testing.T) {
	if got := New(0, "").Period(); got != DefaultPeriod {
		t.Errorf("Period() = %v, want %v", got, DefaultPeriod)
	}
	if got := New(90*time.Second, "").Period(); got != 90*time.Second {
		t.Errorf("Period() = %v, want 90s", got)
	}
}

func TestTrackerWakeupPrivilege(t *testing.T) {
	tr := New(0, "dsme")

	if tr.Wakeup("client-a") {
		t.Error("Wakeup accepted from a non-designated client")
	}
	if !tr.Wakeup("dsme") {
		t.Error("Wakeup rejected from the designated collaborator")
	}

	unrestricted := New(0, "")
	if unrestricted.Wakeup("dsme") {
		t.Error("Wakeup accepted with no designated collaborator")
	}
}

func TestTrackerWakeupCreditSuppressesOneSuspend(t *testing.T) {
	tr := New(0, "dsme")

	if tr.ConsumeWakeupCredit() {
		t.Error("credit consumed with none deposited")
	}

	tr.Wakeup("dsme")
	tr.Wakeup("dsme")

	if !tr.ConsumeWakeupCredit() || !tr.ConsumeWakeupCredit() {
		t.Error("deposited credits not consumable")
	}
	if tr.ConsumeWakeupCredit() {
		t.Error("credit consumed beyond the deposited count")
	}
}

func TestTrackerWakeupIndependentOfLeases(t *testing.T) {
	tr := New(0, "dsme")

	tr.Wakeup("dsme")
	if tr.Blocked() {
		t.Error("wakeup credit must not create a lease")
	}
}
