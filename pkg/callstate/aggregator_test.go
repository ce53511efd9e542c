package callstate

import (
	"sync"
	"testing"

	"github.com/modecontrol/mced/pkg/owner"
	"github.com/modecontrol/mced/pkg/wire"
)

func TestAggregatorEmptyReduction(t *testing.T) {
	a := New()

	got := a.Current()
	if got.State != wire.CallStateNone || got.Type != wire.CallTypeNormal {
		t.Errorf("Current() = %v/%v, want none/normal", got.State, got.Type)
	}
}

func TestAggregatorStatePriority(t *testing.T) {
	tests := []struct {
		name   string
		claims []Claim
		want   wire.CallState
	}{
		{"SingleActive", []Claim{{wire.CallStateActive, wire.CallTypeNormal}}, wire.CallStateActive},
		{"RingingBeatsActive", []Claim{
			{wire.CallStateActive, wire.CallTypeNormal},
			{wire.CallStateRinging, wire.CallTypeNormal},
		}, wire.CallStateRinging},
		{"ActiveBeatsService", []Claim{
			{wire.CallStateService, wire.CallTypeNormal},
			{wire.CallStateActive, wire.CallTypeNormal},
		}, wire.CallStateActive},
		{"ServiceBeatsNone", []Claim{
			{wire.CallStateService, wire.CallTypeNormal},
		}, wire.CallStateService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			for i, c := range tt.claims {
				client := owner.ClientID(string(rune('a' + i)))
				a.Set(client, c.State, c.Type)
			}
			if got := a.Current().State; got != tt.want {
				t.Errorf("Current().State = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregatorEmergencyDominatesType(t *testing.T) {
	a := New()

	// Emergency declared by a claim that does not win the state race.
	a.Set("client-a", wire.CallStateRinging, wire.CallTypeNormal)
	a.Set("client-b", wire.CallStateService, wire.CallTypeEmergency)

	got := a.Current()
	if got.State != wire.CallStateRinging {
		t.Errorf("State = %v, want ringing", got.State)
	}
	if got.Type != wire.CallTypeEmergency {
		t.Errorf("Type = %v, want emergency", got.Type)
	}
}

func TestAggregatorNoneNormalClearsClaim(t *testing.T) {
	a := New()

	a.Set("client-a", wire.CallStateActive, wire.CallTypeNormal)
	a.Set("client-a", wire.CallStateNone, wire.CallTypeNormal)

	if got := a.Current(); got.State != wire.CallStateNone {
		t.Errorf("State = %v after clearing, want none", got.State)
	}
}

func TestAggregatorEvictMatchesManualRemoval(t *testing.T) {
	a := New()
	a.Set("client-a", wire.CallStateRinging, wire.CallTypeEmergency)
	a.Set("client-b", wire.CallStateActive, wire.CallTypeNormal)

	a.EvictOwner("client-a")

	got := a.Current()
	if got.State != wire.CallStateActive || got.Type != wire.CallTypeNormal {
		t.Errorf("Current() = %v/%v after eviction, want active/normal", got.State, got.Type)
	}
}

func TestAggregatorModemClaimsShareReduction(t *testing.T) {
	a := New()

	a.Set(owner.ModemClient, wire.CallStateActive, wire.CallTypeNormal)
	a.Set("client-a", wire.CallStateRinging, wire.CallTypeNormal)

	// D-Bus claim wins on priority alone, not on source.
	if got := a.Current().State; got != wire.CallStateRinging {
		t.Errorf("State = %v, want ringing", got)
	}

	a.Set("client-a", wire.CallStateNone, wire.CallTypeNormal)
	if got := a.Current().State; got != wire.CallStateActive {
		t.Errorf("State = %v with only modem claim, want active", got)
	}
}

func TestAggregatorChangeCallback(t *testing.T) {
	a := New()

	var changes []Aggregate
	a.OnChange(func(agg Aggregate) { changes = append(changes, agg) })

	a.Set("client-a", wire.CallStateActive, wire.CallTypeNormal)
	// Same reduced value: no callback.
	a.Set("client-b", wire.CallStateActive, wire.CallTypeNormal)
	a.Set("client-a", wire.CallStateNone, wire.CallTypeNormal)
	// Reduction still active via client-b: no callback.

	if len(changes) != 1 {
		t.Fatalf("got %d change callbacks, want 1", len(changes))
	}
	if changes[0].State != wire.CallStateActive {
		t.Errorf("change = %v, want active", changes[0].State)
	}

	a.EvictOwner("client-b")
	if len(changes) != 2 || changes[1].State != wire.CallStateNone {
		t.Errorf("changes after eviction = %v, want final none", changes)
	}
}

func TestAggregatorConcurrentTransitionsNotifyInApplyOrder(t *testing.T) {
	a := New()

	var mu sync.Mutex
	var last Aggregate
	a.OnChange(func(agg Aggregate) {
		mu.Lock()
		last = agg
		mu.Unlock()
	})

	// Two clients race opposing transitions; the final callback must
	// describe the reduction that actually settled.
	const rounds = 2000
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			a.Set("client-a", wire.CallStateRinging, wire.CallTypeNormal)
			a.Set("client-a", wire.CallStateNone, wire.CallTypeNormal)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			a.Set("client-b", wire.CallStateActive, wire.CallTypeNormal)
			a.Set("client-b", wire.CallStateNone, wire.CallTypeNormal)
		}
	}()
	wg.Wait()

	mu.Lock()
	final := last
	mu.Unlock()
	if got := a.Current(); final != got {
		t.Fatalf("last callback = %+v, settled reduction = %+v", final, got)
	}
}
