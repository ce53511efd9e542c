package arbiter

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modecontrol/mced/pkg/activity"
	"github.com/modecontrol/mced/pkg/config"
	"github.com/modecontrol/mced/pkg/owner"
	"github.com/modecontrol/mced/pkg/wire"
)

type recordedSignal struct {
	member string
	values []any
}

// sigRecorder captures emitted signals for assertions.
type sigRecorder struct {
	mu  sync.Mutex
	got []recordedSignal
}

func (r *sigRecorder) Emit(member string, values ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, recordedSignal{member: member, values: values})
}

func (r *sigRecorder) count(member string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.got {
		if s.member == member {
			n++
		}
	}
	return n
}

func (r *sigRecorder) last(member string) ([]any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.got) - 1; i >= 0; i-- {
		if r.got[i].member == member {
			return r.got[i].values, true
		}
	}
	return nil, false
}

func (r *sigRecorder) members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.got))
	for i, s := range r.got {
		out[i] = s.member
	}
	return out
}

func newTestArbiter(t *testing.T) (*Arbiter, *sigRecorder) {
	t.Helper()

	cfg := config.Default()
	cfg.KeepaliveWakeupClient = ":1.50"

	rec := &sigRecorder{}
	a := New(Options{
		Config:             cfg,
		Sink:               rec,
		Version:            "1.8.0",
		InitialRadioStates: wire.RadioMaster | wire.RadioCellular,
	})
	t.Cleanup(a.Stop)
	return a, rec
}

func TestVersion(t *testing.T) {
	a, _ := newTestArbiter(t)
	assert.Equal(t, "1.8.0", a.Version())
}

func TestRadioStatesChange(t *testing.T) {
	a, rec := newTestArbiter(t)

	next := a.ChangeRadioStates(":1.1", uint32(wire.RadioWLAN), uint32(wire.RadioWLAN))
	assert.Equal(t, wire.RadioMaster|wire.RadioCellular|wire.RadioWLAN, next)

	vals, ok := rec.last(wire.RadioStatesSig)
	require.True(t, ok)
	assert.Equal(t, []any{uint32(next)}, vals)

	// Same submask again is not a change and must not re-signal.
	a.ChangeRadioStates(":1.1", uint32(wire.RadioWLAN), uint32(wire.RadioWLAN))
	assert.Equal(t, 1, rec.count(wire.RadioStatesSig))

	// Bits outside the defined set are ignored.
	next = a.ChangeRadioStates(":1.1", ^uint32(0), ^uint32(0))
	assert.Equal(t, wire.RadioAll, next)
}

func TestOfflineModeMasterBit(t *testing.T) {
	a, rec := newTestArbiter(t)

	var mirrored []bool
	a.OnOfflineModeChange(func(online bool) { mirrored = append(mirrored, online) })

	// A collaborator-sourced change must not echo back outward.
	a.SetOfflineMode(false)
	assert.Empty(t, mirrored)
	assert.Zero(t, a.RadioStates()&wire.RadioMaster)
	assert.Equal(t, 1, rec.count(wire.RadioStatesSig))

	// A bus-sourced master flip mirrors outward.
	a.ChangeRadioStates(":1.1", uint32(wire.RadioMaster), uint32(wire.RadioMaster))
	assert.Equal(t, []bool{true}, mirrored)
}

func TestCallStateAggregationAndPolicy(t *testing.T) {
	a, rec := newTestArbiter(t)

	ok, err := a.ChangeCallState(":1.1", "ringing", "normal")
	require.NoError(t, err)
	assert.True(t, ok)

	state, callType := a.CallState()
	assert.Equal(t, "ringing", state)
	assert.Equal(t, "normal", callType)

	vals, found := rec.last(wire.CallStateSig)
	require.True(t, found)
	assert.Equal(t, []any{"ringing", "normal"}, vals)

	// An active call drives the blanking policy.
	assert.Equal(t, "call", a.BlankingPolicy())
	pvals, found := rec.last(wire.BlankingPolicySig)
	require.True(t, found)
	assert.Equal(t, []any{"call"}, pvals)

	// Re-submitting the same claim changes nothing and stays silent.
	_, err = a.ChangeCallState(":1.1", "ringing", "normal")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count(wire.CallStateSig))

	// Clearing the call enters the linger window.
	_, err = a.ChangeCallState(":1.1", "none", "normal")
	require.NoError(t, err)
	assert.Equal(t, "linger", a.BlankingPolicy())
}

func TestCallStateRejectsInvalidEnums(t *testing.T) {
	a, rec := newTestArbiter(t)

	ok, err := a.ChangeCallState(":1.1", "busy", "normal")
	assert.ErrorIs(t, err, wire.ErrInvalidCallState)
	assert.False(t, ok)

	ok, err = a.ChangeCallState(":1.1", "active", "urgent")
	assert.ErrorIs(t, err, wire.ErrInvalidCallType)
	assert.False(t, ok)

	assert.Equal(t, 0, rec.count(wire.CallStateSig))
	state, _ := a.CallState()
	assert.Equal(t, "none", state)
}

func TestEmergencyPropagatesFromModem(t *testing.T) {
	a, rec := newTestArbiter(t)

	_, err := a.ChangeCallState(":1.1", "active", "normal")
	require.NoError(t, err)

	a.SetModemCallState(wire.CallStateRinging, wire.CallTypeEmergency)

	state, callType := a.CallState()
	assert.Equal(t, "ringing", state)
	assert.Equal(t, "emergency", callType)
	assert.Equal(t, 2, rec.count(wire.CallStateSig))
}

func TestBlankingPausePrecondition(t *testing.T) {
	a, rec := newTestArbiter(t)

	a.SetDisplayState(wire.DisplayOff, true)
	assert.False(t, a.PauseBlanking(":1.1"))
	assert.Equal(t, "inactive", a.BlankingPauseStatus())

	a.SetDisplayState(wire.DisplayOn, false)
	assert.True(t, a.PauseBlanking(":1.1"))
	assert.Equal(t, "active", a.BlankingPauseStatus())

	vals, found := rec.last(wire.PreventBlankSig)
	require.True(t, found)
	assert.Equal(t, []any{"active"}, vals)

	a.CancelBlankingPause(":1.1")
	assert.Equal(t, "inactive", a.BlankingPauseStatus())
	assert.Equal(t, 2, rec.count(wire.PreventBlankSig))
}

func TestDisplayStatusSignal(t *testing.T) {
	a, rec := newTestArbiter(t)

	assert.Equal(t, "on", a.DisplayStatus())

	a.SetDisplayState(wire.DisplayDim, false)
	assert.Equal(t, "dimmed", a.DisplayStatus())
	vals, found := rec.last(wire.DisplaySig)
	require.True(t, found)
	assert.Equal(t, []any{"dimmed"}, vals)

	// Lock flag changes without a state change stay silent.
	a.SetDisplayState(wire.DisplayDim, true)
	assert.Equal(t, 1, rec.count(wire.DisplaySig))
}

func TestKeepaliveGate(t *testing.T) {
	a, _ := newTestArbiter(t)

	assert.False(t, a.SuspendBlocked())

	ok, err := a.StartKeepalive(":1.1", "sync")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, a.SuspendBlocked())

	ok, err = a.StopKeepalive(":1.1", "sync")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, a.SuspendBlocked())

	_, err = a.StartKeepalive(":1.1", "")
	assert.ErrorIs(t, err, ErrEmptyContext)
}

func TestKeepaliveWakeupCredit(t *testing.T) {
	a, _ := newTestArbiter(t)

	assert.False(t, a.KeepaliveWakeup(":1.99"))
	assert.False(t, a.SuspendBlocked())

	assert.True(t, a.KeepaliveWakeup(":1.50"))
	assert.True(t, a.SuspendBlocked())

	// The credit is consumed by the query above.
	assert.False(t, a.SuspendBlocked())
}

func TestLEDPatternSharedHold(t *testing.T) {
	a, rec := newTestArbiter(t)

	require.NoError(t, a.ActivateLEDPattern(":1.1", "PatternCommunicationCall"))
	require.NoError(t, a.ActivateLEDPattern(":1.2", "PatternCommunicationCall"))
	assert.Equal(t, 1, rec.count(wire.LEDPatternActivatedSig))

	name, ok := a.EvaluatedLEDPattern()
	require.True(t, ok)
	assert.Equal(t, "PatternCommunicationCall", name)

	// One holder leaving keeps the pattern up.
	require.NoError(t, a.DeactivateLEDPattern(":1.1", "PatternCommunicationCall"))
	assert.Equal(t, 0, rec.count(wire.LEDPatternDeactivatedSig))

	require.NoError(t, a.DeactivateLEDPattern(":1.2", "PatternCommunicationCall"))
	assert.Equal(t, 1, rec.count(wire.LEDPatternDeactivatedSig))
	_, ok = a.EvaluatedLEDPattern()
	assert.False(t, ok)
}

func TestLEDDisableSuppressesEvaluation(t *testing.T) {
	a, _ := newTestArbiter(t)

	require.NoError(t, a.ActivateLEDPattern(":1.1", "PatternCommunicationCall"))
	a.DisableLED(":1.2")

	_, ok := a.EvaluatedLEDPattern()
	assert.False(t, ok)

	// Privileged patterns ignore the toggle.
	require.NoError(t, a.ActivateLEDPattern(":1.1", "PatternPowerOn"))
	name, ok := a.EvaluatedLEDPattern()
	require.True(t, ok)
	assert.Equal(t, "PatternPowerOn", name)

	a.EnableLED(":1.2")
	name, ok = a.EvaluatedLEDPattern()
	require.True(t, ok)
	assert.Equal(t, "PatternPowerOn", name)
}

func TestActivityCallbacksDrainOnce(t *testing.T) {
	a, _ := newTestArbiter(t)

	var invoked []activity.Callback
	a.SetCallbackInvoker(func(cb activity.Callback) { invoked = append(invoked, cb) })

	for i := 0; i < 2; i++ {
		ok, err := a.AddActivityCallback(":1.1",
			fmt.Sprintf("com.example.app%d", i), "/app", "com.example.App", "Wakeup")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	a.Activity()
	assert.Len(t, invoked, 2)

	// Drained callbacks do not fire again.
	a.Activity()
	assert.Len(t, invoked, 2)
}

func TestActivityCallbackCapacity(t *testing.T) {
	a, _ := newTestArbiter(t)

	for i := 0; i < config.Default().ActivityCallbackCapacity; i++ {
		ok, err := a.AddActivityCallback(owner.ClientID(fmt.Sprintf(":1.%d", i)),
			"com.example.app", "/app", "com.example.App", "Wakeup")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := a.AddActivityCallback(":1.200", "com.example.app", "/app", "com.example.App", "Wakeup")
	assert.ErrorIs(t, err, ErrCallbacksExceeded)
	assert.False(t, ok)

	_, err = a.AddActivityCallback(":1.1", "", "/app", "com.example.App", "Wakeup")
	assert.ErrorIs(t, err, ErrIncompleteTarget)
}

func TestNotificationWindowForcing(t *testing.T) {
	a, rec := newTestArbiter(t)

	var forcing []bool
	a.OnDisplayForcing(func(f bool) { forcing = append(forcing, f) })

	require.NoError(t, a.BeginNotification(":1.1", "sms", 2000, 1000))
	assert.Equal(t, []bool{true}, forcing)
	assert.Equal(t, "notification", a.BlankingPolicy())

	require.NoError(t, a.EndNotification(":1.1", "sms", 0))
	assert.Equal(t, []bool{true, false}, forcing)
	assert.Equal(t, "linger", a.BlankingPolicy())

	assert.GreaterOrEqual(t, rec.count(wire.BlankingPolicySig), 2)

	err := a.BeginNotification(":1.1", "", 2000, 0)
	assert.ErrorIs(t, err, ErrEmptyWindowName)
	err = a.BeginNotification(":1.1", "sms", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestAlarmPolicyReason(t *testing.T) {
	a, _ := newTestArbiter(t)

	a.SetAlarmActive(true)
	assert.Equal(t, "alarm", a.BlankingPolicy())

	// Idempotent re-assertion must not disturb the stack.
	a.SetAlarmActive(true)
	assert.Equal(t, "alarm", a.BlankingPolicy())

	// A call outranks an alarm.
	_, err := a.ChangeCallState(":1.1", "active", "normal")
	require.NoError(t, err)
	assert.Equal(t, "call", a.BlankingPolicy())

	_, err = a.ChangeCallState(":1.1", "none", "normal")
	require.NoError(t, err)
	assert.Equal(t, "alarm", a.BlankingPolicy())

	a.SetAlarmActive(false)
	assert.Equal(t, "linger", a.BlankingPolicy())
}

func TestClientDroppedFansOut(t *testing.T) {
	a, rec := newTestArbiter(t)

	// Client A holds something in every per-client domain.
	_, err := a.ChangeCallState(":1.1", "ringing", "normal")
	require.NoError(t, err)
	assert.True(t, a.PauseBlanking(":1.1"))
	ok, err := a.StartKeepalive(":1.1", "sync")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, a.ActivateLEDPattern(":1.1", "PatternCommunicationCall"))
	_, err = a.AddActivityCallback(":1.1", "com.example.app", "/app", "com.example.App", "Wakeup")
	require.NoError(t, err)
	require.NoError(t, a.BeginNotification(":1.1", "sms", 2000, 0))

	// Client B shares the LED pattern and holds its own pause.
	require.NoError(t, a.ActivateLEDPattern(":1.2", "PatternCommunicationCall"))
	assert.True(t, a.PauseBlanking(":1.2"))

	a.ClientDropped(":1.1")

	state, _ := a.CallState()
	assert.Equal(t, "none", state)
	assert.False(t, a.SuspendBlocked())

	// B's holdings survive untouched.
	assert.Equal(t, "active", a.BlankingPauseStatus())
	name, held := a.EvaluatedLEDPattern()
	require.True(t, held)
	assert.Equal(t, "PatternCommunicationCall", name)
	assert.Equal(t, 0, rec.count(wire.LEDPatternDeactivatedSig))

	vals, found := rec.last(wire.CallStateSig)
	require.True(t, found)
	assert.Equal(t, []any{"none", "normal"}, vals)

	assert.False(t, a.Owners().IsLive(":1.1"))
	assert.True(t, a.Owners().IsLive(":1.2"))
}

func TestSignalOrderMatchesTransitions(t *testing.T) {
	a, rec := newTestArbiter(t)

	_, err := a.ChangeCallState(":1.1", "ringing", "normal")
	require.NoError(t, err)

	members := rec.members()
	require.Len(t, members, 2)
	assert.Equal(t, wire.CallStateSig, members[0])
	assert.Equal(t, wire.BlankingPolicySig, members[1])
}
