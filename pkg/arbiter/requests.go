package arbiter

import (
	"errors"
	"time"

	"github.com/modecontrol/mced/pkg/activity"
	"github.com/modecontrol/mced/pkg/log"
	"github.com/modecontrol/mced/pkg/owner"
	"github.com/modecontrol/mced/pkg/wire"
)

// Request validation errors surfaced to the bus frontend as InvalidArgs.
var (
	ErrEmptyContext      = errors.New("arbiter: keepalive context must not be empty")
	ErrEmptyPattern      = errors.New("arbiter: pattern name must not be empty")
	ErrEmptyWindowName   = errors.New("arbiter: notification window name must not be empty")
	ErrInvalidDuration   = errors.New("arbiter: duration must be positive")
	ErrIncompleteTarget  = errors.New("arbiter: activity callback target incomplete")
	ErrCallbacksExceeded = activity.ErrRegistryFull
)

// RadioStates serves get_radio_states.
func (a *Arbiter) RadioStates() wire.RadioMask {
	return a.radio.Current()
}

// ChangeRadioStates serves req_radio_states_change and returns the new
// mask. Always succeeds.
func (a *Arbiter) ChangeRadioStates(client owner.ClientID, value, mask uint32) wire.RadioMask {
	a.track(client)
	next := a.radio.Change(wire.RadioMask(value), wire.RadioMask(mask))
	a.logRequest(client, log.DomainRadio, wire.RadioStatesChangeReq, true)
	return next
}

// CallState serves get_call_state.
func (a *Arbiter) CallState() (string, string) {
	agg := a.calls.Current()
	return agg.State.String(), agg.Type.String()
}

// ChangeCallState serves req_call_state_change. Invalid enum strings
// fail without touching aggregate state; valid requests are always
// accepted.
func (a *Arbiter) ChangeCallState(client owner.ClientID, state, callType string) (bool, error) {
	s, err := wire.ParseCallState(state)
	if err != nil {
		a.logRequest(client, log.DomainCallState, wire.CallStateChangeReq, false, state, callType)
		return false, err
	}
	t, err := wire.ParseCallType(callType)
	if err != nil {
		a.logRequest(client, log.DomainCallState, wire.CallStateChangeReq, false, state, callType)
		return false, err
	}

	a.track(client)
	a.calls.Set(client, s, t)
	a.logRequest(client, log.DomainCallState, wire.CallStateChangeReq, true, state, callType)
	return true, nil
}

// SetModemCallState merges a call claim from the telephony collaborator
// under the modem pseudo-identity.
func (a *Arbiter) SetModemCallState(state wire.CallState, callType wire.CallType) {
	a.calls.Set(owner.ModemClient, state, callType)
}

// DisplayStatus serves get_display_status.
func (a *Arbiter) DisplayStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.displayState.String()
}

// SetDisplayState records the display collaborator's authoritative
// state and lockscreen flag, signalling on change.
func (a *Arbiter) SetDisplayState(state wire.DisplayState, lockActive bool) {
	a.mu.Lock()
	changed := state != a.displayState
	a.displayState = state
	a.lockActive = lockActive
	a.mu.Unlock()

	if changed {
		a.emit(log.DomainDisplay, wire.DisplaySig, state.String())
	}
}

// BlankingPauseStatus serves get_display_blanking_pause.
func (a *Arbiter) BlankingPauseStatus() string {
	return a.prevention.Status()
}

// PauseBlanking serves req_display_blanking_pause. Rejected only while
// the display is off with the lockscreen active.
func (a *Arbiter) PauseBlanking(client owner.ClientID) bool {
	a.track(client)
	ok := a.prevention.Pause(client, time.Now())
	a.logRequest(client, log.DomainBlanking, wire.PreventBlankReq, ok)
	return ok
}

// CancelBlankingPause serves req_display_cancel_blanking_pause.
func (a *Arbiter) CancelBlankingPause(client owner.ClientID) {
	a.prevention.Cancel(client)
	a.logRequest(client, log.DomainBlanking, wire.CancelPreventBlankReq, true)
}

// BlankingPolicy serves get_display_blanking_policy.
func (a *Arbiter) BlankingPolicy() string {
	return a.policy.Current().String()
}

// SetAlarmActive records whether the alarm UI collaborator is showing;
// drives the alarm policy reason.
func (a *Arbiter) SetAlarmActive(active bool) {
	a.mu.Lock()
	if active == a.alarmActive {
		a.mu.Unlock()
		return
	}
	a.alarmActive = active
	a.mu.Unlock()

	if active {
		_ = a.policy.Enter(wire.PolicyAlarm)
	} else {
		_ = a.policy.Leave(wire.PolicyAlarm)
	}
}

// KeepalivePeriod serves req_cpu_keepalive_period. The context argument
// is accepted for wire compatibility; the period is global.
func (a *Arbiter) KeepalivePeriod() int32 {
	return int32(a.keepalive.Period() / time.Second)
}

// StartKeepalive serves req_cpu_keepalive_start.
func (a *Arbiter) StartKeepalive(client owner.ClientID, context string) (bool, error) {
	if context == "" {
		return false, ErrEmptyContext
	}
	a.track(client)
	ok := a.keepalive.Start(client, context, time.Now())
	a.logRequest(client, log.DomainKeepalive, wire.CPUKeepaliveStartReq, ok, context)
	return ok, nil
}

// StopKeepalive serves req_cpu_keepalive_stop.
func (a *Arbiter) StopKeepalive(client owner.ClientID, context string) (bool, error) {
	if context == "" {
		return false, ErrEmptyContext
	}
	ok := a.keepalive.Stop(client, context)
	a.logRequest(client, log.DomainKeepalive, wire.CPUKeepaliveStopReq, ok, context)
	return ok, nil
}

// KeepaliveWakeup serves req_cpu_keepalive_wakeup; accepted only from
// the designated collaborator.
func (a *Arbiter) KeepaliveWakeup(client owner.ClientID) bool {
	ok := a.keepalive.Wakeup(client)
	a.logRequest(client, log.DomainKeepalive, wire.CPUKeepaliveWakeupReq, ok)
	return ok
}

// SuspendBlocked reports the late-suspend gate to the suspend
// collaborator, consuming one wakeup credit if present.
func (a *Arbiter) SuspendBlocked() bool {
	if a.keepalive.ConsumeWakeupCredit() {
		return true
	}
	return a.keepalive.Blocked()
}

// ActivateLEDPattern serves req_led_pattern_activate.
func (a *Arbiter) ActivateLEDPattern(client owner.ClientID, pattern string) error {
	if pattern == "" {
		return ErrEmptyPattern
	}
	a.track(client)
	a.leds.Activate(client, pattern)
	a.logRequest(client, log.DomainLED, wire.ActivateLEDPattern, true, pattern)
	return nil
}

// DeactivateLEDPattern serves req_led_pattern_deactivate.
func (a *Arbiter) DeactivateLEDPattern(client owner.ClientID, pattern string) error {
	if pattern == "" {
		return ErrEmptyPattern
	}
	a.leds.Deactivate(client, pattern)
	a.logRequest(client, log.DomainLED, wire.DeactivateLEDPattern, true, pattern)
	return nil
}

// EnableLED serves req_led_enable.
func (a *Arbiter) EnableLED(client owner.ClientID) {
	a.leds.Enable()
	a.logRequest(client, log.DomainLED, wire.EnableLED, true)
	a.notifySaved()
}

// DisableLED serves req_led_disable.
func (a *Arbiter) DisableLED(client owner.ClientID) {
	a.leds.Disable()
	a.logRequest(client, log.DomainLED, wire.DisableLED, true)
	a.notifySaved()
}

// EvaluatedLEDPattern exposes the reduced pattern for the LED
// collaborator and diagnostics.
func (a *Arbiter) EvaluatedLEDPattern() (string, bool) {
	return a.leds.Evaluated()
}

// InactivityStatus serves get_inactivity_status.
func (a *Arbiter) InactivityStatus() bool {
	return a.inactivity.Inactive()
}

// AddActivityCallback serves add_activity_callback. Rejected with
// ErrCallbacksExceeded at capacity.
func (a *Arbiter) AddActivityCallback(client owner.ClientID, service, path, iface, method string) (bool, error) {
	if service == "" || path == "" || iface == "" || method == "" {
		return false, ErrIncompleteTarget
	}

	a.track(client)
	err := a.callbacks.Register(activity.Callback{
		Owner:     client,
		Service:   service,
		Path:      path,
		Interface: iface,
		Method:    method,
	})
	accepted := err == nil
	a.logRequest(client, log.DomainActivity, wire.AddActivityCallbackReq, accepted, service, method)
	if err != nil {
		return false, err
	}
	return true, nil
}

// RemoveActivityCallbacks serves remove_activity_callback; also used
// for disconnect eviction.
func (a *Arbiter) RemoveActivityCallbacks(client owner.ClientID) {
	a.callbacks.UnregisterAll(client)
	a.logRequest(client, log.DomainActivity, wire.RemoveActivityCallbackReq, true)
}

// Activity records a user activity event from the input collaborator:
// resets the inactivity state, extends open notification windows, and
// drains the callback registry, invoking each stored callback once.
func (a *Arbiter) Activity() {
	now := time.Now()
	a.inactivity.Activity()
	a.windows.Activity(now)

	drained := a.callbacks.Drain()
	if len(drained) == 0 {
		return
	}

	a.mu.Lock()
	invoker := a.invoker
	a.mu.Unlock()
	if invoker == nil {
		return
	}
	for _, cb := range drained {
		invoker(cb)
	}
}

// BeginNotification serves notification_begin_req. Durations arrive in
// milliseconds per the wire contract.
func (a *Arbiter) BeginNotification(client owner.ClientID, name string, durationMs, extendMs int32) error {
	if name == "" {
		return ErrEmptyWindowName
	}
	if durationMs <= 0 || extendMs < 0 {
		return ErrInvalidDuration
	}

	a.track(client)
	a.windows.Begin(client, name,
		time.Duration(durationMs)*time.Millisecond,
		time.Duration(extendMs)*time.Millisecond,
		time.Now())
	a.logRequest(client, log.DomainNotification, wire.NotificationBeginReq, true, name)
	return nil
}

// EndNotification serves notification_end_req.
func (a *Arbiter) EndNotification(client owner.ClientID, name string, lingerMs int32) error {
	if name == "" {
		return ErrEmptyWindowName
	}
	if lingerMs < 0 {
		return ErrInvalidDuration
	}

	a.windows.End(client, name, time.Duration(lingerMs)*time.Millisecond, time.Now())
	a.logRequest(client, log.DomainNotification, wire.NotificationEndReq, true, name)
	return nil
}

// SetOfflineMode applies an offline-mode change from the network
// collaborator to the radio master bit.
func (a *Arbiter) SetOfflineMode(online bool) {
	a.radio.SetMasterFromCollaborator(online)
}

// Version serves get_version.
func (a *Arbiter) Version() string {
	return a.version
}

// track marks the requester live so later disconnect eviction finds it.
func (a *Arbiter) track(client owner.ClientID) {
	if client != "" && client != owner.ModemClient {
		a.owners.Track(client)
	}
}
