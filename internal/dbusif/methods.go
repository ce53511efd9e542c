package dbusif

import (
	"github.com/godbus/dbus/v5"

	"github.com/modecontrol/mced/pkg/owner"
	"github.com/modecontrol/mced/pkg/wire"
)

// methodTable binds the published request member names to handlers.
// godbus injects the sender as the first argument.
func (f *Frontend) methodTable() map[string]interface{} {
	return map[string]interface{}{
		wire.RadioStatesGet:       f.getRadioStates,
		wire.RadioStatesChangeReq: f.changeRadioStates,

		wire.CallStateGet:       f.getCallState,
		wire.CallStateChangeReq: f.changeCallState,

		wire.DisplayStatusGet: f.getDisplayStatus,

		wire.PreventBlankReq:       f.blankingPause,
		wire.CancelPreventBlankReq: f.cancelBlankingPause,
		wire.PreventBlankGet:       f.getBlankingPause,
		wire.BlankingPolicyGet:     f.getBlankingPolicy,

		wire.InactivityStatusGet:       f.getInactivityStatus,
		wire.AddActivityCallbackReq:    f.addActivityCallback,
		wire.RemoveActivityCallbackReq: f.removeActivityCallbacks,

		wire.CPUKeepalivePeriodReq: f.keepalivePeriod,
		wire.CPUKeepaliveStartReq:  f.keepaliveStart,
		wire.CPUKeepaliveStopReq:   f.keepaliveStop,
		wire.CPUKeepaliveWakeupReq: f.keepaliveWakeup,

		wire.ActivateLEDPattern:   f.ledPatternActivate,
		wire.DeactivateLEDPattern: f.ledPatternDeactivate,
		wire.EnableLED:            f.ledEnable,
		wire.DisableLED:           f.ledDisable,

		wire.NotificationBeginReq: f.notificationBegin,
		wire.NotificationEndReq:   f.notificationEnd,

		wire.VersionGet: f.getVersion,
	}
}

func invalidArgs(err error) *dbus.Error {
	return dbus.NewError(wire.ErrInvalidArgs, []interface{}{err.Error()})
}

func client(sender dbus.Sender) owner.ClientID {
	return owner.ClientID(sender)
}

func (f *Frontend) getRadioStates() (uint32, *dbus.Error) {
	return uint32(f.arb.RadioStates()), nil
}

func (f *Frontend) changeRadioStates(sender dbus.Sender, value, mask uint32) (uint32, *dbus.Error) {
	return uint32(f.arb.ChangeRadioStates(client(sender), value, mask)), nil
}

func (f *Frontend) getCallState() (string, string, *dbus.Error) {
	state, callType := f.arb.CallState()
	return state, callType, nil
}

func (f *Frontend) changeCallState(sender dbus.Sender, state, callType string) (bool, *dbus.Error) {
	ok, err := f.arb.ChangeCallState(client(sender), state, callType)
	if err != nil {
		return false, invalidArgs(err)
	}
	return ok, nil
}

func (f *Frontend) getDisplayStatus() (string, *dbus.Error) {
	return f.arb.DisplayStatus(), nil
}

func (f *Frontend) blankingPause(sender dbus.Sender) *dbus.Error {
	f.arb.PauseBlanking(client(sender))
	return nil
}

func (f *Frontend) cancelBlankingPause(sender dbus.Sender) *dbus.Error {
	f.arb.CancelBlankingPause(client(sender))
	return nil
}

func (f *Frontend) getBlankingPause() (string, *dbus.Error) {
	return f.arb.BlankingPauseStatus(), nil
}

func (f *Frontend) getBlankingPolicy() (string, *dbus.Error) {
	return f.arb.BlankingPolicy(), nil
}

func (f *Frontend) getInactivityStatus() (bool, *dbus.Error) {
	return f.arb.InactivityStatus(), nil
}

func (f *Frontend) addActivityCallback(sender dbus.Sender, service, path, iface, method string) (bool, *dbus.Error) {
	ok, err := f.arb.AddActivityCallback(client(sender), service, path, iface, method)
	if err != nil {
		return false, invalidArgs(err)
	}
	return ok, nil
}

func (f *Frontend) removeActivityCallbacks(sender dbus.Sender) *dbus.Error {
	f.arb.RemoveActivityCallbacks(client(sender))
	return nil
}

func (f *Frontend) keepalivePeriod(sender dbus.Sender, context string) (int32, *dbus.Error) {
	return f.arb.KeepalivePeriod(), nil
}

func (f *Frontend) keepaliveStart(sender dbus.Sender, context string) (bool, *dbus.Error) {
	ok, err := f.arb.StartKeepalive(client(sender), context)
	if err != nil {
		return false, invalidArgs(err)
	}
	return ok, nil
}

func (f *Frontend) keepaliveStop(sender dbus.Sender, context string) (bool, *dbus.Error) {
	ok, err := f.arb.StopKeepalive(client(sender), context)
	if err != nil {
		return false, invalidArgs(err)
	}
	return ok, nil
}

func (f *Frontend) keepaliveWakeup(sender dbus.Sender) (bool, *dbus.Error) {
	return f.arb.KeepaliveWakeup(client(sender)), nil
}

func (f *Frontend) ledPatternActivate(sender dbus.Sender, pattern string) *dbus.Error {
	if err := f.arb.ActivateLEDPattern(client(sender), pattern); err != nil {
		return invalidArgs(err)
	}
	return nil
}

func (f *Frontend) ledPatternDeactivate(sender dbus.Sender, pattern string) *dbus.Error {
	if err := f.arb.DeactivateLEDPattern(client(sender), pattern); err != nil {
		return invalidArgs(err)
	}
	return nil
}

func (f *Frontend) ledEnable(sender dbus.Sender) *dbus.Error {
	f.arb.EnableLED(client(sender))
	return nil
}

func (f *Frontend) ledDisable(sender dbus.Sender) *dbus.Error {
	f.arb.DisableLED(client(sender))
	return nil
}

func (f *Frontend) notificationBegin(sender dbus.Sender, name string, duration, extend int32) *dbus.Error {
	if err := f.arb.BeginNotification(client(sender), name, duration, extend); err != nil {
		return invalidArgs(err)
	}
	return nil
}

func (f *Frontend) notificationEnd(sender dbus.Sender, name string, linger int32) *dbus.Error {
	if err := f.arb.EndNotification(client(sender), name, linger); err != nil {
		return invalidArgs(err)
	}
	return nil
}

func (f *Frontend) getVersion() (string, *dbus.Error) {
	return f.arb.Version(), nil
}
