package wire

import "errors"

// Enum parse errors.
var (
	ErrInvalidCallState      = errors.New("invalid call state")
	ErrInvalidCallType       = errors.New("invalid call type")
	ErrInvalidBlankingPolicy = errors.New("invalid blanking policy")
	ErrInvalidDisplayState   = errors.New("invalid display state")
)

// RadioMask is the process-wide radio state bitmask.
type RadioMask uint32

// Radio state bits.
const (
	RadioMaster    RadioMask = 1 << 0
	RadioCellular  RadioMask = 1 << 1
	RadioWLAN      RadioMask = 1 << 2
	RadioBluetooth RadioMask = 1 << 3
	RadioNFC       RadioMask = 1 << 4
	RadioFMTX      RadioMask = 1 << 5
)

// RadioAll is the union of every defined radio bit.
const RadioAll = RadioMaster | RadioCellular | RadioWLAN | RadioBluetooth | RadioNFC | RadioFMTX

// CallState is the aggregate call state of the device.
type CallState uint8

const (
	// CallStateNone indicates no ongoing call.
	CallStateNone CallState = iota

	// CallStateRinging indicates an incoming call that is not yet answered.
	CallStateRinging

	// CallStateActive indicates an ongoing call.
	CallStateActive

	// CallStateService indicates a service operation that should be
	// treated like a call (e.g. a modem maintenance session).
	CallStateService
)

// Wire strings for CallState.
const (
	CallStateNoneString    = "none"
	CallStateRingingString = "ringing"
	CallStateActiveString  = "active"
	CallStateServiceString = "service"
)

// String returns the wire string for the call state.
func (s CallState) String() string {
	switch s {
	case CallStateNone:
		return CallStateNoneString
	case CallStateRinging:
		return CallStateRingingString
	case CallStateActive:
		return CallStateActiveString
	case CallStateService:
		return CallStateServiceString
	default:
		return "unknown"
	}
}

// ParseCallState maps a wire string to a CallState.
func ParseCallState(s string) (CallState, error) {
	switch s {
	case CallStateNoneString:
		return CallStateNone, nil
	case CallStateRingingString:
		return CallStateRinging, nil
	case CallStateActiveString:
		return CallStateActive, nil
	case CallStateServiceString:
		return CallStateService, nil
	default:
		return CallStateNone, ErrInvalidCallState
	}
}

// CallType distinguishes normal from emergency calls.
type CallType uint8

const (
	// CallTypeNormal is a regular call.
	CallTypeNormal CallType = iota

	// CallTypeEmergency is an emergency call; it dominates the aggregate
	// type regardless of call state.
	CallTypeEmergency
)

// Wire strings for CallType.
const (
	CallTypeNormalString    = "normal"
	CallTypeEmergencyString = "emergency"
)

// String returns the wire string for the call type.
func (t CallType) String() string {
	switch t {
	case CallTypeNormal:
		return CallTypeNormalString
	case CallTypeEmergency:
		return CallTypeEmergencyString
	default:
		return "unknown"
	}
}

// ParseCallType maps a wire string to a CallType.
func ParseCallType(s string) (CallType, error) {
	switch s {
	case CallTypeNormalString:
		return CallTypeNormal, nil
	case CallTypeEmergencyString:
		return CallTypeEmergency, nil
	default:
		return CallTypeNormal, ErrInvalidCallType
	}
}

// BlankingPolicy is the display blanking policy visible on the bus.
type BlankingPolicy uint8

const (
	// PolicyDefault is the normal blanking behaviour.
	PolicyDefault BlankingPolicy = iota

	// PolicyNotification relaxes blanking while a notification shows.
	PolicyNotification

	// PolicyAlarm relaxes blanking while an alarm dialog shows.
	PolicyAlarm

	// PolicyCall relaxes blanking during a call.
	PolicyCall

	// PolicyLinger is the transient tail emitted after the last
	// overriding reason clears, before returning to PolicyDefault.
	PolicyLinger
)

// Wire strings for BlankingPolicy.
const (
	PolicyDefaultString      = "default"
	PolicyNotificationString = "notification"
	PolicyAlarmString        = "alarm"
	PolicyCallString         = "call"
	PolicyLingerString       = "linger"
)

// String returns the wire string for the policy.
func (p BlankingPolicy) String() string {
	switch p {
	case PolicyDefault:
		return PolicyDefaultString
	case PolicyNotification:
		return PolicyNotificationString
	case PolicyAlarm:
		return PolicyAlarmString
	case PolicyCall:
		return PolicyCallString
	case PolicyLinger:
		return PolicyLingerString
	default:
		return "unknown"
	}
}

// ParseBlankingPolicy maps a wire string to a BlankingPolicy.
func ParseBlankingPolicy(s string) (BlankingPolicy, error) {
	switch s {
	case PolicyDefaultString:
		return PolicyDefault, nil
	case PolicyNotificationString:
		return PolicyNotification, nil
	case PolicyAlarmString:
		return PolicyAlarm, nil
	case PolicyCallString:
		return PolicyCall, nil
	case PolicyLingerString:
		return PolicyLinger, nil
	default:
		return PolicyDefault, ErrInvalidBlankingPolicy
	}
}

// DisplayState is the display power state reported by the display
// collaborator and echoed on the bus.
type DisplayState uint8

const (
	// DisplayOn means the panel is fully lit.
	DisplayOn DisplayState = iota

	// DisplayDim means the panel is lit at reduced brightness.
	DisplayDim

	// DisplayOff means the panel is blanked.
	DisplayOff
)

// Wire strings for DisplayState.
const (
	DisplayOnString  = "on"
	DisplayDimString = "dimmed"
	DisplayOffString = "off"
)

// String returns the wire string for the display state.
func (d DisplayState) String() string {
	switch d {
	case DisplayOn:
		return DisplayOnString
	case DisplayDim:
		return DisplayDimString
	case DisplayOff:
		return DisplayOffString
	default:
		return "unknown"
	}
}

// ParseDisplayState maps a wire string to a DisplayState.
func ParseDisplayState(s string) (DisplayState, error) {
	switch s {
	case DisplayOnString:
		return DisplayOn, nil
	case DisplayDimString:
		return DisplayDim, nil
	case DisplayOffString:
		return DisplayOff, nil
	default:
		return DisplayOn, ErrInvalidDisplayState
	}
}

// Blanking prevention status strings carried by display_blanking_pause_ind.
const (
	PreventBlankActiveString   = "active"
	PreventBlankInactiveString = "inactive"
)
