package wire

// D-Bus service identity. Fixed by the published MCE interface.
const (
	// Service is the well-known bus name of the mode control entity.
	Service = "com.nokia.mce"

	// RequestInterface carries all method calls.
	RequestInterface = "com.nokia.mce.request"

	// SignalInterface carries all broadcast signals.
	SignalInterface = "com.nokia.mce.signal"

	// RequestPath is the object path serving RequestInterface.
	RequestPath = "/com/nokia/mce/request"

	// SignalPath is the object path signals are emitted from.
	SignalPath = "/com/nokia/mce/signal"
)

// D-Bus error names returned to callers.
const (
	// ErrFatal indicates an unrecoverable internal failure.
	ErrFatal = "com.nokia.mce.error.fatal"

	// ErrInvalidArgs is the standard rejection for malformed arguments.
	ErrInvalidArgs = "org.freedesktop.DBus.Error.InvalidArgs"
)

// Radio state domain.
const (
	RadioStatesGet       = "get_radio_states"
	RadioStatesChangeReq = "req_radio_states_change"
	RadioStatesSig       = "radio_states_ind"
)

// Call state domain.
const (
	CallStateGet       = "get_call_state"
	CallStateChangeReq = "req_call_state_change"
	CallStateSig       = "sig_call_state_ind"
)

// Display status domain.
const (
	DisplayStatusGet = "get_display_status"
	DisplaySig       = "display_status_ind"
)

// Display blanking prevention domain.
const (
	PreventBlankReq       = "req_display_blanking_pause"
	CancelPreventBlankReq = "req_display_cancel_blanking_pause"
	PreventBlankGet       = "get_display_blanking_pause"
	PreventBlankSig       = "display_blanking_pause_ind"
)

// Display blanking policy domain.
const (
	BlankingPolicyGet = "get_display_blanking_policy"
	BlankingPolicySig = "display_blanking_policy_ind"
)

// Inactivity and activity callback domain.
const (
	InactivityStatusGet       = "get_inactivity_status"
	InactivitySig             = "system_inactivity_ind"
	AddActivityCallbackReq    = "add_activity_callback"
	RemoveActivityCallbackReq = "remove_activity_callback"
)

// CPU keepalive domain.
const (
	CPUKeepalivePeriodReq = "req_cpu_keepalive_period"
	CPUKeepaliveStartReq  = "req_cpu_keepalive_start"
	CPUKeepaliveStopReq   = "req_cpu_keepalive_stop"
	CPUKeepaliveWakeupReq = "req_cpu_keepalive_wakeup"
)

// LED pattern domain.
const (
	ActivateLEDPattern       = "req_led_pattern_activate"
	DeactivateLEDPattern     = "req_led_pattern_deactivate"
	LEDPatternActivatedSig   = "led_pattern_activated_ind"
	LEDPatternDeactivatedSig = "led_pattern_deactivated_ind"
	EnableLED                = "req_led_enable"
	DisableLED               = "req_led_disable"
)

// Notification window domain.
const (
	NotificationBeginReq = "notification_begin_req"
	NotificationEndReq   = "notification_end_req"
)

// Miscellaneous requests.
const (
	VersionGet = "get_version"
)
