package log

import "time"

// Event is one recorded arbitration event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Client is the bus sender the event concerns, if any.
	Client string `cbor:"2,keyasint,omitempty"`

	// Session correlates all events of one client connection (UUID).
	Session string `cbor:"3,keyasint,omitempty"`

	// Kind classifies the event.
	Kind Kind `cbor:"4,keyasint"`

	// Domain is the arbitration domain the event belongs to.
	Domain Domain `cbor:"5,keyasint"`

	// Type-specific payload (at most one is set).
	Request  *RequestEvent  `cbor:"6,keyasint,omitempty"`
	Signal   *SignalEvent   `cbor:"7,keyasint,omitempty"`
	Eviction *EvictionEvent `cbor:"8,keyasint,omitempty"`
}

// Kind classifies the event type.
type Kind uint8

const (
	// KindRequest is an inbound change or query request.
	KindRequest Kind = 0
	// KindSignal is an emitted change signal.
	KindSignal Kind = 1
	// KindEviction is a disconnect fan-out.
	KindEviction Kind = 2
	// KindSweep is a periodic expiry sweep that removed entries.
	KindSweep Kind = 3
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "REQUEST"
	case KindSignal:
		return "SIGNAL"
	case KindEviction:
		return "EVICTION"
	case KindSweep:
		return "SWEEP"
	default:
		return "UNKNOWN"
	}
}

// Domain identifies the arbitration domain.
type Domain uint8

const (
	DomainNone         Domain = 0
	DomainRadio        Domain = 1
	DomainCallState    Domain = 2
	DomainDisplay      Domain = 3
	DomainBlanking     Domain = 4
	DomainPolicy       Domain = 5
	DomainKeepalive    Domain = 6
	DomainLED          Domain = 7
	DomainActivity     Domain = 8
	DomainNotification Domain = 9
)

// String returns the domain name.
func (d Domain) String() string {
	switch d {
	case DomainNone:
		return "none"
	case DomainRadio:
		return "radio"
	case DomainCallState:
		return "callstate"
	case DomainDisplay:
		return "display"
	case DomainBlanking:
		return "blanking"
	case DomainPolicy:
		return "policy"
	case DomainKeepalive:
		return "keepalive"
	case DomainLED:
		return "led"
	case DomainActivity:
		return "activity"
	case DomainNotification:
		return "notification"
	default:
		return "unknown"
	}
}

// RequestEvent describes an inbound request.
type RequestEvent struct {
	// Member is the wire method name.
	Member string `cbor:"1,keyasint" json:"member"`

	// Args are the stringified request arguments.
	Args []string `cbor:"2,keyasint,omitempty" json:"args,omitempty"`

	// Accepted is the outcome for requests with a boolean reply.
	Accepted bool `cbor:"3,keyasint" json:"accepted"`
}

// SignalEvent describes an emitted signal.
type SignalEvent struct {
	// Member is the wire signal name.
	Member string `cbor:"1,keyasint" json:"member"`

	// Value is the stringified signal payload.
	Value string `cbor:"2,keyasint,omitempty" json:"value,omitempty"`
}

// EvictionEvent describes a disconnect fan-out or sweep result.
type EvictionEvent struct {
	// Entries is how many entries were removed.
	Entries int `cbor:"1,keyasint" json:"entries"`
}
