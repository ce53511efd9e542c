package log

import "github.com/rs/zerolog"

// ZerologAdapter writes events to a zerolog.Logger at debug level.
// Used by the daemon to mirror arbitration events to the console.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates an adapter over the given logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Log writes the event.
func (a *ZerologAdapter) Log(event Event) {
	e := a.logger.Debug().
		Str("kind", event.Kind.String()).
		Str("domain", event.Domain.String())

	if event.Client != "" {
		e = e.Str("client", event.Client)
	}
	if event.Session != "" {
		e = e.Str("session", event.Session)
	}

	switch {
	case event.Request != nil:
		e = e.Str("member", event.Request.Member).
			Strs("args", event.Request.Args).
			Bool("accepted", event.Request.Accepted)
	case event.Signal != nil:
		e = e.Str("member", event.Signal.Member).
			Str("value", event.Signal.Value)
	case event.Eviction != nil:
		e = e.Int("entries", event.Eviction.Entries)
	}

	e.Msg("mce event")
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZerologAdapter)(nil)
