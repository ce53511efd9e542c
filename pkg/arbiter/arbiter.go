package arbiter

import (
	"fmt"
	"sync"
	"time"

	"github.com/modecontrol/mced/pkg/activity"
	"github.com/modecontrol/mced/pkg/blanking"
	"github.com/modecontrol/mced/pkg/callstate"
	"github.com/modecontrol/mced/pkg/config"
	"github.com/modecontrol/mced/pkg/keepalive"
	"github.com/modecontrol/mced/pkg/ledpattern"
	"github.com/modecontrol/mced/pkg/log"
	"github.com/modecontrol/mced/pkg/notification"
	"github.com/modecontrol/mced/pkg/owner"
	"github.com/modecontrol/mced/pkg/radio"
	"github.com/modecontrol/mced/pkg/wire"
)

// SignalSink receives the signals the arbiter decides to emit. The bus
// frontend queues them for delivery; tests capture them directly.
type SignalSink interface {
	Emit(member string, values ...any)
}

// SinkFunc adapts a function to the SignalSink interface.
type SinkFunc func(member string, values ...any)

// Emit calls the function.
func (f SinkFunc) Emit(member string, values ...any) { f(member, values...) }

// Arbiter is the arbitration authority for all mode domains.
type Arbiter struct {
	cfg     config.Config
	logger  log.Logger
	version string

	owners     *Ownership
	calls      *callstate.Aggregator
	radio      *radio.Aggregator
	prevention *blanking.Prevention
	policy     *blanking.PolicyStack
	keepalive  *keepalive.Tracker
	leds       *ledpattern.Stack
	callbacks  *activity.Registry
	inactivity *activity.InactivityTracker
	windows    *notification.Tracker

	// emitMu serializes signal emission so per-domain signal order
	// matches transition order.
	emitMu sync.Mutex
	sink   SignalSink

	mu           sync.Mutex
	displayState wire.DisplayState
	lockActive   bool
	alarmActive  bool
	invoker      func(activity.Callback)
	onForcing    func(forcing bool)
	onSaved      func(radio wire.RadioMask, ledEnabled bool)

	sweep *sweeper
}

// Ownership is the disconnect fan-out registry; exported so the bus
// frontend can track identities directly.
type Ownership = owner.Registry

// Options configures a new Arbiter.
type Options struct {
	// Config supplies the policy tunables; zero fields use defaults.
	Config config.Config

	// Logger records arbitration events; nil disables logging.
	Logger log.Logger

	// Sink receives emitted signals; nil discards them.
	Sink SignalSink

	// Version is reported by the get_version request.
	Version string

	// InitialRadioStates seeds the radio aggregator, e.g. from the
	// saved state file.
	InitialRadioStates wire.RadioMask

	// LEDDisabled starts the global LED toggle disabled.
	LEDDisabled bool
}

// New creates and wires an Arbiter.
func New(opts Options) *Arbiter {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}

	a := &Arbiter{
		cfg:          cfg,
		logger:       logger,
		version:      opts.Version,
		sink:         opts.Sink,
		owners:       owner.NewRegistry(),
		calls:        callstate.New(),
		radio:        radio.New(opts.InitialRadioStates),
		policy:       blanking.NewPolicyStack(cfg.PolicyLinger()),
		keepalive:    keepalive.New(cfg.KeepalivePeriod(), owner.ClientID(cfg.KeepaliveWakeupClient)),
		leds:         ledpattern.New(cfg.LEDPatterns),
		callbacks:    activity.NewRegistry(cfg.ActivityCallbackCapacity),
		inactivity:   activity.NewInactivityTracker(cfg.InactivityTimeout()),
		windows:      notification.NewTracker(),
		displayState: wire.DisplayOn,
	}
	a.prevention = blanking.NewPrevention(cfg.BlankingPause(), displayQuery{a})
	a.sweep = newSweeper(a, cfg.SweepInterval())

	if opts.LEDDisabled {
		a.leds.Disable()
	}

	a.wireDomains()
	a.wireEvictions()
	return a
}

// wireDomains connects domain change callbacks to signal emission and
// to the policy stack inputs derived from other domains.
func (a *Arbiter) wireDomains() {
	a.calls.OnChange(func(agg callstate.Aggregate) {
		a.emit(log.DomainCallState, wire.CallStateSig, agg.State.String(), agg.Type.String())
		if agg.State != wire.CallStateNone {
			_ = a.policy.Enter(wire.PolicyCall)
		} else {
			_ = a.policy.Leave(wire.PolicyCall)
		}
	})

	a.radio.OnChange(func(mask wire.RadioMask) {
		a.emit(log.DomainRadio, wire.RadioStatesSig, uint32(mask))
		a.notifySaved()
	})

	a.policy.OnChange(func(p wire.BlankingPolicy) {
		a.emit(log.DomainPolicy, wire.BlankingPolicySig, p.String())
	})

	a.prevention.OnChange(func(active bool) {
		status := wire.PreventBlankInactiveString
		if active {
			status = wire.PreventBlankActiveString
		}
		a.emit(log.DomainBlanking, wire.PreventBlankSig, status)
	})

	a.leds.OnTransition(func(pattern string, active bool) {
		member := wire.LEDPatternDeactivatedSig
		if active {
			member = wire.LEDPatternActivatedSig
		}
		a.emit(log.DomainLED, member, pattern)
	})

	a.inactivity.OnChange(func(inactive bool) {
		a.emit(log.DomainActivity, wire.InactivitySig, inactive)
	})

	a.windows.OnChange(func(forcing bool) {
		if forcing {
			_ = a.policy.Enter(wire.PolicyNotification)
		} else {
			_ = a.policy.Leave(wire.PolicyNotification)
		}

		a.mu.Lock()
		fn := a.onForcing
		a.mu.Unlock()
		if fn != nil {
			fn(forcing)
		}
	})
}

// wireEvictions registers every per-client domain with the ownership
// registry. Order matters only for log readability.
func (a *Arbiter) wireEvictions() {
	a.owners.OnEvict(func(c owner.ClientID) { a.calls.EvictOwner(c) })
	a.owners.OnEvict(func(c owner.ClientID) { a.prevention.EvictOwner(c) })
	a.owners.OnEvict(func(c owner.ClientID) { a.keepalive.EvictOwner(c) })
	a.owners.OnEvict(func(c owner.ClientID) { a.leds.EvictOwner(c) })
	a.owners.OnEvict(func(c owner.ClientID) { a.callbacks.UnregisterAll(c) })
	a.owners.OnEvict(func(c owner.ClientID) { a.windows.EvictOwner(c) })
}

// Start launches the periodic expiry sweep.
func (a *Arbiter) Start() { a.sweep.start() }

// Stop halts the sweep loop and the inactivity timer.
func (a *Arbiter) Stop() {
	a.sweep.stop()
	a.inactivity.Stop()
}

// Owners exposes the ownership registry for the bus frontend.
func (a *Arbiter) Owners() *Ownership { return a.owners }

// ClientDropped evicts the client from every domain. The bus frontend
// calls it from its disconnect watch; the identity must not be reused
// until it returns.
func (a *Arbiter) ClientDropped(client owner.ClientID) {
	a.owners.Drop(client)
	a.logger.Log(log.Event{
		Timestamp: time.Now(),
		Client:    string(client),
		Kind:      log.KindEviction,
		Domain:    log.DomainNone,
		Eviction:  &log.EvictionEvent{},
	})
}

// SetCallbackInvoker installs the function that delivers activity
// callbacks; the bus frontend issues the recorded method calls.
func (a *Arbiter) SetCallbackInvoker(fn func(activity.Callback)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.invoker = fn
}

// OnDisplayForcing installs the hook informing the display collaborator
// whether notification windows currently force the display on.
func (a *Arbiter) OnDisplayForcing(fn func(forcing bool)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onForcing = fn
}

// OnSavedStateChange installs the hook fired when persisted state
// (radio mask, LED toggle) changes.
func (a *Arbiter) OnSavedStateChange(fn func(radio wire.RadioMask, ledEnabled bool)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSaved = fn
}

// OnOfflineModeChange installs the hook mirroring local master-bit
// changes outward to the offline-mode collaborator.
func (a *Arbiter) OnOfflineModeChange(fn func(online bool)) {
	a.radio.OnMasterChange(fn)
}

func (a *Arbiter) notifySaved() {
	a.mu.Lock()
	fn := a.onSaved
	a.mu.Unlock()
	if fn != nil {
		fn(a.radio.Current(), a.leds.Enabled())
	}
}

// emit serializes signal emission and records it.
func (a *Arbiter) emit(domain log.Domain, member string, values ...any) {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	if a.sink != nil {
		a.sink.Emit(member, values...)
	}
	a.logger.Log(log.Event{
		Timestamp: time.Now(),
		Kind:      log.KindSignal,
		Domain:    domain,
		Signal:    &log.SignalEvent{Member: member, Value: fmt.Sprint(values...)},
	})
}

// logRequest records an inbound request.
func (a *Arbiter) logRequest(client owner.ClientID, domain log.Domain, member string, accepted bool, args ...string) {
	a.logger.Log(log.Event{
		Timestamp: time.Now(),
		Client:    string(client),
		Kind:      log.KindRequest,
		Domain:    domain,
		Request:   &log.RequestEvent{Member: member, Args: args, Accepted: accepted},
	})
}

// displayQuery adapts the arbiter's display state for the blanking
// prevention precondition.
type displayQuery struct{ a *Arbiter }

func (q displayQuery) State() wire.DisplayState {
	q.a.mu.Lock()
	defer q.a.mu.Unlock()
	return q.a.displayState
}

func (q displayQuery) LockActive() bool {
	q.a.mu.Lock()
	defer q.a.mu.Unlock()
	return q.a.lockActive
}
