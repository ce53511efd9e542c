package dbusif

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/modecontrol/mced/pkg/activity"
	"github.com/modecontrol/mced/pkg/arbiter"
	"github.com/modecontrol/mced/pkg/owner"
	"github.com/modecontrol/mced/pkg/wire"
)

// ErrNameTaken is returned when another process already owns the
// com.nokia.mce name.
var ErrNameTaken = errors.New("dbusif: bus name already owned")

const nameOwnerChanged = "org.freedesktop.DBus.NameOwnerChanged"

// Frontend connects an Arbiter to a message bus.
type Frontend struct {
	conn    *dbus.Conn
	arb     *arbiter.Arbiter
	logger  zerolog.Logger
	session string

	signals chan *dbus.Signal
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// Options configures a Frontend.
type Options struct {
	// Conn is an established bus connection. The frontend takes
	// ownership and closes it on Stop.
	Conn *dbus.Conn

	// Arbiter handles all requests.
	Arbiter *arbiter.Arbiter

	// Logger receives frontend diagnostics.
	Logger zerolog.Logger
}

// New creates a Frontend. Call Start to claim the name and begin
// serving.
func New(opts Options) *Frontend {
	session := uuid.NewString()
	return &Frontend{
		conn:    opts.Conn,
		arb:     opts.Arbiter,
		session: session,
		logger:  opts.Logger.With().Str("session", session).Logger(),
	}
}

// Connect dials the system bus. Split from New so tests can inject a
// private bus connection.
func Connect() (*dbus.Conn, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("dbusif: system bus: %w", err)
	}
	return conn, nil
}

// Start exports the request interface, claims the well-known name, and
// launches the disconnect watch.
func (f *Frontend) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return nil
	}

	if err := f.conn.ExportMethodTable(f.methodTable(), wire.RequestPath, wire.RequestInterface); err != nil {
		return fmt.Errorf("dbusif: export request interface: %w", err)
	}

	reply, err := f.conn.RequestName(wire.Service, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("dbusif: request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return ErrNameTaken
	}

	if err := f.conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	); err != nil {
		return fmt.Errorf("dbusif: owner watch: %w", err)
	}

	f.arb.SetCallbackInvoker(f.invokeCallback)

	f.signals = make(chan *dbus.Signal, 64)
	f.done = make(chan struct{})
	f.conn.Signal(f.signals)
	f.wg.Add(1)
	go f.watchOwners()

	f.started = true
	f.logger.Info().Str("name", wire.Service).Msg("bus name claimed")
	return nil
}

// Stop releases the name and closes the connection.
func (f *Frontend) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return nil
	}
	f.started = false

	close(f.done)
	f.conn.RemoveSignal(f.signals)
	f.wg.Wait()

	if _, err := f.conn.ReleaseName(wire.Service); err != nil {
		f.logger.Warn().Err(err).Msg("release name")
	}
	return f.conn.Close()
}

// Emit broadcasts an arbitration signal. Implements arbiter.SignalSink.
func (f *Frontend) Emit(member string, values ...any) {
	name := wire.SignalInterface + "." + member
	if err := f.conn.Emit(wire.SignalPath, name, values...); err != nil {
		f.logger.Warn().Err(err).Str("signal", member).Msg("emit failed")
	}
}

// watchOwners turns NameOwnerChanged into arbiter evictions. Only
// unique names the arbiter has actually seen are fanned out.
func (f *Frontend) watchOwners() {
	defer f.wg.Done()
	for {
		select {
		case sig, ok := <-f.signals:
			if !ok {
				return
			}
			f.handleSignal(sig)
		case <-f.done:
			return
		}
	}
}

func (f *Frontend) handleSignal(sig *dbus.Signal) {
	if sig == nil || sig.Name != nameOwnerChanged || len(sig.Body) != 3 {
		return
	}
	name, _ := sig.Body[0].(string)
	newOwner, _ := sig.Body[2].(string)
	if newOwner != "" || len(name) == 0 || name[0] != ':' {
		return
	}

	client := owner.ClientID(name)
	if !f.arb.Owners().IsLive(client) {
		return
	}
	f.logger.Debug().Str("client", name).Msg("client vanished")
	f.arb.ClientDropped(client)
}

// invokeCallback delivers one stored activity callback. No reply is
// expected; a dead target is the target's problem.
func (f *Frontend) invokeCallback(cb activity.Callback) {
	obj := f.conn.Object(cb.Service, dbus.ObjectPath(cb.Path))
	call := obj.Call(cb.Interface+"."+cb.Method, dbus.FlagNoReplyExpected)
	if call.Err != nil {
		f.logger.Debug().Err(call.Err).
			Str("service", cb.Service).
			Str("method", cb.Method).
			Msg("activity callback failed")
	}
}
