package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/godbus/dbus/v5"

	"github.com/modecontrol/mced/pkg/wire"
)

// radioBits maps the names accepted by the radio command.
var radioBits = map[string]wire.RadioMask{
	"master":    wire.RadioMaster,
	"cellular":  wire.RadioCellular,
	"wlan":      wire.RadioWLAN,
	"bluetooth": wire.RadioBluetooth,
	"nfc":       wire.RadioNFC,
	"fmtx":      wire.RadioFMTX,
}

// console is the interactive command loop.
type console struct {
	conn *dbus.Conn
	obj  dbus.BusObject
	rl   *readline.Instance
}

func newConsole(conn *dbus.Conn) (*console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mce> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &console{
		conn: conn,
		obj:  conn.Object(wire.Service, wire.RequestPath),
		rl:   rl,
	}, nil
}

func (c *console) run() {
	defer c.rl.Close()

	c.printHelp()

	for {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "status", "s":
			c.cmdStatus()

		case "version":
			c.printString(wire.VersionGet)

		case "radio":
			c.cmdRadio(args)

		case "call":
			c.cmdCall(args)

		case "pause":
			c.call(wire.PreventBlankReq)

		case "unpause":
			c.call(wire.CancelPreventBlankReq)

		case "keepalive", "ka":
			c.cmdKeepalive(args)

		case "led":
			c.cmdLED(args)

		case "notify":
			c.cmdNotify(args)

		case "callback":
			c.cmdCallback(args)

		case "listen", "l":
			c.cmdListen()

		case "exit", "quit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func (c *console) printHelp() {
	fmt.Fprint(c.rl.Stdout(), `
Commands:
  status, s                          Show daemon state summary
  version                            Show daemon version
  radio                              Show radio states
  radio set <bit> on|off             Change one radio bit
  call <state> <type>                Submit a call state claim
  pause | unpause                    Request/cancel display blanking pause
  keepalive start|stop <context>     Hold/release a CPU keepalive slot
  keepalive period                   Show the keepalive renew period
  led activate|deactivate <pattern>  Request/release an LED pattern
  led enable|disable                 Toggle LED policy globally
  notify begin <name> <ms> <ext-ms>  Open a notification window
  notify end <name> <linger-ms>      Close a notification window
  callback add <svc> <path> <if> <m> Register an activity callback
  callback clear                     Remove own activity callbacks
  listen, l                          Print broadcast signals until ^C
  exit, quit, q                      Exit
`)
}

func (c *console) cmdStatus() {
	var mask uint32
	if err := c.obj.Call(member(wire.RadioStatesGet), 0).Store(&mask); err != nil {
		c.printErr(err)
		return
	}
	var state, callType string
	if err := c.obj.Call(member(wire.CallStateGet), 0).Store(&state, &callType); err != nil {
		c.printErr(err)
		return
	}

	out := c.rl.Stdout()
	fmt.Fprintf(out, "Radio states:   %s\n", formatRadio(wire.RadioMask(mask)))
	fmt.Fprintf(out, "Call state:     %s (%s)\n", state, callType)
	stringGets := []struct {
		label  string
		member string
	}{
		{"Display:        ", wire.DisplayStatusGet},
		{"Blanking pause: ", wire.PreventBlankGet},
		{"Policy:         ", wire.BlankingPolicyGet},
	}
	for _, g := range stringGets {
		var s string
		if err := c.obj.Call(member(g.member), 0).Store(&s); err != nil {
			c.printErr(err)
			return
		}
		fmt.Fprintf(out, "%s%s\n", g.label, s)
	}
	var inactive bool
	if err := c.obj.Call(member(wire.InactivityStatusGet), 0).Store(&inactive); err != nil {
		c.printErr(err)
		return
	}
	fmt.Fprintf(out, "Inactive:       %v\n", inactive)
}

func (c *console) cmdRadio(args []string) {
	if len(args) == 0 {
		var mask uint32
		if err := c.obj.Call(member(wire.RadioStatesGet), 0).Store(&mask); err != nil {
			c.printErr(err)
			return
		}
		fmt.Fprintln(c.rl.Stdout(), formatRadio(wire.RadioMask(mask)))
		return
	}

	if len(args) != 3 || args[0] != "set" {
		fmt.Fprintln(c.rl.Stdout(), "Usage: radio set <bit> on|off")
		return
	}
	bit, ok := radioBits[strings.ToLower(args[1])]
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown radio bit: %s\n", args[1])
		return
	}
	value := wire.RadioMask(0)
	if strings.ToLower(args[2]) == "on" {
		value = bit
	}

	var next uint32
	if err := c.obj.Call(member(wire.RadioStatesChangeReq), 0, uint32(value), uint32(bit)).Store(&next); err != nil {
		c.printErr(err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), formatRadio(wire.RadioMask(next)))
}

func (c *console) cmdCall(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: call <none|ringing|active|service> <normal|emergency>")
		return
	}
	var accepted bool
	if err := c.obj.Call(member(wire.CallStateChangeReq), 0, args[0], args[1]).Store(&accepted); err != nil {
		c.printErr(err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Accepted: %v\n", accepted)
}

func (c *console) cmdKeepalive(args []string) {
	if len(args) == 1 && args[0] == "period" {
		var seconds int32
		if err := c.obj.Call(member(wire.CPUKeepalivePeriodReq), 0, "").Store(&seconds); err != nil {
			c.printErr(err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Renew period: %ds\n", seconds)
		return
	}
	if len(args) != 2 || (args[0] != "start" && args[0] != "stop") {
		fmt.Fprintln(c.rl.Stdout(), "Usage: keepalive start|stop <context> | keepalive period")
		return
	}

	m := wire.CPUKeepaliveStartReq
	if args[0] == "stop" {
		m = wire.CPUKeepaliveStopReq
	}
	var accepted bool
	if err := c.obj.Call(member(m), 0, args[1]).Store(&accepted); err != nil {
		c.printErr(err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Accepted: %v\n", accepted)
}

func (c *console) cmdLED(args []string) {
	switch {
	case len(args) == 1 && args[0] == "enable":
		c.call(wire.EnableLED)
	case len(args) == 1 && args[0] == "disable":
		c.call(wire.DisableLED)
	case len(args) == 2 && args[0] == "activate":
		c.call(wire.ActivateLEDPattern, args[1])
	case len(args) == 2 && args[0] == "deactivate":
		c.call(wire.DeactivateLEDPattern, args[1])
	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: led activate|deactivate <pattern> | led enable|disable")
	}
}

func (c *console) cmdNotify(args []string) {
	switch {
	case len(args) == 4 && args[0] == "begin":
		duration, err1 := strconv.ParseInt(args[2], 10, 32)
		extend, err2 := strconv.ParseInt(args[3], 10, 32)
		if err1 != nil || err2 != nil {
			fmt.Fprintln(c.rl.Stdout(), "Durations must be integer milliseconds")
			return
		}
		c.call(wire.NotificationBeginReq, args[1], int32(duration), int32(extend))

	case len(args) == 3 && args[0] == "end":
		linger, err := strconv.ParseInt(args[2], 10, 32)
		if err != nil {
			fmt.Fprintln(c.rl.Stdout(), "Linger must be integer milliseconds")
			return
		}
		c.call(wire.NotificationEndReq, args[1], int32(linger))

	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: notify begin <name> <duration-ms> <extend-ms> | notify end <name> <linger-ms>")
	}
}

func (c *console) cmdCallback(args []string) {
	switch {
	case len(args) == 5 && args[0] == "add":
		var accepted bool
		err := c.obj.Call(member(wire.AddActivityCallbackReq), 0,
			args[1], args[2], args[3], args[4]).Store(&accepted)
		if err != nil {
			c.printErr(err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Accepted: %v\n", accepted)

	case len(args) == 1 && args[0] == "clear":
		c.call(wire.RemoveActivityCallbackReq)

	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: callback add <service> <path> <interface> <method> | callback clear")
	}
}

// cmdListen prints broadcast signals until interrupted.
func (c *console) cmdListen() {
	err := c.conn.AddMatchSignal(
		dbus.WithMatchInterface(wire.SignalInterface),
		dbus.WithMatchObjectPath(wire.SignalPath),
	)
	if err != nil {
		c.printErr(err)
		return
	}
	defer c.conn.RemoveMatchSignal(
		dbus.WithMatchInterface(wire.SignalInterface),
		dbus.WithMatchObjectPath(wire.SignalPath),
	)

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)

	fmt.Fprintln(c.rl.Stdout(), "Listening (enter to stop)...")
	stop := make(chan struct{})
	go func() {
		c.rl.Readline()
		close(stop)
	}()

	for {
		select {
		case sig := <-signals:
			short := strings.TrimPrefix(sig.Name, wire.SignalInterface+".")
			fmt.Fprintf(c.rl.Stdout(), "  %s %v\n", short, sig.Body)
		case <-stop:
			return
		}
	}
}

// call issues a request with no interesting return value.
func (c *console) call(m string, args ...interface{}) {
	if call := c.obj.Call(member(m), 0, args...); call.Err != nil {
		c.printErr(call.Err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "OK")
}

func (c *console) printString(m string) {
	var s string
	if err := c.obj.Call(member(m), 0).Store(&s); err != nil {
		c.printErr(err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), s)
}

func (c *console) printErr(err error) {
	fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
}

func member(m string) string {
	return wire.RequestInterface + "." + m
}

var radioBitOrder = []string{"master", "cellular", "wlan", "bluetooth", "nfc", "fmtx"}

func formatRadio(mask wire.RadioMask) string {
	var on []string
	for _, name := range radioBitOrder {
		if mask&radioBits[name] != 0 {
			on = append(on, name)
		}
	}
	if len(on) == 0 {
		return fmt.Sprintf("0x%02x (all off)", uint32(mask))
	}
	return fmt.Sprintf("0x%02x (%s)", uint32(mask), strings.Join(on, " "))
}
