// Command mcetool is an interactive client for the mode control
// daemon. It issues requests against com.nokia.mce and can listen to
// the daemon's broadcast signals.
//
// Usage:
//
//	mcetool [flags]
//
// Flags:
//
//	-session  Connect to the session bus instead of the system bus
//
// Examples:
//
//	# Inspect the daemon state interactively
//	mcetool
//
//	mce> status
//	mce> radio set wlan on
//	mce> listen
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
)

func main() {
	var useSession bool
	flag.BoolVar(&useSession, "session", false, "Connect to the session bus instead of the system bus")
	flag.Parse()

	conn, err := connect(useSession)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcetool: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	console, err := newConsole(conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcetool: %v\n", err)
		os.Exit(1)
	}
	console.run()
}

func connect(useSession bool) (*dbus.Conn, error) {
	if useSession {
		return dbus.ConnectSessionBus()
	}
	return dbus.ConnectSystemBus()
}
