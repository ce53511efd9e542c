// Package commands implements the mcelog CLI commands.
package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/modecontrol/mced/pkg/log"
)

// viewFilter specifies criteria for selecting events in the view
// command. Nil fields match everything.
type viewFilter struct {
	kind   *log.Kind
	domain *log.Domain
	client string
}

func (f viewFilter) matches(event log.Event) bool {
	if f.kind != nil && event.Kind != *f.kind {
		return false
	}
	if f.domain != nil && event.Domain != *f.domain {
		return false
	}
	if f.client != "" && event.Client != f.client {
		return false
	}
	return true
}

// View reads a log file and prints matching events.
func View(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	kindArg := fs.String("kind", "", "Only events of this kind: request, signal, eviction, sweep")
	domainArg := fs.String("domain", "", "Only events of this domain, e.g. radio, keepalive")
	clientArg := fs.String("client", "", "Only events concerning this bus client")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one log file argument")
	}

	filter := viewFilter{client: *clientArg}
	if *kindArg != "" {
		k, err := parseKind(*kindArg)
		if err != nil {
			return err
		}
		filter.kind = &k
	}
	if *domainArg != "" {
		d, err := parseDomain(*domainArg)
		if err != nil {
			return err
		}
		filter.domain = &d
	}

	return withReader(fs.Arg(0), func(reader *log.Reader) error {
		for {
			event, err := reader.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read event: %w", err)
			}
			if filter.matches(event) {
				formatEvent(w, event)
			}
		}
	})
}

// formatEvent writes a human-readable representation of the event.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	client := event.Client
	if client == "" {
		client = "-"
	}
	fmt.Fprintf(w, "%s [%s] %-8s %s\n", ts, client, event.Kind, event.Domain)

	switch {
	case event.Request != nil:
		outcome := "rejected"
		if event.Request.Accepted {
			outcome = "accepted"
		}
		fmt.Fprintf(w, "  Request: %s (%s)\n", event.Request.Member, outcome)
		if len(event.Request.Args) > 0 {
			fmt.Fprintf(w, "  Args: %s\n", strings.Join(event.Request.Args, " "))
		}
	case event.Signal != nil:
		fmt.Fprintf(w, "  Signal: %s\n", event.Signal.Member)
		if event.Signal.Value != "" {
			fmt.Fprintf(w, "  Value: %s\n", event.Signal.Value)
		}
	case event.Eviction != nil:
		fmt.Fprintf(w, "  Entries removed: %d\n", event.Eviction.Entries)
	}
	fmt.Fprintln(w)
}

func parseKind(s string) (log.Kind, error) {
	switch strings.ToLower(s) {
	case "request":
		return log.KindRequest, nil
	case "signal":
		return log.KindSignal, nil
	case "eviction":
		return log.KindEviction, nil
	case "sweep":
		return log.KindSweep, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", s)
	}
}

func parseDomain(s string) (log.Domain, error) {
	domains := []log.Domain{
		log.DomainNone, log.DomainRadio, log.DomainCallState,
		log.DomainDisplay, log.DomainBlanking, log.DomainPolicy,
		log.DomainKeepalive, log.DomainLED, log.DomainActivity,
		log.DomainNotification,
	}
	for _, d := range domains {
		if d.String() == strings.ToLower(s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown domain %q", s)
}

// withReader opens a log file and hands a decoder to fn.
func withReader(path string, fn func(*log.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()
	return fn(log.NewReader(file))
}
