package commands

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/modecontrol/mced/pkg/log"
)

// fileStats holds aggregate statistics about a log file.
type fileStats struct {
	total       int
	byKind      map[log.Kind]int
	byDomain    map[log.Domain]int
	clients     map[string]*clientStats
	rejected    int
	first, last time.Time
}

// clientStats holds statistics for a single bus client.
type clientStats struct {
	firstSeen time.Time
	lastSeen  time.Time
	requests  int
	rejected  int
	evicted   bool
}

// Stats analyzes the log file and prints statistics.
func Stats(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one log file argument")
	}

	stats := &fileStats{
		byKind:   make(map[log.Kind]int),
		byDomain: make(map[log.Domain]int),
		clients:  make(map[string]*clientStats),
	}

	err := withReader(fs.Arg(0), func(reader *log.Reader) error {
		for {
			event, err := reader.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read event: %w", err)
			}
			stats.add(event)
		}
	})
	if err != nil {
		return err
	}

	stats.print(w)
	return nil
}

func (s *fileStats) add(event log.Event) {
	s.total++
	s.byKind[event.Kind]++
	s.byDomain[event.Domain]++

	if s.first.IsZero() || event.Timestamp.Before(s.first) {
		s.first = event.Timestamp
	}
	if event.Timestamp.After(s.last) {
		s.last = event.Timestamp
	}

	if event.Client == "" {
		return
	}
	c, ok := s.clients[event.Client]
	if !ok {
		c = &clientStats{firstSeen: event.Timestamp}
		s.clients[event.Client] = c
	}
	c.lastSeen = event.Timestamp
	if event.Kind == log.KindRequest {
		c.requests++
		if event.Request != nil && !event.Request.Accepted {
			c.rejected++
			s.rejected++
		}
	}
	if event.Kind == log.KindEviction {
		c.evicted = true
	}
}

func (s *fileStats) print(w io.Writer) {
	fmt.Fprintf(w, "Events:    %d\n", s.total)
	if s.total > 0 {
		fmt.Fprintf(w, "Span:      %s to %s (%s)\n",
			s.first.UTC().Format(time.RFC3339),
			s.last.UTC().Format(time.RFC3339),
			s.last.Sub(s.first).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Rejected:  %d\n", s.rejected)

	fmt.Fprintln(w, "\nBy kind:")
	for _, k := range []log.Kind{log.KindRequest, log.KindSignal, log.KindEviction, log.KindSweep} {
		if n := s.byKind[k]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", k, n)
		}
	}

	fmt.Fprintln(w, "\nBy domain:")
	domains := make([]log.Domain, 0, len(s.byDomain))
	for d := range s.byDomain {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })
	for _, d := range domains {
		fmt.Fprintf(w, "  %-13s %d\n", d, s.byDomain[d])
	}

	if len(s.clients) == 0 {
		return
	}
	fmt.Fprintln(w, "\nClients:")
	names := make([]string, 0, len(s.clients))
	for name := range s.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := s.clients[name]
		note := ""
		if c.evicted {
			note = " (evicted)"
		}
		fmt.Fprintf(w, "  %-12s %d requests, %d rejected%s\n", name, c.requests, c.rejected, note)
	}
}
