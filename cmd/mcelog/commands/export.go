package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/modecontrol/mced/pkg/log"
)

// jsonEvent is the JSONL export shape. Enums export as names rather
// than wire integers.
type jsonEvent struct {
	Timestamp time.Time          `json:"timestamp"`
	Client    string             `json:"client,omitempty"`
	Session   string             `json:"session,omitempty"`
	Kind      string             `json:"kind"`
	Domain    string             `json:"domain"`
	Request   *log.RequestEvent  `json:"request,omitempty"`
	Signal    *log.SignalEvent   `json:"signal,omitempty"`
	Eviction  *log.EvictionEvent `json:"eviction,omitempty"`
}

// Export reads a log file and writes one JSON object per line.
func Export(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one log file argument")
	}

	enc := json.NewEncoder(w)
	return withReader(fs.Arg(0), func(reader *log.Reader) error {
		for {
			event, err := reader.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read event: %w", err)
			}

			out := jsonEvent{
				Timestamp: event.Timestamp,
				Client:    event.Client,
				Session:   event.Session,
				Kind:      strings.ToLower(event.Kind.String()),
				Domain:    event.Domain.String(),
				Request:   event.Request,
				Signal:    event.Signal,
				Eviction:  event.Eviction,
			}
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("encode event: %w", err)
			}
		}
	})
}
