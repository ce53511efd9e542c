// Command mcelog is a tool for viewing and analyzing mced event log
// files.
//
// Log files are created when mced runs with event_log_file set in its
// configuration.
//
// Usage:
//
//	mcelog <command> [flags] <file.mlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	mcelog view mced.mlog
//
//	# View only keepalive events
//	mcelog view -domain keepalive mced.mlog
//
//	# View one client's requests
//	mcelog view -kind request -client :1.42 mced.mlog
//
//	# Export to JSONL
//	mcelog export mced.mlog
//
//	# Show statistics
//	mcelog stats mced.mlog
package main

import (
	"fmt"
	"os"

	"github.com/modecontrol/mced/cmd/mcelog/commands"
)

const usage = `mcelog - mced event log analyzer

Usage:
  mcelog <command> [flags] <file.mlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL
  stats    Show statistics about the log file

Use "mcelog <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "view":
		err = commands.View(os.Args[2:], os.Stdout)
	case "export":
		err = commands.Export(os.Args[2:], os.Stdout)
	case "stats":
		err = commands.Stats(os.Args[2:], os.Stdout)
	case "help", "-help", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcelog: %v\n", err)
		os.Exit(1)
	}
}
