// Command fastpasta decodes and validates ALICE ITS/ALPIDE raw readout
// streams (RDH headers, CRU data pages, ALPIDE chip protocol words).
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/fastpasta/cmd/fastpasta/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
