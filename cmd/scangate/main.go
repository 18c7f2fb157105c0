// Command scangate runs validated nmap scans from the command line or over HTTP.
package main

import (
	"github.com/anstrom/scangate/cmd/cli"
)

// Build information, set via ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
