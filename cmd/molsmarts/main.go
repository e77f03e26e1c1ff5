// Command molsmarts encodes molfiles and SD files as SMARTS and talks to a
// molsmarts API server.
package main

import (
	"os"

	"github.com/turtacn/molsmarts/internal/interfaces/cli"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
