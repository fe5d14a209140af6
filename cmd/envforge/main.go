// Package main is the entry point for the envforge CLI.
//
// envforge is a command-line tool for turning a declarative environment
// configuration into a deployed hierarchy of infrastructure templates. It
// plans the network address space, builds and composes the template tree,
// publishes the rendered artifacts and deploys the root stack while
// watching its status notifications.
//
// Commands: init, create, deploy, version.
//
// For detailed usage information, run:
//
//	envforge --help
package main

import (
	"fmt"
	"os"

	"github.com/envforge/envforge/cmd/envforge/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
