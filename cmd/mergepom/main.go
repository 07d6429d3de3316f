// Package main is the entry point for the mergepom merge driver.
//
// git invokes the binary as "mergepom %O %A %B %L" for every path marked
// with merge=pommerge in .gitattributes. All functionality lives in the
// internal/cli package, which defines the cobra commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release process. During development, they default to "dev",
// "none", and "unknown" respectively.
package main

import (
	"github.com/shinji-kodama/mergepom/internal/cli"
)

// version, commit, and date are set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// Execute exits with the merge utility's status on the merge path.
	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
