// Package version reports build metadata for the onchain-cli binaries.
package version

import "fmt"

// Overridden at build time via -ldflags.
var (
	Version = "0.3.0"
	Commit  = "dev"
)

// Info is what the version subcommands print in JSON mode.
type Info struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func For(tool string) Info {
	return Info{Tool: tool, Version: Version, Commit: Commit}
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s)", i.Tool, i.Version, i.Commit)
}
