// Package version carries build information set via -ldflags.
package version

var (
	Version = "dev"
	Commit  = "none"
)
