// Package version holds build metadata set via -ldflags.
package version

var (
	// Version is the release version of hcdl
	Version = "v0.0.1-alpha"
	// Commit is the git revision the binary was built from
	Commit = "unknown"
)
