// Package version holds build metadata shared by the twinrag binaries.
package version

//nolint:revive // Overridden via -ldflags at release build time.
var (
	Version = "dev"
	Commit  = "unknown"
)
