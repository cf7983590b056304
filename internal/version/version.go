// Package version exposes build metadata for the sphindex binaries.
package version

import "fmt"

// Injected at build time via -ldflags "-X".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata as one human-readable line, the form
// logged at startup and returned by --version style surfaces.
func String() string {
	return fmt.Sprintf("sphindex %s (commit %s, built %s)", Version, Commit, Date)
}
