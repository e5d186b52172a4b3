// Package buildinfo holds build-time metadata injected via ldflags,
// separate from user configuration.
package buildinfo

import "fmt"

// Set at build time:
//
//	go build -ldflags "-X hikelog/internal/buildinfo.Version=v1.2.3 -X hikelog/internal/buildinfo.BuildDate=..."
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// String returns the version line shown by --version.
func String() string {
	return fmt.Sprintf("%s (built %s)", Version, BuildDate)
}
