// Package version holds build metadata injected at link time:
//
//	go build -ldflags "-X github.com/Sumatoshi-tech/amd2esm/pkg/version.Version=v1.2.3"
package version

import "fmt"

// Build metadata. Overridden with -ldflags -X.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
