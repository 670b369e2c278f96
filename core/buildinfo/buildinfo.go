// Package buildinfo carries release metadata stamped in by the linker:
//
//	go build -ldflags "-X github.com/m3rciful/counterbot/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/m3rciful/counterbot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/counterbot/core/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "local"
	// Date is RFC3339; empty for local builds.
	Date = ""
)

// Summary renders the build as "counterbot <version> (commit: <commit>, built: <date>)".
func Summary() string {
	date := Date
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("counterbot %s (commit: %s, built: %s)", Version, Commit, date)
}
