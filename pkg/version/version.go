// Package version is used by the release process to add an
// informative version string to some commands.
package version

import (
	"fmt"
	"runtime"
	"time"
)

// These strings will be overwritten at link time during the release process, e.g.
//
//	-ldflags "-X github.com/els0r/parzip/pkg/version.semver=v1.0.0"
var (
	semver    = ""
	commitSHA = ""
	buildTime = ""
)

// Short returns the semantic version of the build (or "devel")
func Short() string {
	if semver == "" {
		return "devel"
	}
	return semver
}

// Version returns a newline-terminated string describing the current
// version of the build.
func Version() string {
	if commitSHA == "" {
		return fmt.Sprintf("parzip %s (%s)\n", Short(), runtime.Version())
	}

	built := buildTime
	if ts, err := time.Parse(time.RFC3339, buildTime); err == nil {
		built = ts.In(time.UTC).Format(time.Stamp + " 2006 UTC")
	}

	return fmt.Sprintf(`parzip %s
    Build time:     %s
    Git hash:       %s
    Go version:     %s
`, Short(), built, commitSHA, runtime.Version())
}
