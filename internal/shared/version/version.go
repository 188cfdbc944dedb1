// Package version carries build metadata injected through -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

// Set with -ldflags "-X github.com/orris-inc/licensor/internal/shared/version.Version=v1.2.3".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Normalize ensures a version string has the "v" prefix semver expects.
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// Current returns the canonical build version, or the raw value for
// development builds that were not stamped with a release tag.
func Current() string {
	normalized := Normalize(Version)
	if semver.IsValid(normalized) {
		return semver.Canonical(normalized)
	}
	return Version
}

// IsRelease reports whether the binary was built from a tagged release
// without a prerelease suffix.
func IsRelease() bool {
	normalized := Normalize(Version)
	return semver.IsValid(normalized) && semver.Prerelease(normalized) == ""
}

// String renders a one-line summary for the version command.
func String() string {
	return fmt.Sprintf("licensor %s (commit %s, built %s, %s)", Current(), Commit, BuildTime, runtime.Version())
}
