// Package version carries build metadata injected with ldflags, e.g.
//
//	-ldflags "-X github.com/jmylchreest/lumen/internal/version.Version=x.y.z
//	          -X github.com/jmylchreest/lumen/internal/version.Commit=$(git rev-parse HEAD)
//	          -X github.com/jmylchreest/lumen/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in version strings.
const Name = "lumen"

const unknown = "unknown"

var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = unknown

	// Date is the build date (RFC3339).
	Date = unknown
)

// Info is the structured build metadata, as served by the API.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build metadata.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// ShortCommit returns the first 8 characters of Commit.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}

// String returns a human-readable version line.
func String() string {
	info := GetInfo()
	if info.Commit != unknown && info.Date != unknown {
		return fmt.Sprintf("%s version %s (commit: %s, built: %s, %s, %s)",
			Name, info.Version, info.ShortCommit(), info.Date, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("%s version %s (%s, %s)", Name, info.Version, info.GoVersion, info.Platform)
}

// Short returns just the version.
func Short() string {
	return Version
}

// UserAgent returns "lumen/<version>", used as the HTTP Server header.
func UserAgent() string {
	return Name + "/" + Version
}
