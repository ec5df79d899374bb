// Package version reports what sitesearch binary is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Set with -ldflags "-X github.com/milkdragon/sitesearch/pkg/version.Version=v1.2.3".
// Commit and Date fall back to the VCS stamp the go command embeds when they
// are left unset.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is the JSON shape of `sitesearch version --json`.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

var vcsOnce = sync.OnceValue(func() BuildInfo {
	bi, _ := debug.ReadBuildInfo()
	return stamp(bi, Commit, Date)
})

// stamp fills commit and date from bi where ldflags did not set them.
func stamp(bi *debug.BuildInfo, commit, date string) BuildInfo {
	info := BuildInfo{Commit: commit, Date: date}
	if bi == nil {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = s.Value
				if len(info.Commit) > 12 {
					info.Commit = info.Commit[:12]
				}
			}
		case "vcs.time":
			if info.Date == "unknown" && s.Value != "" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// GetInfo returns the full build description.
func GetInfo() BuildInfo {
	info := vcsOnce()
	info.Version = Version
	info.GoVersion = runtime.Version()
	info.OS = runtime.GOOS
	info.Arch = runtime.GOARCH
	return info
}

// String is the one-line form printed by `sitesearch version`.
func String() string {
	info := GetInfo()
	commit := info.Commit
	if info.Modified {
		commit += "+dirty"
	}
	return fmt.Sprintf("sitesearch %s (commit: %s, built: %s, go: %s)",
		info.Version, commit, info.Date, info.GoVersion)
}

// Short returns just the version.
func Short() string {
	return Version
}

// UserAgent is sent with index fetches.
func UserAgent() string {
	return fmt.Sprintf("sitesearch/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}
