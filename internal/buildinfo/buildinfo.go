// Package buildinfo identifies the running build in logs and the window
// title.
package buildinfo

import "runtime/debug"

// Version and Commit are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// Short returns a compact build identifier. Without ldflags it falls back to
// the VCS revision stamped by the go tool.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return shorten(Commit)
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return shorten(s.Value)
			}
		}
	}
	return "dev"
}

// Title appends the build to a window title unless this is a release.
func Title(base string) string {
	if Version != "" && Version != "dev" {
		return base
	}
	return base + " (" + Short() + ")"
}

func shorten(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
