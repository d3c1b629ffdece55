// Package buildinfo reports which build of the grocery bot is running.
package buildinfo

import "runtime/debug"

// Set with -ldflags at release time, e.g.
//
//	-X 'github.com/m3rciful/grocerybot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/grocerybot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/grocerybot/core/buildinfo.Date=2025-08-30T12:00:00Z'
var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)

// Info is the resolved build identity shown at startup and on /healthz.
type Info struct {
	Version  string
	Commit   string
	Date     string
	Modified bool
}

// Current returns the ldflags values, falling back to the VCS stamp the Go
// toolchain embeds when the binary was built without them.
func Current() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(bi)
}

func resolve(bi *debug.BuildInfo) Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	if bi == nil {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "local" && s.Value != "" {
				info.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
