// Package version reports the build version of axectl.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/axectl/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/axectl/internal/version.Commit=abc1234"
//
// When unset they are filled from the VCS stamp in the binary's build info.
var (
	Version = ""
	Commit  = ""
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var (
	resolved Info
	once     sync.Once
)

// Get returns the build information, resolving it on first use.
func Get() Info {
	once.Do(func() {
		resolved = resolve(Version, Commit, readSettings())
	})
	return resolved
}

// Full returns the version string including commit
func Full() string {
	info := Get()
	return fmt.Sprintf("%s (commit: %s)", info.Version, info.Commit)
}

func readSettings() map[string]string {
	settings := make(map[string]string)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		settings["module.version"] = info.Main.Version
	}
	return settings
}

// resolve fills missing ldflags values from build settings
func resolve(version, commit string, settings map[string]string) Info {
	if commit == "" {
		if rev := settings["vcs.revision"]; rev != "" {
			if len(rev) > 7 {
				rev = rev[:7]
			}
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			commit = rev
		} else {
			commit = "unknown"
		}
	}

	if version == "" {
		switch {
		case settings["module.version"] != "":
			// go install github.com/muurk/axectl/cmd/axectl@v0.3.0
			version = settings["module.version"]
		case len(settings["vcs.time"]) >= 10:
			// vcs.time is RFC 3339; keep the date only
			date := settings["vcs.time"][:10]
			version = "dev-" + date[0:4] + date[5:7] + date[8:10]
		default:
			version = "dev"
		}
	}

	return Info{
		Version:   version,
		Commit:    commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
