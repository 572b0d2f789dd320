// Package version reports what build of stylegen is running.
//
// Release builds set the variables below with -ldflags, e.g.
//
//	-X github.com/jmylchreest/stylegen/internal/version.Version=1.2.0
//	-X github.com/jmylchreest/stylegen/internal/version.Commit=$(git rev-parse HEAD)
//	-X github.com/jmylchreest/stylegen/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)
//
// Anything left unset is filled from the module build info, so `go install`
// and plain `go build` binaries still report a module version and VCS stamp.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/jmylchreest/stylegen/internal/protocol"
)

const develVersion = "dev"

var (
	Version = develVersion
	Commit  = ""
	Date    = ""

	// Modified is true when the VCS stamp reports uncommitted changes.
	Modified bool
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	applyBuildInfo(info)
}

// applyBuildInfo fills the variables ldflags did not set.
func applyBuildInfo(info *debug.BuildInfo) {
	if Version == develVersion {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			Version = strings.TrimPrefix(v, "v")
		}
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == "" {
				Date = s.Value
			}
		case "vcs.modified":
			Modified = s.Value == "true"
		}
	}
}

// Info is the build description printed by `stylegen version`.
type Info struct {
	Version         string `json:"version"`
	Commit          string `json:"commit,omitempty"`
	Date            string `json:"date,omitempty"`
	Modified        bool   `json:"modified,omitempty"`
	GoVersion       string `json:"go_version"`
	Platform        string `json:"platform"`
	ProtocolVersion string `json:"protocol_version"`
}

func GetInfo() Info {
	return Info{
		Version:         Version,
		Commit:          Commit,
		Date:            Date,
		Modified:        Modified,
		GoVersion:       runtime.Version(),
		Platform:        runtime.GOOS + "/" + runtime.GOARCH,
		ProtocolVersion: protocol.ProtocolVersion,
	}
}

// String renders the build description on one line. Only the parts that are
// known are included.
func String() string {
	info := GetInfo()

	details := make([]string, 0, 5)
	if info.Commit != "" {
		commit := "commit " + shortCommit(info.Commit)
		if info.Modified {
			commit += "-dirty"
		}
		details = append(details, commit)
	}
	if info.Date != "" {
		details = append(details, "built "+info.Date)
	}
	details = append(details, "protocol "+info.ProtocolVersion, info.GoVersion, info.Platform)

	return fmt.Sprintf("stylegen %s (%s)", info.Version, strings.Join(details, ", "))
}

// Short is the bare version, used by --version.
func Short() string {
	return Version
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
