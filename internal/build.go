package internal

import (
	"runtime/debug"
	"time"
)

// Build information read from the VCS settings embedded by the Go toolchain.
var (
	BuildRevision      = "unknown"
	BuildRevisionTime  = time.Time{}
	BuildLocalModified = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	readSettings(info.Settings)
}

func readSettings(settings []debug.BuildSetting) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			BuildRevision = setting.Value
		case "vcs.time":
			t, err := time.Parse(time.RFC3339, setting.Value)
			if err != nil {
				continue
			}
			BuildRevisionTime = t
		case "vcs.modified":
			BuildLocalModified = setting.Value
		}
	}
}

// AppVersion identifies the running build, it is stored with every
// migration. Builds with local modifications get a "-dirty" suffix.
func AppVersion() string {
	if BuildLocalModified == "true" {
		return BuildRevision + "-dirty"
	}
	return BuildRevision
}
