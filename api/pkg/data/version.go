package data

import (
	"runtime/debug"
)

// Version is set by the build process
var Version string

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return versionFromBuildInfo(debug.ReadBuildInfo())
}

func versionFromBuildInfo(info *debug.BuildInfo, ok bool) string {
	version := "<unknown>"
	if !ok {
		return version
	}
	modified := false
	for _, kv := range info.Settings {
		if kv.Value == "" {
			continue
		}
		switch kv.Key {
		case "vcs.revision":
			version = kv.Value
		case "vcs.modified":
			modified = kv.Value == "true"
		}
	}
	if modified && version != "<unknown>" {
		version += "-dirty"
	}
	return version
}
