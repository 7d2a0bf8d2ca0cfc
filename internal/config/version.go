package config

import (
	"os"
	"runtime/debug"
	"strings"
)

// fallbackVersion is reported when neither APP_VERSION nor build info carry one
const fallbackVersion = "0.1.0"

// GetVersion returns APP_VERSION when set, otherwise the module version and
// VCS revision recorded by the Go toolchain
func GetVersion() string {
	if envVersion := strings.TrimSpace(os.Getenv("APP_VERSION")); envVersion != "" {
		return envVersion
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallbackVersion
	}

	version := info.Main.Version
	if version == "" || version == "(devel)" {
		version = fallbackVersion
	}

	if rev := buildSetting(info, "vcs.revision"); len(rev) >= 7 {
		version += "+" + rev[:7]
	}
	return version
}

func buildSetting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
