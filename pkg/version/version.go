package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/jonny/interactbot/pkg/version.Version=...".
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = "unknown"
	URL       = "https://github.com/jonny/interactbot"
)

// Revision returns the linked commit, falling back to the VCS revision the
// Go toolchain stamped into the binary.
func Revision() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return "unknown"
}

func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Revision(), BuildTime)
}

// UserAgent is the User-Agent the platform's REST API expects from bots.
func UserAgent() string {
	return fmt.Sprintf("DiscordBot (%s, %s)", URL, Version)
}
