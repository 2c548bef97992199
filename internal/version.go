package internal

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
)

// Name used for binaries, config directories, and log grouping.
const Name = "kvsship"

// String to indicate a local (non-pipeline) build.
const defaultLocalBuild = "(local)"

var (
	version   = "" // Version number (e.g., "1.2.3").
	gitCommit = "" // Git commit hash (e.g., "a1b2c3d4").

	rawQuiet = "false" // Whether quiet mode is on by default.
	rawDebug = "false" // Whether debug mode is on by default.
)

var (
	quietMode atomic.Bool // Suppresses informational output.
	debugMode atomic.Bool // Enables debug logging.
)

// Parses the linker flags into usable runtime variables.
//
// version, gitCommit, rawQuiet, and rawDebug should be set via ldflags during
// the build process. Unset booleans default to "false".
func init() {
	if v, err := strconv.ParseBool(rawQuiet); err == nil {
		quietMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawDebug); err == nil {
		debugMode.Store(v)
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) {
	quietMode.Store(enabled)
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Enables or disables debug mode.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Returns true if this is a local (non-pipeline) build.
//
// A build is considered local if the version or git commit variable is unset.
// Pipeline builds should set both via linker flags.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" || strings.TrimSpace(gitCommit) == ""
}

// Returns a detailed version string.
//
// If this is a local build, returns "(local)". Otherwise, returns a string
// formatted as "<version> <git-commit> [<arch>]". A "v" prefix on the version
// is stripped.
func VersionString() string {
	if IsLocal() {
		return defaultLocalBuild
	}

	v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(version)), "v")
	return fmt.Sprintf("%s %s [%s]", v, strings.TrimSpace(gitCommit), runtime.GOARCH)
}
