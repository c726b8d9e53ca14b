// Package version holds build information stamped in with -ldflags.
package version

import "fmt"

var (
	// Version is the semantic version (e.g., v1.0.0)
	Version = "dev"

	BuildTime = "unknown"

	GitCommit = "unknown"
)

// Info returns version information as a map
func Info() map[string]string {
	return map[string]string{
		"name":       "pixi-server",
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}
}

// String renders the version for command-line output.
func String() string {
	return fmt.Sprintf("pixi-server %s\nBuild Time: %s\nGit Commit: %s", Version, BuildTime, GitCommit)
}
