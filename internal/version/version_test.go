package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()

	for _, key := range []string{"name", "version", "build_time", "git_commit"} {
		if _, ok := info[key]; !ok {
			t.Errorf("expected %s in version info", key)
		}
	}
	if info["version"] != Version {
		t.Errorf("expected version %q, got %q", Version, info["version"])
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "pixi-server "+Version) {
		t.Errorf("unexpected version string %q", s)
	}
	if !strings.Contains(s, GitCommit) {
		t.Errorf("expected git commit in %q", s)
	}
}
