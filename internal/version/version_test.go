package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if BuildTime == "" || GitCommit == "" {
		t.Error("build metadata should be initialized")
	}

	got := String()
	if !strings.HasPrefix(got, Version+" ") {
		t.Errorf("String() = %q, want prefix %q", got, Version)
	}
	if !strings.Contains(got, "commit "+GitCommit) {
		t.Errorf("String() = %q is missing the commit", got)
	}
}
