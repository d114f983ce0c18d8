package version

import (
	"strings"
	"testing"
)

func TestColoredPlain(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-rc.1"
	if got := Colored(false); got != "1.2.3-rc.1" {
		t.Fatalf("Colored(false) = %q", got)
	}
	Version = "weird"
	if got := Colored(true); got != "weird" {
		t.Fatalf("non-semver must pass through, got %q", got)
	}
}

func TestColoredEnabled(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "0.1.0"
	got := Colored(true)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected escape sequences, got %q", got)
	}
	if strings.Contains(Colored(false), "\x1b[") {
		t.Fatalf("Colored(false) must stay plain after Colored(true)")
	}
}

func TestInfo(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit, BuildDate = "abc123", ""
	info := Info(false)
	if !strings.HasPrefix(info, "quill "+Version+"\n") {
		t.Fatalf("info:\n%s", info)
	}
	if !strings.Contains(info, "commit: abc123") || strings.Contains(info, "built:") {
		t.Fatalf("info:\n%s", info)
	}
}
