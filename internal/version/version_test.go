package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestCurrentReflectsOverrides(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	info := Current()
	if info.Version != "1.2.3" || info.GitCommit != "abc123def456" || info.BuildDate != "2024-01-15T10:30:00Z" {
		t.Fatalf("Current() = %+v", info)
	}
}

func TestPrettyWithoutColor(t *testing.T) {
	origNoColor, origVersion := color.NoColor, Version
	t.Cleanup(func() {
		color.NoColor, Version = origNoColor, origVersion
	})
	color.NoColor = true

	tests := []struct {
		in, want string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"2.0.1", "2.0.1"},
		{"1.4.0+meta", "1.4.0+meta"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Pretty(); got != tt.want {
			t.Fatalf("Pretty() with %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}
