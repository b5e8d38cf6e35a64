package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lazyres/internal/phase"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[resolve]
phase = "Types"
strict = true
jobs = 3

[trace]
level = "phase"
heartbeat = "250ms"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	p, err := cfg.TargetPhase()
	if err != nil || p != phase.Types {
		t.Fatalf("TargetPhase = %v, %v", p, err)
	}
	if !cfg.Resolve.Strict || cfg.Resolve.Jobs != 3 {
		t.Fatalf("resolve = %+v", cfg.Resolve)
	}
	// untouched keys keep defaults
	if !cfg.Resolve.Cancellable || cfg.Resolve.MaxDiagnostics != 100 || cfg.Trace.RingSize != 4096 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Trace.Heartbeat.Duration != 250*time.Millisecond {
		t.Fatalf("heartbeat = %v", cfg.Trace.Heartbeat)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"phase", "[resolve]\nphase = \"Later\"\n", "[resolve].phase"},
		{"jobs", "[resolve]\njobs = -1\n", "jobs"},
		{"level", "[trace]\nlevel = \"loud\"\n", "[trace].level"},
		{"mode", "[trace]\nmode = \"tape\"\n", "[trace].mode"},
		{"ring", "[trace]\nring_size = 0\n", "ring_size"},
		{"unknown", "[resolve]\nfast = true\n", "unknown key resolve.fast"},
		{"syntax", "[resolve\n", "failed to parse TOML"},
		{"duration", "[trace]\nheartbeat = \"soon\"\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[resolve]\nstrict = true\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, ok, err := Discover(nested)
	if err != nil || !ok {
		t.Fatalf("Discover = %v, %v", ok, err)
	}
	if !cfg.Resolve.Strict || cfg.Root() != root {
		t.Fatalf("cfg = %+v, root %q", cfg, cfg.Root())
	}
	if Default().Root() != "" {
		t.Fatalf("defaults have a root")
	}
}

func TestDiscoverWithoutConfig(t *testing.T) {
	cfg, ok, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if ok {
		// a lazyres.toml above the temp dir would make this test meaningless
		t.Skip("found a config above the temp dir")
	}
	if cfg.Resolve.Phase != phase.BodyResolve.String() {
		t.Fatalf("default phase = %q", cfg.Resolve.Phase)
	}
}

func TestDigest(t *testing.T) {
	a := HashContent([]byte("package: a\n"))
	b := HashContent([]byte("package: b\n"))
	if a == b {
		t.Fatalf("different content, same digest")
	}
	if Combine(a, b) == Combine(b, a) {
		t.Fatalf("Combine must depend on order")
	}
	if len(a.String()) != 16 {
		t.Fatalf("short digest = %q", a.String())
	}
}
