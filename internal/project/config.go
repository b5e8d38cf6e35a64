// Package project loads lazyres.toml, the per-project resolver settings.
package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"lazyres/internal/phase"
	"lazyres/internal/trace"
)

// Config mirrors lazyres.toml. Both tables are optional.
type Config struct {
	Path    string        `toml:"-"`
	Resolve ResolveConfig `toml:"resolve"`
	Trace   TraceConfig   `toml:"trace"`
}

type ResolveConfig struct {
	Phase          string `toml:"phase"`
	Cancellable    bool   `toml:"cancellable"`
	Strict         bool   `toml:"strict"`
	Jobs           int    `toml:"jobs"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type TraceConfig struct {
	Level     string   `toml:"level"`
	Mode      string   `toml:"mode"`
	Output    string   `toml:"output"`
	RingSize  int      `toml:"ring_size"`
	Heartbeat Duration `toml:"heartbeat"`
}

// Duration decodes "250ms"-style TOML strings.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the settings used when no lazyres.toml is found.
func Default() Config {
	return Config{
		Resolve: ResolveConfig{
			Phase:          phase.BodyResolve.String(),
			Cancellable:    true,
			MaxDiagnostics: 100,
		},
		Trace: TraceConfig{
			Level:    trace.LevelOff.String(),
			Mode:     trace.ModeStream.String(),
			RingSize: 4096,
		},
	}
}

// TargetPhase parses [resolve].phase.
func (c Config) TargetPhase() (phase.Phase, error) {
	return phase.Parse(c.Resolve.Phase)
}

// LoadConfig decodes path over Default. Keys that are present are
// validated; absent keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Path = path
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("resolve", "phase") {
		if _, err := cfg.TargetPhase(); err != nil {
			return Config{}, fmt.Errorf("%s: [resolve].phase: %w", path, err)
		}
	}
	if meta.IsDefined("resolve", "jobs") && cfg.Resolve.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [resolve].jobs must not be negative", path)
	}
	if meta.IsDefined("resolve", "max_diagnostics") && cfg.Resolve.MaxDiagnostics <= 0 {
		return Config{}, fmt.Errorf("%s: [resolve].max_diagnostics must be positive", path)
	}
	if meta.IsDefined("trace", "level") {
		if _, err := trace.ParseLevel(cfg.Trace.Level); err != nil {
			return Config{}, fmt.Errorf("%s: [trace].level: %w", path, err)
		}
	}
	if meta.IsDefined("trace", "mode") {
		if _, err := trace.ParseMode(cfg.Trace.Mode); err != nil {
			return Config{}, fmt.Errorf("%s: [trace].mode: %w", path, err)
		}
	}
	if meta.IsDefined("trace", "ring_size") && cfg.Trace.RingSize <= 0 {
		return Config{}, fmt.Errorf("%s: [trace].ring_size must be positive", path)
	}
	return cfg, nil
}

// Discover finds lazyres.toml above startDir and loads it. Without one it
// returns Default and ok=false.
func Discover(startDir string) (cfg Config, ok bool, err error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, false, err
	}
	if !ok {
		return Default(), false, nil
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		return Config{}, true, err
	}
	return cfg, true, nil
}
