package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lazyres/internal/project"
)

// cliConfig is lazyres.toml merged with explicitly set flags.
var cliConfig = project.Default()

func applyGlobalFlags(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()

	colorMode, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(colorMode) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorMode)
	}

	cfg, err := loadCLIConfig(cmd)
	if err != nil {
		return err
	}
	if flags.Changed("max-diagnostics") {
		n, _ := flags.GetInt("max-diagnostics")
		if n <= 0 {
			return fmt.Errorf("--max-diagnostics must be positive")
		}
		cfg.Resolve.MaxDiagnostics = n
	}
	if flags.Changed("trace") {
		cfg.Trace.Output, _ = flags.GetString("trace")
	}
	if flags.Changed("trace-level") {
		cfg.Trace.Level, _ = flags.GetString("trace-level")
	}
	if flags.Changed("trace-mode") {
		cfg.Trace.Mode, _ = flags.GetString("trace-mode")
	}
	if flags.Changed("trace-ring-size") {
		cfg.Trace.RingSize, _ = flags.GetInt("trace-ring-size")
	}
	if flags.Changed("trace-heartbeat") {
		cfg.Trace.Heartbeat.Duration, _ = flags.GetDuration("trace-heartbeat")
	}
	cliConfig = cfg
	return nil
}

func loadCLIConfig(cmd *cobra.Command) (project.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return project.LoadConfig(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return project.Config{}, err
	}
	cfg, _, err := project.Discover(wd)
	return cfg, err
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}

func showTimings(cmd *cobra.Command) bool {
	t, _ := cmd.Root().PersistentFlags().GetBool("timings")
	return t
}
