package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lazyres/internal/prof"
)

// setupProfiling starts the profilers named by the persistent flags. The
// cleanup is safe to call multiple times.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	var cfg prof.Config
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"cpu-profile", &cfg.CPU},
		{"mem-profile", &cfg.Heap},
		{"mutex-profile", &cfg.Mutex},
		{"block-profile", &cfg.Block},
		{"runtime-trace", &cfg.Trace},
	} {
		v, err := flags.GetString(f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = v
	}
	if !cfg.Enabled() {
		return func() {}, nil
	}
	session, err := prof.Start(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start profiling: %w", err)
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
