package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lazyres/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "lazyres",
	Short: "Lazy declaration resolver",
	Long: `lazyres loads declaration trees and brings declarations to a resolve phase
on demand, one designated declaration at a time`,
	SilenceUsage:      true,
	PersistentPreRunE: applyGlobalFlags,
}

// main registers subcommands and persistent flags and executes the root
// command. Any returned error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(resolveAllCmd)
	rootCmd.AddCommand(phasesCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("config", "", "path to lazyres.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("diag-format", "pretty", "diagnostics format (short|pretty|json|sarif)")
	rootCmd.PersistentFlags().String("min-severity", "warning", "hide diagnostics below this severity (info|warning|error)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("trace", "", "write a resolver trace to this file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|request|phase|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept by the ring tracer")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")

	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("mutex-profile", "", "write a mutex contention profile to this file on exit")
	rootCmd.PersistentFlags().String("block-profile", "", "write a blocking profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
