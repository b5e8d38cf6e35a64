package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lazyres/internal/driver"
	"lazyres/internal/observ"
	"lazyres/internal/phase"
	"lazyres/internal/resolve"
	"lazyres/internal/treeio"
)

var resolveAllCmd = &cobra.Command{
	Use:   "resolve-all [flags] <tree.yaml|directory>...",
	Short: "Resolve every declaration of a set of trees",
	Long: `Load declaration trees and bring every file and top-level declaration to
--phase. Packages are resolved in import order; files of independent packages
run in parallel.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolveAll,
}

func init() {
	resolveAllCmd.Flags().String("phase", "", "target phase (default: [resolve].phase or BodyResolve)")
	resolveAllCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	resolveAllCmd.Flags().Var(new(progressMode), "ui", "progress UI")
	resolveAllCmd.Flags().String("format", "text", "summary format (text|json)")
	resolveAllCmd.Flags().Duration("timeout", 0, "cancel resolution after this long (0 disables)")
	resolveAllCmd.Flags().Bool("strict", false, "check designation consistency after every step")
}

type fileSummary struct {
	Path      string  `json:"path"`
	Wave      int     `json:"wave"`
	Targets   int     `json:"targets"`
	MinPhase  string  `json:"min_phase"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
}

type batchSummary struct {
	Phase    string        `json:"phase"`
	Waves    [][]string    `json:"waves"`
	Files    []fileSummary `json:"files"`
	Failed   int           `json:"failed"`
	Requests int64         `json:"requests"`
	FastPath int64         `json:"fast_path"`
	Steps    int64         `json:"steps"`
	Retries  int64         `json:"retries"`
}

func runResolveAll(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	to, err := targetPhase(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
	mode, _ := cmd.Flags().Lookup("ui").Value.(*progressMode)

	ctx, stop, err := resolveContext(cmd)
	if err != nil {
		return err
	}
	defer stop()

	paths, err := treeio.Expand(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no tree files found in %s", strings.Join(args, ", "))
	}

	totals := observ.NewTotals()
	opts := sessionOptions(cmd, totals)
	if cmd.Flags().Changed("jobs") {
		opts.Jobs, _ = cmd.Flags().GetInt("jobs")
	}
	reqOpts := requestOptions()

	start := time.Now()
	var (
		s   *driver.Session
		res driver.BatchResult
	)
	if mode != nil && mode.interactive(format, quiet(cmd)) {
		s, res, err = runBatchWithUI(ctx, fmt.Sprintf("resolving to %s", to), paths, opts, to, reqOpts)
	} else {
		s, err = driver.Open(ctx, paths, opts)
		if err == nil {
			watchSession(s)
			res, err = s.ResolveAll(ctx, to, reqOpts...)
		}
	}
	if err != nil {
		if resolve.IsCancelled(err) {
			return fmt.Errorf("resolution cancelled: %w", err)
		}
		return err
	}

	summary := summarize(res, to)
	switch {
	case format == "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	case !quiet(cmd):
		writeBatchSummary(cmd.OutOrStdout(), summary)
	}
	if err := finish(cmd, s, totals, "resolve-all", time.Since(start)); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("resolve-all: %d of %d files failed", summary.Failed, len(summary.Files))
	}
	return nil
}

func summarize(res driver.BatchResult, to phase.Phase) batchSummary {
	out := batchSummary{
		Phase:    to.String(),
		Waves:    res.Waves,
		Failed:   res.Failed(),
		Requests: res.Stats.Requests,
		FastPath: res.Stats.FastPath,
		Steps:    res.Stats.Steps,
		Retries:  res.Stats.Retries,
	}
	for _, f := range res.Files {
		fs := fileSummary{
			Path:      f.Path,
			Wave:      f.Wave,
			Targets:   f.Targets,
			MinPhase:  f.MinPhase.String(),
			ElapsedMS: toMillis(f.Elapsed),
		}
		if f.Err != nil {
			fs.Error = f.Err.Error()
		}
		out.Files = append(out.Files, fs)
	}
	return out
}

func writeBatchSummary(out io.Writer, s batchSummary) {
	for i, wave := range s.Waves {
		fmt.Fprintf(out, "wave %d: %s\n", i+1, strings.Join(displayPackages(wave), " "))
	}
	for _, f := range s.Files {
		status := okColor.Sprint(f.MinPhase)
		if f.Error != "" {
			status = failColor.Sprint("failed")
		}
		fmt.Fprintf(out, "  %s  %s  %.1f ms\n", status, f.Path, f.ElapsedMS)
	}
	fmt.Fprintf(out, "%d files, %d failed; %d requests, %d fast, %d steps, %d retries\n",
		len(s.Files), s.Failed, s.Requests, s.FastPath, s.Steps, s.Retries)
}

func displayPackages(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		if n == "" {
			n = "<root>"
		}
		out[i] = n
	}
	return out
}
