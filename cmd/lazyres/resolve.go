package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"lazyres/internal/decl"
	"lazyres/internal/designation"
	"lazyres/internal/diag"
	"lazyres/internal/diagfmt"
	"lazyres/internal/driver"
	"lazyres/internal/observ"
	"lazyres/internal/phase"
	"lazyres/internal/resolve"
	"lazyres/internal/treeio"
	"lazyres/internal/version"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] <tree.yaml|directory>...",
	Short: "Resolve selected declarations to a phase",
	Long: `Load declaration trees and lazily resolve the declarations named by --decl
(qualified names; every top-level declaration when omitted) to --phase.
Only the named declarations and the containers on their path are touched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringSlice("decl", nil, "qualified declaration name to resolve (repeatable)")
	resolveCmd.Flags().String("phase", "", "target phase (default: [resolve].phase or BodyResolve)")
	resolveCmd.Flags().Duration("timeout", 0, "cancel resolution after this long (0 disables)")
	resolveCmd.Flags().Bool("show-path", false, "print the container path of every target")
	resolveCmd.Flags().Bool("strict", false, "check designation consistency after every step")
}

type resolvedRow struct {
	name  string
	kind  string
	stamp phase.Phase
	deep  phase.Phase
	path  string
	err   error
}

func runResolve(cmd *cobra.Command, args []string) error {
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
	names, err := cmd.Flags().GetStringSlice("decl")
	if err != nil {
		return fmt.Errorf("failed to get decl flag: %w", err)
	}
	showPath, _ := cmd.Flags().GetBool("show-path")

	ctx, stop, err := resolveContext(cmd)
	if err != nil {
		return err
	}
	defer stop()

	paths, err := treeio.Expand(args)
	if err != nil {
		return err
	}
	totals := observ.NewTotals()
	s, err := driver.Open(ctx, paths, sessionOptions(cmd, totals))
	if err != nil {
		return err
	}
	watchSession(s)

	targets, err := pickTargets(s, names)
	if err != nil {
		return err
	}

	reqOpts := requestOptions()
	start := time.Now()
	rows := make([]resolvedRow, 0, len(targets))
	for _, d := range targets {
		err := s.Resolver.Resolve(ctx, d, to, reqOpts...)
		if err != nil && resolve.IsCancelled(err) {
			return fmt.Errorf("resolution cancelled: %w", err)
		}
		row := resolvedRow{
			name:  decl.QualifiedName(d),
			kind:  d.Kind().String(),
			stamp: d.Head().Phase(),
			deep:  resolve.PhaseWithSubDeclarations(d),
			err:   err,
		}
		if f, ok := d.(*decl.File); ok && row.name == "" {
			row.name = "<file " + f.Package + ">"
		}
		if showPath {
			if des, derr := designation.Collect(d); derr == nil {
				row.path = des.String()
			}
		}
		rows = append(rows, row)
	}

	if !quiet(cmd) {
		writeResolvedTable(cmd.OutOrStdout(), rows, to)
	}
	return finish(cmd, s, totals, "resolve", time.Since(start))
}

// pickTargets maps --decl names to declarations. Without names every file
// and top-level declaration is a target.
func pickTargets(s *driver.Session, names []string) ([]decl.Decl, error) {
	if len(names) == 0 {
		var out []decl.Decl
		for _, f := range s.Files {
			out = append(out, f)
			out = append(out, f.Decls...)
		}
		return out, nil
	}
	var out []decl.Decl
	var missing []error
	for _, name := range names {
		found := s.Find(name)
		if len(found) == 0 {
			missing = append(missing, fmt.Errorf("no declaration named %q", name))
			continue
		}
		out = append(out, found...)
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return out, nil
}

func targetPhase(cmd *cobra.Command) (phase.Phase, error) {
	raw, err := cmd.Flags().GetString("phase")
	if err != nil {
		return 0, fmt.Errorf("failed to get phase flag: %w", err)
	}
	if raw == "" {
		return cliConfig.TargetPhase()
	}
	return phase.Parse(raw)
}

// resolveContext cancels on SIGINT and, with --timeout, after the deadline.
func resolveContext(cmd *cobra.Command) (context.Context, context.CancelFunc, error) {
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get timeout flag: %w", err)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop, nil
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() { cancel(); stop() }, nil
}

func sessionOptions(cmd *cobra.Command, totals *observ.Totals) driver.Options {
	strict := cliConfig.Resolve.Strict
	if cmd.Flags().Changed("strict") {
		strict, _ = cmd.Flags().GetBool("strict")
	}
	opts := driver.Options{
		Jobs:           cliConfig.Resolve.Jobs,
		MaxDiagnostics: cliConfig.Resolve.MaxDiagnostics,
		Strict:         strict,
		BaseDir:        cliConfig.Root(),
	}
	if showTimings(cmd) {
		opts.Observer = observ.TotalsObserver(totals)
	}
	return opts
}

func requestOptions() []resolve.RequestOption {
	if cliConfig.Resolve.Cancellable {
		return []resolve.RequestOption{resolve.Cancellable()}
	}
	return nil
}

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	lagColor  = color.New(color.FgYellow)
)

func writeResolvedTable(out io.Writer, rows []resolvedRow, to phase.Phase) {
	nameW, kindW, stampW := 4, 4, 5
	for _, r := range rows {
		nameW = max(nameW, runewidth.StringWidth(r.name))
		kindW = max(kindW, runewidth.StringWidth(r.kind))
		stampW = max(stampW, len(r.stamp.String()))
	}
	fmt.Fprintf(out, "%s  %s  %s  %s\n",
		runewidth.FillRight("NAME", nameW), runewidth.FillRight("KIND", kindW),
		runewidth.FillRight("PHASE", stampW), "DEEP")
	for _, r := range rows {
		deep := r.deep.String()
		switch {
		case r.err != nil:
			deep = failColor.Sprint("failed")
		case r.deep >= to:
			deep = okColor.Sprint(deep)
		default:
			deep = lagColor.Sprint(deep)
		}
		fmt.Fprintf(out, "%s  %s  %s  %s\n",
			runewidth.FillRight(r.name, nameW), runewidth.FillRight(r.kind, kindW),
			runewidth.FillRight(r.stamp.String(), stampW), deep)
		if r.path != "" {
			fmt.Fprintf(out, "    via %s\n", r.path)
		}
	}
}

// finish prints diagnostics and timings and turns errors into a failing
// exit status.
func finish(cmd *cobra.Command, s *driver.Session, totals *observ.Totals, kind string, elapsed time.Duration) error {
	if showTimings(cmd) {
		report := totals.Report()
		driver.AppendTimings(s.Bag, kind, report)
		if !quiet(cmd) {
			fmt.Fprint(cmd.ErrOrStderr(), report.String())
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %.1f ms\n", kind, toMillis(elapsed))
		}
	}
	s.Bag.Dedup()
	s.Bag.Sort()
	minSev, err := minSeverity(cmd)
	if err != nil {
		return err
	}
	shown := s.Bag.Filter(minSev)
	if err := writeDiagnostics(cmd, shown, s); err != nil {
		return err
	}
	if s.Bag.HasErrors() {
		return fmt.Errorf("%s: errors reported", kind)
	}
	return nil
}

// minSeverity reads --min-severity; --timings lowers the default to info
// so the timing summary shows up.
func minSeverity(cmd *cobra.Command) (diag.Severity, error) {
	flags := cmd.Root().PersistentFlags()
	if !flags.Changed("min-severity") && showTimings(cmd) {
		return diag.SevInfo, nil
	}
	raw, err := flags.GetString("min-severity")
	if err != nil {
		return 0, fmt.Errorf("failed to get min-severity flag: %w", err)
	}
	return diag.ParseSeverity(raw)
}

func writeDiagnostics(cmd *cobra.Command, bag *diag.Bag, s *driver.Session) error {
	format, err := cmd.Root().PersistentFlags().GetString("diag-format")
	if err != nil {
		return fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	out := cmd.ErrOrStderr()
	switch strings.ToLower(format) {
	case "short":
		fmt.Fprint(out, diag.FormatShort(bag.Items(), s.FileSet, true))
	case "pretty":
		diagfmt.Pretty(out, bag, s.FileSet, diagfmt.PrettyOpts{
			Color:     !color.NoColor,
			Context:   2,
			PathMode:  diagfmt.PathModeAuto,
			ShowNotes: true,
		})
	case "json":
		return diagfmt.JSON(out, bag, s.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeAuto,
			IncludeNotes:     true,
		})
	case "sarif":
		return diagfmt.Sarif(out, bag, s.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "lazyres",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	default:
		return fmt.Errorf("unsupported diagnostics format %q (expected short|pretty|json|sarif)", format)
	}
	return nil
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
