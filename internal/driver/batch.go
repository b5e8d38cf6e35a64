package driver

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"lazyres/internal/decl"
	"lazyres/internal/phase"
	"lazyres/internal/project/dag"
	"lazyres/internal/resolve"
	"lazyres/internal/trace"
)

// FileOutcome is what ResolveAll did with one file.
type FileOutcome struct {
	Path     string
	File     *decl.File
	Wave     int
	Targets  int
	Err      error // first failure; the remaining targets still ran
	Elapsed  time.Duration
	MinPhase phase.Phase
}

// BatchResult collects the outcomes of ResolveAll in session file order.
type BatchResult struct {
	Files []FileOutcome
	Waves [][]string // package names per wave
	Stats resolve.Stats
}

// Failed reports how many files had a failing target.
func (r BatchResult) Failed() int {
	n := 0
	for _, o := range r.Files {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// ResolveAll brings every file of the session and every top-level
// declaration in it to phase to. Packages are processed in waves so that
// imported packages are resolved before their importers; files of one wave
// run in parallel. Only cancellation stops the batch early.
func (s *Session) ResolveAll(ctx context.Context, to phase.Phase, opts ...resolve.RequestOption) (BatchResult, error) {
	idx := dag.BuildIndex(s.metas)
	topo := dag.ToposortKahn(dag.BuildGraph(idx, s.metas))
	dag.ReportCycles(idx, s.metas, topo, s.Reporter)

	res := BatchResult{Files: make([]FileOutcome, len(s.Files))}
	byPackage := make(map[string][]int, len(idx.IDToName))
	for i, f := range s.Files {
		byPackage[f.Package] = append(byPackage[f.Package], i)
		res.Files[i] = FileOutcome{Path: s.Paths[i], File: f}
		emit(s.opts.Progress, Event{File: s.Paths[i], Stage: StageResolve, Status: StatusQueued})
	}

	ctx, batchSpan := trace.Start(ctx, trace.ScopeDriver, "resolve-all")
	batchSpan.WithExtra("to", to.String())
	defer batchSpan.End("")

	for wave, ids := range topo.Schedule() {
		names := make([]string, 0, len(ids))
		var files []int
		for _, id := range ids {
			name := idx.IDToName[int(id)]
			names = append(names, name)
			files = append(files, byPackage[name]...)
		}
		res.Waves = append(res.Waves, names)
		emit(s.opts.Progress, Event{Stage: StageResolve, Status: StatusWorking, Wave: wave + 1})

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(1, min(s.opts.Jobs, len(files))))
		for _, i := range files {
			i := i
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				// индекс i уникален для каждой горутины
				out := &res.Files[i]
				out.Wave = wave + 1
				return s.resolveFile(gctx, out, to, opts)
			})
		}
		if err := g.Wait(); err != nil {
			res.Stats = s.Resolver.Stats()
			return res, err
		}
	}
	res.Stats = s.Resolver.Stats()
	return res, nil
}

func (s *Session) resolveFile(ctx context.Context, out *FileOutcome, to phase.Phase, opts []resolve.RequestOption) error {
	start := time.Now()
	emit(s.opts.Progress, Event{File: out.Path, Stage: StageResolve, Status: StatusWorking, Wave: out.Wave})
	targets := append([]decl.Decl{out.File}, out.File.Decls...)
	for _, d := range targets {
		err := s.Resolver.Resolve(ctx, d, to, opts...)
		out.Targets++
		if err == nil {
			continue
		}
		if resolve.IsCancelled(err) || errors.Is(err, context.Canceled) {
			out.Elapsed = time.Since(start)
			emit(s.opts.Progress, Event{File: out.Path, Stage: StageResolve, Status: StatusError, Wave: out.Wave, Err: err, Elapsed: out.Elapsed})
			return err
		}
		if out.Err == nil {
			out.Err = err
		}
	}
	out.Elapsed = time.Since(start)
	out.MinPhase = minPhase(out.File)
	status := StatusDone
	if out.Err != nil {
		status = StatusError
	}
	emit(s.opts.Progress, Event{File: out.Path, Stage: StageResolve, Status: status, Wave: out.Wave, Err: out.Err, Elapsed: out.Elapsed})
	return nil
}

// minPhase is the lowest phase over the file's top-level declarations;
// the file itself never goes past the last non-lazy phase.
func minPhase(f *decl.File) phase.Phase {
	p := phase.Last
	for _, d := range f.Decls {
		p = phase.Min(p, resolve.PhaseWithSubDeclarations(d))
	}
	if len(f.Decls) == 0 {
		return f.Phase()
	}
	return p
}
