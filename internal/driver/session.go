// Package driver opens sets of tree files and resolves them in batches.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
	"lazyres/internal/observ"
	"lazyres/internal/project"
	"lazyres/internal/resolve"
	"lazyres/internal/source"
	"lazyres/internal/symbols"
	"lazyres/internal/treeio"
)

// Options configure a Session.
type Options struct {
	Jobs           int // 0 means GOMAXPROCS
	MaxDiagnostics int
	Strict         bool
	BaseDir        string
	Cache          *TreeCache
	Observer       observ.Observer
	Progress       ProgressSink
}

// Session is a set of loaded trees with one resolver over all of them.
type Session struct {
	FileSet  *source.FileSet
	Paths    []string
	Files    []*decl.File // Files[i] was loaded from Paths[i]
	Index    *symbols.Index
	Resolver *resolve.Resolver
	Bag      *diag.Bag
	Reporter diag.Reporter

	opts  Options
	metas []project.PackageMeta
}

// Open loads paths in parallel and indexes them. Files that fail to load
// are left out and reported in the session's Bag; only cancellation fails
// Open itself.
func Open(ctx context.Context, paths []string, opts Options) (*Session, error) {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	fs := source.NewFileSetWithBase(opts.BaseDir)
	bag := diag.NewBag(opts.MaxDiagnostics)
	rep := diag.NewSyncReporter(diag.BagReporter{Bag: bag})
	loader := NewLoader(fs, opts.Cache)

	loaded := make([]*decl.File, len(paths))
	for _, p := range paths {
		emit(opts.Progress, Event{File: p, Stage: StageLoad, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(opts.Jobs, len(paths))))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			start := time.Now()
			emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
			f, err := loader.Load(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				reportLoadError(rep, fs, path, err)
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: time.Since(start)})
				return nil
			}
			// индекс i уникален для каждой горутины, мьютекс не нужен
			loaded[i] = f
			emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusDone, Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Session{FileSet: fs, Bag: bag, Reporter: rep, opts: opts}
	idx, _ := symbols.NewIndex()
	for i, f := range loaded {
		if f == nil {
			continue
		}
		if err := idx.Add(f); err != nil {
			diag.ReportError(rep, diag.ProjDuplicateDecl, f.Span, fmt.Sprintf("%s: %v", paths[i], err)).Emit()
		}
		s.Paths = append(s.Paths, paths[i])
		s.Files = append(s.Files, f)
		s.metas = append(s.metas, project.MetaOf(paths[i], f))
	}
	s.Index = idx
	s.Resolver = resolve.New(
		resolve.WithSymbols(idx),
		resolve.WithReporter(rep),
		resolve.WithObserver(opts.Observer),
		resolve.WithStrictChecks(opts.Strict),
	)
	return s, nil
}

func reportLoadError(r diag.Reporter, fs *source.FileSet, path string, err error) {
	var te *treeio.Error
	if errors.As(err, &te) {
		sp := source.Span{File: fs.Add(path)}
		if line, lerr := toSpanPos(te.Line); lerr == nil {
			sp.Line = line
		}
		if col, cerr := toSpanPos(te.Col); cerr == nil {
			sp.Col = col
		}
		diag.ReportError(r, diag.IOBadTreeFile, sp, te.Msg).Emit()
		return
	}
	diag.ReportError(r, diag.IOLoadFileError, source.Span{}, "failed to load file: "+err.Error()).Emit()
}

func toSpanPos(n int) (uint32, error) {
	return safecast.Conv[uint32](n)
}
