package driver

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
	"lazyres/internal/observ"
	"lazyres/internal/phase"
	"lazyres/internal/testkit"
	"lazyres/internal/treeio"
)

func batchPaths(t *testing.T) []string {
	t.Helper()
	paths, err := treeio.Expand([]string{filepath.Join("testdata", "batch")})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	return paths
}

func openBatch(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := Open(context.Background(), batchPaths(t), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Bag.HasErrors() {
		t.Fatalf("Open diagnostics:\n%s", diag.FormatShort(s.Bag.Items(), s.FileSet, true))
	}
	return s
}

func TestOpenIndexesFiles(t *testing.T) {
	s := openBatch(t, Options{Jobs: 2})
	if len(s.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(s.Files))
	}
	if got := s.Find("geo.Point"); len(got) != 1 || got[0].Kind() != decl.KindClass {
		t.Fatalf("Find(geo.Point) = %v", got)
	}
	if got := s.Find("geo.Point.norm"); len(got) != 1 {
		t.Fatalf("Find(geo.Point.norm) = %v", got)
	}
	if got := s.Find("geo.nope"); len(got) != 0 {
		t.Fatalf("Find(geo.nope) = %v", got)
	}
	names := s.Names()
	for _, want := range []string{"app.shift", "app.start", "geo.Point.x", "geo.origin"} {
		found := false
		for _, n := range names {
			found = found || n == want
		}
		if !found {
			t.Fatalf("Names() = %v, missing %s", names, want)
		}
	}
	if f, ok := s.FileOf("geo", ""); !ok || f.Package != "geo" {
		t.Fatalf("FileOf(geo) = %v, %v", f, ok)
	}
}

func TestResolveAllRunsImportedPackagesFirst(t *testing.T) {
	s := openBatch(t, Options{Jobs: 4})
	res, err := s.ResolveAll(context.Background(), phase.BodyResolve)
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if want := [][]string{{"geo"}, {"app"}}; !reflect.DeepEqual(res.Waves, want) {
		t.Fatalf("waves = %v, want %v", res.Waves, want)
	}
	if res.Failed() != 0 {
		t.Fatalf("failed files: %+v", res.Files)
	}
	for _, o := range res.Files {
		if o.MinPhase != phase.BodyResolve {
			t.Fatalf("%s at %s", o.Path, o.MinPhase)
		}
		if o.Targets != len(o.File.Decls)+1 {
			t.Fatalf("%s: targets = %d", o.Path, o.Targets)
		}
		if err := testkit.CheckTreeInvariants(s.FileSet, o.File); err != nil {
			t.Fatalf("%s: %v", o.Path, err)
		}
		if err := testkit.CheckStampInvariants(o.File); err != nil {
			t.Fatalf("%s: %v", o.Path, err)
		}
	}
	start := s.Find("app.start")[0]
	if rt := decl.ReturnTypeOf(start); rt.Resolved != "geo.Point" {
		t.Fatalf("start: %s", rt)
	}
	if s.Bag.HasErrors() {
		t.Fatalf("diagnostics:\n%s", diag.FormatShort(s.Bag.Items(), s.FileSet, true))
	}
}

func TestCachedTreesKeepTheirPhase(t *testing.T) {
	cache := NewTreeCache(4)
	first := openBatch(t, Options{Cache: cache})
	if _, err := first.ResolveAll(context.Background(), phase.BodyResolve); err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	second := openBatch(t, Options{Cache: cache})
	if cache.Len() != 2 {
		t.Fatalf("cache len = %d", cache.Len())
	}
	for i := range first.Files {
		if first.Files[i] != second.Files[i] {
			t.Fatalf("%s parsed twice", first.Paths[i])
		}
	}
	res, err := second.ResolveAll(context.Background(), phase.BodyResolve)
	if err != nil {
		t.Fatalf("second ResolveAll: %v", err)
	}
	if res.Stats.Steps != 0 {
		t.Fatalf("steps = %d, want 0 for already resolved trees", res.Stats.Steps)
	}
}

func TestOpenReportsBadTrees(t *testing.T) {
	paths := []string{
		filepath.Join("testdata", "bad", "bad.yaml"),
		filepath.Join("testdata", "missing.yaml"),
		filepath.Join("testdata", "batch", "geo.yaml"),
	}
	s, err := Open(context.Background(), paths, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(s.Files) != 1 || s.Files[0].Package != "geo" {
		t.Fatalf("files = %v", s.Paths)
	}
	codes := map[diag.Code]diag.Diagnostic{}
	for _, d := range s.Bag.Items() {
		codes[d.Code] = d
	}
	bad, ok := codes[diag.IOBadTreeFile]
	if !ok || bad.Primary.Line != 3 || !strings.Contains(bad.Message, "needs a type") {
		t.Fatalf("bad tree diagnostic = %+v", bad)
	}
	if _, ok := codes[diag.IOLoadFileError]; !ok {
		t.Fatalf("missing file not reported: %v", s.Bag.Items())
	}
}

func TestProgressEvents(t *testing.T) {
	ch := make(chan Event, 64)
	s := openBatch(t, Options{Progress: ChannelSink{Ch: ch}})
	if _, err := s.ResolveAll(context.Background(), phase.Types); err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	close(ch)
	for _, f := range s.Files {
		if err := testkit.CheckStampInvariants(f); err != nil {
			t.Fatal(err)
		}
	}
	done := map[Stage]int{}
	waves := 0
	for ev := range ch {
		if ev.File == "" {
			waves++
			continue
		}
		if ev.Status == StatusDone {
			done[ev.Stage]++
		}
	}
	if done[StageLoad] != 2 || done[StageResolve] != 2 || waves != 2 {
		t.Fatalf("done = %v, waves = %d", done, waves)
	}
}

func TestResolveAllStopsWhenCancelled(t *testing.T) {
	s := openBatch(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ResolveAll(ctx, phase.BodyResolve)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := Open(ctx, batchPaths(t), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Open err = %v, want context.Canceled", err)
	}
}

func TestAppendTimings(t *testing.T) {
	totals := observ.NewTotals()
	s := openBatch(t, Options{Observer: observ.TotalsObserver(totals)})
	if _, err := s.ResolveAll(context.Background(), phase.Contracts); err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevInfo, diag.ObsInfo, s.Files[0].Span, "filler"))
	AppendTimings(bag, "resolve-all", totals.Report())
	if bag.Len() != 2 {
		t.Fatalf("bag len = %d, want overflow merge", bag.Len())
	}
	d := bag.Items()[1]
	if d.Code != diag.ObsTimings || len(d.Notes) != 1 || !strings.Contains(d.Notes[0].Msg, `"phases"`) {
		t.Fatalf("timing diagnostic = %+v", d)
	}
}
