package fuzztests

import (
	"context"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"lazyres/internal/decl"
	"lazyres/internal/phase"
	"lazyres/internal/resolve"
	"lazyres/internal/source"
	"lazyres/internal/symbols"
	"lazyres/internal/testkit"
	"lazyres/internal/treeio"
)

const maxFuzzInput = 1 << 16 // 64 KiB

// resolveTimeout is the maximum time allowed for one input. Longer means
// the resolver or the loader is looping.
const resolveTimeout = 5 * time.Second

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

// FuzzLoadTree checks that any input either fails to load or yields a
// linked tree.
func FuzzLoadTree(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file, err := treeio.Parse(fs, "fuzz.yaml", clampInput(input))
		if err != nil {
			return
		}
		if err := testkit.CheckTreeInvariants(fs, file); err != nil {
			t.Fatalf("loaded tree breaks invariants: %v", err)
		}
	})
}

// FuzzResolveTree loads the input and resolves every top-level
// declaration. Resolution may fail but must neither panic nor hang, and
// stamps must stay consistent.
func FuzzResolveTree(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file, err := treeio.Parse(fs, "fuzz.yaml", clampInput(input))
		if err != nil {
			return
		}
		resolveWithTimeout(t, file)
	})
}

// FuzzExpressions embeds arbitrary text as a function body expression.
func FuzzExpressions(f *testing.F) {
	for _, seed := range []string{"", "1", "f(1, 2)", "a.b.c()", `"s"`, "Point(0, 0).x", "((", "f(,)", "1e9", "a..b"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, expr string) {
		tree := map[string]any{
			"package": "p",
			"decls": []any{
				map[string]any{"class": "Point", "primary": []string{"val x: Int"}},
				map[string]any{"fun": "f", "expr": expr},
				map[string]any{"val": "v", "expr": expr},
			},
		}
		data, err := yaml.Marshal(tree)
		if err != nil {
			t.Skip()
		}
		fs := source.NewFileSet()
		file, err := treeio.Parse(fs, "expr.yaml", data)
		if err != nil {
			return
		}
		resolveWithTimeout(t, file)
	})
}

func resolveWithTimeout(t *testing.T, file *decl.File) {
	t.Helper()
	idx, _ := symbols.NewIndex()
	if err := idx.Add(file); err != nil {
		return
	}
	r := resolve.New(resolve.WithSymbols(idx), resolve.WithStrictChecks(true))

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, d := range append([]decl.Decl{file}, file.Decls...) {
			_ = r.Resolve(ctx, d, phase.BodyResolve, resolve.Cancellable())
		}
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("resolution hang detected: took longer than %v", resolveTimeout)
	}
	if err := testkit.CheckStampInvariants(file); err != nil {
		t.Fatalf("stamps after resolution: %v", err)
	}
}
