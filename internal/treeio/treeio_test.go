package treeio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lazyres/internal/decl"
	"lazyres/internal/source"
	"lazyres/internal/testkit"
)

func loadFixture(t *testing.T, name string) *decl.File {
	t.Helper()
	f, err := Load(source.NewFileSet(), filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("Load(%s): %v", name, err)
	}
	return f
}

func member(t *testing.T, c *decl.Class, kind decl.Kind, name string) decl.Decl {
	t.Helper()
	for _, m := range c.Members {
		if m.Kind() == kind && m.Head().Name == name {
			return m
		}
	}
	t.Fatalf("%s has no %s %s", c.Name, kind, name)
	return nil
}

func TestLoadShapes(t *testing.T) {
	f := loadFixture(t, "shapes.yaml")
	if f.Package != "geo.shapes" {
		t.Fatalf("package = %q", f.Package)
	}
	if len(f.Imports) != 3 || f.Imports[2].Name() != "L" || f.Imports[1].Path != "geo.util.*" {
		t.Fatalf("imports = %+v", f.Imports)
	}
	if len(f.Annotations) != 1 || f.Annotations[0].Name != "Experimental" {
		t.Fatalf("file annotations = %+v", f.Annotations)
	}
	if len(f.Decls) != 7 {
		t.Fatalf("decls = %d, want 7", len(f.Decls))
	}

	shape := f.Decls[1].(*decl.Class)
	if shape.ClassKind != decl.ClassInterface {
		t.Fatalf("Shape kind = %v", shape.ClassKind)
	}
	name := member(t, shape, decl.KindProperty, "name").(*decl.Property)
	if name.Getter == nil || name.Getter.Body == nil || name.Getter.Body.Result.Kind != decl.ExprLiteral {
		t.Fatalf("getter = %+v", name.Getter)
	}
	area := member(t, shape, decl.KindFunction, "area").(*decl.Function)
	if area.Body != nil || area.ReturnType.Text != "Double" {
		t.Fatalf("abstract area = %+v", area)
	}

	circle := f.Decls[3].(*decl.Class)
	if circle.Modifiers.Modality != decl.Open || len(circle.TypeParams) != 1 || len(circle.TypeParams[0].Bounds) != 1 {
		t.Fatalf("Circle header = %+v", circle)
	}
	ctor, ok := circle.Members[0].(*decl.Constructor)
	if !ok || !ctor.Primary || len(ctor.Params) != 2 || ctor.Params[1].Default == nil {
		t.Fatalf("primary constructor = %+v", circle.Members[0])
	}
	r := member(t, circle, decl.KindProperty, "r").(*decl.Property)
	if r.ReturnType.Text != "Double" || r.Mutable {
		t.Fatalf("val parameter property = %+v", r)
	}
	if _, ok := circle.Members[2].(*decl.AnonymousInitializer); !ok {
		t.Fatalf("member 2 = %T, want init block", circle.Members[2])
	}
	label := member(t, circle, decl.KindProperty, "label").(*decl.Property)
	if !label.Mutable || !label.ReturnType.IsImplicit() || label.Setter == nil || label.Setter.Param.Name != "v" {
		t.Fatalf("label = %+v", label)
	}
	over := circle.Members[4].(*decl.Function)
	if !over.Modifiers.Override || !over.ReturnType.IsImplicit() || over.Body.Result.Kind != decl.ExprCall {
		t.Fatalf("area override = %+v", over)
	}
	describe := member(t, circle, decl.KindFunction, "describe").(*decl.Function)
	if describe.Contract == nil || len(describe.Body.Locals) != 2 {
		t.Fatalf("describe = %+v", describe)
	}
	anon := describe.Body.Locals[1].(*decl.Class)
	if !anon.IsAnonymous() || !decl.IsLocal(anon) {
		t.Fatalf("anonymous object = %+v", anon)
	}
	if decl.Parent(describe.Body.Locals[0]) != decl.Decl(describe) {
		t.Fatalf("locals are not linked to their owner")
	}

	unit := f.Decls[5].(*decl.Function)
	if !unit.ReturnType.IsImplicit() {
		t.Fatalf("block body without type should be inferred, got %s", unit.ReturnType)
	}
	if _, ok := f.Decls[6].(*decl.Field); !ok {
		t.Fatalf("decl 6 = %T", f.Decls[6])
	}
	if sp := circle.Span; sp.Line == 0 || sp.File == source.NoFile {
		t.Fatalf("span = %v", sp)
	}
}

func TestLoadedTreesHoldInvariants(t *testing.T) {
	for _, name := range []string{"shapes.yaml", "nfc.yaml"} {
		fs := source.NewFileSet()
		f, err := Load(fs, filepath.Join("testdata", name))
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if err := testkit.CheckTreeInvariants(fs, f); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := testkit.CheckStampInvariants(f); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

func TestNamesAreNFC(t *testing.T) {
	f := loadFixture(t, "nfc.yaml")
	if f.Package != "caf\u00e9" {
		t.Fatalf("package = %q", f.Package)
	}
	c := f.Decls[0].(*decl.Class)
	if c.Name != "Am\u00e9lie" {
		t.Fatalf("class = %q", c.Name)
	}
	fn := c.Members[0].(*decl.Function)
	if fn.Name != "r\u00e9sum\u00e9" || fn.Body.Result.Value != fn.Name {
		t.Fatalf("function %q calls %q", fn.Name, fn.Body.Result.Value)
	}
}

func TestMalformedTrees(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"two kinds", "package: p\ndecls:\n  - fun: a\n    val: b\n", "two kinds"},
		{"no kind", "package: p\ndecls:\n  - returns: Int\n", "without a kind"},
		{"no package", "decls: []\n", "package is required"},
		{"bad modifier", "package: p\ndecls:\n  - fun: a\n    modifiers: [lazy]\n", "unknown modifier"},
		{"bad expr", "package: p\ndecls:\n  - val: a\n    value: 'f(1'\n", "expected"},
		{"val setter", "package: p\ndecls:\n  - val: a\n    set: {param: v}\n", "cannot have a setter"},
		{"param type", "package: p\ndecls:\n  - fun: a\n    params: [x]\n", "needs a type"},
		{"empty", "", "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(source.NewFileSet(), "t.yaml", []byte(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := Load(source.NewFileSet(), filepath.Join("testdata", "bad_kind.yaml"))
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if te.Line != 4 || !strings.HasSuffix(te.Path, "bad_kind.yaml") {
		t.Fatalf("error at %s:%d", te.Path, te.Line)
	}
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		src  string
		kind decl.ExprKind
		val  string
		args int
	}{
		{"42", decl.ExprLiteral, "42", 0},
		{"-1.5f", decl.ExprLiteral, "-1.5f", 0},
		{`"a, b"`, decl.ExprLiteral, `"a, b"`, 0},
		{"'x'", decl.ExprLiteral, "'x'", 0},
		{"null", decl.ExprLiteral, "null", 0},
		{"a.b.c", decl.ExprRef, "a.b.c", 0},
		{"f()", decl.ExprCall, "f", 0},
		{"g(1, h(x), \"s\")", decl.ExprCall, "g", 3},
	}
	for _, tt := range tests {
		x, err := parseExpr(tt.src)
		if err != nil {
			t.Fatalf("parseExpr(%q): %v", tt.src, err)
		}
		if x.Kind != tt.kind || x.Value != tt.val || len(x.Args) != tt.args {
			t.Fatalf("parseExpr(%q) = %+v", tt.src, x)
		}
	}
	for _, bad := range []string{"", "f(", "a.", "1 2", "(x)"} {
		if _, err := parseExpr(bad); err == nil {
			t.Fatalf("parseExpr(%q) succeeded", bad)
		}
	}
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "skip.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("package: p\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	got, err := Expand([]string{dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(got) != 2 || filepath.Base(got[0]) != "a.yml" || filepath.Base(got[1]) != "b.yaml" {
		t.Fatalf("Expand = %v", got)
	}
}
