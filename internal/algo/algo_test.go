package algo

import (
	"context"
	"strings"
	"testing"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
	"lazyres/internal/phase"
	"lazyres/internal/symbols"
)

type fixture struct {
	file   *decl.File
	other  *decl.File
	base   *decl.Class
	box    *decl.Class
	item   *decl.Property
	size   *decl.Function
	label  *decl.Function
	name   *decl.Function
	shape  *decl.Class
	area   *decl.Function
	helper *decl.Class
	env    *Env
	bag    *diag.Bag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{}
	fx.helper = &decl.Class{Header: decl.Header{Name: "Helper"}}
	fx.other = &decl.File{Package: "other", Decls: []decl.Decl{fx.helper}}

	fx.base = &decl.Class{Header: decl.Header{Name: "Base", Modifiers: decl.Modifiers{Modality: decl.Open}}}
	fx.item = &decl.Property{Header: decl.Header{Name: "item"}, ReturnType: decl.Unresolved("T")}
	fx.size = &decl.Function{
		Header:     decl.Header{Name: "size"},
		ReturnType: decl.Implicit(),
		Body:       &decl.Body{Result: &decl.Expr{Kind: decl.ExprLiteral, Value: "42"}},
	}
	fx.label = &decl.Function{
		Header:     decl.Header{Name: "label"},
		ReturnType: decl.Implicit(),
		Body:       &decl.Body{Result: &decl.Expr{Kind: decl.ExprCall, Value: "name"}},
	}
	fx.box = &decl.Class{
		Header:     decl.Header{Name: "Box"},
		TypeParams: []*decl.TypeParameter{{Header: decl.Header{Name: "T"}}},
		SuperTypes: []*decl.TypeRef{decl.Unresolved("Base")},
		Members:    []decl.Decl{fx.item, fx.size, fx.label},
	}
	fx.name = &decl.Function{
		Header:     decl.Header{Name: "name"},
		ReturnType: decl.Implicit(),
		Body:       &decl.Body{Result: &decl.Expr{Kind: decl.ExprLiteral, Value: `"box"`}},
	}
	fx.area = &decl.Function{Header: decl.Header{Name: "area"}, ReturnType: decl.Unresolved("Double")}
	fx.shape = &decl.Class{Header: decl.Header{Name: "Shape"}, ClassKind: decl.ClassInterface, Members: []decl.Decl{fx.area}}
	fx.file = &decl.File{
		Package: "demo",
		Imports: []*decl.Import{{Path: "other.Helper"}, {Path: "missing.Thing"}, {Path: "other.*"}},
		Decls:   []decl.Decl{fx.base, fx.box, fx.name, fx.shape},
	}
	decl.Link(fx.file)
	decl.Link(fx.other)
	idx, err := symbols.NewIndex(fx.file, fx.other)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	fx.bag = diag.NewBag(100)
	set := Default()
	fx.env = &Env{
		Symbols:     idx,
		Scopes:      NewScopeSession(),
		Computation: NewComputationSession(),
		Reporter:    diag.BagReporter{Bag: fx.bag},
	}
	fx.env.ReturnTypes = ReturnTypeFunc(func(ctx context.Context, d decl.Decl) error {
		if err := set.Types.Apply(ctx, fx.env, d); err != nil {
			return err
		}
		return set.ImplicitTypes.Apply(ctx, fx.env, d)
	})
	return fx
}

func (fx *fixture) codes() []diag.Code {
	var out []diag.Code
	for _, d := range fx.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestImports(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	if err := Default().Imports.ApplyFile(ctx, fx.env, fx.file); err != nil {
		t.Fatalf("imports: %v", err)
	}
	if imp := fx.file.Imports[0]; imp.State != decl.RefResolved || imp.Target != fx.helper {
		t.Fatalf("other.Helper: state %v target %v", imp.State, imp.Target)
	}
	if imp := fx.file.Imports[1]; imp.State != decl.RefError {
		t.Fatalf("missing.Thing state = %v, want error", imp.State)
	}
	if imp := fx.file.Imports[2]; imp.State != decl.RefResolved {
		t.Fatalf("other.* state = %v, want resolved", imp.State)
	}
	if got := fx.codes(); len(got) != 1 || got[0] != diag.SemaUnresolvedImport {
		t.Fatalf("diagnostics = %v, want one unresolved import", got)
	}
	// second run is a no-op
	if err := Default().Imports.ApplyFile(ctx, fx.env, fx.file); err != nil {
		t.Fatalf("imports: %v", err)
	}
	if fx.bag.Len() != 1 {
		t.Fatalf("second run reported again: %d diagnostics", fx.bag.Len())
	}
}

func TestSuperTypesAndTypes(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	set := Default()
	if err := set.SuperTypes.Apply(ctx, fx.env, fx.box); err != nil {
		t.Fatalf("supertypes: %v", err)
	}
	if st := fx.box.SuperTypes[0]; st.Target != fx.base || st.Resolved != "demo.Base" {
		t.Fatalf("supertype = %v", st)
	}
	if err := set.Types.Apply(ctx, fx.env, fx.item); err != nil {
		t.Fatalf("types: %v", err)
	}
	if rt := fx.item.ReturnType; rt.State != decl.RefResolved || rt.Target != fx.box.TypeParams[0] {
		t.Fatalf("item type = %v, want type parameter T", rt)
	}
	if !fx.size.ReturnType.IsImplicit() {
		t.Fatalf("types must not touch an implicit return type")
	}
}

func TestSuperTypeCycle(t *testing.T) {
	a := &decl.Class{Header: decl.Header{Name: "A"}, SuperTypes: []*decl.TypeRef{decl.Unresolved("B")}}
	b := &decl.Class{Header: decl.Header{Name: "B"}, SuperTypes: []*decl.TypeRef{decl.Unresolved("A")}}
	f := &decl.File{Package: "cyc", Decls: []decl.Decl{a, b}}
	decl.Link(f)
	idx, _ := symbols.NewIndex(f)
	bag := diag.NewBag(10)
	env := &Env{Symbols: idx, Reporter: diag.BagReporter{Bag: bag}}
	ctx := context.Background()
	_ = resolveSuperTypes(ctx, env, a)
	_ = resolveSuperTypes(ctx, env, b)
	if a.SuperTypes[0].State != decl.RefResolved {
		t.Fatalf("A : B should resolve, got %v", a.SuperTypes[0])
	}
	if b.SuperTypes[0].State != decl.RefError {
		t.Fatalf("B : A closes a cycle, got %v", b.SuperTypes[0])
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SemaBadSupertype {
		t.Fatalf("expected one bad supertype diagnostic, got %v", bag.Items())
	}
}

func TestTypeAliasCycle(t *testing.T) {
	a := &decl.TypeAlias{Header: decl.Header{Name: "A"}, Expanded: decl.Unresolved("B")}
	b := &decl.TypeAlias{Header: decl.Header{Name: "B"}, Expanded: decl.Unresolved("A")}
	f := &decl.File{Package: "cyc", Decls: []decl.Decl{a, b}}
	decl.Link(f)
	idx, _ := symbols.NewIndex(f)
	env := &Env{Symbols: idx}
	ctx := context.Background()
	_ = resolveSuperTypes(ctx, env, a)
	_ = resolveSuperTypes(ctx, env, b)
	if b.Expanded.State != decl.RefError {
		t.Fatalf("B expands through A back to B, got %v", b.Expanded)
	}
}

func TestParseTypeText(t *testing.T) {
	tests := []struct {
		in       string
		name     string
		args     int
		nullable bool
		function bool
		bad      bool
	}{
		{in: "Int", name: "Int"},
		{in: "List<Int>?", name: "List", args: 1, nullable: true},
		{in: "Map<String, List<Int>>", name: "Map", args: 2},
		{in: "(Int) -> String", function: true},
		{in: "((Int) -> Unit)?", function: true, nullable: true},
		{in: "demo.Box<*>", name: "demo.Box", args: 1},
		{in: "List<", bad: true},
		{in: "", bad: true},
		{in: "1Bad", bad: true},
	}
	for _, tt := range tests {
		got, err := parseTypeText(tt.in)
		if tt.bad {
			if err == nil {
				t.Errorf("parseTypeText(%q) accepted", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTypeText(%q): %v", tt.in, err)
			continue
		}
		if got.name != tt.name || len(got.args) != tt.args || got.nullable != tt.nullable || got.function != tt.function {
			t.Errorf("parseTypeText(%q) = %+v", tt.in, got)
		}
	}
}

func TestStatusDefaults(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	for _, d := range []decl.Decl{fx.base, fx.box, fx.shape, fx.area, fx.size} {
		if err := resolveStatus(ctx, fx.env, d); err != nil {
			t.Fatalf("status: %v", err)
		}
	}
	tests := []struct {
		name string
		got  decl.Status
		want decl.Modality
	}{
		{"Base", fx.base.Status, decl.Open},
		{"Box", fx.box.Status, decl.Final},
		{"Shape", fx.shape.Status, decl.Abstract},
		{"Shape.area", fx.area.Status, decl.Abstract},
		{"Box.size", fx.size.Status, decl.Final},
	}
	for _, tt := range tests {
		if !tt.got.Resolved || tt.got.Modality != tt.want || tt.got.Visibility != decl.Public {
			t.Errorf("%s status = %+v, want public %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestContracts(t *testing.T) {
	fn := &decl.Function{
		Header: decl.Header{Name: "check"},
		Params: []*decl.ValueParameter{{Header: decl.Header{Name: "value"}}, {Header: decl.Header{Name: "block"}}},
		Contract: &decl.Contract{Source: []string{
			"returns(true) implies (value != null)",
			"returnsNotNull()",
			"callsInPlace(block, InvocationKind.EXACTLY_ONCE)",
			"callsInPlace(missing)",
			"returns(42)",
			"explode()",
		}},
	}
	f := &decl.File{Package: "c", Decls: []decl.Decl{fn}}
	decl.Link(f)
	bag := diag.NewBag(10)
	env := &Env{Reporter: diag.BagReporter{Bag: bag}}
	if err := resolveContracts(context.Background(), env, fn); err != nil {
		t.Fatalf("contracts: %v", err)
	}
	want := []decl.EffectKind{
		decl.EffectReturns, decl.EffectReturnsNotNull, decl.EffectCallsInPlace,
		decl.EffectInvalid, decl.EffectInvalid, decl.EffectInvalid,
	}
	if len(fn.Contract.Effects) != len(want) {
		t.Fatalf("effects = %d, want %d", len(fn.Contract.Effects), len(want))
	}
	for i, w := range want {
		if got := fn.Contract.Effects[i].Kind; got != w {
			t.Errorf("effect %d = %v, want %v", i, got, w)
		}
	}
	if e := fn.Contract.Effects[2]; e.Target != "block" || e.Invocation != "EXACTLY_ONCE" {
		t.Errorf("callsInPlace = %+v", e)
	}
	if e := fn.Contract.Effects[0]; e.Value != "true" || e.Condition != "value != null" {
		t.Errorf("returns = %+v", e)
	}
	if bag.Len() != 3 {
		t.Fatalf("diagnostics = %d, want 3", bag.Len())
	}
	if !fn.Contract.Resolved {
		t.Fatalf("contract not marked resolved")
	}
}

func TestImplicitTypes(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	if err := resolveImplicitTypes(ctx, fx.env, fx.size); err != nil {
		t.Fatalf("implicit: %v", err)
	}
	if got := fx.size.ReturnType.String(); got != "kotlin.Int" {
		t.Fatalf("size() = %s, want kotlin.Int", got)
	}
	if err := resolveImplicitTypes(ctx, fx.env, fx.label); err != nil {
		t.Fatalf("implicit: %v", err)
	}
	if got := fx.label.ReturnType.String(); got != "kotlin.String" {
		t.Fatalf("label() = %s, want kotlin.String through name()", got)
	}
	if got := fx.name.ReturnType.String(); got != "kotlin.String" {
		t.Fatalf("name() = %s, want it resolved on demand", got)
	}
}

func TestImplicitTypeCycle(t *testing.T) {
	f1 := &decl.Function{Header: decl.Header{Name: "f"}, ReturnType: decl.Implicit(),
		Body: &decl.Body{Result: &decl.Expr{Kind: decl.ExprCall, Value: "g"}}}
	g1 := &decl.Function{Header: decl.Header{Name: "g"}, ReturnType: decl.Implicit(),
		Body: &decl.Body{Result: &decl.Expr{Kind: decl.ExprCall, Value: "f"}}}
	file := &decl.File{Package: "cyc", Decls: []decl.Decl{f1, g1}}
	decl.Link(file)
	idx, _ := symbols.NewIndex(file)
	bag := diag.NewBag(10)
	env := &Env{Symbols: idx, Computation: NewComputationSession(), Reporter: diag.BagReporter{Bag: bag}}
	env.ReturnTypes = ReturnTypeFunc(func(ctx context.Context, d decl.Decl) error {
		return resolveImplicitTypes(ctx, env, d)
	})
	if err := resolveImplicitTypes(context.Background(), env, f1); err != nil {
		t.Fatalf("implicit: %v", err)
	}
	if f1.ReturnType.State != decl.RefError || g1.ReturnType.State != decl.RefError {
		t.Fatalf("f = %v, g = %v; want both error types", f1.ReturnType, g1.ReturnType)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SemaImplicitTypeCycle {
			found = true
		}
	}
	if !found {
		t.Fatalf("no recursion diagnostic in %v", bag.Items())
	}
}

func TestBodyReportsUnresolvedReference(t *testing.T) {
	fn := &decl.Function{
		Header:     decl.Header{Name: "run"},
		Params:     []*decl.ValueParameter{{Header: decl.Header{Name: "n"}, Type: decl.Unresolved("Int")}},
		ReturnType: decl.Unresolved("Unit"),
		Body: &decl.Body{Statements: []*decl.Expr{
			{Kind: decl.ExprRef, Value: "n"},
			{Kind: decl.ExprRef, Value: "ghost"},
		}},
	}
	file := &decl.File{Package: "b", Decls: []decl.Decl{fn}}
	decl.Link(file)
	bag := diag.NewBag(10)
	env := &Env{Reporter: diag.BagReporter{Bag: bag}}
	ctx := context.Background()
	if err := resolveTypes(ctx, env, fn); err != nil {
		t.Fatalf("types: %v", err)
	}
	if err := resolveBody(ctx, env, fn); err != nil {
		t.Fatalf("body: %v", err)
	}
	if !fn.Body.Resolved {
		t.Fatalf("body not marked resolved")
	}
	if got := fn.Body.Statements[0].Type.String(); got != "kotlin.Int" {
		t.Fatalf("n : %s, want kotlin.Int", got)
	}
	if fn.Body.Statements[1].Type.State != decl.RefError {
		t.Fatalf("ghost should be an error type")
	}
	if bag.Len() != 1 || !strings.Contains(bag.Items()[0].Message, "ghost") {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
}

func TestSetFor(t *testing.T) {
	set := Default()
	tests := []struct {
		p  phase.Phase
		ok bool
	}{
		{phase.Imports, false},
		{phase.SuperTypes, true},
		{phase.SealedClassInheritors, false},
		{phase.Types, true},
		{phase.ArgumentsOfPluginAnnotations, false},
		{phase.BodyResolve, true},
	}
	for _, tt := range tests {
		if _, ok := set.For(tt.p); ok != tt.ok {
			t.Errorf("For(%v) ok = %v, want %v", tt.p, ok, tt.ok)
		}
	}
	empty := Set{}.WithDefaults()
	if empty.Body == nil || empty.Imports == nil {
		t.Fatalf("WithDefaults left gaps")
	}
}
