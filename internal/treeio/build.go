package treeio

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"lazyres/internal/decl"
	"lazyres/internal/source"
)

// builder turns the raw YAML shape into declarations of one file.
type builder struct {
	path string
	file source.FileID
}

func (b *builder) span(line, col int) source.Span {
	l, err := safecast.Conv[uint32](line)
	if err != nil {
		l = 0
	}
	c, err := safecast.Conv[uint32](col)
	if err != nil {
		c = 0
	}
	return source.Span{File: b.file, Line: l, Col: c}
}

func (b *builder) errorf(d *rawDecl, format string, args ...any) error {
	return &Error{Path: b.path, Line: d.Line, Col: d.Col, Msg: fmt.Sprintf(format, args...)}
}

// normName puts names into NFC so that lookups do not depend on how an
// editor composed them.
func normName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func (b *builder) fileDecl(raw *rawFile) (*decl.File, error) {
	f := &decl.File{Package: normName(raw.Package)}
	f.Span = b.span(1, 1)
	f.Name = f.Package
	for _, imp := range raw.Imports {
		i, err := parseImport(imp)
		if err != nil {
			return nil, &Error{Path: b.path, Msg: err.Error()}
		}
		f.Imports = append(f.Imports, i)
	}
	f.Annotations = annotations(raw.Annotations)
	for _, rd := range raw.Decls {
		d, err := b.decl(rd)
		if err != nil {
			return nil, err
		}
		f.Decls = append(f.Decls, d)
	}
	decl.Link(f)
	return f, nil
}

func parseImport(s string) (*decl.Import, error) {
	path, alias, _ := strings.Cut(strings.TrimSpace(s), " as ")
	path = normName(path)
	if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") {
		return nil, fmt.Errorf("bad import %q", s)
	}
	return &decl.Import{Path: path, Alias: normName(alias)}, nil
}

func annotations(names []string) []*decl.Annotation {
	var out []*decl.Annotation
	for _, n := range names {
		name, args, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(n), "@"), "(")
		a := &decl.Annotation{Name: normName(name)}
		if args = strings.TrimSuffix(args, ")"); args != "" {
			for _, arg := range strings.Split(args, ",") {
				a.Args = append(a.Args, strings.TrimSpace(arg))
			}
		}
		out = append(out, a)
	}
	return out
}

func (b *builder) header(rd *rawDecl, name string) (decl.Header, error) {
	h := decl.Header{
		Name:        normName(name),
		Span:        b.span(rd.Line, rd.Col),
		Annotations: annotations(rd.Annotations),
	}
	mods, err := modifiers(rd.Modifiers)
	if err != nil {
		return h, b.errorf(rd, "%v", err)
	}
	h.Modifiers = mods
	return h, nil
}

func modifiers(words []string) (decl.Modifiers, error) {
	var m decl.Modifiers
	for _, w := range words {
		switch strings.TrimSpace(w) {
		case "public":
			m.Visibility = decl.Public
		case "internal":
			m.Visibility = decl.Internal
		case "protected":
			m.Visibility = decl.Protected
		case "private":
			m.Visibility = decl.Private
		case "final":
			m.Modality = decl.Final
		case "open":
			m.Modality = decl.Open
		case "abstract":
			m.Modality = decl.Abstract
		case "sealed":
			m.Modality = decl.Sealed
		case "override":
			m.Override = true
		case "inline":
			m.Inline = true
		default:
			return m, fmt.Errorf("unknown modifier %q", w)
		}
	}
	return m, nil
}

var classKinds = map[string]decl.ClassKind{
	"class":      decl.ClassRegular,
	"interface":  decl.ClassInterface,
	"object":     decl.ClassObject,
	"enum":       decl.ClassEnum,
	"annotation": decl.ClassAnnotation,
	"anonymous":  decl.ClassAnonymousObject,
}

func (b *builder) decl(rd *rawDecl) (decl.Decl, error) {
	if ck, ok := classKinds[rd.Kind]; ok {
		return b.class(rd, ck)
	}
	h, err := b.header(rd, rd.Name)
	if err != nil {
		return nil, err
	}
	switch rd.Kind {
	case "fun":
		return b.function(rd, h)
	case "val", "var":
		return b.property(rd, h)
	case "typealias":
		if rd.Type == "" {
			return nil, b.errorf(rd, "typealias %s without type", rd.Name)
		}
		tps, err := b.typeParams(rd)
		if err != nil {
			return nil, err
		}
		return &decl.TypeAlias{Header: h, TypeParams: tps, Expanded: decl.Unresolved(rd.Type)}, nil
	case "entry":
		return &decl.EnumEntry{Header: h}, nil
	case "field":
		f := &decl.Field{Header: h, ReturnType: typeOrImplicit(rd.Type)}
		if rd.Value != "" {
			if f.Initializer, err = b.expr(rd, rd.Value); err != nil {
				return nil, err
			}
		}
		return f, nil
	case "init":
		body, err := b.body(rd, rd.Block, "")
		if err != nil {
			return nil, err
		}
		if body == nil {
			body = &decl.Body{}
		}
		h.Name = "<init>"
		return &decl.AnonymousInitializer{Header: h, Body: body}, nil
	case "constructor":
		h.Name = "<init>"
		params, err := b.params(rd, rd.Params)
		if err != nil {
			return nil, err
		}
		c := &decl.Constructor{Header: h, Params: params, Contract: contract(rd.Contract)}
		if c.Body, err = b.body(rd, rd.Body, rd.Expr); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, b.errorf(rd, "unknown declaration kind %q", rd.Kind)
}

func (b *builder) class(rd *rawDecl, kind decl.ClassKind) (decl.Decl, error) {
	h, err := b.header(rd, rd.Name)
	if err != nil {
		return nil, err
	}
	if kind != decl.ClassAnonymousObject && h.Name == "" {
		return nil, b.errorf(rd, "%s without a name", rd.Kind)
	}
	c := &decl.Class{Header: h, ClassKind: kind}
	if c.TypeParams, err = b.typeParams(rd); err != nil {
		return nil, err
	}
	for _, st := range rd.SuperTypes {
		c.SuperTypes = append(c.SuperTypes, decl.Unresolved(st))
	}
	if rd.Primary != nil {
		params, err := b.params(rd, rd.Primary)
		if err != nil {
			return nil, err
		}
		ctor := &decl.Constructor{
			Header:  decl.Header{Name: "<init>", Span: h.Span},
			Primary: true,
			Params:  params,
		}
		c.Members = append(c.Members, ctor)
		// val/var parameters declare properties as well
		for i, raw := range rd.Primary {
			mutable, isProp := propertyParam(raw)
			if !isProp {
				continue
			}
			p := params[i]
			c.Members = append(c.Members, &decl.Property{
				Header:      decl.Header{Name: p.Name, Span: h.Span},
				Mutable:     mutable,
				ReturnType:  decl.Unresolved(p.Type.Text),
				Initializer: &decl.Expr{Kind: decl.ExprRef, Value: p.Name},
			})
		}
	}
	for _, rm := range rd.Members {
		m, err := b.decl(rm)
		if err != nil {
			return nil, err
		}
		c.Members = append(c.Members, m)
	}
	return c, nil
}

func (b *builder) function(rd *rawDecl, h decl.Header) (decl.Decl, error) {
	f := &decl.Function{Header: h, Contract: contract(rd.Contract)}
	var err error
	if f.TypeParams, err = b.typeParams(rd); err != nil {
		return nil, err
	}
	if rd.Receiver != "" {
		f.Receiver = decl.Unresolved(rd.Receiver)
	}
	if f.Params, err = b.params(rd, rd.Params); err != nil {
		return nil, err
	}
	if f.Body, err = b.body(rd, rd.Body, rd.Expr); err != nil {
		return nil, err
	}
	switch {
	case rd.Returns != "":
		f.ReturnType = decl.Unresolved(rd.Returns)
	case f.Body != nil:
		f.ReturnType = decl.Implicit()
	default:
		f.ReturnType = decl.Unresolved("Unit")
	}
	return f, nil
}

func (b *builder) property(rd *rawDecl, h decl.Header) (decl.Decl, error) {
	p := &decl.Property{Header: h, Mutable: rd.Kind == "var", ReturnType: typeOrImplicit(rd.Type)}
	var err error
	if p.TypeParams, err = b.typeParams(rd); err != nil {
		return nil, err
	}
	if rd.Receiver != "" {
		p.Receiver = decl.Unresolved(rd.Receiver)
	}
	if rd.Value != "" {
		if p.Initializer, err = b.expr(rd, rd.Value); err != nil {
			return nil, err
		}
	}
	if rd.Get != nil {
		if p.Getter, err = b.accessor(rd, rd.Get, false); err != nil {
			return nil, err
		}
	}
	if rd.Set != nil {
		if !p.Mutable {
			return nil, b.errorf(rd, "val %s cannot have a setter", rd.Name)
		}
		if p.Setter, err = b.accessor(rd, rd.Set, true); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (b *builder) accessor(owner *rawDecl, ra *rawAccessor, setter bool) (*decl.Accessor, error) {
	mods, err := modifiers(ra.Modifiers)
	if err != nil {
		return nil, b.errorf(owner, "%v", err)
	}
	a := &decl.Accessor{
		Header:   decl.Header{Name: "get", Span: b.span(owner.Line, owner.Col), Modifiers: mods},
		Setter:   setter,
		Contract: contract(ra.Contract),
	}
	if setter {
		a.Name = "set"
		name := ra.Param
		if name == "" {
			name = "value"
		}
		a.Param = &decl.ValueParameter{Header: decl.Header{Name: normName(name), Span: a.Span}, Type: typeOrImplicit(ra.Type)}
	} else if ra.Type != "" {
		a.ReturnType = decl.Unresolved(ra.Type)
	}
	if a.Body, err = b.body(owner, ra.Body, ra.Expr); err != nil {
		return nil, err
	}
	return a, nil
}

func (b *builder) typeParams(rd *rawDecl) ([]*decl.TypeParameter, error) {
	var out []*decl.TypeParameter
	for _, s := range rd.TypeParams {
		name, bound, hasBound := strings.Cut(s, ":")
		tp := &decl.TypeParameter{Header: decl.Header{Name: normName(name), Span: b.span(rd.Line, rd.Col)}}
		if tp.Name == "" {
			return nil, b.errorf(rd, "bad type parameter %q", s)
		}
		if hasBound {
			for _, bnd := range strings.Split(bound, "&") {
				tp.Bounds = append(tp.Bounds, decl.Unresolved(strings.TrimSpace(bnd)))
			}
		}
		out = append(out, tp)
	}
	return out, nil
}

// propertyParam reports whether a primary constructor parameter is written
// with val or var.
func propertyParam(s string) (mutable, ok bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "val "):
		return false, true
	case strings.HasPrefix(s, "var "):
		return true, true
	}
	return false, false
}

// params parses "[val|var] name: Type [= default]" entries.
func (b *builder) params(rd *rawDecl, specs []string) ([]*decl.ValueParameter, error) {
	out := make([]*decl.ValueParameter, 0, len(specs))
	for _, s := range specs {
		s = strings.TrimSpace(s)
		s = strings.TrimPrefix(strings.TrimPrefix(s, "val "), "var ")
		name, rest, ok := strings.Cut(s, ":")
		if !ok {
			return nil, b.errorf(rd, "parameter %q needs a type", s)
		}
		typ, def, hasDefault := strings.Cut(rest, "=")
		p := &decl.ValueParameter{
			Header: decl.Header{Name: normName(name), Span: b.span(rd.Line, rd.Col)},
			Type:   decl.Unresolved(strings.TrimSpace(typ)),
		}
		if p.Name == "" || p.Type.Text == "" {
			return nil, b.errorf(rd, "bad parameter %q", s)
		}
		if hasDefault {
			x, err := b.expr(rd, def)
			if err != nil {
				return nil, err
			}
			p.Default = x
		}
		out = append(out, p)
	}
	return out, nil
}

// body builds a block from a body mapping or an expression body. Both
// absent means no body.
func (b *builder) body(rd *rawDecl, rb *rawBody, expr string) (*decl.Body, error) {
	if expr != "" {
		if rb != nil {
			return nil, b.errorf(rd, "both expr and body given")
		}
		x, err := b.expr(rd, expr)
		if err != nil {
			return nil, err
		}
		return &decl.Body{Result: x}, nil
	}
	if rb == nil {
		return nil, nil
	}
	out := &decl.Body{}
	for _, st := range rb.Statements {
		x, err := b.expr(rd, st)
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, x)
	}
	if rb.Result != "" {
		x, err := b.expr(rd, rb.Result)
		if err != nil {
			return nil, err
		}
		out.Result = x
	}
	for _, rl := range rb.Locals {
		l, err := b.decl(rl)
		if err != nil {
			return nil, err
		}
		out.Locals = append(out.Locals, l)
	}
	return out, nil
}

func (b *builder) expr(rd *rawDecl, src string) (*decl.Expr, error) {
	x, err := parseExpr(strings.TrimSpace(src))
	if err != nil {
		return nil, b.errorf(rd, "%v", err)
	}
	return x, nil
}

func contract(src []string) *decl.Contract {
	if len(src) == 0 {
		return nil
	}
	return &decl.Contract{Source: append([]string(nil), src...)}
}

func typeOrImplicit(text string) *decl.TypeRef {
	if strings.TrimSpace(text) == "" {
		return decl.Implicit()
	}
	return decl.Unresolved(strings.TrimSpace(text))
}
