package algo

import (
	"context"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
	"lazyres/internal/symbols"
)

// typeOf types x in the scope of site. Unresolvable expressions get an
// error type and a diagnostic; only failures of nested resolution requests
// are returned.
func (e *Env) typeOf(ctx context.Context, site decl.Decl, x *decl.Expr) (*decl.TypeRef, error) {
	if x == nil {
		return nil, nil
	}
	if x.Type.IsResolved() {
		return x.Type, nil
	}
	switch x.Kind {
	case decl.ExprLiteral:
		fq := symbols.LiteralType(x.Value)
		if fq == "" {
			x.Type = e.failExpr(site, diag.SemaUnresolvedReference, "unknown literal "+x.Value)
			return x.Type, nil
		}
		t := &decl.TypeRef{Text: x.Value, Nullable: x.Value == "null"}
		t.Resolve(fq, nil)
		x.Type = t
	case decl.ExprRef, decl.ExprCall:
		call := x.Kind == decl.ExprCall
		for _, a := range x.Args {
			if _, err := e.typeOf(ctx, site, a); err != nil {
				return nil, err
			}
		}
		target, ok := e.lookupValue(site, x.Value, call)
		if !ok {
			what := "unresolved reference "
			if call {
				what = "unresolved call "
			}
			x.Type = e.failExpr(site, diag.SemaUnresolvedReference, what+x.Value)
			return x.Type, nil
		}
		t, err := e.typeOfTarget(ctx, site, target)
		if err != nil {
			return nil, err
		}
		x.Target = target
		x.Type = t
	}
	return x.Type, nil
}

func (e *Env) typeOfTarget(ctx context.Context, site, target decl.Decl) (*decl.TypeRef, error) {
	if c, ok := target.(*decl.Class); ok {
		return classType(c), nil
	}
	rt := decl.ReturnTypeOf(target)
	if !rt.IsResolved() && e.ReturnTypes != nil && !e.Computation.InProgress(target) {
		if err := e.ReturnTypes.ResolveReturnType(ctx, target); err != nil {
			return nil, err
		}
		rt = decl.ReturnTypeOf(target)
	}
	if !rt.IsResolved() {
		return e.failExpr(site, diag.SemaImplicitTypeCycle,
			"type of "+target.Head().Name+" cannot be computed here"), nil
	}
	return copyRef(rt), nil
}

func (e *Env) failExpr(site decl.Decl, code diag.Code, reason string) *decl.TypeRef {
	t := &decl.TypeRef{}
	t.Fail(reason)
	e.report(code, site.Head().Span, reason)
	return t
}

func copyRef(t *decl.TypeRef) *decl.TypeRef {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Args = make([]*decl.TypeRef, len(t.Args))
	for i, a := range t.Args {
		cp.Args[i] = copyRef(a)
	}
	return &cp
}
