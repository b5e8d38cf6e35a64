package algo

import (
	"context"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
)

func resolveImplicitTypes(ctx context.Context, env *Env, d decl.Decl) error {
	switch d := d.(type) {
	case *decl.Function:
		return env.inferReturnType(ctx, d, d.ReturnType, func() *decl.Expr {
			if d.Body == nil {
				return nil
			}
			return d.Body.Result
		}, d.Body != nil)
	case *decl.Property:
		err := env.inferReturnType(ctx, d, d.ReturnType, func() *decl.Expr {
			if d.Initializer != nil {
				return d.Initializer
			}
			if d.Getter != nil && d.Getter.Body != nil {
				return d.Getter.Body.Result
			}
			return nil
		}, false)
		if err != nil {
			return err
		}
		if g := d.Getter; g != nil && (g.ReturnType == nil || g.ReturnType.IsImplicit()) {
			g.ReturnType = d.ReturnType
		}
		if s := d.Setter; s != nil && s.Param != nil && (s.Param.Type == nil || s.Param.Type.IsImplicit()) {
			s.Param.Type = d.ReturnType
		}
		return nil
	case *decl.Field:
		return env.inferReturnType(ctx, d, d.ReturnType, func() *decl.Expr { return d.Initializer }, false)
	}
	return nil
}

// inferReturnType fills an implicit ref from the expression source returns.
// A block body without a result expression makes a function return Unit.
func (e *Env) inferReturnType(ctx context.Context, d decl.Decl, ref *decl.TypeRef, source func() *decl.Expr, blockIsUnit bool) error {
	if !ref.IsImplicit() {
		return nil
	}
	if !e.Computation.Enter(d) {
		ref.Fail("recursive implicit type of " + d.Head().Name)
		e.report(diag.SemaImplicitTypeCycle, d.Head().Span, ref.Err)
		return nil
	}
	defer e.Computation.Leave(d)

	x := source()
	if x == nil {
		if blockIsUnit {
			*ref = *unitType()
			return nil
		}
		ref.Fail("cannot infer type of " + d.Head().Name)
		e.report(diag.SemaUnresolvedType, d.Head().Span, ref.Err)
		return nil
	}
	t, err := e.typeOf(ctx, d, x)
	if err != nil {
		return err
	}
	if !ref.IsImplicit() {
		// a nested request already settled the type (inference cycle)
		return nil
	}
	*ref = *copyRef(t)
	return nil
}
