package transform

import (
	"context"

	"lazyres/internal/decl"
	"lazyres/internal/phase"
)

// aliasFastPath resolves a top-level type alias without a walk.
func (t *lazy) aliasFastPath(ctx context.Context) (bool, error) {
	alias, ok := t.des.Target.(*decl.TypeAlias)
	if !ok || len(t.des.Path) != 0 {
		return false, nil
	}
	if alias.Phase() >= t.phase {
		return true, nil
	}
	if err := t.apply(ctx, alias); err != nil {
		return true, err
	}
	if err := t.checkPostconditions(); err != nil {
		return true, err
	}
	stamp(alias, t.phase)
	return true, nil
}

// bumpPathInitializers stamps the init blocks of path classes; they carry
// no type data and would otherwise keep the classes from being bumped.
func (t *lazy) bumpPathInitializers() {
	for _, c := range t.des.Path {
		for _, m := range c.Members {
			if init, ok := m.(*decl.AnonymousInitializer); ok {
				t.done.decls = append(t.done.decls, init)
			}
		}
	}
}

// skipResolvedReturnType finishes the implicit-types step without a walk
// when a callable target already has its return type.
func (t *lazy) skipResolvedReturnType(context.Context) (bool, error) {
	d := t.des.Target
	if !decl.IsCallable(d) || !hasOwnReturnType(d) {
		return false, nil
	}
	t.advancePath()
	stamp(d, t.phase)
	bumpPath(t.des.Path, t.phase)
	return true, nil
}

func hasOwnReturnType(d decl.Decl) bool {
	rt := decl.ReturnTypeOf(d)
	if rt == nil || !rt.IsResolved() {
		return false
	}
	if p, ok := d.(*decl.Property); ok && p.Getter != nil {
		if g := p.Getter.ReturnType; g != nil && !g.IsResolved() {
			return false
		}
	}
	return true
}

// forceStampAlias finishes body resolution of a type alias: aliases have no
// bodies.
func (t *lazy) forceStampAlias(context.Context) (bool, error) {
	alias, ok := t.des.Target.(*decl.TypeAlias)
	if !ok {
		return false, nil
	}
	t.advancePath()
	stamp(alias, phase.BodyResolve)
	bumpPath(t.des.Path, t.phase)
	return true, nil
}

// advancePath raises the path headers without running the algorithm.
func (t *lazy) advancePath() {
	for _, c := range t.des.Path {
		c.AdvanceHeaderPhase(t.phase)
	}
}
