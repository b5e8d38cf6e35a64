package algo

import (
	"context"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
)

func resolveSuperTypes(_ context.Context, env *Env, d decl.Decl) error {
	switch d := d.(type) {
	case *decl.Class:
		for _, st := range d.SuperTypes {
			if st.State != decl.RefUnresolved {
				continue
			}
			env.resolveType(d, st, true)
			if st.State != decl.RefResolved {
				continue
			}
			switch target := st.Target.(type) {
			case *decl.TypeParameter:
				st.Fail("type parameter " + target.Name + " cannot be a supertype")
				env.report(diag.SemaBadSupertype, d.Span, st.Err)
			case *decl.Class:
				if inheritsFrom(target, d) {
					st.Fail("cyclic inheritance involving " + d.Name)
					env.report(diag.SemaBadSupertype, d.Span, st.Err)
				}
			}
		}
	case *decl.TypeAlias:
		if d.Expanded == nil || d.Expanded.State != decl.RefUnresolved {
			return nil
		}
		env.resolveType(d, d.Expanded, false)
		if aliasCycle(d) {
			d.Expanded.Fail("type alias " + d.Name + " expands to itself")
			env.report(diag.SemaCyclicAlias, d.Span, d.Expanded.Err)
		}
	}
	return nil
}

// inheritsFrom follows the already resolved supertypes of c looking for
// target.
func inheritsFrom(c, target *decl.Class) bool {
	seen := map[*decl.Class]bool{}
	var visit func(cur *decl.Class) bool
	visit = func(cur *decl.Class) bool {
		if cur == target {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		for _, st := range cur.SuperTypes {
			if next, ok := st.Target.(*decl.Class); ok && st.State == decl.RefResolved && visit(next) {
				return true
			}
		}
		return false
	}
	return visit(c)
}

func aliasCycle(a *decl.TypeAlias) bool {
	seen := map[*decl.TypeAlias]bool{a: true}
	cur := a.Expanded
	for cur != nil && cur.State == decl.RefResolved {
		next, ok := cur.Target.(*decl.TypeAlias)
		if !ok {
			return false
		}
		if seen[next] {
			return true
		}
		seen[next] = true
		cur = next.Expanded
	}
	return false
}
