package algo

import (
	"context"
	"strings"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
)

func resolveImports(_ context.Context, env *Env, f *decl.File) error {
	for _, imp := range f.Imports {
		if imp.State != decl.RefUnresolved {
			continue
		}
		if pkg, star := strings.CutSuffix(imp.Path, ".*"); star {
			if env.Symbols != nil && env.Symbols.HasPackage(pkg) {
				imp.State = decl.RefResolved
				continue
			}
			imp.State = decl.RefError
			env.report(diag.SemaUnresolvedImport, f.Span, "unresolved package "+pkg)
			continue
		}
		if target, ok := lookupImport(env, imp.Path); ok {
			imp.State = decl.RefResolved
			imp.Target = target
			continue
		}
		imp.State = decl.RefError
		env.report(diag.SemaUnresolvedImport, f.Span, "unresolved import "+imp.Path)
	}
	return nil
}

func lookupImport(env *Env, path string) (decl.Decl, bool) {
	if env.Symbols == nil {
		return nil, false
	}
	if d, ok := env.Symbols.Classifier(path); ok {
		return d, true
	}
	if ds := env.Symbols.Callables(path); len(ds) > 0 {
		return ds[0], true
	}
	return nil, false
}

func resolveFileAnnotations(ctx context.Context, env *Env, f *decl.File) error {
	return ResolveAnnotations(ctx, env, f, f.Annotations)
}

// ResolveAnnotations binds anns in the scope of site. Annotations that are
// already resolved or failed are left alone.
func ResolveAnnotations(_ context.Context, env *Env, site decl.Decl, anns []*decl.Annotation) error {
	env.resolveAnnotations(site, anns)
	return nil
}

// resolveAnnotations binds annotation names to annotation classes.
func (e *Env) resolveAnnotations(site decl.Decl, anns []*decl.Annotation) {
	for _, a := range anns {
		if a.Type != nil && a.Type.State != decl.RefUnresolved {
			continue
		}
		if a.Type == nil {
			a.Type = decl.Unresolved(a.Name)
		}
		fq, target, ok := e.lookupClassifier(site, a.Name, false)
		if !ok {
			a.Type.Fail("unresolved annotation " + a.Name)
			e.report(diag.SemaUnresolvedAnnotation, site.Head().Span, "unresolved annotation @"+a.Name)
			continue
		}
		if c, isClass := target.(*decl.Class); isClass && c.ClassKind != decl.ClassAnnotation {
			a.Type.Fail(a.Name + " is not an annotation class")
			e.report(diag.SemaUnresolvedAnnotation, site.Head().Span, a.Name+" is not an annotation class")
			continue
		}
		a.Type.Resolve(fq, target)
	}
}
