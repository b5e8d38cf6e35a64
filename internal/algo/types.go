package algo

import (
	"context"

	"lazyres/internal/decl"
	"lazyres/internal/symbols"
)

func resolveTypes(_ context.Context, env *Env, d decl.Decl) error {
	env.resolveAnnotations(d, d.Head().Annotations)
	switch d := d.(type) {
	case *decl.Class:
		env.resolveBounds(d, d.TypeParams, true)
	case *decl.Function:
		env.resolveBounds(d, d.TypeParams, false)
		env.resolveType(d, d.Receiver, false)
		env.resolveParams(d, d.Params)
		env.resolveType(d, d.ReturnType, false)
	case *decl.Property:
		env.resolveBounds(d, d.TypeParams, false)
		env.resolveType(d, d.Receiver, false)
		env.resolveType(d, d.ReturnType, false)
		env.resolveAccessorTypes(d)
	case *decl.Constructor:
		env.resolveParams(d, d.Params)
		if d.ReturnType == nil || !d.ReturnType.IsResolved() {
			if owner, ok := decl.Parent(d).(*decl.Class); ok {
				d.ReturnType = classType(owner)
			}
		}
	case *decl.Field:
		env.resolveType(d, d.ReturnType, false)
	case *decl.EnumEntry:
		if d.ReturnType == nil || !d.ReturnType.IsResolved() {
			if owner, ok := decl.Parent(d).(*decl.Class); ok {
				d.ReturnType = classType(owner)
			}
		}
	case *decl.TypeAlias:
		env.resolveBounds(d, d.TypeParams, false)
	}
	return nil
}

func (e *Env) resolveBounds(site decl.Decl, tps []*decl.TypeParameter, header bool) {
	for _, tp := range tps {
		for _, b := range tp.Bounds {
			e.resolveType(site, b, header)
		}
	}
}

func (e *Env) resolveParams(site decl.Decl, ps []*decl.ValueParameter) {
	for _, p := range ps {
		e.resolveAnnotations(site, p.Annotations)
		e.resolveType(site, p.Type, false)
	}
}

// resolveAccessorTypes gives accessors the property type when they do not
// declare their own. An implicit property type is shared with the getter
// and filled in later by implicit type inference.
func (e *Env) resolveAccessorTypes(p *decl.Property) {
	if g := p.Getter; g != nil {
		if g.ReturnType == nil || g.ReturnType.IsImplicit() {
			g.ReturnType = p.ReturnType
		} else {
			e.resolveType(g, g.ReturnType, false)
		}
	}
	if s := p.Setter; s != nil {
		if s.ReturnType == nil || !s.ReturnType.IsResolved() {
			s.ReturnType = unitType()
		}
		if s.Param != nil {
			if s.Param.Type == nil || s.Param.Type.IsImplicit() {
				s.Param.Type = p.ReturnType
			} else {
				e.resolveType(s, s.Param.Type, false)
			}
		}
	}
}

func classType(c *decl.Class) *decl.TypeRef {
	t := &decl.TypeRef{Text: c.Name}
	t.Resolve(decl.QualifiedName(c), c)
	return t
}

func unitType() *decl.TypeRef { return builtinType("Unit") }

func builtinType(name string) *decl.TypeRef {
	t := &decl.TypeRef{Text: name}
	t.Resolve(symbols.BuiltinPackage+"."+name, nil)
	return t
}
