package decl

import (
	"strings"

	"lazyres/internal/phase"
)

// Link sets parent pointers for the whole subtree under root. Trees built
// by hand or by a loader must be linked once before use.
func Link(root Decl) {
	for _, c := range Children(root) {
		c.Head().parent = root
		Link(c)
	}
	for _, s := range SubElements(root) {
		s.Head().parent = root
		Link(s)
	}
	for _, l := range Locals(root) {
		l.Head().parent = root
		Link(l)
	}
}

// Parent returns the structural owner of d.
func Parent(d Decl) Decl {
	if d == nil {
		return nil
	}
	return d.Head().parent
}

// ContainingFile walks up to the owning file.
func ContainingFile(d Decl) (*File, bool) {
	for cur := d; cur != nil; cur = Parent(cur) {
		if f, ok := cur.(*File); ok {
			return f, true
		}
	}
	return nil, false
}

// IsContainer reports whether d owns child declarations.
func IsContainer(d Decl) bool {
	switch d.(type) {
	case *File, *Class:
		return true
	}
	return false
}

// Children returns the child declarations of a container, nil otherwise.
func Children(d Decl) []Decl {
	switch d := d.(type) {
	case *File:
		return d.Decls
	case *Class:
		return d.Members
	}
	return nil
}

// SubElements returns the declarations whose phase follows d: type
// parameters, value parameters and accessors.
func SubElements(d Decl) []Decl {
	var out []Decl
	addParams := func(ps []*ValueParameter) {
		for _, p := range ps {
			out = append(out, p)
		}
	}
	addTypeParams := func(ps []*TypeParameter) {
		for _, p := range ps {
			out = append(out, p)
		}
	}
	switch d := d.(type) {
	case *Class:
		addTypeParams(d.TypeParams)
	case *Function:
		addTypeParams(d.TypeParams)
		addParams(d.Params)
	case *Property:
		addTypeParams(d.TypeParams)
		if d.Getter != nil {
			out = append(out, d.Getter)
		}
		if d.Setter != nil {
			out = append(out, d.Setter)
		}
	case *Accessor:
		if d.Param != nil {
			out = append(out, d.Param)
		}
	case *Constructor:
		addParams(d.Params)
	case *TypeAlias:
		addTypeParams(d.TypeParams)
	}
	return out
}

// BodyOf returns the body owned directly by d.
func BodyOf(d Decl) *Body {
	switch d := d.(type) {
	case *Function:
		return d.Body
	case *Accessor:
		return d.Body
	case *Constructor:
		return d.Body
	case *AnonymousInitializer:
		return d.Body
	}
	return nil
}

// Locals returns the local declarations nested in d's body.
func Locals(d Decl) []Decl {
	if b := BodyOf(d); b != nil {
		return b.Locals
	}
	return nil
}

// IsCallable reports whether d has a return type.
func IsCallable(d Decl) bool {
	switch d.(type) {
	case *Function, *Property, *Accessor, *Constructor, *Field, *EnumEntry, *ValueParameter:
		return true
	}
	return false
}

// ReturnTypeOf returns the return type reference of a callable.
func ReturnTypeOf(d Decl) *TypeRef {
	switch d := d.(type) {
	case *Function:
		return d.ReturnType
	case *Property:
		return d.ReturnType
	case *Accessor:
		return d.ReturnType
	case *Constructor:
		return d.ReturnType
	case *Field:
		return d.ReturnType
	case *EnumEntry:
		return d.ReturnType
	case *ValueParameter:
		return d.Type
	}
	return nil
}

// IsLocal reports whether d sits inside a body or an anonymous object and
// therefore cannot be reached by a name path from its file. Sub-elements
// share their owner's locality.
func IsLocal(d Decl) bool {
	switch d := d.(type) {
	case *File:
		return false
	case *Class:
		if d.IsAnonymous() {
			return true
		}
	case *ValueParameter, *TypeParameter, *Accessor:
		owner := Parent(d)
		if owner == nil {
			return true
		}
		return IsLocal(owner)
	}
	for cur := Parent(d); cur != nil; cur = Parent(cur) {
		switch c := cur.(type) {
		case *File:
			return false
		case *Class:
			if c.IsAnonymous() {
				return true
			}
		default:
			return true
		}
	}
	return true
}

// CanBeLazilyResolved reports whether d may be the target of a designation.
func CanBeLazilyResolved(d Decl) bool {
	switch d := d.(type) {
	case *File:
		return true
	case *TypeParameter, *ValueParameter, *Accessor, *AnonymousInitializer:
		return false
	case *Constructor:
		if d.Primary {
			return false
		}
		return inNonLocalScope(d)
	case *Class:
		return !d.IsAnonymous() && inNonLocalScope(d)
	case *Function, *Property, *Field, *EnumEntry, *TypeAlias:
		return inNonLocalScope(d)
	}
	return false
}

// inNonLocalScope reports whether d's parent is its file or a non-local,
// named class.
func inNonLocalScope(d Decl) bool {
	switch p := Parent(d).(type) {
	case *File:
		return true
	case *Class:
		return !p.IsAnonymous() && !IsLocal(p)
	}
	return false
}

// NonLocalContainer returns d itself when it can be lazily resolved, and
// otherwise its nearest ancestor that can.
func NonLocalContainer(d Decl) (Decl, bool) {
	for cur := d; cur != nil; cur = Parent(cur) {
		if CanBeLazilyResolved(cur) {
			return cur, true
		}
	}
	return nil, false
}

// DeepPhase returns the minimum phase over d and, for containers, every
// descendant declaration. Files report their own stamp only.
func DeepPhase(d Decl) phase.Phase {
	p := d.Head().Phase()
	c, ok := d.(*Class)
	if !ok {
		return p
	}
	for _, m := range c.Members {
		p = phase.Min(p, DeepPhase(m))
	}
	return p
}

// Walk calls fn for d and every declaration structurally below it
// (children, sub-elements and locals), depth first. Returning false from fn
// skips the subtree.
func Walk(d Decl, fn func(Decl) bool) {
	if d == nil || !fn(d) {
		return
	}
	for _, s := range SubElements(d) {
		Walk(s, fn)
	}
	for _, c := range Children(d) {
		Walk(c, fn)
	}
	for _, l := range Locals(d) {
		Walk(l, fn)
	}
}

// QualifiedName returns pkg.Outer.Inner.name for non-local declarations and
// a best-effort name for others.
func QualifiedName(d Decl) string {
	var parts []string
	for cur := d; cur != nil; cur = Parent(cur) {
		if f, ok := cur.(*File); ok {
			if f.Package != "" {
				parts = append(parts, f.Package)
			}
			break
		}
		name := cur.Head().Name
		if name == "" {
			name = "<" + cur.Kind().String() + ">"
		}
		parts = append(parts, name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Describe renders d for diagnostics and traces.
func Describe(d Decl) string {
	if d == nil {
		return "<nil>"
	}
	return d.Kind().String() + " " + QualifiedName(d)
}

// Attach makes owner the parent of d without adding d to owner's children.
// On-air declarations are resolved in the scope of a container they are
// not part of.
func Attach(owner, d Decl) {
	d.Head().parent = owner
	Link(d)
}

// IsSubElement reports whether d's phase is tracked through its owner.
func IsSubElement(d Decl) bool {
	switch d.(type) {
	case *Accessor, *ValueParameter, *TypeParameter:
		return true
	}
	return false
}
