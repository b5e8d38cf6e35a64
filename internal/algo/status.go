package algo

import (
	"context"

	"lazyres/internal/decl"
	"lazyres/internal/diag"
)

func resolveStatus(_ context.Context, env *Env, d decl.Decl) error {
	h := d.Head()
	var st *decl.Status
	switch d := d.(type) {
	case *decl.Class:
		st = &d.Status
	case *decl.Function:
		st = &d.Status
	case *decl.Property:
		st = &d.Status
	case *decl.Constructor:
		st = &d.Status
	case *decl.TypeAlias:
		st = &d.Status
	case *decl.EnumEntry:
		st = &d.Status
	case *decl.Field:
		st = &d.Status
	default:
		return nil
	}
	if st.Resolved {
		return nil
	}
	owner, _ := decl.Parent(d).(*decl.Class)
	inInterface := owner != nil && owner.ClassKind == decl.ClassInterface

	st.Visibility = h.Modifiers.Visibility
	if st.Visibility == decl.VisibilityUnknown {
		st.Visibility = decl.Public
	}
	st.Override = h.Modifiers.Override
	st.Modality = h.Modifiers.Modality
	if st.Modality == decl.ModalityUnknown {
		st.Modality = defaultModality(d, owner)
	}
	if st.Modality == decl.Abstract && owner != nil && !inInterface && !canHoldAbstract(owner) {
		env.warn(diag.SemaConflictingModality, h.Span,
			"abstract member "+h.Name+" in non-abstract "+owner.ClassKind.String()+" "+owner.Name)
	}
	if fn, ok := d.(*decl.Function); ok && st.Modality == decl.Abstract && fn.Body != nil && !inInterface {
		env.warn(diag.SemaConflictingModality, h.Span, "abstract function "+h.Name+" has a body")
	}
	st.Resolved = true

	if p, ok := d.(*decl.Property); ok {
		for _, acc := range []*decl.Accessor{p.Getter, p.Setter} {
			if acc == nil {
				continue
			}
			acc.Status = *st
			if v := acc.Modifiers.Visibility; v != decl.VisibilityUnknown {
				acc.Status.Visibility = v
			}
		}
	}
	return nil
}

func defaultModality(d decl.Decl, owner *decl.Class) decl.Modality {
	if c, ok := d.(*decl.Class); ok {
		if c.ClassKind == decl.ClassInterface {
			return decl.Abstract
		}
		return decl.Final
	}
	if owner != nil && owner.ClassKind == decl.ClassInterface {
		switch d := d.(type) {
		case *decl.Function:
			if d.Body == nil {
				return decl.Abstract
			}
			return decl.Open
		case *decl.Property:
			if d.Initializer == nil && (d.Getter == nil || d.Getter.Body == nil) {
				return decl.Abstract
			}
			return decl.Open
		}
	}
	if d.Head().Modifiers.Override {
		return decl.Open
	}
	return decl.Final
}

func canHoldAbstract(c *decl.Class) bool {
	switch c.Modifiers.Modality {
	case decl.Abstract, decl.Sealed:
		return true
	}
	return c.ClassKind == decl.ClassInterface
}
