package transform

import (
	"lazyres/internal/decl"
	"lazyres/internal/invariant"
	"lazyres/internal/phase"
)

// checkPostconditions verifies the phase payload of the path classes and
// of the target's subtree. Diagnostics never fail a postcondition: error
// types count as resolved.
func (t *lazy) checkPostconditions() error {
	if t.alg == nil {
		return nil
	}
	for _, c := range t.des.Path {
		if err := payloadReady(t.phase, c); err != nil {
			return err
		}
	}
	if t.des.IsFile() {
		for _, d := range t.des.File.Decls {
			if err := t.checkSubtree(d); err != nil {
				return err
			}
		}
		return nil
	}
	return t.checkSubtree(t.des.Target)
}

func (t *lazy) checkSubtree(d decl.Decl) error {
	if err := payloadReady(t.phase, d); err != nil {
		return err
	}
	for _, c := range decl.Children(d) {
		if err := t.checkSubtree(c); err != nil {
			return err
		}
	}
	return nil
}

// payloadReady reports whether d carries the data phase p promises.
func payloadReady(p phase.Phase, d decl.Decl) error {
	fail := func(what string) error {
		return invariant.New(invariant.Postcondition, d, p, "%s after %s", what, p)
	}
	switch p {
	case phase.SuperTypes:
		switch d := d.(type) {
		case *decl.Class:
			for _, st := range d.SuperTypes {
				if !st.IsResolved() {
					return fail("unresolved supertype " + st.Text)
				}
			}
		case *decl.TypeAlias:
			if d.Expanded != nil && !d.Expanded.IsResolved() {
				return fail("unresolved alias expansion")
			}
		}
	case phase.Types:
		if !typesReady(d) {
			return fail("unresolved declared type")
		}
	case phase.Status:
		if st, ok := statusOf(d); ok && !st.Resolved {
			return fail("status not computed")
		}
	case phase.Contracts:
		if c := contractOf(d); c != nil && !c.Resolved {
			return fail("contract not resolved")
		}
	case phase.ImplicitTypesBodyResolve:
		switch d.(type) {
		case *decl.Function, *decl.Property, *decl.Field:
			if !decl.ReturnTypeOf(d).IsResolved() {
				return fail("implicit return type not inferred")
			}
		}
	case phase.BodyResolve:
		if b := decl.BodyOf(d); b != nil && !b.Resolved {
			return fail("body not resolved")
		}
		if prop, ok := d.(*decl.Property); ok {
			for _, acc := range []*decl.Accessor{prop.Getter, prop.Setter} {
				if acc != nil && acc.Body != nil && !acc.Body.Resolved {
					return fail("accessor body not resolved")
				}
			}
		}
	}
	return nil
}

// declared reports whether a written type is resolved; implicit types are
// left to later phases.
func declared(t *decl.TypeRef) bool {
	return t == nil || t.IsImplicit() || t.IsResolved()
}

// receiverReady: a receiver is always written, so it has no implicit form.
func receiverReady(t *decl.TypeRef) bool {
	return t == nil || t.IsResolved()
}

func boundsReady(tps []*decl.TypeParameter) bool {
	for _, tp := range tps {
		for _, b := range tp.Bounds {
			if !b.IsResolved() {
				return false
			}
		}
	}
	return true
}

func paramsReady(ps []*decl.ValueParameter) bool {
	for _, p := range ps {
		if !declared(p.Type) {
			return false
		}
	}
	return true
}

func typesReady(d decl.Decl) bool {
	switch d := d.(type) {
	case *decl.Class:
		return boundsReady(d.TypeParams)
	case *decl.Function:
		return boundsReady(d.TypeParams) && receiverReady(d.Receiver) && paramsReady(d.Params) && declared(d.ReturnType)
	case *decl.Property:
		return boundsReady(d.TypeParams) && receiverReady(d.Receiver) && declared(d.ReturnType)
	case *decl.Constructor:
		return paramsReady(d.Params) && d.ReturnType.IsResolved()
	case *decl.Field:
		return declared(d.ReturnType)
	case *decl.EnumEntry:
		return d.ReturnType.IsResolved()
	case *decl.TypeAlias:
		return boundsReady(d.TypeParams)
	}
	return true
}

func statusOf(d decl.Decl) (decl.Status, bool) {
	switch d := d.(type) {
	case *decl.Class:
		return d.Status, true
	case *decl.Function:
		return d.Status, true
	case *decl.Property:
		return d.Status, true
	case *decl.Constructor:
		return d.Status, true
	case *decl.TypeAlias:
		return d.Status, true
	case *decl.EnumEntry:
		return d.Status, true
	case *decl.Field:
		return d.Status, true
	}
	return decl.Status{}, false
}

func contractOf(d decl.Decl) *decl.Contract {
	switch d := d.(type) {
	case *decl.Function:
		return d.Contract
	case *decl.Constructor:
		return d.Contract
	}
	return nil
}
