// Package designation describes the route from a file to one target
// declaration and walks only that route.
package designation

import (
	"strings"

	"lazyres/internal/decl"
	"lazyres/internal/invariant"
	"lazyres/internal/phase"
)

// Designation is the path of classes from a file to a target. It is
// immutable once collected.
type Designation struct {
	// Path holds the classes strictly between File and Target, outermost
	// first.
	Path   []*decl.Class
	Target decl.Decl
	// Local is set when the target sits in a body or an anonymous object,
	// or cannot be lazily resolved on its own.
	Local bool
	// OnAir marks a target attached to the path without being one of the
	// last container's children.
	OnAir bool
	File  *decl.File
}

// Collect builds the designation of target from the live tree.
func Collect(target decl.Decl) (*Designation, error) {
	if f, ok := target.(*decl.File); ok {
		return &Designation{Target: f, File: f}, nil
	}
	des := &Designation{Target: target, Local: !decl.CanBeLazilyResolved(target)}
	var rev []*decl.Class
	for cur := decl.Parent(target); cur != nil; cur = decl.Parent(cur) {
		switch c := cur.(type) {
		case *decl.File:
			des.File = c
		case *decl.Class:
			if c.IsAnonymous() {
				des.Local = true
			}
			rev = append(rev, c)
		default:
			des.Local = true
		}
		if des.File != nil {
			break
		}
	}
	if des.File == nil {
		return nil, invariant.New(invariant.MissingFile, target, target.Head().Phase(),
			"no containing file")
	}
	des.Path = make([]*decl.Class, len(rev))
	for i, c := range rev {
		des.Path[len(rev)-1-i] = c
	}
	return des, nil
}

// CollectOnAir builds the designation of a target attached with
// decl.Attach.
func CollectOnAir(target decl.Decl) (*Designation, error) {
	des, err := Collect(target)
	if err != nil {
		return nil, err
	}
	des.OnAir = true
	return des, nil
}

// IsFile reports whether the file itself is the target.
func (d *Designation) IsFile() bool {
	return d.Target == decl.Decl(d.File)
}

// Containers returns the file followed by the path classes.
func (d *Designation) Containers() []decl.Decl {
	out := make([]decl.Decl, 0, len(d.Path)+1)
	out = append(out, d.File)
	for _, c := range d.Path {
		out = append(out, c)
	}
	return out
}

// OnPath reports whether x is one of the path classes.
func (d *Designation) OnPath(x decl.Decl) bool {
	for _, c := range d.Path {
		if decl.Decl(c) == x {
			return true
		}
	}
	return false
}

// MinPhase returns the lowest phase among the path headers and the target.
func (d *Designation) MinPhase() phase.Phase {
	p := TargetPhase(d.Target)
	for _, c := range d.Path {
		p = phase.Min(p, c.HeaderPhase())
	}
	return p
}

// TargetPhase is the phase a declaration reports as a designation target.
func TargetPhase(x decl.Decl) phase.Phase {
	return x.Head().Phase()
}

func (d *Designation) String() string {
	var sb strings.Builder
	sb.WriteString(d.File.Package)
	if sb.Len() == 0 {
		sb.WriteString("<root>")
	}
	for _, c := range d.Path {
		sb.WriteString(" > ")
		sb.WriteString(c.Name)
	}
	if !d.IsFile() {
		sb.WriteString(" > ")
		sb.WriteString(decl.Describe(d.Target))
	}
	if d.Local {
		sb.WriteString(" (local)")
	}
	if d.OnAir {
		sb.WriteString(" (on air)")
	}
	return sb.String()
}
