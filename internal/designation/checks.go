package designation

import (
	"lazyres/internal/decl"
	"lazyres/internal/invariant"
	"lazyres/internal/phase"
)

// EnsurePathPhase checks every path class header reached p.
func (d *Designation) EnsurePathPhase(p phase.Phase) error {
	for _, c := range d.Path {
		if got := c.HeaderPhase(); got < p {
			return invariant.New(invariant.PhaseOrder, c, p,
				"path class %s is at %s, expected at least %s", c.Name, got, p)
		}
	}
	return nil
}

// EnsureTargetPhase checks the target reached p.
func (d *Designation) EnsureTargetPhase(p phase.Phase) error {
	if got := TargetPhase(d.Target); got < p {
		return invariant.New(invariant.PhaseOrder, d.Target, p,
			"target is at %s, expected at least %s", got, p)
	}
	return nil
}

// EnsureTargetPhaseIfClass checks the target reached p when it is a class.
func (d *Designation) EnsureTargetPhaseIfClass(p phase.Phase) error {
	if _, ok := d.Target.(*decl.Class); !ok {
		return nil
	}
	return d.EnsureTargetPhase(p)
}

// EnsurePhaseForClasses checks the path and a class target reached p.
func (d *Designation) EnsurePhaseForClasses(p phase.Phase) error {
	if err := d.EnsurePathPhase(p); err != nil {
		return err
	}
	return d.EnsureTargetPhaseIfClass(p)
}

// EnsureDesignation checks the path and the target reached p.
func (d *Designation) EnsureDesignation(p phase.Phase) error {
	if err := d.EnsurePathPhase(p); err != nil {
		return err
	}
	return d.EnsureTargetPhase(p)
}

// CheckConsistency verifies that every path element is a structural child
// of the previous one, that the target is a child of the last, and that no
// path class is behind the target. Local designations only need a file.
// With includeNonClassTarget unset the
// phase comparison is limited to class targets.
func (d *Designation) CheckConsistency(includeNonClassTarget bool) error {
	if d.File == nil {
		return invariant.New(invariant.MissingFile, d.Target, TargetPhase(d.Target), "designation without file")
	}
	if d.IsFile() || d.Local {
		return nil
	}
	var prev decl.Decl = d.File
	for _, c := range d.Path {
		if decl.Parent(c) != prev {
			return invariant.New(invariant.Inconsistent, c, c.HeaderPhase(),
				"%s is not a child of %s", decl.Describe(c), decl.Describe(prev))
		}
		prev = c
	}
	if decl.Parent(d.Target) != prev {
		return invariant.New(invariant.Inconsistent, d.Target, TargetPhase(d.Target),
			"target is not a child of %s", decl.Describe(prev))
	}
	_, isClass := d.Target.(*decl.Class)
	if !isClass && !includeNonClassTarget {
		return nil
	}
	tp := TargetPhase(d.Target)
	for _, c := range d.Path {
		if c.HeaderPhase() < tp {
			return invariant.New(invariant.Inconsistent, c, tp,
				"path class %s is at %s, behind the target at %s", c.Name, c.HeaderPhase(), tp)
		}
	}
	return nil
}
