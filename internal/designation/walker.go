package designation

import (
	"lazyres/internal/decl"
	"lazyres/internal/invariant"
)

// Walker is a walk.Policy that enters only the designation path and the
// whole subtree of the target. Containers off the path are passed through.
// A Walker is good for one walk.
type Walker struct {
	des     *Designation
	visited bool
	inside  int
}

// NewWalker returns a fresh walker for d.
func NewWalker(d *Designation) *Walker {
	return &Walker{des: d}
}

// TargetVisited reports whether the walk reached the target.
func (w *Walker) TargetVisited() bool { return w.visited }

// InTarget reports whether the walk is currently inside the target's
// subtree.
func (w *Walker) InTarget() bool { return w.inside > 0 }

// Passed returns an invariant error when the target was not visited.
func (w *Walker) Passed() error {
	if w.visited {
		return nil
	}
	return invariant.New(invariant.DesignationNotPassed, w.des.Target, w.des.Target.Head().Phase(),
		"walk of %s never reached the target", w.des)
}

func (w *Walker) Children(container decl.Decl, children []decl.Decl, descend func(decl.Decl) error) error {
	if w.inside > 0 {
		return descendAll(children, descend)
	}
	if container == decl.Decl(w.des.File) && w.des.IsFile() {
		w.visited = true
		w.inside++
		defer func() { w.inside-- }()
		return descendAll(children, descend)
	}
	next, scoped := w.nextOnPath(container)
	if !scoped {
		return descendAll(children, descend)
	}
	if !contains(children, next) && !(w.des.OnAir && next == w.des.Target) {
		return invariant.New(invariant.Inconsistent, next, next.Head().Phase(),
			"%s is not a child of %s", decl.Describe(next), decl.Describe(container))
	}
	if next != w.des.Target {
		return descend(next)
	}
	w.visited = true
	w.inside++
	defer func() { w.inside-- }()
	return descend(next)
}

// nextOnPath returns the child the walk must enter below container.
func (w *Walker) nextOnPath(container decl.Decl) (decl.Decl, bool) {
	path := w.des.Path
	if container == decl.Decl(w.des.File) {
		if len(path) == 0 {
			return w.des.Target, true
		}
		return path[0], true
	}
	for i, c := range path {
		if decl.Decl(c) != container {
			continue
		}
		if i == len(path)-1 {
			return w.des.Target, true
		}
		return path[i+1], true
	}
	return nil, false
}

func descendAll(children []decl.Decl, descend func(decl.Decl) error) error {
	for _, c := range children {
		if err := descend(c); err != nil {
			return err
		}
	}
	return nil
}

func contains(ds []decl.Decl, x decl.Decl) bool {
	for _, d := range ds {
		if d == x {
			return true
		}
	}
	return false
}
