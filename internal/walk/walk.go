// Package walk is the generic visitation over a declaration tree.
//
// A phase algorithm never decides on its own which declarations it touches:
// it is run through Run with a Policy. WholeFile visits everything; the
// designation walker visits one path and the target's subtree.
package walk

import (
	"context"

	"lazyres/internal/decl"
)

// Policy decides which children of a container the walk enters.
type Policy interface {
	// Children is called once per container reached by the walk. It calls
	// descend for every child the walk should enter, in order.
	Children(container decl.Decl, children []decl.Decl, descend func(decl.Decl) error) error
}

// VisitFunc processes one declaration. It is called before the walk
// descends into the declaration's children.
type VisitFunc func(ctx context.Context, d decl.Decl) error

// LeaveFunc is called after a container's children were walked.
type LeaveFunc func(ctx context.Context, d decl.Decl) error

// WholeFile is the default policy: every child is visited.
type WholeFile struct{}

func (WholeFile) Children(_ decl.Decl, children []decl.Decl, descend func(decl.Decl) error) error {
	for _, c := range children {
		if err := descend(c); err != nil {
			return err
		}
	}
	return nil
}

// Visitor bundles the callbacks of a walk.
type Visitor struct {
	// Enter is called for every visited declaration, the root included.
	Enter VisitFunc
	// Leave is called for every visited container after its children.
	Leave LeaveFunc
	// SkipRoot suppresses Enter and Leave for the root itself; files are
	// walked this way by lazy phases, which never stamp the file.
	SkipRoot bool
}

// Run walks root with policy. Context cancellation is not checked here:
// a phase step runs to completion once started.
func Run(ctx context.Context, root decl.Decl, policy Policy, v Visitor) error {
	if policy == nil {
		policy = WholeFile{}
	}
	return run(ctx, root, policy, v, true)
}

func run(ctx context.Context, d decl.Decl, policy Policy, v Visitor, isRoot bool) error {
	notify := !(isRoot && v.SkipRoot)
	if notify && v.Enter != nil {
		if err := v.Enter(ctx, d); err != nil {
			return err
		}
	}
	if !decl.IsContainer(d) {
		return nil
	}
	err := policy.Children(d, decl.Children(d), func(child decl.Decl) error {
		return run(ctx, child, policy, v, false)
	})
	if err != nil {
		return err
	}
	if notify && v.Leave != nil {
		return v.Leave(ctx, d)
	}
	return nil
}
