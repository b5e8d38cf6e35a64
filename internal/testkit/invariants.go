// Package testkit holds tree invariants shared by package tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"lazyres/internal/decl"
	"lazyres/internal/phase"
	"lazyres/internal/source"
)

// CheckTreeInvariants runs the structural checks on a freshly loaded tree:
// 1) the file span points at a file registered in fs
// 2) every declaration span is in that file and has a 1-based line
// 3) parent links agree with the structure Walk sees
func CheckTreeInvariants(fs *source.FileSet, f *decl.File) error {
	if fs == nil || f == nil {
		return fmt.Errorf("nil file set or file")
	}
	registered, err := safecast.Conv[uint32](fs.Len())
	if err != nil {
		return fmt.Errorf("file count overflow: %w", err)
	}
	id := f.Span.File
	if id == source.NoFile || uint32(id) > registered {
		return fmt.Errorf("file span points to unknown file id %d", id)
	}

	var visit func(parent, d decl.Decl) error
	visit = func(parent, d decl.Decl) error {
		sp := d.Head().Span
		if sp.File != id {
			return fmt.Errorf("%s: span file mismatch: got=%d want=%d", decl.Describe(d), sp.File, id)
		}
		if sp.Line == 0 {
			return fmt.Errorf("%s: span has no line", decl.Describe(d))
		}
		if parent != nil && decl.Parent(d) != parent {
			return fmt.Errorf("%s: parent is %s, want %s", decl.Describe(d), decl.Describe(decl.Parent(d)), decl.Describe(parent))
		}
		for _, group := range [][]decl.Decl{decl.SubElements(d), decl.Children(d), decl.Locals(d)} {
			for _, c := range group {
				if err := visit(d, c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return visit(nil, f)
}

// CheckStampInvariants checks phase stamps of a tree at any point during
// or after resolution:
// 1) the file stamp never passes the last non-lazy phase
// 2) nothing is lazily resolved before the file's imports are
// 3) a class's main stamp never exceeds the stamp of a member
func CheckStampInvariants(f *decl.File) error {
	if f == nil {
		return fmt.Errorf("nil file")
	}
	if f.Phase() > phase.LastNonLazy {
		return fmt.Errorf("file stamp %s is past %s", f.Phase(), phase.LastNonLazy)
	}
	var err error
	decl.Walk(f, func(d decl.Decl) bool {
		if err != nil {
			return false
		}
		if _, ok := d.(*decl.File); ok {
			return true
		}
		if d.Head().Phase() > phase.LastNonLazy && f.Phase() < phase.LastNonLazy {
			err = fmt.Errorf("%s at %s while the file is at %s", decl.Describe(d), d.Head().Phase(), f.Phase())
			return false
		}
		c, ok := d.(*decl.Class)
		if !ok || decl.IsLocal(c) {
			return true
		}
		for _, m := range c.Members {
			if c.Phase() > m.Head().Phase() {
				err = fmt.Errorf("%s at %s is ahead of member %s at %s",
					decl.Describe(c), c.Phase(), decl.Describe(m), m.Head().Phase())
				return false
			}
		}
		return true
	})
	return err
}
