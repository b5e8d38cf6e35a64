package driver

import (
	"sort"

	"lazyres/internal/decl"
)

// Find returns every declaration whose qualified name is fq, in file order.
// Overloads share a name, so more than one match is normal.
func (s *Session) Find(fq string) []decl.Decl {
	var out []decl.Decl
	for _, f := range s.Files {
		decl.Walk(f, func(d decl.Decl) bool {
			if _, ok := d.(*decl.File); ok {
				return true
			}
			if decl.IsLocal(d) {
				return false
			}
			if decl.CanBeLazilyResolved(d) && decl.QualifiedName(d) == fq {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// FileOf returns the session file whose package is pkg and path is path,
// or the first file of pkg when path is empty.
func (s *Session) FileOf(pkg, path string) (*decl.File, bool) {
	for i, f := range s.Files {
		if f.Package == pkg && (path == "" || s.Paths[i] == path) {
			return f, true
		}
	}
	return nil, false
}

// Names lists the qualified names Find accepts, sorted.
func (s *Session) Names() []string {
	seen := make(map[string]struct{})
	for _, f := range s.Files {
		decl.Walk(f, func(d decl.Decl) bool {
			if _, ok := d.(*decl.File); ok {
				return true
			}
			if decl.IsLocal(d) {
				return false
			}
			if decl.CanBeLazilyResolved(d) {
				seen[decl.QualifiedName(d)] = struct{}{}
			}
			return true
		})
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
