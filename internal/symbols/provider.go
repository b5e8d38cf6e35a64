// Package symbols answers "which declaration does this qualified name denote"
// for the semantic algorithms.
package symbols

import (
	"strings"

	"lazyres/internal/decl"
)

// Provider is the symbol lookup used by the phase algorithms.
type Provider interface {
	// Classifier returns the class or type alias with the qualified name.
	Classifier(fq string) (decl.Decl, bool)
	// Callables returns the top-level or member callables with the
	// qualified name, in declaration order.
	Callables(fq string) []decl.Decl
	// HasPackage reports whether any file declares pkg.
	HasPackage(pkg string) bool
}

// PackageOf returns the package part of a qualified name.
func PackageOf(fq string) string {
	if idx := strings.LastIndexByte(fq, '.'); idx >= 0 {
		return fq[:idx]
	}
	return ""
}

// Join builds a qualified name, skipping empty parts.
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

func isClassifier(d decl.Decl) bool {
	switch d := d.(type) {
	case *decl.Class:
		return !d.IsAnonymous()
	case *decl.TypeAlias:
		return true
	}
	return false
}

func isIndexedCallable(d decl.Decl) bool {
	switch d.(type) {
	case *decl.Function, *decl.Property, *decl.Field, *decl.EnumEntry:
		return true
	}
	return false
}
