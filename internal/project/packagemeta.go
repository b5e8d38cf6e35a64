package project

import (
	"strings"

	"lazyres/internal/decl"
	"lazyres/internal/source"
)

// ImportMeta is one import directive as the package graph sees it.
type ImportMeta struct {
	Path string
	Span source.Span
}

// PackageMeta summarizes one tree file for the package graph. Several files
// may share a package name.
type PackageMeta struct {
	Name    string
	File    string
	Span    source.Span
	Imports []ImportMeta
}

// MetaOf extracts the package graph view of a loaded tree.
func MetaOf(path string, f *decl.File) PackageMeta {
	m := PackageMeta{Name: f.Package, File: path, Span: f.Span}
	for _, imp := range f.Imports {
		m.Imports = append(m.Imports, ImportMeta{
			Path: strings.TrimSuffix(imp.Path, ".*"),
			Span: f.Span,
		})
	}
	return m
}
