// Package dag orders packages so that imported packages are resolved
// before the packages importing them.
package dag

import (
	"sort"
	"strings"

	"lazyres/internal/project"
)

type PackageID uint32

type PackageIndex struct {
	NameToID map[string]PackageID
	IDToName []string
}

// собрать уникальные имена пакетов, sort.Strings, раздать ID по порядку
func BuildIndex(metas []project.PackageMeta) PackageIndex {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		uniq[meta.Name] = struct{}{}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]PackageID, len(names))
	for i, name := range names {
		nameToID[name] = PackageID(i)
	}

	return PackageIndex{
		NameToID: nameToID,
		IDToName: names,
	}
}

// Lookup maps an import path to the longest known package it points into.
// Imports of packages outside the index report false.
func (idx PackageIndex) Lookup(importPath string) (PackageID, bool) {
	for p := importPath; p != ""; {
		if id, ok := idx.NameToID[p]; ok {
			return id, true
		}
		i := strings.LastIndexByte(p, '.')
		if i < 0 {
			break
		}
		p = p[:i]
	}
	// the root package has the empty name
	id, ok := idx.NameToID[""]
	return id, ok && !strings.Contains(importPath, ".")
}
