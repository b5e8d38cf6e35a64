package dag

import (
	"fmt"
	"slices"
	"strings"

	"lazyres/internal/diag"
	"lazyres/internal/project"
)

type Graph struct {
	Edges [][]PackageID // Edges[dep] = []importer
	Indeg []int         // входящие степени для Kahn
}

// BuildGraph links packages through their imports. Self imports and
// imports of unknown packages add no edge.
func BuildGraph(idx PackageIndex, metas []project.PackageMeta) Graph {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges: make([][]PackageID, nodeCount),
		Indeg: make([]int, nodeCount),
	}
	seen := make(map[[2]PackageID]struct{})
	for _, meta := range metas {
		from, ok := idx.NameToID[meta.Name]
		if !ok {
			// не должно происходить, индекс строится на тех же метаданных
			continue
		}
		for _, imp := range meta.Imports {
			dep, ok := idx.Lookup(imp.Path)
			if !ok || dep == from {
				continue
			}
			key := [2]PackageID{dep, from}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			g.Edges[dep] = append(g.Edges[dep], from)
			g.Indeg[from]++
		}
	}
	for i := range g.Edges {
		if len(g.Edges[i]) > 1 {
			slices.Sort(g.Edges[i])
		}
	}
	return g
}

// ReportCycles warns once per file of every package left in a cycle. Cyclic
// imports are legal; they only cost cross-file nesting during resolution.
func ReportCycles(idx PackageIndex, metas []project.PackageMeta, topo *Topo, r diag.Reporter) {
	if r == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	inCycle := make(map[string]bool, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
		inCycle[idx.IDToName[int(id)]] = true
	}
	summary := strings.Join(names, " <-> ")
	for _, meta := range metas {
		if !inCycle[meta.Name] {
			continue
		}
		msg := fmt.Sprintf("package %q participates in an import cycle: %s", meta.Name, summary)
		r.Report(diag.ProjImportCycle, diag.SevWarning, meta.Span, msg, nil)
	}
}
