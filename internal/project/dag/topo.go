package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []PackageID   // линейный порядок
	Batches [][]PackageID // волны независимых пакетов
	Cyclic  bool
	Cycles  []PackageID // узлы, оставшиеся в цикле
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]PackageID, 0, nodeCount),
		Batches: make([][]PackageID, 0),
	}

	current := make([]PackageID, 0, nodeCount)
	for i := 0; i < nodeCount; i++ {
		if indeg[i] == 0 {
			current = append(current, packageID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := make([]PackageID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]PackageID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != nodeCount {
		topo.Cyclic = true
		for i := 0; i < nodeCount; i++ {
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, packageID(i))
			}
		}
	}

	return topo
}

// Schedule returns the batches followed by the cyclic remainder as one
// last batch, so every package is scheduled exactly once.
func (t *Topo) Schedule() [][]PackageID {
	out := make([][]PackageID, 0, len(t.Batches)+1)
	out = append(out, t.Batches...)
	if len(t.Cycles) > 0 {
		out = append(out, t.Cycles)
	}
	return out
}

func packageID(i int) PackageID {
	id, err := safecast.Conv[PackageID](i)
	if err != nil {
		panic(fmt.Errorf("package id overflow: %w", err))
	}
	return id
}
