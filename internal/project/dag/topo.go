package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []LibraryID   // зависимости раньше импортёров
	Batches [][]LibraryID // волны независимых библиотек
	Cyclic  bool
	Cycles  []LibraryID // библиотеки на цикле (без тех, что лишь импортируют цикл)
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]LibraryID, 0, nodeCount),
		Batches: make([][]LibraryID, 0),
	}

	active := 0
	current := make([]LibraryID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, toID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := make([]LibraryID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]LibraryID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		topo.Cycles = onCycle(g, indeg)
	}
	return topo
}

// onCycle drops the libraries that only import a cycle: a leftover library
// nobody else among the leftovers imports cannot be on a cycle.
func onCycle(g Graph, indeg []int) []LibraryID {
	left := make([]bool, len(indeg))
	for i := range indeg {
		left[i] = g.Present[i] && indeg[i] > 0
	}
	for changed := true; changed; {
		changed = false
		for i := range left {
			if !left[i] {
				continue
			}
			imported := false
			for _, to := range g.Edges[i] {
				if left[int(to)] {
					imported = true
					break
				}
			}
			if !imported {
				left[i] = false
				changed = true
			}
		}
	}
	var out []LibraryID
	for i, ok := range left {
		if ok {
			out = append(out, toID(i))
		}
	}
	return out
}

func toID(i int) LibraryID {
	id, err := safecast.Conv[LibraryID](i)
	if err != nil {
		panic(fmt.Errorf("library id overflow: %w", err))
	}
	return id
}
