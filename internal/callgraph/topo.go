package callgraph

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []FuncID   // вызывающие раньше вызываемых
	Batches [][]FuncID // волны независимых функций
	Cyclic  bool
	Cycles  []FuncID // узлы, оставшиеся в цикле, и рекурсивные функции
}

// BottomUp returns Order reversed: callees before callers.
func (t *Topo) BottomUp() []FuncID {
	out := slices.Clone(t.Order)
	slices.Reverse(out)
	return out
}

func toID(i int) FuncID {
	id, err := safecast.Conv[FuncID](i)
	if err != nil {
		panic(fmt.Errorf("function id overflow: %w", err))
	}
	return id
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]FuncID, 0, nodeCount),
		Batches: make([][]FuncID, 0),
	}

	active := 0
	for i := range nodeCount {
		if g.Present[i] {
			active++
		}
	}

	current := make([]FuncID, 0, nodeCount)
	for i := range nodeCount {
		if g.Present[i] && indeg[i] == 0 {
			current = append(current, toID(i))
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]FuncID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]FuncID, 0)
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

	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		if indeg[i] > 0 || g.SelfCall[i] {
			topo.Cycles = append(topo.Cycles, toID(i))
		}
	}
	if visited != active || len(topo.Cycles) > 0 {
		topo.Cyclic = true
		slices.Sort(topo.Cycles)
	}

	return topo
}
