// Package callgraph builds the direct call graph of an ir.Module and
// orders its functions for the bottom-up passes.
package callgraph

import (
	"kernelabi/internal/diag"
	"kernelabi/internal/ir"
)

// CallGraph bundles the index, edges and ordering of one module.
type CallGraph struct {
	Index FuncIndex
	Graph Graph
	Slots []FuncSlot
	Topo  *Topo
}

// Analyze builds the call graph of m and reports cycles to r.
func Analyze(m *ir.Module, r diag.Reporter) *CallGraph {
	idx := BuildIndex(m)
	g, slots := BuildGraph(idx, m, r)
	topo := ToposortKahn(g)
	ReportCycles(idx, *topo, r)
	return &CallGraph{Index: idx, Graph: g, Slots: slots, Topo: topo}
}

// Func returns the definition for id or nil when it is only called.
func (cg *CallGraph) Func(id FuncID) *ir.Function {
	return cg.Slots[int(id)].Func
}

// ID returns the id of fn.
func (cg *CallGraph) ID(fn *ir.Function) (FuncID, bool) {
	id, ok := cg.Index.NameToID[fn.Name]
	return id, ok
}

// InCycle reports whether fn can reach itself through direct calls.
func (cg *CallGraph) InCycle(fn *ir.Function) bool {
	id, ok := cg.ID(fn)
	if !ok {
		return false
	}
	if cg.Graph.SelfCall[int(id)] {
		return true
	}
	seen := make([]bool, len(cg.Graph.Edges))
	stack := append([]FuncID(nil), cg.Graph.Edges[int(id)]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == id {
			return true
		}
		if seen[int(cur)] {
			continue
		}
		seen[int(cur)] = true
		stack = append(stack, cg.Graph.Edges[int(cur)]...)
	}
	return false
}

// BottomUp returns defined functions with callees before callers. Functions
// stuck in a cycle are appended last in id order.
func (cg *CallGraph) BottomUp() []*ir.Function {
	out := make([]*ir.Function, 0, len(cg.Topo.Order))
	placed := make([]bool, len(cg.Slots))
	for _, id := range cg.Topo.BottomUp() {
		if fn := cg.Func(id); fn != nil {
			out = append(out, fn)
			placed[int(id)] = true
		}
	}
	for id, slot := range cg.Slots {
		if slot.Present && !placed[id] {
			out = append(out, slot.Func)
		}
	}
	return out
}
