package callgraph

import (
	"fmt"
	"slices"
	"strings"

	"kernelabi/internal/diag"
	"kernelabi/internal/ir"
)

// Graph holds direct call edges. Indirect calls have no edge.
type Graph struct {
	Edges    [][]FuncID // Edges[caller] = []callee
	Indeg    []int      // входящие степени для Kahn (учитывает только определённые функции)
	Present  []bool     // функция определена в модуле, а не только вызывается
	SelfCall []bool     // функция вызывает саму себя
}

// FuncSlot is the per-id view of a module function.
type FuncSlot struct {
	Name    string
	Func    *ir.Function
	Present bool
}

// BuildGraph creates the call graph of m. Calls to functions that are
// not part of m and duplicate definitions are reported to r.
func BuildGraph(idx FuncIndex, m *ir.Module, r diag.Reporter) (Graph, []FuncSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:    make([][]FuncID, nodeCount),
		Indeg:    make([]int, nodeCount),
		Present:  make([]bool, nodeCount),
		SelfCall: make([]bool, nodeCount),
	}
	if r == nil {
		r = diag.NopReporter{}
	}
	slots := make([]FuncSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Name = name
	}

	for _, fn := range m.Functions {
		id, ok := idx.NameToID[fn.Name]
		if !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			diag.ReportError(r, diag.CgDuplicateFunc, diag.FuncLoc(fn.Name),
				fmt.Sprintf("duplicate function %q", fn.Name)).
				WithNote(diag.FuncLoc(slot.Name), "previous definition").
				Emit()
			continue
		}
		slot.Func = fn
		slot.Present = true
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		seen := make(map[FuncID]struct{})
		for pos, inst := range slot.Func.Body {
			if inst.Op != ir.OpCall || inst.Callee == nil {
				continue
			}
			toID, ok := idx.NameToID[inst.Callee.Name]
			if !ok {
				continue
			}
			if FuncID(from) == toID {
				g.SelfCall[from] = true
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}

			g.Edges[from] = append(g.Edges[from], toID)
			if g.Present[int(toID)] {
				g.Indeg[int(toID)]++
			} else {
				r.Report(diag.CgMissingCallee, diag.SevError, diag.InstLoc(slot.Name, pos),
					fmt.Sprintf("function %q calls %q which is not defined in the module", slot.Name, inst.Callee.Name), nil)
			}
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}

	return g, slots
}

// Callers inverts the graph for id.
func (g Graph) Callers(id FuncID) []FuncID {
	var out []FuncID
	for from, tos := range g.Edges {
		if slices.Contains(tos, id) {
			out = append(out, FuncID(from))
		}
	}
	return out
}

// ReportCycles emits one diagnostic per function left in a cycle.
func ReportCycles(idx FuncIndex, topo Topo, r diag.Reporter) {
	if !topo.Cyclic || len(topo.Cycles) == 0 || r == nil {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")

	for _, name := range names {
		msg := fmt.Sprintf("function %q participates in a call cycle: %s", name, summary)
		r.Report(diag.CgCallCycle, diag.SevError, diag.FuncLoc(name), msg, nil)
	}
}
