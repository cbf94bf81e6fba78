package frame

import (
	"fmt"

	"kernelabi/internal/callgraph"
	"kernelabi/internal/ir"
	"kernelabi/internal/layout"
	"kernelabi/internal/platform"
)

const (
	owordSize         = 16
	unboundedStackPad = 4 << 10 // recursion or indirect calls
	vlaStackPad       = 1 << 10
)

// Group summarizes the functions reachable from one kernel.
type Group struct {
	Kernel    string
	Members   []string
	StackCall bool
	Recursion bool
	Indirect  bool
	VLA       bool
}

// NeedsStack reports whether the group keeps private memory on a call stack.
func (g Group) NeedsStack() bool {
	return g.StackCall || g.Recursion || g.Indirect || g.VLA
}

// GroupOf collects the functions reachable from kernel through direct calls.
func GroupOf(cg *callgraph.CallGraph, kernel *ir.Function) Group {
	g := Group{Kernel: kernel.Name}
	root, ok := cg.ID(kernel)
	if !ok {
		return g
	}
	seen := make([]bool, len(cg.Slots))
	stack := []callgraph.FuncID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[int(id)] {
			continue
		}
		seen[int(id)] = true
		g.Members = append(g.Members, cg.Index.IDToName[int(id)])
		if fn := cg.Func(id); fn != nil {
			if id != root && fn.HasAttr(ir.AttrStackCall) {
				g.StackCall = true
			}
			if cg.InCycle(fn) {
				g.Recursion = true
			}
			if fn.HasIndirectCalls() {
				g.Indirect = true
			}
			if fn.HasAttr(ir.AttrVariableLengthAlloca) {
				g.VLA = true
			}
		}
		stack = append(stack, cg.Graph.Edges[int(id)]...)
	}
	return g
}

// StackCallSize is the private memory one lane of kernel needs when its
// callees run on a stack: the deepest chain of callee frames plus their
// OWORD aligned arguments and return values. perLane holds the frame
// size of every defined function by name.
func StackCallSize(cg *callgraph.CallGraph, kernel *ir.Function, perLane map[string]int, le *layout.LayoutEngine, caps platform.Caps) (int, Group, error) {
	g := GroupOf(cg, kernel)
	size := 0
	if g.StackCall {
		memo := map[callgraph.FuncID]int{}
		var walk func(id callgraph.FuncID) (int, error)
		walk = func(id callgraph.FuncID) (int, error) {
			if v, ok := memo[id]; ok {
				return v, nil
			}
			fn := cg.Func(id)
			if fn == nil {
				return 0, nil
			}
			own := perLane[fn.Name]
			if cg.InCycle(fn) {
				memo[id] = own
				return own, nil
			}
			deepest := 0
			seen := map[callgraph.FuncID]bool{}
			for _, callee := range cg.Graph.Edges[int(id)] {
				if seen[callee] {
					continue
				}
				seen[callee] = true
				cf := cg.Func(callee)
				if cf == nil {
					continue
				}
				args, err := argBytes(cf, le)
				if err != nil {
					return 0, err
				}
				child, err := walk(callee)
				if err != nil {
					return 0, err
				}
				deepest = max(deepest, args+child)
			}
			memo[id] = own + deepest
			return own + deepest, nil
		}
		root, _ := cg.ID(kernel)
		var err error
		size, err = walk(root)
		if err != nil {
			return 0, g, err
		}
	}
	if g.Recursion || g.Indirect {
		size += unboundedStackPad
	}
	if g.VLA {
		size += vlaStackPad
	}
	return max(size, caps.MinStackCallBytes), g, nil
}

func argBytes(fn *ir.Function, le *layout.LayoutEngine) (int, error) {
	total := 0
	for _, a := range fn.Args {
		n, err := le.AllocSizeOf(a.Type())
		if err != nil {
			return 0, fmt.Errorf("frame: @%s: argument %d: %w", fn.Name, a.No, err)
		}
		total += layout.RoundUp(n, owordSize)
	}
	if fn.Ret != nil && fn.Ret != ir.Void {
		n, err := le.AllocSizeOf(fn.Ret)
		if err != nil {
			return 0, fmt.Errorf("frame: @%s: return value: %w", fn.Name, err)
		}
		total += layout.RoundUp(n, owordSize)
	}
	return total, nil
}
