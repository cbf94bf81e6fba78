package argview

import (
	"errors"
	"fmt"
	"strings"

	"kernelabi/internal/diag"
	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
)

// ErrRecursion is matched by every *RecursionError.
var ErrRecursion = errors.New("implicit argument propagation through recursive calls")

// RecursionError names a function that reaches itself through its callers.
type RecursionError struct {
	Func  string
	Kind  implicitarg.Kind
	Cycle []string // Func, caller, ..., Func
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("cannot add %s to %s: recursive call chain %s", e.Kind, e.Func, strings.Join(e.Cycle, " <- "))
}

func (e *RecursionError) Is(target error) bool { return target == ErrRecursion }

// CheckCallers returns a *RecursionError, also reported as a
// diagnostic, when kind k cannot reach the callers of fn because fn calls
// itself through them.
func (v *View) CheckCallers(fn *ir.Function, k implicitarg.Kind) error {
	_, err := v.closureFor(fn, k)
	return err
}

// AddToFunctionAndCallers adds kind k to fn and to every function that
// transitively calls it. Nothing is changed when fn is recursive.
func (v *View) AddToFunctionAndCallers(fn *ir.Function, k implicitarg.Kind) error {
	closure, err := v.closureFor(fn, k)
	if err != nil {
		return err
	}
	for _, f := range closure {
		v.Add(f, k)
	}
	return nil
}

func (v *View) closureFor(fn *ir.Function, k implicitarg.Kind) ([]*ir.Function, error) {
	closure, err := v.callerClosure(fn)
	var rerr *RecursionError
	if errors.As(err, &rerr) {
		rerr.Kind = k
		diag.ReportError(v.Reporter, diag.ArgRecursion, diag.FuncLoc(fn.Name), rerr.Error()).Emit()
	}
	return closure, err
}

// callerClosure returns fn followed by its transitive callers in
// breadth-first order.
func (v *View) callerClosure(fn *ir.Function) ([]*ir.Function, error) {
	visited := map[*ir.Function]bool{fn: true}
	parent := map[*ir.Function]*ir.Function{}
	order := []*ir.Function{fn}
	work := []*ir.Function{fn}
	for len(work) > 0 {
		cur := work[0]
		work = work[1:]
		for _, caller := range v.Module.Callers(cur) {
			if caller == fn {
				return nil, &RecursionError{Func: fn.Name, Cycle: cycleOf(fn, cur, parent)}
			}
			if visited[caller] {
				continue
			}
			visited[caller] = true
			parent[caller] = cur
			order = append(order, caller)
			work = append(work, caller)
		}
	}
	return order, nil
}

// cycleOf walks parent links from last back to fn.
func cycleOf(fn, last *ir.Function, parent map[*ir.Function]*ir.Function) []string {
	var chain []string
	for f := last; f != nil; f = parent[f] {
		chain = append(chain, f.Name)
		if f == fn {
			break
		}
	}
	// chain is last..fn; print fn <- ... <- last <- fn
	out := make([]string, 0, len(chain)+1)
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i])
	}
	return append(out, fn.Name)
}
