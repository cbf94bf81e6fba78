package argview

import (
	"cmp"
	"fmt"
	"slices"

	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
	"kernelabi/internal/metadata"
)

func paramName(e metadata.Entry) string {
	name := implicitarg.Lookup(e.Kind()).Name
	if n, ok := metadata.ExplicitArg(e); ok {
		name = fmt.Sprintf("%s_%d", name, n)
	}
	if off, ok := metadata.StructOffset(e); ok {
		name = fmt.Sprintf("%s_%d", name, off)
	}
	return name
}

// Materialize appends a parameter for every entry that does not have
// one yet and returns the new parameters. Pending entries are first put
// in catalog order, so kinds recorded by later passes still land before
// higher kinds of the same batch. Calls to fn and calls made by fn are
// then extended to pass the new parameters.
func (v *View) Materialize(fn *ir.Function) []*ir.Argument {
	md, ok := v.MD.Lookup(fn.Name)
	if !ok || md.Materialized >= len(md.ImplicitArgs) {
		return nil
	}
	pending := md.ImplicitArgs[md.Materialized:]
	slices.SortStableFunc(pending, func(a, b metadata.Entry) int {
		return cmp.Compare(a.Kind(), b.Kind())
	})
	var added []*ir.Argument
	for _, e := range pending {
		desc := implicitarg.Lookup(e.Kind())
		added = append(added, fn.AddArg(paramName(e), desc.Type()))
	}
	md.Materialized = len(md.ImplicitArgs)

	for _, call := range v.Module.CallSites(fn) {
		v.threadCall(call)
	}
	for _, inst := range fn.Body {
		if inst.Op == ir.OpCall && inst.Callee != nil {
			v.threadCall(inst)
		}
	}
	return added
}

// MaterializeAll materializes every function of the module in module
// order.
func (v *View) MaterializeAll() {
	for _, fn := range v.Module.Functions {
		v.Materialize(fn)
	}
}

// threadCall appends to call the operands for the callee's implicit
// parameters it does not pass yet. Each operand is the caller's own
// parameter for the same entry; an entry the caller lacks is passed as
// undef. Threading stops at an entry the caller has but has not
// materialized; the caller's own Materialize resumes it.
func (v *View) threadCall(call *ir.Instruction) {
	callee := call.Callee
	md, ok := v.MD.Lookup(callee.Name)
	if !ok || md.Materialized == 0 {
		return
	}
	explicit := len(callee.Args) - md.Materialized
	if len(call.Operands) < explicit {
		return
	}
	caller := call.Parent
	if caller == nil {
		return
	}
	for j := len(call.Operands); j < len(callee.Args); j++ {
		e := md.ImplicitArgs[j-explicit]
		i := slices.Index(v.Entries(caller), e)
		if i < 0 {
			call.Operands = append(call.Operands, ir.UndefOf(callee.Args[j].Type()))
			continue
		}
		arg := v.argAt(caller, i)
		if arg == nil {
			return
		}
		call.Operands = append(call.Operands, arg)
	}
}

func (v *View) argAt(fn *ir.Function, i int) *ir.Argument {
	md, ok := v.MD.Lookup(fn.Name)
	if !ok || i >= md.Materialized {
		return nil
	}
	return fn.Args[len(fn.Args)-md.Materialized+i]
}

// Argument returns the parameter for kind k, or nil when k is absent or
// not materialized.
func (v *View) Argument(fn *ir.Function, k implicitarg.Kind) *ir.Argument {
	i, ok := v.ArgIndex(fn, k)
	if !ok {
		return nil
	}
	return v.argAt(fn, i)
}

// NumberedArgument returns the parameter for kind k tied to argNo.
func (v *View) NumberedArgument(fn *ir.Function, k implicitarg.Kind, argNo int) *ir.Argument {
	i, ok := v.NumberedArgIndex(fn, k, argNo)
	if !ok {
		return nil
	}
	return v.argAt(fn, i)
}
