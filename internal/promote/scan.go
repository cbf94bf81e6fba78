package promote

import (
	"context"
	"fmt"
	"slices"

	"kernelabi/internal/diag"
	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
	"kernelabi/internal/trace"
)

// Candidate is an access that can be addressed relative to Base.
type Candidate struct {
	Access   *ir.Instruction
	Pointer  ir.Value
	Base     *ir.Argument
	Implicit bool
	Offset   Expr
}

// ArgNo is the parameter the candidate is relative to.
func (c Candidate) ArgNo() int { return c.Base.No }

// scanState is what the scan of one function leaves for rewrite and
// finalize.
type scanState struct {
	byArg    map[int][]Candidate
	count    int
	positive map[int]bool // per explicit argument, optional buffer offset only
}

func (s *scanState) args() []int {
	out := make([]int, 0, len(s.byArg))
	for n := range s.byArg {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// updatePositive keeps a running "all offsets non-negative" flag per
// argument.
func (s *scanState) updatePositive(argNo int, positive bool) {
	prev, seen := s.positive[argNo]
	if !seen {
		prev = true
	}
	s.positive[argNo] = prev && positive
}

type accessKind uint8

const (
	accessLoad accessKind = iota
	accessStore
	accessAtomic
	accessBlockRead
	accessBlockWrite
)

func classify(inst *ir.Instruction) (accessKind, bool) {
	switch inst.Op {
	case ir.OpLoad:
		return accessLoad, true
	case ir.OpStore:
		return accessStore, true
	case ir.OpCall:
		switch {
		case inst.Intrinsic == ir.IntrinsicSimdBlockRead:
			return accessBlockRead, true
		case inst.Intrinsic.IsBlockAccess():
			return accessBlockWrite, true
		case inst.Intrinsic.IsUntypedAtomic():
			return accessAtomic, true
		}
	}
	return 0, false
}

// atomicPromotable rejects atomics that only exist in the 64-bit
// stateless form.
func atomicPromotable(inst *ir.Instruction) bool {
	if inst.Intrinsic.IsA64() && inst.Operand(0) != inst.Operand(1) {
		return false
	}
	if t := inst.Type(); t.IsInt() && t.Bits == 64 {
		return false
	}
	return true
}

func isGlobalPointer(v ir.Value) bool {
	if v == nil {
		return false
	}
	t := v.Type()
	return t.IsPointer() && (t.Space == ir.SpaceGlobal || t.Space == ir.SpaceConstant)
}

func (p *Pass) scan(ctx context.Context, fn *ir.Function, st *Stats) *scanState {
	s := &scanState{byArg: map[int][]Candidate{}, positive: map[int]bool{}}
	for idx, inst := range fn.Body {
		kind, ok := classify(inst)
		if !ok {
			continue
		}
		ptr := inst.PointerOperand()
		if !isGlobalPointer(ptr) {
			continue
		}
		p.noteNonKernelArg(fn, kind, ptr)
		st.Candidates++

		var reason Reason
		switch {
		case kind == accessAtomic && (!p.Options.StatefulAtomics || !atomicPromotable(inst)):
			reason = ReasonAtomic
		case s.count >= MaxCandidates:
			reason = ReasonCap
		default:
			var c Candidate
			c, reason, ok = p.analyze(fn, inst, ptr, s)
			if ok {
				s.byArg[c.ArgNo()] = append(s.byArg[c.ArgNo()], c)
				s.count++
				trace.Point(ctx, trace.ScopeAccess, "candidate", fmt.Sprintf("%%%s = %s", c.Base.Name(), c.Offset))
				continue
			}
		}
		st.Rejected[reason]++
		trace.Point(ctx, trace.ScopeAccess, "stateless", reason.String())
		if p.Remarks && reason != ReasonCap {
			diag.ReportInfo(p.reporter(), reason.code(), diag.InstLoc(fn.Name, idx),
				fmt.Sprintf("%s access kept stateless: %s", inst.Op, reason)).Emit()
		}
	}
	return s
}

// traceBase strips casts and element-pointer steps from ptr. geps is the
// chain last-executed first.
func traceBase(ptr ir.Value) (base ir.Value, geps []*ir.Instruction) {
	base = ir.StripCasts(ptr)
	for {
		g, ok := base.(*ir.Instruction)
		if !ok || g.Op != ir.OpGEP {
			return base, geps
		}
		geps = append(geps, g)
		base = ir.StripCasts(g.Operands[0])
	}
}

// kernelArg returns the argument of fn that ptr's base is, if any.
func kernelArg(fn *ir.Function, ptr, base ir.Value) (*ir.Argument, bool) {
	a, ok := base.(*ir.Argument)
	if !ok || a.Parent != fn {
		return nil, false
	}
	// an address space cast in the chain hides a different buffer
	if a.Type().Space != ptr.Type().Space {
		return nil, false
	}
	return a, true
}

// implicitKind is the implicit argument kind a materialized parameter
// stands for.
func (p *Pass) implicitKind(fn *ir.Function, a *ir.Argument) (implicitarg.Kind, bool) {
	md, ok := p.View.MD.Lookup(fn.Name)
	if !ok {
		return 0, false
	}
	first := len(fn.Args) - md.Materialized
	if a.No < first {
		return 0, false
	}
	return md.ImplicitArgs[a.No-first].Kind(), true
}

func (p *Pass) statelessOnly(k implicitarg.Kind) bool {
	switch k {
	case implicitarg.SyncBuffer:
		return p.Options.IgnoreSyncBuffer
	case implicitarg.RTGlobalBufferPointer, implicitarg.AssertBufferPointer:
		return true
	}
	return false
}

func (p *Pass) analyze(fn *ir.Function, inst *ir.Instruction, ptr ir.Value, s *scanState) (Candidate, Reason, bool) {
	opts := p.Options
	base, geps := traceBase(ptr)
	if !opts.SupportNonGEPPtr && len(geps) == 0 {
		return Candidate{}, ReasonNoGEP, false
	}
	arg, ok := kernelArg(fn, ptr, base)
	if !ok {
		return Candidate{}, ReasonNotKernelArg, false
	}
	kind, implicit := p.implicitKind(fn, arg)
	if implicit && p.statelessOnly(kind) {
		return Candidate{}, ReasonSkippedBuffer, false
	}

	oracle := p.oracle()
	aligned := !opts.SubDWAlignedPtrArg || implicit || oracle.PointeeAlign(base) >= 4
	if opts.SupportNonGEPPtr && len(geps) == 0 && !implicit {
		aligned = oracle.PointeeAlign(base) >= 4
	}

	hasOffset := opts.HasBufferOffset
	optional := hasOffset && opts.BufferOffsetOptional
	positive := true
	if !implicit && aligned && (!hasOffset || optional) && !opts.AssumePositiveOffset {
		for _, g := range geps {
			for _, idx := range g.Indices() {
				positive = positive && oracle.NonNegative(idx)
			}
		}
		if optional {
			s.updatePositive(arg.No, positive)
		}
	}
	if !hasOffset && !(positive && aligned) {
		if !aligned {
			return Candidate{}, ReasonUnaligned, false
		}
		return Candidate{}, ReasonMaybeNegative, false
	}

	var seed ir.Value
	if hasOffset && !implicit && !opts.AssumePositiveOffset {
		bo := p.View.NumberedArgument(fn, implicitarg.BufferOffset, arg.No)
		if bo == nil {
			return Candidate{}, ReasonNoBufferOffset, false
		}
		seed = bo
	}
	e, err := Decompose(geps, seed, p.Layout)
	if err != nil {
		return Candidate{}, ReasonNotAffine, false
	}
	return Candidate{Access: inst, Pointer: ptr, Base: arg, Implicit: implicit, Offset: e}, 0, true
}

// noteNonKernelArg records accesses whose address does not come from a
// kernel argument at all.
func (p *Pass) noteNonKernelArg(fn *ir.Function, kind accessKind, ptr ir.Value) {
	base, geps := traceBase(ptr)
	if _, ok := kernelArg(fn, ptr, base); ok && (p.Options.SupportNonGEPPtr || len(geps) > 0) {
		return
	}
	md := p.View.MD.Func(fn.Name)
	switch kind {
	case accessStore, accessBlockWrite:
		md.HasNonKernelArgStore = true
	case accessAtomic:
		md.HasNonKernelArgAtomic = true
	default:
		md.HasNonKernelArgLoad = true
	}
}
