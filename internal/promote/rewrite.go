package promote

import (
	"fmt"

	"fortio.org/safecast"

	"kernelabi/internal/diag"
	"kernelabi/internal/ir"
	"kernelabi/internal/metadata"
)

// statefulPointerBits is the pointer width of every surface address space.
const statefulPointerBits = 32

// addressSpace encodes binding-table slot index as a UAV or bindless
// address space and gives it 32-bit pointers in the data layout.
func (p *Pass) addressSpace(index int) (ir.AddressSpace, error) {
	id, err := safecast.Conv[uint16](index)
	if err != nil {
		return 0, fmt.Errorf("resource index %d: %w", index, err)
	}
	m := p.View.Module
	bt := ir.UAV
	if p.Options.PreferBindless {
		bt = ir.Bindless
		m.UseBindless = true
	}
	as := ir.EncodeResource(id, bt, true)
	if m.DataLayout == nil {
		m.DataLayout = ir.DefaultDataLayout()
	}
	if m.DataLayout.PointerSize(as) != statefulPointerBits/8 {
		m.DataLayout.AppendPointerSpec(ir.PointerSpec{
			Space:    as,
			SizeBits: statefulPointerBits,
			ABIBits:  statefulPointerBits,
			PrefBits: statefulPointerBits,
		})
	}
	return as, nil
}

// rewrite gives every promoted argument a slot and moves its accesses to
// the slot's address space. Arguments are handled in parameter order.
func (p *Pass) rewrite(fn *ir.Function, s *scanState, st *Stats) error {
	if len(s.byArg) == 0 {
		return nil
	}
	res := &p.View.MD.Func(fn.Name).ResAlloc
	resType := metadata.UAVResource
	if p.Options.PreferBindless {
		resType = metadata.BindlessUAVResource
	}

	promoted := 0
	for _, argNo := range s.args() {
		cands := s.byArg[argNo]
		var index int
		if p.Caps.DynamicBTIAllocation {
			index = res.UAVsNum + promoted
			res.SetArg(argNo, metadata.ArgAlloc{Type: resType, Index: index})
		} else {
			alloc, ok := res.Arg(argNo)
			if !ok {
				// no slot was assigned up front; the accesses stay stateless
				diag.ReportError(p.reporter(), diag.PrmNoResource, diag.FuncLoc(fn.Name),
					fmt.Sprintf("%%%s has no pre-assigned surface slot", fn.Args[argNo].Name())).Emit()
				st.Rejected[ReasonNoResource] += len(cands)
				delete(s.positive, argNo)
				continue
			}
			index = alloc.Index
		}
		as, err := p.addressSpace(index)
		if err != nil {
			return err
		}
		for _, c := range cands {
			promoteAccess(fn, c, as)
		}
		st.Promoted += len(cands)
		st.Arguments++
		promoted++

		bt, id, _ := ir.DecodeResource(as)
		diag.ReportInfo(p.reporter(), diag.PrmPromoted, diag.FuncLoc(fn.Name),
			fmt.Sprintf("%d access(es) through %%%s use %s %d", len(cands), fn.Args[argNo].Name(), bt, id)).Emit()
	}
	res.UAVsNum += promoted
	return nil
}

// promoteAccess replaces the access of c by the same access through
// inttoptr(offset) in address space as.
func promoteAccess(fn *ir.Function, c Candidate, as ir.AddressSpace) {
	inst := c.Access
	offset := c.Offset.Emit(inst)
	b := ir.At(inst)

	var repl *ir.Instruction
	switch inst.Op {
	case ir.OpLoad:
		ptr := b.IntToPtr(offset, ir.Ptr(inst.Type(), as), "")
		repl = b.Load(inst.Type(), ptr, inst.Name())
		repl.Align, repl.Volatile = inst.Align, inst.Volatile
		repl.Invariant = c.Pointer.Type().Space == ir.SpaceConstant
	case ir.OpStore:
		val := inst.Operands[0]
		ptr := b.IntToPtr(offset, ir.Ptr(val.Type(), as), "")
		repl = b.Store(val, ptr)
		repl.Align, repl.Volatile = inst.Align, inst.Volatile
	case ir.OpCall:
		ptr := b.IntToPtr(offset, ir.Ptr(c.Pointer.Type().Elem, as), "")
		var args []ir.Value
		switch {
		case inst.Intrinsic == ir.IntrinsicSimdBlockRead:
			args = []ir.Value{ptr}
		case inst.Intrinsic.IsBlockAccess():
			args = []ir.Value{ptr, inst.Operand(1)}
		case inst.Intrinsic.IsA64():
			args = []ir.Value{ptr, ptr, inst.Operand(2), inst.Operand(3)}
		default:
			args = []ir.Value{ptr, offset, inst.Operand(2), inst.Operand(3)}
		}
		repl = b.CallIntrinsic(inst.Intrinsic, inst.Type(), args, inst.Name())
	default:
		panic(fmt.Errorf("promote: cannot promote %s", inst.Op))
	}
	fn.ReplaceAllUses(inst, repl)
	fn.Erase(inst)
}
