package promote

import (
	"context"
	"testing"

	"kernelabi/internal/argview"
	"kernelabi/internal/diag"
	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
	"kernelabi/internal/layout"
	"kernelabi/internal/metadata"
	"kernelabi/internal/platform"
)

var globalF32 = ir.Ptr(ir.F32, ir.SpaceGlobal)

type harness struct {
	m   *ir.Module
	md  *metadata.Container
	bag *diag.Bag
	p   *Pass
}

func newHarness(m *ir.Module, opts platform.Options, entries ...string) *harness {
	md := metadata.New()
	for _, e := range entries {
		md.Func(e).IsEntry = true
	}
	bag := diag.NewBag(128)
	r := diag.NewBagReporter(bag)
	return &harness{
		m:   m,
		md:  md,
		bag: bag,
		p: &Pass{
			View:     argview.New(m, md, r),
			Caps:     platform.DefaultCaps(),
			Options:  opts,
			Reporter: r,
		},
	}
}

func (h *harness) run(t *testing.T) Stats {
	t.Helper()
	st, err := h.p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return st
}

func (h *harness) has(code diag.Code) bool {
	for _, d := range h.bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func (h *harness) count(code diag.Code) int {
	n := 0
	for _, d := range h.bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func ops(fn *ir.Function, op ir.Opcode) []*ir.Instruction {
	var out []*ir.Instruction
	for _, inst := range fn.Body {
		if inst.Op == op {
			out = append(out, inst)
		}
	}
	return out
}

// statefulOffset returns the offset an access was rewritten to, or nil
// if it is still stateless.
func statefulOffset(t *testing.T, inst *ir.Instruction) (ir.Value, ir.AddressSpace) {
	t.Helper()
	ptr, ok := inst.PointerOperand().(*ir.Instruction)
	if !ok || ptr.Op != ir.OpIntToPtr {
		return nil, 0
	}
	return ptr.Operands[0], ptr.Type().Space
}

func TestPromoteDynamicIndex(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, globalF32))
	b := ir.NewBuilder(k)
	gid := b.CallIntrinsic(ir.IntrinsicGetLocalIDX, ir.I32, nil, "gid")
	p := b.GEP(ir.F32, k.Arg(0), []ir.Value{gid}, "p")
	v := b.Load(ir.F32, p, "v")
	b.Store(v, p)
	b.Ret(nil)

	h := newHarness(m, platform.DefaultOptions(), "k")
	st := h.run(t)
	if st.Promoted != 2 || st.Arguments != 1 || st.Kept() != 0 {
		t.Fatalf("stats = %+v", st)
	}

	load := ops(k, ir.OpLoad)[0]
	off, as := statefulOffset(t, load)
	mul, ok := off.(*ir.Instruction)
	if !ok || mul.Op != ir.OpMul || mul.Operands[0] != ir.Value(gid) {
		t.Fatalf("offset = %v, want gid*4", off)
	}
	if c, ok := ir.AsConst(mul.Operands[1]); !ok || c.Val != 4 {
		t.Fatalf("element size = %v, want 4", mul.Operands[1])
	}
	bt, id, direct := ir.DecodeResource(as)
	if bt != ir.UAV || id != 0 || !direct {
		t.Fatalf("address space = %s %d direct=%v", bt, id, direct)
	}
	if store := ops(k, ir.OpStore)[0]; store.Operands[0] != ir.Value(load) {
		t.Fatalf("store must use the promoted load")
	} else if _, sas := statefulOffset(t, store); sas != as {
		t.Fatalf("store address space %d, want %d", sas, as)
	}

	res := h.md.Func("k").ResAlloc
	if res.UAVsNum != 1 {
		t.Fatalf("UAVsNum = %d", res.UAVsNum)
	}
	if a, _ := res.Arg(0); a.Type != metadata.UAVResource || a.Index != 0 {
		t.Fatalf("arg 0 = %+v", a)
	}
	if m.DataLayout.PointerSize(as) != 4 {
		t.Fatalf("data layout %q has no 32-bit pointer for %d", m.DataLayout, as)
	}
	if !h.has(diag.PrmPromoted) {
		t.Fatalf("missing promotion diagnostic")
	}
}

func TestPromoteNeedsNonNegativeOffset(t *testing.T) {
	tests := []struct {
		name     string
		opts     func(*platform.Options)
		promoted int
	}{
		{"plain", func(*platform.Options) {}, 0},
		{"assume-positive", func(o *platform.Options) { o.AssumePositiveOffset = true }, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ir.NewModule("m")
			k := m.Add(ir.NewFunction("k", ir.Void, globalF32, ir.I32))
			b := ir.NewBuilder(k)
			neg := b.GEP(ir.F32, k.Arg(0), []ir.Value{ir.ConstInt(ir.I64, -3)}, "neg")
			b.Load(ir.F32, neg, "x")
			dyn := b.GEP(ir.F32, k.Arg(0), []ir.Value{k.Arg(1)}, "dyn")
			b.Load(ir.F32, dyn, "y")
			b.Ret(nil)

			opts := platform.DefaultOptions()
			tt.opts(&opts)
			h := newHarness(m, opts, "k")
			h.p.Remarks = true
			st := h.run(t)
			if st.Promoted != tt.promoted {
				t.Fatalf("promoted = %d, want %d", st.Promoted, tt.promoted)
			}
			if tt.promoted == 0 {
				if st.Rejected[ReasonMaybeNegative] != 2 || !h.has(diag.PrmNegativeOffset) {
					t.Fatalf("stats = %+v", st)
				}
				if ops(k, ir.OpLoad)[0].PointerOperand() != ir.Value(neg) {
					t.Fatalf("a stateless access must not change")
				}
				if h.md.Func("k").ResAlloc.UAVsNum != 0 {
					t.Fatalf("no slot should be taken")
				}
			}
		})
	}
}

func bufferOffsetKernel() (*ir.Module, *ir.Function, *ir.Instruction) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, globalF32))
	b := ir.NewBuilder(k)
	gid := b.CallIntrinsic(ir.IntrinsicGetLocalIDX, ir.I32, nil, "gid")
	p := b.GEP(ir.F32, k.Arg(0), []ir.Value{gid}, "p")
	b.Load(ir.F32, p, "v")
	b.Ret(nil)
	return m, k, gid
}

func withBufferOffsets(h *harness, fn *ir.Function) *ir.Argument {
	h.p.View.AddBufferOffsetArgs(fn)
	h.p.View.Materialize(fn)
	return h.p.View.NumberedArgument(fn, implicitarg.BufferOffset, 0)
}

func TestPromoteSeedsWithBufferOffset(t *testing.T) {
	m, k, gid := bufferOffsetKernel()
	opts := platform.DefaultOptions()
	opts.HasBufferOffset = true
	h := newHarness(m, opts, "k")
	bo := withBufferOffsets(h, k)
	if bo == nil {
		t.Fatalf("no buffer offset argument")
	}

	st := h.run(t)
	if st.Promoted != 1 || st.OffsetsDropped != 0 {
		t.Fatalf("stats = %+v", st)
	}
	off, _ := statefulOffset(t, ops(k, ir.OpLoad)[0])
	add, ok := off.(*ir.Instruction)
	if !ok || add.Op != ir.OpAdd || add.Operands[0] != ir.Value(bo) {
		t.Fatalf("offset = %v, want bufferOffset + gid*4", off)
	}
	if mul := add.Operands[1].(*ir.Instruction); mul.Operands[0] != ir.Value(gid) {
		t.Fatalf("index term = %v", mul)
	}
}

func TestOptionalBufferOffsetIsDropped(t *testing.T) {
	m, k, gid := bufferOffsetKernel()
	opts := platform.DefaultOptions()
	opts.HasBufferOffset = true
	opts.BufferOffsetOptional = true
	h := newHarness(m, opts, "k")
	bo := withBufferOffsets(h, k)

	st := h.run(t)
	if st.Promoted != 1 || st.OffsetsDropped != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if k.HasUses(bo) {
		t.Fatalf("buffer offset still used")
	}
	off, _ := statefulOffset(t, ops(k, ir.OpLoad)[0])
	mul, ok := off.(*ir.Instruction)
	if !ok || mul.Op != ir.OpMul || mul.Operands[0] != ir.Value(gid) {
		t.Fatalf("offset = %v, want gid*4 after folding", off)
	}
	if len(ops(k, ir.OpAdd)) != 0 {
		t.Fatalf("add of zero not folded")
	}
}

func TestOptionalBufferOffsetKeptForNegative(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, globalF32))
	b := ir.NewBuilder(k)
	p := b.GEP(ir.F32, k.Arg(0), []ir.Value{ir.ConstInt(ir.I32, -3)}, "p")
	b.Load(ir.F32, p, "v")
	b.Ret(nil)

	opts := platform.DefaultOptions()
	opts.HasBufferOffset = true
	opts.BufferOffsetOptional = true
	h := newHarness(m, opts, "k")
	bo := withBufferOffsets(h, k)

	st := h.run(t)
	if st.Promoted != 1 || st.OffsetsDropped != 0 {
		t.Fatalf("stats = %+v", st)
	}
	off, _ := statefulOffset(t, ops(k, ir.OpLoad)[0])
	add, ok := off.(*ir.Instruction)
	if !ok || add.Operands[0] != ir.Value(bo) {
		t.Fatalf("offset = %v, want bufferOffset - 12", off)
	}
	if c, ok := ir.AsConst(add.Operands[1]); !ok || c.Val != -12 {
		t.Fatalf("constant term = %v", add.Operands[1])
	}
}

func TestPromotionCap(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, globalF32))
	b := ir.NewBuilder(k)
	for i := range MaxCandidates + 1 {
		p := b.GEP(ir.F32, k.Arg(0), []ir.Value{ir.ConstInt(ir.I32, int64(i))}, "")
		b.Load(ir.F32, p, "")
	}
	b.Ret(nil)

	h := newHarness(m, platform.DefaultOptions(), "k")
	st := h.run(t)
	if st.Promoted != MaxCandidates || st.Rejected[ReasonCap] != 1 {
		t.Fatalf("stats = %+v", st)
	}
	loads := ops(k, ir.OpLoad)
	if off, _ := statefulOffset(t, loads[len(loads)-1]); off != nil {
		t.Fatalf("access past the cap was promoted")
	}
	if n := h.bag.Len(); n != h.count(diag.PrmPromoted) {
		t.Fatalf("unexpected diagnostics past the cap: %v", h.bag.Items())
	}
}

func TestAtomics(t *testing.T) {
	tests := []struct {
		name     string
		id       ir.Intrinsic
		ret      *ir.Type
		sameAddr bool
		promoted bool
	}{
		{"raw", ir.IntrinsicIntAtomicRaw, ir.I32, false, true},
		{"raw-qword", ir.IntrinsicIntAtomicRaw, ir.I64, false, false},
		{"a64-pair", ir.IntrinsicIntAtomicRawA64, ir.I32, true, true},
		{"a64-split", ir.IntrinsicIntAtomicRawA64, ir.I32, false, false},
		{"float-a64", ir.IntrinsicFloatAtomicRawA64, ir.F32, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ir.NewModule("m")
			k := m.Add(ir.NewFunction("k", ir.Void, ir.Ptr(ir.I32, ir.SpaceGlobal)))
			b := ir.NewBuilder(k)
			p := b.GEP(ir.I32, k.Arg(0), []ir.Value{ir.ConstInt(ir.I32, 2)}, "p")
			var second ir.Value = ir.ConstInt(ir.I32, 0)
			if tt.sameAddr {
				second = p
			} else if tt.id.IsA64() {
				second = k.Arg(0)
			}
			b.CallIntrinsic(tt.id, tt.ret, []ir.Value{p, second, ir.ConstInt(ir.I32, 1), ir.ConstInt(ir.I32, 0)}, "old")
			b.Ret(nil)

			h := newHarness(m, platform.DefaultOptions(), "k")
			st := h.run(t)
			if got := st.Promoted == 1; got != tt.promoted {
				t.Fatalf("promoted = %v, want %v (%+v)", got, tt.promoted, st)
			}
			call := ops(k, ir.OpCall)
			atomic := call[len(call)-1]
			if !tt.promoted {
				if st.Rejected[ReasonAtomic] != 1 || atomic.Operands[0] != ir.Value(p) {
					t.Fatalf("atomic changed: %v", atomic)
				}
				return
			}
			off, _ := statefulOffset(t, atomic)
			if c, ok := ir.AsConst(off); !ok || c.Val != 8 {
				t.Fatalf("offset = %v, want 8", off)
			}
			if tt.id.IsA64() {
				if atomic.Operands[1] != atomic.Operands[0] {
					t.Fatalf("A64 atomic must keep the address pair")
				}
			} else if atomic.Operands[1] != off {
				t.Fatalf("raw atomic takes the offset as its second operand")
			}
		})
	}
}

func TestAtomicsDisabled(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, ir.Ptr(ir.I32, ir.SpaceGlobal)))
	b := ir.NewBuilder(k)
	p := b.GEP(ir.I32, k.Arg(0), []ir.Value{ir.ConstInt(ir.I32, 0)}, "p")
	b.CallIntrinsic(ir.IntrinsicIntAtomicRaw, ir.I32, []ir.Value{p, ir.ConstInt(ir.I32, 0), ir.ConstInt(ir.I32, 1), ir.ConstInt(ir.I32, 0)}, "")
	b.Ret(nil)

	opts := platform.DefaultOptions()
	opts.StatefulAtomics = false
	h := newHarness(m, opts, "k")
	if st := h.run(t); st.Promoted != 0 || st.Rejected[ReasonAtomic] != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestBlockAccess(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, ir.Ptr(ir.I32, ir.SpaceGlobal)))
	b := ir.NewBuilder(k)
	gid := b.CallIntrinsic(ir.IntrinsicGetLocalIDX, ir.I32, nil, "gid")
	p := b.GEP(ir.I32, k.Arg(0), []ir.Value{gid}, "p")
	r := b.CallIntrinsic(ir.IntrinsicSimdBlockRead, ir.Vec(ir.I32, 8), []ir.Value{p}, "r")
	b.CallIntrinsic(ir.IntrinsicSimdBlockWrite, ir.Void, []ir.Value{p, r}, "")
	b.Ret(nil)

	h := newHarness(m, platform.DefaultOptions(), "k")
	if st := h.run(t); st.Promoted != 2 {
		t.Fatalf("stats = %+v", st)
	}
	var read, write *ir.Instruction
	for _, inst := range ops(k, ir.OpCall) {
		switch inst.Intrinsic {
		case ir.IntrinsicSimdBlockRead:
			read = inst
		case ir.IntrinsicSimdBlockWrite:
			write = inst
		}
	}
	if len(read.Operands) != 1 || !read.Operands[0].Type().Space.IsStateful() {
		t.Fatalf("block read = %v", read)
	}
	if write.Operands[1] != ir.Value(read) {
		t.Fatalf("block write data must be the promoted read")
	}
}

func TestSubDWordAlignedArgument(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, ir.Ptr(ir.I8, ir.SpaceGlobal)))
	b := ir.NewBuilder(k)
	p := b.GEP(ir.I8, k.Arg(0), []ir.Value{ir.ConstInt(ir.I32, 4)}, "p")
	b.Load(ir.I8, p, "c")
	b.Ret(nil)

	opts := platform.DefaultOptions()
	opts.SubDWAlignedPtrArg = true
	h := newHarness(m, opts, "k")
	if st := h.run(t); st.Promoted != 0 || st.Rejected[ReasonUnaligned] != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestNonGEPPointer(t *testing.T) {
	tests := []struct {
		name     string
		elem     *ir.Type
		nonGEP   bool
		promoted int
		reason   Reason
	}{
		{"disabled", ir.I32, false, 0, ReasonNoGEP},
		{"dword", ir.I32, true, 1, 0},
		{"byte", ir.I8, true, 0, ReasonUnaligned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ir.NewModule("m")
			k := m.Add(ir.NewFunction("k", ir.Void, ir.Ptr(tt.elem, ir.SpaceGlobal)))
			b := ir.NewBuilder(k)
			b.Load(tt.elem, k.Arg(0), "v")
			b.Ret(nil)

			opts := platform.DefaultOptions()
			opts.SupportNonGEPPtr = tt.nonGEP
			h := newHarness(m, opts, "k")
			st := h.run(t)
			if st.Promoted != tt.promoted {
				t.Fatalf("promoted = %d, want %d", st.Promoted, tt.promoted)
			}
			if tt.promoted == 0 && st.Rejected[tt.reason] != 1 {
				t.Fatalf("rejected = %v, want %s", st.Rejected, tt.reason)
			}
		})
	}
}

func TestConstantLoadIsInvariant(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, ir.Ptr(ir.F32, ir.SpaceConstant)))
	b := ir.NewBuilder(k)
	p := b.GEP(ir.F32, k.Arg(0), []ir.Value{ir.ConstInt(ir.I32, 1)}, "p")
	b.Load(ir.F32, p, "v")
	b.Ret(nil)

	h := newHarness(m, platform.DefaultOptions(), "k")
	h.run(t)
	load := ops(k, ir.OpLoad)[0]
	if !load.Invariant {
		t.Fatalf("constant load must be invariant")
	}
	if off, _ := statefulOffset(t, load); off == nil {
		t.Fatalf("constant load not promoted")
	}
}

func TestStatelessOnlyBuffers(t *testing.T) {
	tests := []struct {
		kind       implicitarg.Kind
		ignoreSync bool
		promoted   int
	}{
		{implicitarg.SyncBuffer, false, 1},
		{implicitarg.SyncBuffer, true, 0},
		{implicitarg.RTGlobalBufferPointer, false, 0},
		{implicitarg.AssertBufferPointer, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			m := ir.NewModule("m")
			k := m.Add(ir.NewFunction("k", ir.Void))
			opts := platform.DefaultOptions()
			opts.IgnoreSyncBuffer = tt.ignoreSync
			h := newHarness(m, opts, "k")
			h.p.View.Add(k, tt.kind)
			h.p.View.Materialize(k)
			buf := h.p.View.Argument(k, tt.kind)

			b := ir.NewBuilder(k)
			p := b.GEP(ir.I8, buf, []ir.Value{ir.ConstInt(ir.I32, 0)}, "p")
			b.Load(ir.I8, p, "v")
			b.Ret(nil)

			st := h.run(t)
			if st.Promoted != tt.promoted {
				t.Fatalf("promoted = %d, want %d", st.Promoted, tt.promoted)
			}
			if tt.promoted == 0 && st.Rejected[ReasonSkippedBuffer] != 1 {
				t.Fatalf("stats = %+v", st)
			}
		})
	}
}

func TestNonKernelArgumentAccess(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, ir.Ptr(globalF32, ir.SpaceGlobal)))
	b := ir.NewBuilder(k)
	slot := b.GEP(globalF32, k.Arg(0), []ir.Value{ir.ConstInt(ir.I32, 0)}, "slot")
	inner := b.Load(globalF32, slot, "inner")
	p := b.GEP(ir.F32, inner, []ir.Value{ir.ConstInt(ir.I32, 1)}, "p")
	b.Store(ir.UndefOf(ir.F32), p)
	b.Ret(nil)

	h := newHarness(m, platform.DefaultOptions(), "k")
	h.p.Remarks = true
	st := h.run(t)
	if st.Promoted != 1 || st.Rejected[ReasonNotKernelArg] != 1 {
		t.Fatalf("stats = %+v", st)
	}
	md := h.md.Func("k")
	if !md.HasNonKernelArgStore || md.HasNonKernelArgLoad {
		t.Fatalf("flags = load %v store %v", md.HasNonKernelArgLoad, md.HasNonKernelArgStore)
	}
	if !h.has(diag.PrmNonKernelArg) {
		t.Fatalf("missing remark")
	}
}

func TestSlotsFollowArgumentOrder(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, globalF32, globalF32))
	b := ir.NewBuilder(k)
	zero := ir.ConstInt(ir.I32, 0)
	pb := b.GEP(ir.F32, k.Arg(1), []ir.Value{zero}, "pb")
	vb := b.Load(ir.F32, pb, "vb")
	pa := b.GEP(ir.F32, k.Arg(0), []ir.Value{zero}, "pa")
	b.Store(vb, pa)
	b.Ret(nil)

	h := newHarness(m, platform.DefaultOptions(), "k")
	h.md.Func("k").ResAlloc.UAVsNum = 2
	h.run(t)

	res := h.md.Func("k").ResAlloc
	a0, _ := res.Arg(0)
	a1, _ := res.Arg(1)
	if a0.Index != 2 || a1.Index != 3 || res.UAVsNum != 4 {
		t.Fatalf("resources = %+v", res)
	}
	_, as := statefulOffset(t, ops(k, ir.OpStore)[0])
	if _, id, _ := ir.DecodeResource(as); id != 2 {
		t.Fatalf("store uses slot %d, want 2", id)
	}
}

func TestPreassignedSlots(t *testing.T) {
	m, k, _ := bufferOffsetKernel()
	h := newHarness(m, platform.DefaultOptions(), "k")
	h.p.Caps.DynamicBTIAllocation = false
	h.md.Func("k").ResAlloc.SetArg(0, metadata.ArgAlloc{Type: metadata.UAVResource, Index: 5})
	h.run(t)

	_, as := statefulOffset(t, ops(k, ir.OpLoad)[0])
	if _, id, _ := ir.DecodeResource(as); id != 5 {
		t.Fatalf("slot = %d, want 5", id)
	}
	if res := h.md.Func("k").ResAlloc; res.UAVsNum != 1 {
		t.Fatalf("UAVsNum = %d", res.UAVsNum)
	}
}

func TestPreassignedSlotsMissingRecord(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, globalF32, globalF32))
	b := ir.NewBuilder(k)
	zero := ir.ConstInt(ir.I32, 0)
	pa := b.GEP(ir.F32, k.Arg(0), []ir.Value{zero}, "pa")
	va := b.Load(ir.F32, pa, "va")
	pb := b.GEP(ir.F32, k.Arg(1), []ir.Value{zero}, "pb")
	b.Store(va, pb)
	b.Ret(nil)

	h := newHarness(m, platform.DefaultOptions(), "k")
	h.p.Caps.DynamicBTIAllocation = false
	st := h.run(t)

	if st.Promoted != 0 || st.Rejected[ReasonNoResource] != 2 {
		t.Fatalf("stats = %+v", st)
	}
	if off, _ := statefulOffset(t, ops(k, ir.OpLoad)[0]); off != nil {
		t.Fatalf("load promoted without a slot")
	}
	if off, _ := statefulOffset(t, ops(k, ir.OpStore)[0]); off != nil {
		t.Fatalf("store promoted without a slot")
	}
	if n := h.count(diag.PrmNoResource); n != 2 {
		t.Fatalf("missing-slot errors = %d, want 2", n)
	}
	if res := h.md.Func("k").ResAlloc; res.UAVsNum != 0 {
		t.Fatalf("UAVsNum = %d", res.UAVsNum)
	}
}

func TestPreassignedSlotsPartial(t *testing.T) {
	m := ir.NewModule("m")
	k := m.Add(ir.NewFunction("k", ir.Void, globalF32, globalF32))
	b := ir.NewBuilder(k)
	zero := ir.ConstInt(ir.I32, 0)
	pa := b.GEP(ir.F32, k.Arg(0), []ir.Value{zero}, "pa")
	va := b.Load(ir.F32, pa, "va")
	pb := b.GEP(ir.F32, k.Arg(1), []ir.Value{zero}, "pb")
	b.Store(va, pb)
	b.Ret(nil)

	h := newHarness(m, platform.DefaultOptions(), "k")
	h.p.Caps.DynamicBTIAllocation = false
	h.md.Func("k").ResAlloc.SetArg(1, metadata.ArgAlloc{Type: metadata.UAVResource, Index: 3})
	st := h.run(t)

	if st.Promoted != 1 || st.Rejected[ReasonNoResource] != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if off, _ := statefulOffset(t, ops(k, ir.OpLoad)[0]); off != nil {
		t.Fatalf("load through the unassigned argument was promoted")
	}
	_, as := statefulOffset(t, ops(k, ir.OpStore)[0])
	if _, id, _ := ir.DecodeResource(as); id != 3 {
		t.Fatalf("store slot = %d, want 3", id)
	}
}

func TestBindless(t *testing.T) {
	m, k, _ := bufferOffsetKernel()
	opts := platform.DefaultOptions()
	opts.PreferBindless = true
	h := newHarness(m, opts, "k")
	h.run(t)

	if !m.UseBindless {
		t.Fatalf("module not marked bindless")
	}
	_, as := statefulOffset(t, ops(k, ir.OpLoad)[0])
	if bt, _, _ := ir.DecodeResource(as); bt != ir.Bindless {
		t.Fatalf("buffer type = %s", bt)
	}
	if a, _ := h.md.Func("k").ResAlloc.Arg(0); a.Type != metadata.BindlessUAVResource {
		t.Fatalf("resource = %+v", a)
	}
}

func TestNonEntryFunctionsAreSkipped(t *testing.T) {
	m := ir.NewModule("m")
	f := m.Add(ir.NewFunction("f", ir.Void, globalF32))
	b := ir.NewBuilder(f)
	p := b.GEP(ir.F32, f.Arg(0), []ir.Value{ir.ConstInt(ir.I32, 0)}, "p")
	b.Load(ir.F32, p, "v")
	b.Ret(nil)

	h := newHarness(m, platform.DefaultOptions())
	if st := h.run(t); st.Functions != 0 || st.Candidates != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestDecompose(t *testing.T) {
	s := ir.Struct("S", ir.I32, ir.I64)
	fn := ir.NewFunction("k", ir.Void, ir.Ptr(s, ir.SpaceGlobal), ir.I32, ir.I32)
	fn.Arg(1).SetName("i")
	fn.Arg(2).SetName("j")
	b := ir.NewBuilder(fn)
	g1 := b.GEP(s, fn.Arg(0), []ir.Value{ir.ConstInt(ir.I32, 0), ir.ConstInt(ir.I32, 1)}, "f")
	g2 := b.GEP(ir.I64, g1, []ir.Value{ir.ConstInt(ir.I32, 2)}, "e")
	le := layout.New(nil)

	e, err := Decompose([]*ir.Instruction{g2, g1}, nil, le)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if n, static := e.Bytes(); n != 24 || !static {
		t.Fatalf("bytes = %d static=%v, want 24", n, static)
	}
	if got := e.String(); got != "0 + 8 + 16" {
		t.Fatalf("expr = %q", got)
	}

	arr := ir.Array(ir.I32, 4)
	fa := ir.NewFunction("a", ir.Void, ir.Ptr(arr, ir.SpaceGlobal), ir.I32, ir.I32)
	fa.Arg(1).SetName("i")
	fa.Arg(2).SetName("j")
	g := ir.NewBuilder(fa).GEP(arr, fa.Arg(0), []ir.Value{fa.Arg(1), fa.Arg(2)}, "g")
	e, err = Decompose([]*ir.Instruction{g}, nil, le)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if got := e.String(); got != "0 + %i*16 + %j*4" {
		t.Fatalf("expr = %q", got)
	}
	if _, static := e.Bytes(); static {
		t.Fatalf("dynamic expression reported static")
	}
}

func TestDecomposeRejectsDynamicField(t *testing.T) {
	s := ir.Struct("S", ir.I32, ir.I32)
	fn := ir.NewFunction("k", ir.Void, ir.Ptr(s, ir.SpaceGlobal), ir.I32)
	g := &ir.Instruction{Op: ir.OpGEP, SrcElem: s, Operands: []ir.Value{fn.Arg(0), ir.ConstInt(ir.I32, 0), fn.Arg(1)}}
	if _, err := Decompose([]*ir.Instruction{g}, nil, layout.New(nil)); err == nil {
		t.Fatalf("dynamic struct index must not decompose")
	}
}

func TestKnownBits(t *testing.T) {
	fn := ir.NewFunction("k", ir.Void, ir.I32, ir.I16)
	b := ir.NewBuilder(fn)
	lid := b.CallIntrinsic(ir.IntrinsicGetLocalIDX, ir.I32, nil, "lid")
	z := b.ZExt(fn.Arg(1), ir.I32, "z")
	s := b.SExt(z, ir.I64, "s")
	sum := b.Add(lid, z, "sum")
	nsw := b.Add(lid, z, "nsw")
	nsw.Meta = map[string]string{"nsw": ""}
	marked := b.Add(fn.Arg(0), ir.ConstInt(ir.I32, 1), "marked")
	marked.Meta = map[string]string{MetaNonNegative: ""}

	kb := KnownBits{}
	tests := []struct {
		v    ir.Value
		want bool
	}{
		{ir.ConstInt(ir.I32, 0), true},
		{ir.ConstInt(ir.I32, -1), false},
		{fn.Arg(0), false},
		{lid, true},
		{z, true},
		{s, true},
		{sum, false},
		{nsw, true},
		{marked, true},
	}
	for _, tt := range tests {
		if got := kb.NonNegative(tt.v); got != tt.want {
			t.Fatalf("NonNegative(%s) = %v, want %v", tt.v.Name(), got, tt.want)
		}
	}

	pf := ir.NewFunction("p", ir.Void, ir.Ptr(ir.I64, ir.SpaceGlobal), ir.Ptr(ir.Opaque("img"), ir.SpaceGlobal))
	if a := kb.PointeeAlign(pf.Arg(0)); a != 8 {
		t.Fatalf("PointeeAlign(i64*) = %d, want 8", a)
	}
	if a := kb.PointeeAlign(pf.Arg(1)); a != 0 {
		t.Fatalf("PointeeAlign(opaque*) = %d, want 0", a)
	}
}
