package frame

import (
	"kernelabi/internal/ir"
	"kernelabi/internal/platform"
)

// Resolve replaces every laid out allocation of fn with an address into the
// private memory at base and returns how many it replaced.
//
// Uniform slots live at base+offset. Per-lane slots live after the
// uniform region at offset·simd + laneID·size, so the lanes of one slot
// are contiguous. Offsets are computed in 64 bits unless
// Safe32BitOffset holds.
func (d *Description) Resolve(fn *ir.Function, base ir.Value, caps platform.Caps) int {
	if len(d.Slots) == 0 || len(fn.Body) == 0 {
		return 0
	}
	ptrSize := caps.PointerSize
	if fn.Parent != nil && fn.Parent.DataLayout != nil {
		ptrSize = fn.Parent.DataLayout.PointerSize(ir.SpacePrivate)
	}
	intPtr := ir.Int(ptrSize * 8)
	offT := ir.I32
	if !Safe32BitOffset(d.PerLaneSize(), ptrSize, caps.MaxHWThreads) {
		offT = ir.I64
	}

	entry := ir.At(fn.Body[0])
	lane16 := entry.CallIntrinsic(ir.IntrinsicSimdLaneID, ir.I16, nil, "simdLaneId16")
	lane := entry.ZExt(lane16, offT, "simdLaneId")
	simd := entry.ZExtOrSelf(entry.CallIntrinsic(ir.IntrinsicSimdSize, ir.I32, nil, "simdSize"), offT, "simdSize.wide")
	baseInt := entry.PtrToInt(base, intPtr, "privateBase")

	n := 0
	for _, s := range d.Slots {
		b := ir.At(s.Alloca)
		name := s.Alloca.Name()
		var off ir.Value
		if s.Uniform {
			off = ir.ConstInt(intPtr, int64(s.Offset))
		} else {
			region := b.Mul(simd, ir.ConstInt(offT, int64(s.Offset)), name+".SIMDBufferOffset")
			perLane := b.Mul(lane, ir.ConstInt(offT, int64(s.Size)), name+".perLaneOffset")
			total := b.Add(region, perLane, name+".totalOffset")
			if d.UniformSize > 0 {
				total = b.Add(total, ir.ConstInt(offT, int64(d.UniformSize)), name+".regionOffset")
			}
			off = b.ZExtOrSelf(total, intPtr, name+".offset")
		}
		addr := b.Add(baseInt, off, name+".threadOffset")
		ptr := b.IntToPtr(addr, s.Alloca.Type(), name+".privateBuffer")
		fn.ReplaceAllUses(s.Alloca, ptr)
		fn.Erase(s.Alloca)
		n++
	}
	return n
}
