package promote

import (
	"kernelabi/internal/ir"
	"kernelabi/internal/layout"
)

// MetaNonNegative marks an instruction whose value is known to be >= 0,
// the way an assumption would.
const MetaNonNegative = "nonneg"

// Oracle answers the value questions promotion cannot settle from the
// address computation alone.
type Oracle interface {
	// NonNegative reports whether v is provably >= 0 as a signed integer.
	NonNegative(v ir.Value) bool
	// PointeeAlign is the ABI alignment of what p points to, 0 if unsized.
	PointeeAlign(p ir.Value) int
}

// maxDepth bounds the operand walk of KnownBits.
const maxDepth = 6

// KnownBits proves non-negativity from constants, zero extensions,
// non-negative intrinsics and MetaNonNegative marks.
type KnownBits struct {
	Layout *layout.LayoutEngine
}

var nonNegativeIntrinsics = map[ir.Intrinsic]bool{
	ir.IntrinsicSimdSize:             true,
	ir.IntrinsicSimdLaneID:           true,
	ir.IntrinsicGetWorkDim:           true,
	ir.IntrinsicGetNumWorkGroups:     true,
	ir.IntrinsicGetGlobalSize:        true,
	ir.IntrinsicGetLocalSize:         true,
	ir.IntrinsicGetEnqueuedLocalSize: true,
	ir.IntrinsicGetLocalIDX:          true,
	ir.IntrinsicGetLocalIDY:          true,
	ir.IntrinsicGetLocalIDZ:          true,
}

func (k KnownBits) NonNegative(v ir.Value) bool {
	return nonNegative(v, 0)
}

func nonNegative(v ir.Value, depth int) bool {
	if c, ok := ir.AsConst(v); ok {
		return c.Val >= 0
	}
	inst, ok := v.(*ir.Instruction)
	if !ok || depth >= maxDepth {
		return false
	}
	if _, ok := inst.Meta[MetaNonNegative]; ok {
		return true
	}
	switch inst.Op {
	case ir.OpZExt:
		// a zero extension clears the sign bit unless it is a no-op
		from := inst.Operands[0].Type()
		return from.IsInt() && from.Bits < inst.Type().Bits
	case ir.OpSExt:
		return nonNegative(inst.Operands[0], depth+1)
	case ir.OpCall:
		return nonNegativeIntrinsics[inst.Intrinsic] && inst.Type().Bits > 1
	case ir.OpAdd, ir.OpMul:
		_, nsw := inst.Meta["nsw"]
		return nsw && nonNegative(inst.Operands[0], depth+1) && nonNegative(inst.Operands[1], depth+1)
	}
	return false
}

func (k KnownBits) PointeeAlign(p ir.Value) int {
	t := p.Type()
	if !t.IsPointer() || t.Elem == nil || !t.Elem.Sized() {
		return 0
	}
	le := k.Layout
	if le == nil {
		le = layout.New(nil)
	}
	a, err := le.AlignOf(t.Elem)
	if err != nil {
		return 0
	}
	return a
}
