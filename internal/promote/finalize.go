package promote

import (
	"slices"

	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
)

// finalize drops the buffer offset of every argument whose offsets were
// all proven non-negative and folds the additions of zero this leaves.
// It only applies when the buffer offset is optional.
func (p *Pass) finalize(fn *ir.Function, s *scanState) int {
	if !p.Options.HasBufferOffset || !p.Options.BufferOffsetOptional {
		return 0
	}
	zero := ir.ConstInt(ir.I32, 0)
	dropped := 0
	for argNo, positive := range s.positive {
		if !positive {
			continue
		}
		bo := p.View.NumberedArgument(fn, implicitarg.BufferOffset, argNo)
		if bo == nil {
			continue
		}
		fn.ReplaceAllUses(bo, zero)
		dropped++
	}
	clear(s.positive)

	for _, inst := range slices.Clone(fn.Body) {
		if inst.Op != ir.OpAdd || inst.Operands[0] != ir.Value(zero) {
			continue
		}
		fn.ReplaceAllUses(inst, inst.Operands[1])
		fn.Erase(inst)
	}
	return dropped
}
