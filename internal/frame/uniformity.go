package frame

import "kernelabi/internal/ir"

// MetaUniform is the instruction metadata key the divergence analysis sets
// on allocations whose address is the same in every lane.
const MetaUniform = "uniform"

// Uniformity classifies allocations as uniform or per lane.
type Uniformity interface {
	IsUniform(alloca *ir.Instruction) bool
}

// UniformityFunc adapts a function to Uniformity.
type UniformityFunc func(*ir.Instruction) bool

func (f UniformityFunc) IsUniform(a *ir.Instruction) bool { return f(a) }

var (
	// MetaUniformity trusts the MetaUniform tag.
	MetaUniformity Uniformity = UniformityFunc(func(a *ir.Instruction) bool {
		_, ok := a.Meta[MetaUniform]
		return ok
	})
	// AllVarying places everything in the per-lane region.
	AllVarying Uniformity = UniformityFunc(func(*ir.Instruction) bool { return false })
)
