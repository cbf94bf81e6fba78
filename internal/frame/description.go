// Package frame lays out the private memory (stack) of kernels and device
// functions. Allocations live in one of two regions: the uniform region
// holds a single copy per hardware thread, the per-lane region holds one
// copy per SIMD lane.
package frame

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"kernelabi/internal/ir"
	"kernelabi/internal/layout"
)

// Slot is the placement of one allocation.
type Slot struct {
	Alloca  *ir.Instruction
	Uniform bool
	Offset  int // within its region, per lane for per-lane slots
	Size    int
	Align   int
}

// Description is the private frame of one function.
type Description struct {
	UniformSize   int
	UniformAlign  int
	PerLaneStride int
	PerLaneAlign  int
	Slots         []Slot

	// VLAs are variable length allocations left for the stack.
	VLAs []*ir.Instruction
}

// NewDescription returns an empty frame.
func NewDescription() *Description {
	return &Description{UniformAlign: 1, PerLaneAlign: 1}
}

// Add places an allocation at the end of its region.
func (d *Description) Add(a *ir.Instruction, size, align int, uniform bool) Slot {
	if align < 1 {
		align = 1
	}
	s := Slot{Alloca: a, Uniform: uniform, Size: size, Align: align}
	if uniform {
		s.Offset = layout.RoundUp(d.UniformSize, align)
		d.UniformSize = s.Offset + size
		d.UniformAlign = max(d.UniformAlign, align)
	} else {
		s.Offset = layout.RoundUp(d.PerLaneStride, align)
		d.PerLaneStride = s.Offset + size
		d.PerLaneAlign = max(d.PerLaneAlign, align)
	}
	d.Slots = append(d.Slots, s)
	return s
}

// Align is the alignment both regions are padded to.
func (d *Description) Align() int {
	return max(d.UniformAlign, d.PerLaneAlign, 1)
}

// Finalize pads both regions to Align.
func (d *Description) Finalize() {
	a := d.Align()
	d.UniformSize = layout.RoundUp(d.UniformSize, a)
	d.PerLaneStride = layout.RoundUp(d.PerLaneStride, a)
}

// TotalSize is the private memory of one hardware thread at width simd.
func (d *Description) TotalSize(simd int) int {
	a := d.Align()
	return layout.RoundUp(d.UniformSize, a) + simd*layout.RoundUp(d.PerLaneStride, a)
}

// PerLaneSize is the private memory attributed to one work item.
func (d *Description) PerLaneSize() int {
	return d.TotalSize(1)
}

// Empty reports whether the frame holds nothing.
func (d *Description) Empty() bool {
	return len(d.Slots) == 0 && len(d.VLAs) == 0
}

// Slot returns the placement of alloca a.
func (d *Description) Slot(a *ir.Instruction) (Slot, bool) {
	for _, s := range d.Slots {
		if s.Alloca == a {
			return s, true
		}
	}
	return Slot{}, false
}

type pending struct {
	inst  *ir.Instruction
	size  int
	align int
}

// Build lays out the fixed size allocations of fn. Allocations are
// placed in ascending alignment order, ties keep body order.
func Build(fn *ir.Function, le *layout.LayoutEngine, u Uniformity) (*Description, error) {
	if u == nil {
		u = AllVarying
	}
	d := NewDescription()
	var list []pending
	for _, a := range fn.Allocas() {
		count := int64(1)
		if n := a.Operand(0); n != nil {
			c, ok := ir.AsConst(n)
			if !ok {
				d.VLAs = append(d.VLAs, a)
				continue
			}
			count = c.Val
		}
		l, err := le.LayoutOf(a.AllocType)
		if err != nil {
			return nil, fmt.Errorf("frame: @%s: alloca %%%s: %w", fn.Name, a.Name(), err)
		}
		if count < 0 || count > math.MaxInt32 {
			return nil, fmt.Errorf("frame: @%s: alloca %%%s: bad element count %d", fn.Name, a.Name(), count)
		}
		align := max(a.Align, l.Align)
		list = append(list, pending{inst: a, size: l.AllocSize() * int(count), align: align})
	}
	slices.SortStableFunc(list, func(x, y pending) int { return cmp.Compare(x.align, y.align) })
	for _, p := range list {
		d.Add(p.inst, p.size, p.align, u.IsUniform(p.inst))
	}
	d.Finalize()
	return d, nil
}
