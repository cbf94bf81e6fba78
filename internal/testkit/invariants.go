// Package testkit checks structural invariants of pass results. Tests
// of several packages share these checks.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"kernelabi/internal/frame"
	"kernelabi/internal/kernelargs"
)

// CheckFrameInvariants verifies a finalized private frame:
// 1) every slot is aligned and inside its region
// 2) slots of one region do not overlap
// 3) both regions are padded to the frame alignment and fit 32-bit offsets
func CheckFrameInvariants(d *frame.Description) error {
	if d == nil {
		return fmt.Errorf("nil frame")
	}
	a := d.Align()
	if d.UniformSize%a != 0 || d.PerLaneStride%a != 0 {
		return fmt.Errorf("regions %d/%d not padded to %d", d.UniformSize, d.PerLaneStride, a)
	}
	if _, err := safecast.Conv[uint32](d.TotalSize(32)); err != nil {
		return fmt.Errorf("frame size overflow: %w", err)
	}

	type span struct{ start, end int }
	var uniform, perLane []span
	for _, s := range d.Slots {
		if s.Align < 1 || s.Offset%s.Align != 0 {
			return fmt.Errorf("slot %s at %d is not %d-aligned", s.Alloca.Name(), s.Offset, s.Align)
		}
		limit := d.PerLaneStride
		regions := &perLane
		if s.Uniform {
			limit = d.UniformSize
			regions = &uniform
		}
		sp := span{s.Offset, s.Offset + s.Size}
		if sp.start < 0 || sp.end > limit {
			return fmt.Errorf("slot %s [%d,%d) outside its region of %d bytes", s.Alloca.Name(), sp.start, sp.end, limit)
		}
		for _, o := range *regions {
			if sp.start < o.end && o.start < sp.end {
				return fmt.Errorf("slot %s [%d,%d) overlaps [%d,%d)", s.Alloca.Name(), sp.start, sp.end, o.start, o.end)
			}
		}
		*regions = append(*regions, sp)
	}
	return nil
}

// CheckPayloadInvariants verifies an argument set:
// 1) forward iteration never goes back in policy rank
// 2) backward iteration is the exact reverse
// 3) sizes and alignments of allocated arguments are positive
func CheckPayloadInvariants(set *kernelargs.Set) error {
	if set == nil {
		return fmt.Errorf("nil set")
	}
	p := set.Policy()
	var forward []*kernelargs.KernelArg
	for k := range set.All() {
		if n := len(forward); n > 0 && p.Rank(forward[n-1].Category) > p.Rank(k.Category) {
			return fmt.Errorf("%s after %s breaks payload order", k.Category, forward[n-1].Category)
		}
		if k.NeedsAllocation && (k.Size <= 0 || k.Align <= 0) {
			return fmt.Errorf("allocated argument %s has no size or alignment", k)
		}
		forward = append(forward, k)
	}
	if len(forward) != set.Len() {
		return fmt.Errorf("iterated %d arguments, set holds %d", len(forward), set.Len())
	}
	i := len(forward)
	for k := range set.Backward() {
		i--
		if i < 0 || forward[i].Category != k.Category || forward[i].Arg != k.Arg {
			return fmt.Errorf("backward iteration diverges at %d", i)
		}
	}
	if i != 0 {
		return fmt.Errorf("backward iteration stopped %d short", i)
	}
	return nil
}
