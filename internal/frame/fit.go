package frame

import (
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"

	"kernelabi/internal/layout"
	"kernelabi/internal/platform"
)

// ErrScratchExceeded is returned when a frame does not fit the scratch
// budget at any width and the target has no stateless fallback.
var ErrScratchExceeded = errors.New("private memory exceeds the scratch budget")

// Fit is the dispatch width and per-lane stride chosen for a frame.
type Fit struct {
	SIMD          int
	PerLaneStride int
	TotalSize     int // per hardware thread at SIMD
	Reduced       bool
	Clamped       bool
}

// Fit picks the widest dispatch width at which the frame fits the scratch
// budget. When none does, the stride is clamped to the budget at the
// narrowest width if private memory can fall back to a stateless buffer.
func (d *Description) Fit(caps platform.Caps, opts platform.Options) (Fit, error) {
	a := d.Align()
	uniform := layout.RoundUp(d.UniformSize, a)
	stride := layout.RoundUp(d.PerLaneStride, a)
	if !opts.UseScratchSpace && caps.StatelessPrivateMemory && caps.PowerOfTwoPrivateSize && stride > 0 {
		stride = layout.NextPow2(stride)
	}

	widths := caps.Widths()
	if len(widths) == 0 {
		widths = []int{max(caps.MinDispatchWidth, 1)}
	}
	for i, w := range widths {
		total := uniform + w*stride
		if total <= caps.PerLaneCeiling(w)*w {
			return Fit{SIMD: w, PerLaneStride: stride, TotalSize: total, Reduced: i > 0}, nil
		}
	}

	w := widths[len(widths)-1]
	budget := caps.PerLaneCeiling(w) * w
	if !caps.StatelessPrivateMemory {
		return Fit{SIMD: w, PerLaneStride: stride, TotalSize: uniform + w*stride, Reduced: len(widths) > 1},
			fmt.Errorf("%w: %d bytes per thread at SIMD%d, budget %d", ErrScratchExceeded, uniform+w*stride, w, budget)
	}
	clamped := max((budget-uniform)/w, 0)
	return Fit{
		SIMD:          w,
		PerLaneStride: clamped,
		TotalSize:     uniform + w*clamped,
		Reduced:       len(widths) > 1,
		Clamped:       true,
	}, nil
}

// Safe32BitOffset reports whether per-thread private offsets fit 32 bits
// for every lane of every hardware thread at the widest dispatch.
func Safe32BitOffset(perLaneSize, ptrSize, maxHWThreads int) bool {
	if ptrSize < 8 {
		return true
	}
	size, err := safecast.Conv[uint64](perLaneSize)
	if err != nil {
		return false
	}
	threads, err := safecast.Conv[uint64](maxHWThreads)
	if err != nil {
		return false
	}
	return size*32*threads <= math.MaxUint32
}
