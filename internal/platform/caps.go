// Package platform describes the target device and the compile options
// the passes consult. Both come from a TOML file with built-in defaults.
package platform

import (
	"errors"
	"fmt"
)

// Caps are the hardware capabilities of a target.
type Caps struct {
	Name string `toml:"name"`

	// GRFSize is the register size in bytes, 32 or 64.
	GRFSize int `toml:"grf_size"`
	// MinDispatchWidth is the narrowest SIMD the target can dispatch.
	MinDispatchWidth int `toml:"min_dispatch_width"`
	// MaxDispatchWidth is the widest SIMD tried first.
	MaxDispatchWidth int `toml:"max_dispatch_width"`
	// MaxHWThreads is the worst case number of hardware threads sharing
	// the scratch space.
	MaxHWThreads int `toml:"max_hw_threads"`
	// ScratchBudget is the total scratch space in bytes.
	ScratchBudget int `toml:"scratch_budget"`
	// PointerSize is the global pointer width in bytes.
	PointerSize int `toml:"pointer_size"`

	SupportsBindless     bool `toml:"bindless"`
	DynamicBTIAllocation bool `toml:"dynamic_bti"`
	UniformPrivateAllocs bool `toml:"uniform_private_allocs"`
	HasScratchSurface    bool `toml:"scratch_surface"`

	// StatelessPrivateMemory means private memory can fall back to a
	// global buffer when scratch is exhausted.
	StatelessPrivateMemory bool `toml:"stateless_private_memory"`
	// PowerOfTwoPrivateSize rounds the per-lane stride when private
	// memory is stateless.
	PowerOfTwoPrivateSize bool `toml:"pow2_private_size"`

	// MinStackCallBytes is the floor of the stack reserved for stack calls.
	MinStackCallBytes int `toml:"min_stack_call_bytes"`
}

// DefaultCaps is a 64-bit target with 32-byte registers and 2 MiB of
// scratch per hardware thread.
func DefaultCaps() Caps {
	return Caps{
		Name:                   "default",
		GRFSize:                32,
		MinDispatchWidth:       8,
		MaxDispatchWidth:       32,
		MaxHWThreads:           448,
		ScratchBudget:          448 * (2 << 20),
		PointerSize:            8,
		SupportsBindless:       true,
		DynamicBTIAllocation:   true,
		UniformPrivateAllocs:   true,
		HasScratchSurface:      true,
		StatelessPrivateMemory: true,
		MinStackCallBytes:      0,
	}
}

var (
	// ErrBadGRF reports an unsupported register size.
	ErrBadGRF = errors.New("grf_size must be 32 or 64")
	// ErrBadDispatch reports dispatch widths outside 8, 16, 32.
	ErrBadDispatch = errors.New("dispatch width must be 8, 16 or 32")
)

func validWidth(w int) bool {
	return w == 8 || w == 16 || w == 32
}

// Validate checks the caps for internal consistency.
func (c Caps) Validate() error {
	if c.GRFSize != 32 && c.GRFSize != 64 {
		return fmt.Errorf("caps %q: %w (got %d)", c.Name, ErrBadGRF, c.GRFSize)
	}
	if !validWidth(c.MinDispatchWidth) || !validWidth(c.MaxDispatchWidth) {
		return fmt.Errorf("caps %q: %w", c.Name, ErrBadDispatch)
	}
	if c.MinDispatchWidth > c.MaxDispatchWidth {
		return fmt.Errorf("caps %q: min_dispatch_width %d above max_dispatch_width %d",
			c.Name, c.MinDispatchWidth, c.MaxDispatchWidth)
	}
	if c.MaxHWThreads <= 0 {
		return fmt.Errorf("caps %q: max_hw_threads must be positive", c.Name)
	}
	if c.ScratchBudget < 0 || c.MinStackCallBytes < 0 {
		return fmt.Errorf("caps %q: negative byte count", c.Name)
	}
	if c.PointerSize != 4 && c.PointerSize != 8 {
		return fmt.Errorf("caps %q: pointer_size must be 4 or 8", c.Name)
	}
	return nil
}

// PerLaneCeiling is the most private memory one lane may use at width simd.
func (c Caps) PerLaneCeiling(simd int) int {
	if simd <= 0 || c.MaxHWThreads <= 0 {
		return 0
	}
	return c.ScratchBudget / (c.MaxHWThreads * simd)
}

// Widths lists the dispatch widths from widest to narrowest.
func (c Caps) Widths() []int {
	var out []int
	for w := c.MaxDispatchWidth; w >= c.MinDispatchWidth && w >= 8; w /= 2 {
		out = append(out, w)
	}
	return out
}
