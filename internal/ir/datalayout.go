package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// PointerSpec is one "p<AS>:size:abi:pref" entry of a data layout.
type PointerSpec struct {
	Space    AddressSpace
	SizeBits int
	ABIBits  int
	PrefBits int
}

func (p PointerSpec) String() string {
	if p.Space == 0 {
		return fmt.Sprintf("p:%d:%d:%d", p.SizeBits, p.ABIBits, p.PrefBits)
	}
	return fmt.Sprintf("p%d:%d:%d:%d", uint32(p.Space), p.SizeBits, p.ABIBits, p.PrefBits)
}

// DataLayout is the module layout string split into its components.
// Only pointer specs are interpreted; the rest is preserved verbatim.
type DataLayout struct {
	parts    []string
	pointers map[AddressSpace]PointerSpec
}

// DefaultDataLayout is little endian with 64-bit pointers everywhere
// except local memory.
func DefaultDataLayout() *DataLayout {
	dl, err := ParseDataLayout("e-p:64:64:64-p3:32:32:32-i64:64")
	if err != nil {
		panic(err)
	}
	return dl
}

// ParseDataLayout parses a dash separated layout string.
func ParseDataLayout(s string) (*DataLayout, error) {
	dl := &DataLayout{pointers: map[AddressSpace]PointerSpec{}}
	if s == "" {
		return dl, nil
	}
	for _, part := range strings.Split(s, "-") {
		if part == "" {
			continue
		}
		dl.parts = append(dl.parts, part)
		if !strings.HasPrefix(part, "p") {
			continue
		}
		spec, err := parsePointerSpec(part)
		if err != nil {
			return nil, fmt.Errorf("data layout %q: %w", s, err)
		}
		dl.pointers[spec.Space] = spec
	}
	return dl, nil
}

func parsePointerSpec(part string) (PointerSpec, error) {
	fields := strings.Split(part[1:], ":")
	if len(fields) < 2 {
		return PointerSpec{}, fmt.Errorf("malformed pointer spec %q", part)
	}
	var spec PointerSpec
	if fields[0] != "" {
		as, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return PointerSpec{}, fmt.Errorf("pointer spec %q: %w", part, err)
		}
		spec.Space = AddressSpace(as)
	}
	nums := make([]int, 3)
	for i := 1; i < len(fields) && i <= 3; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return PointerSpec{}, fmt.Errorf("pointer spec %q: %w", part, err)
		}
		nums[i-1] = n
	}
	spec.SizeBits = nums[0]
	spec.ABIBits = nums[1]
	spec.PrefBits = nums[2]
	if spec.ABIBits == 0 {
		spec.ABIBits = spec.SizeBits
	}
	if spec.PrefBits == 0 {
		spec.PrefBits = spec.ABIBits
	}
	return spec, nil
}

// PointerSize returns the pointer size in bytes for space. Spaces
// without a spec fall back to address space 0, then to 8.
func (dl *DataLayout) PointerSize(space AddressSpace) int {
	if spec, ok := dl.pointers[space]; ok {
		return spec.SizeBits / 8
	}
	if spec, ok := dl.pointers[0]; ok {
		return spec.SizeBits / 8
	}
	return 8
}

// HasPointerSpec reports whether space has an explicit entry.
func (dl *DataLayout) HasPointerSpec(space AddressSpace) bool {
	_, ok := dl.pointers[space]
	return ok
}

// AppendPointerSpec adds spec unless its address space already has one.
// It reports whether the layout changed.
func (dl *DataLayout) AppendPointerSpec(spec PointerSpec) bool {
	if dl.HasPointerSpec(spec.Space) {
		return false
	}
	dl.pointers[spec.Space] = spec
	dl.parts = append(dl.parts, spec.String())
	return true
}

func (dl *DataLayout) String() string {
	return strings.Join(dl.parts, "-")
}
