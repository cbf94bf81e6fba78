package kernelargs

import (
	"fmt"
	"slices"
)

// Layout selects a payload ordering.
type Layout uint8

const (
	LayoutCurbe Layout = iota
	LayoutIndirect
	LayoutIndependent
)

func (l Layout) String() string {
	switch l {
	case LayoutCurbe:
		return "curbe"
	case LayoutIndirect:
		return "indirect"
	case LayoutIndependent:
		return "independent"
	}
	return fmt.Sprintf("Layout(%d)", uint8(l))
}

// ParseLayout maps a configuration string to a Layout.
func ParseLayout(s string) (Layout, error) {
	for _, l := range []Layout{LayoutCurbe, LayoutIndirect, LayoutIndependent} {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown payload layout %q", s)
}

// Policy is a total order over categories.
type Policy struct {
	layout   Layout
	position [End]int
}

// the image tail shared by every layout
var imageTail = []Category{
	Struct,
	Sampler,
	Image1D, Image1DBuffer, Image2D, Image2DDepth, Image2DMSAA, Image2DMSAADepth,
	Image3D, ImageCube, ImageCubeDepth, Image1DArray, Image2DArray, Image2DDepthArray,
	Image2DMSAAArray, Image2DMSAADepthArray, ImageCubeArray, ImageCubeDepthArray,

	BindlessSampler,
	BindlessImage1D, BindlessImage1DBuffer, BindlessImage2D, BindlessImage2DDepth,
	BindlessImage2DMSAA, BindlessImage2DMSAADepth, BindlessImage3D, BindlessImageCube,
	BindlessImageCubeDepth, BindlessImage1DArray, BindlessImage2DArray,
	BindlessImage2DDepthArray, BindlessImage2DMSAAArray, BindlessImage2DMSAADepthArray,
	BindlessImageCubeArray, BindlessImageCubeDepthArray,
	End,
}

var imageAndSamplerImplicits = []Category{
	ImageHeight, ImageWidth, ImageDepth, ImageNumMipLevels, ImageChannelDataType,
	ImageChannelOrder, ImageSRGBChannelOrder, ImageArraySize, ImageNumSamples,
	SamplerAddress, SamplerNormalized, SamplerSnapWA, InlineSampler,

	VMEMbBlockType, VMESubpixelMode, VMESadAdjustMode, VMESearchPathType,

	DEDefaultDeviceQueue, DEEventPool, DEMaxWorkgroupSize, DEParentEvent,
	DEPreferedWorkgroupMultiple, DEObjectID, DEDispatcherSIMDSize,

	LocalMemoryStatelessWindowStartAddress, LocalMemoryStatelessWindowSize,
	PrivateMemoryStatelessSize,
}

func concat(parts ...[]Category) []Category {
	var out []Category
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// curbeOrder puts per-thread data (R1, local ids) after all cross-thread data.
var curbeOrder = concat(
	[]Category{
		R0,

		RuntimeValue, IndirectDataPointer, ScratchPointer, PayloadHeader, GlobalOffset,
		EnqueuedLocalWorkSize,

		PtrLocal, PtrGlobal, PtrConstant, PtrDeviceQueue,

		ConstantReg,

		ConstantBase, GlobalBase, PrivateBase, PrintfBuffer, SyncBuffer, RTGlobalBuffer,
		BufferOffset, WorkDim, NumGroups, GlobalSize, LocalSize, StageInGridOrigin,
		StageInGridSize, RegionGroupSize, RegionGroupWGCount, RegionGroupBarrierBuffer,
		BindlessOffset,
	},
	imageAndSamplerImplicits,
	[]Category{
		R1, RTStackID, LocalIDX, LocalIDY, LocalIDZ,

		BufferSize,

		ArgBuffer, AssertBuffer,
	},
	imageTail,
)

// indirectOrder puts per-thread data right after R0.
var indirectOrder = concat(
	[]Category{
		R0,

		R1, RTStackID, LocalIDX, LocalIDY, LocalIDZ,

		RuntimeValue, IndirectDataPointer, ScratchPointer, PayloadHeader, GlobalOffset,
		EnqueuedLocalWorkSize, PtrLocal, PtrGlobal, PtrConstant, PtrDeviceQueue, ConstantReg,

		ConstantBase, GlobalBase, PrivateBase, PrintfBuffer, SyncBuffer, RTGlobalBuffer,
		BufferOffset, WorkDim, NumGroups, GlobalSize, LocalSize, StageInGridOrigin,
		StageInGridSize, RegionGroupSize, RegionGroupWGCount, RegionGroupBarrierBuffer,
		BindlessOffset,

		ArgBuffer, AssertBuffer,
	},
	imageAndSamplerImplicits,
	[]Category{BufferSize},
	imageTail,
)

func priorityList(l Layout) []Category {
	switch l {
	case LayoutCurbe, LayoutIndependent:
		return curbeOrder
	case LayoutIndirect:
		return indirectOrder
	}
	panic(fmt.Errorf("kernelargs: unknown layout %d", l))
}

// verifyOrder checks that order has exactly End slots, ends with the End
// sentinel and names every other category once. The sentinel slot is
// handed to Default.
func verifyOrder(order []Category) ([]Category, error) {
	if len(order) != int(End) {
		return nil, fmt.Errorf("priority list has %d slots, want %d", len(order), End)
	}
	if order[len(order)-1] != End {
		return nil, fmt.Errorf("priority list does not end with the sentinel (found %s)", order[len(order)-1])
	}
	out := slices.Clone(order)
	out[len(out)-1] = Default

	var seen [End]bool
	for i, c := range out {
		if c >= End {
			return nil, fmt.Errorf("priority list slot %d holds %s", i, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("priority list names %s twice", c)
		}
		seen[c] = true
	}
	return out, nil
}

func newPolicy(l Layout, order []Category) (*Policy, error) {
	verified, err := verifyOrder(order)
	if err != nil {
		return nil, fmt.Errorf("%s layout: %w", l, err)
	}
	p := &Policy{layout: l}
	for i, c := range verified {
		p.position[c] = i
	}
	return p, nil
}

// NewPolicy builds the order for layout l. A malformed priority list is
// a build defect and panics.
func NewPolicy(l Layout) *Policy {
	p, err := newPolicy(l, priorityList(l))
	if err != nil {
		panic(fmt.Errorf("kernelargs: %w", err))
	}
	return p
}

func (p *Policy) Layout() Layout { return p.layout }

// Rank is the position of c in the payload order.
func (p *Policy) Rank(c Category) int { return p.position[c] }

// Less orders categories by payload position.
func (p *Policy) Less(a, b Category) bool { return p.position[a] < p.position[b] }

// Ordered returns every category in payload order.
func (p *Policy) Ordered() []Category {
	out := make([]Category, End)
	for c := range End {
		out[p.position[c]] = c
	}
	return out
}
