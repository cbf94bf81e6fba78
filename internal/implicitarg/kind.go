package implicitarg

import "fmt"

// Kind identifies one implicit argument. The catalog table is indexed
// by Kind, so the order here is part of the persisted format.
type Kind uint16

const (
	R0 Kind = iota
	PayloadHeader
	WorkDim
	NumGroups
	GlobalSize
	LocalSize
	EnqueuedLocalWorkSize
	LocalIDX
	LocalIDY
	LocalIDZ
	ConstantBase
	GlobalBase
	PrivateBase
	PrintfBuffer
	BufferOffset

	// struct pieces of by-value aggregates
	ConstantRegFP32
	ConstantRegQWord
	ConstantRegDWord
	ConstantRegWord
	ConstantRegByte

	// image and sampler properties
	ImageHeight
	ImageWidth
	ImageDepth
	ImageNumMipLevels
	ImageChannelDataType
	ImageChannelOrder
	ImageSRGBChannelOrder
	ImageArraySize
	ImageNumSamples
	SamplerAddress
	SamplerNormalized
	SamplerSnapWA
	InlineSampler
	FlatImageBaseOffset
	FlatImageHeight
	FlatImageWidth
	FlatImagePitch

	VMEMbBlockType
	VMESubpixelMode
	VMESadAdjustMode
	VMESearchPathType

	DeviceEnqueueDefaultDeviceQueue
	DeviceEnqueueEventPool
	DeviceEnqueueMaxWorkgroupSize
	DeviceEnqueueParentEvent
	DeviceEnqueuePreferedWorkgroupMultiple
	GetObjectID
	GetBlockSimdSize

	LocalMemoryStatelessWindowStartAddress
	LocalMemoryStatelessWindowSize
	PrivateMemoryStatelessSize

	StageInGridOrigin
	StageInGridSize
	SyncBuffer

	GlobalOffset
	BufferSize
	RTStackID
	RTGlobalBufferPointer
	BindlessOffset
	ImplicitArgBufferPtr
	AssertBufferPointer
	IndirectDataPointer
	ScratchPointer
	RegionGroupSize
	RegionGroupWGCount
	RegionGroupBarrierBuffer

	// KindCount terminates the enum; the catalog must have exactly this
	// many entries.
	KindCount

	structFirst = ConstantRegFP32
	structLast  = ConstantRegByte
	imageFirst  = ImageHeight
	imageLast   = FlatImagePitch
)

func (k Kind) String() string {
	if k < KindCount {
		return table[k].Name
	}
	return fmt.Sprintf("Kind(%d)", uint16(k))
}

// IsImageKind reports whether k describes a property of an image or
// sampler argument and is therefore keyed by explicit argument number.
func IsImageKind(k Kind) bool { return k >= imageFirst && k <= imageLast }

// IsStructKind reports whether k is a piece of a by-value aggregate.
func IsStructKind(k Kind) bool { return k >= structFirst && k <= structLast }

// IsLocalID reports whether k is one of the per-lane local ids.
func IsLocalID(k Kind) bool { return k == LocalIDX || k == LocalIDY || k == LocalIDZ }

// IsNumbered reports whether entries of kind k carry an explicit
// argument number.
func IsNumbered(k Kind) bool {
	return IsImageKind(k) || IsStructKind(k) ||
		k == GetObjectID || k == GetBlockSimdSize ||
		k == BufferOffset || k == BindlessOffset || k == BufferSize
}
