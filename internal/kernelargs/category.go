package kernelargs

import "fmt"

// Category is the payload class of a kernel argument. Categories below
// NotToAllocate always get payload space; the rest are described to the
// runtime through binding tables instead.
type Category uint8

const (
	Default Category = iota

	R0
	R1
	PayloadHeader
	GlobalOffset

	PtrLocal
	PtrGlobal
	PtrConstant
	PtrDeviceQueue

	ConstantReg
	RuntimeValue

	ConstantBase
	GlobalBase
	PrivateBase
	PrintfBuffer
	SyncBuffer
	RTGlobalBuffer
	BufferOffset

	WorkDim
	NumGroups
	GlobalSize
	LocalSize
	EnqueuedLocalWorkSize

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

	VMEMbBlockType
	VMESubpixelMode
	VMESadAdjustMode
	VMESearchPathType

	DEDefaultDeviceQueue
	DEEventPool
	DEMaxWorkgroupSize
	DEParentEvent
	DEPreferedWorkgroupMultiple
	DEObjectID
	DEDispatcherSIMDSize

	LocalMemoryStatelessWindowStartAddress
	LocalMemoryStatelessWindowSize
	PrivateMemoryStatelessSize

	LocalIDX
	LocalIDY
	LocalIDZ
	BufferSize
	RTStackID

	StageInGridOrigin
	StageInGridSize
	BindlessOffset
	ArgBuffer
	AssertBuffer
	IndirectDataPointer
	ScratchPointer

	RegionGroupSize
	RegionGroupWGCount
	RegionGroupBarrierBuffer

	// NotToAllocate and Sampler share a value: samplers are never
	// allocated in the payload.
	NotToAllocate

	Image1D
	Image1DBuffer
	Image2D
	Image2DDepth
	Image2DMSAA
	Image2DMSAADepth
	Image3D
	ImageCube
	ImageCubeDepth
	Image1DArray
	Image2DArray
	Image2DDepthArray
	Image2DMSAAArray
	Image2DMSAADepthArray
	ImageCubeArray
	ImageCubeDepthArray

	BindlessSampler
	BindlessImage1D
	BindlessImage1DBuffer
	BindlessImage2D
	BindlessImage2DDepth
	BindlessImage2DMSAA
	BindlessImage2DMSAADepth
	BindlessImage3D
	BindlessImageCube
	BindlessImageCubeDepth
	BindlessImage1DArray
	BindlessImage2DArray
	BindlessImage2DDepthArray
	BindlessImage2DMSAAArray
	BindlessImage2DMSAADepthArray
	BindlessImageCubeArray
	BindlessImageCubeDepthArray

	Struct

	// End terminates the enum and doubles as the priority list sentinel.
	End
)

const Sampler = NotToAllocate

var categoryNames = [...]string{
	Default:                                "DEFAULT",
	R0:                                     "IMPLICIT_R0",
	R1:                                     "R1",
	PayloadHeader:                          "IMPLICIT_PAYLOAD_HEADER",
	GlobalOffset:                           "IMPLICIT_GLOBAL_OFFSET",
	PtrLocal:                               "PTR_LOCAL",
	PtrGlobal:                              "PTR_GLOBAL",
	PtrConstant:                            "PTR_CONSTANT",
	PtrDeviceQueue:                         "PTR_DEVICE_QUEUE",
	ConstantReg:                            "CONSTANT_REG",
	RuntimeValue:                           "RUNTIME_VALUE",
	ConstantBase:                           "IMPLICIT_CONSTANT_BASE",
	GlobalBase:                             "IMPLICIT_GLOBAL_BASE",
	PrivateBase:                            "IMPLICIT_PRIVATE_BASE",
	PrintfBuffer:                           "IMPLICIT_PRINTF_BUFFER",
	SyncBuffer:                             "IMPLICIT_SYNC_BUFFER",
	RTGlobalBuffer:                         "IMPLICIT_RT_GLOBAL_BUFFER",
	BufferOffset:                           "IMPLICIT_BUFFER_OFFSET",
	WorkDim:                                "IMPLICIT_WORK_DIM",
	NumGroups:                              "IMPLICIT_NUM_GROUPS",
	GlobalSize:                             "IMPLICIT_GLOBAL_SIZE",
	LocalSize:                              "IMPLICIT_LOCAL_SIZE",
	EnqueuedLocalWorkSize:                  "IMPLICIT_ENQUEUED_LOCAL_WORK_SIZE",
	ImageHeight:                            "IMPLICIT_IMAGE_HEIGHT",
	ImageWidth:                             "IMPLICIT_IMAGE_WIDTH",
	ImageDepth:                             "IMPLICIT_IMAGE_DEPTH",
	ImageNumMipLevels:                      "IMPLICIT_IMAGE_NUM_MIP_LEVELS",
	ImageChannelDataType:                   "IMPLICIT_IMAGE_CHANNEL_DATA_TYPE",
	ImageChannelOrder:                      "IMPLICIT_IMAGE_CHANNEL_ORDER",
	ImageSRGBChannelOrder:                  "IMPLICIT_IMAGE_SRGB_CHANNEL_ORDER",
	ImageArraySize:                         "IMPLICIT_IMAGE_ARRAY_SIZE",
	ImageNumSamples:                        "IMPLICIT_IMAGE_NUM_SAMPLES",
	SamplerAddress:                         "IMPLICIT_SAMPLER_ADDRESS",
	SamplerNormalized:                      "IMPLICIT_SAMPLER_NORMALIZED",
	SamplerSnapWA:                          "IMPLICIT_SAMPLER_SNAP_WA",
	InlineSampler:                          "IMPLICIT_INLINE_SAMPLER",
	VMEMbBlockType:                         "IMPLICIT_VME_MB_BLOCK_TYPE",
	VMESubpixelMode:                        "IMPLICIT_VME_SUBPIXEL_MODE",
	VMESadAdjustMode:                       "IMPLICIT_VME_SAD_ADJUST_MODE",
	VMESearchPathType:                      "IMPLICIT_VME_SEARCH_PATH_TYPE",
	DEDefaultDeviceQueue:                   "IMPLICIT_DEVICE_ENQUEUE_DEFAULT_DEVICE_QUEUE",
	DEEventPool:                            "IMPLICIT_DEVICE_ENQUEUE_EVENT_POOL",
	DEMaxWorkgroupSize:                     "IMPLICIT_DEVICE_ENQUEUE_MAX_WORKGROUP_SIZE",
	DEParentEvent:                          "IMPLICIT_DEVICE_ENQUEUE_PARENT_EVENT",
	DEPreferedWorkgroupMultiple:            "IMPLICIT_DEVICE_ENQUEUE_PREFERED_WORKGROUP_MULTIPLE",
	DEObjectID:                             "IMPLICIT_DEVICE_ENQUEUE_DATA_PARAMETER_OBJECT_ID",
	DEDispatcherSIMDSize:                   "IMPLICIT_DEVICE_ENQUEUE_DISPATCHER_SIMD_SIZE",
	LocalMemoryStatelessWindowStartAddress: "IMPLICIT_LOCAL_MEMORY_STATELESS_WINDOW_START_ADDRESS",
	LocalMemoryStatelessWindowSize:         "IMPLICIT_LOCAL_MEMORY_STATELESS_WINDOW_SIZE",
	PrivateMemoryStatelessSize:             "IMPLICIT_PRIVATE_MEMORY_STATELESS_SIZE",
	LocalIDX:                               "IMPLICIT_LOCAL_ID_X",
	LocalIDY:                               "IMPLICIT_LOCAL_ID_Y",
	LocalIDZ:                               "IMPLICIT_LOCAL_ID_Z",
	BufferSize:                             "IMPLICIT_BUFFER_SIZE",
	RTStackID:                              "RT_STACK_ID",
	StageInGridOrigin:                      "IMPLICIT_STAGE_IN_GRID_ORIGIN",
	StageInGridSize:                        "IMPLICIT_STAGE_IN_GRID_SIZE",
	BindlessOffset:                         "IMPLICIT_BINDLESS_OFFSET",
	ArgBuffer:                              "IMPLICIT_ARG_BUFFER",
	AssertBuffer:                           "IMPLICIT_ASSERT_BUFFER",
	IndirectDataPointer:                    "IMPLICIT_INDIRECT_DATA_POINTER",
	ScratchPointer:                         "IMPLICIT_SCRATCH_POINTER",
	RegionGroupSize:                        "IMPLICIT_REGION_GROUP_SIZE",
	RegionGroupWGCount:                     "IMPLICIT_REGION_GROUP_WG_COUNT",
	RegionGroupBarrierBuffer:               "IMPLICIT_REGION_GROUP_BARRIER_BUFFER",
	NotToAllocate:                          "SAMPLER",
	Image1D:                                "IMAGE_1D",
	Image1DBuffer:                          "IMAGE_1D_BUFFER",
	Image2D:                                "IMAGE_2D",
	Image2DDepth:                           "IMAGE_2D_DEPTH",
	Image2DMSAA:                            "IMAGE_2D_MSAA",
	Image2DMSAADepth:                       "IMAGE_2D_MSAA_DEPTH",
	Image3D:                                "IMAGE_3D",
	ImageCube:                              "IMAGE_CUBE",
	ImageCubeDepth:                         "IMAGE_CUBE_DEPTH",
	Image1DArray:                           "IMAGE_1D_ARRAY",
	Image2DArray:                           "IMAGE_2D_ARRAY",
	Image2DDepthArray:                      "IMAGE_2D_DEPTH_ARRAY",
	Image2DMSAAArray:                       "IMAGE_2D_MSAA_ARRAY",
	Image2DMSAADepthArray:                  "IMAGE_2D_MSAA_DEPTH_ARRAY",
	ImageCubeArray:                         "IMAGE_CUBE_ARRAY",
	ImageCubeDepthArray:                    "IMAGE_CUBE_DEPTH_ARRAY",
	BindlessSampler:                        "BINDLESS_SAMPLER",
	BindlessImage1D:                        "BINDLESS_IMAGE_1D",
	BindlessImage1DBuffer:                  "BINDLESS_IMAGE_1D_BUFFER",
	BindlessImage2D:                        "BINDLESS_IMAGE_2D",
	BindlessImage2DDepth:                   "BINDLESS_IMAGE_2D_DEPTH",
	BindlessImage2DMSAA:                    "BINDLESS_IMAGE_2D_MSAA",
	BindlessImage2DMSAADepth:               "BINDLESS_IMAGE_2D_MSAA_DEPTH",
	BindlessImage3D:                        "BINDLESS_IMAGE_3D",
	BindlessImageCube:                      "BINDLESS_IMAGE_CUBE",
	BindlessImageCubeDepth:                 "BINDLESS_IMAGE_CUBE_DEPTH",
	BindlessImage1DArray:                   "BINDLESS_IMAGE_1D_ARRAY",
	BindlessImage2DArray:                   "BINDLESS_IMAGE_2D_ARRAY",
	BindlessImage2DDepthArray:              "BINDLESS_IMAGE_2D_DEPTH_ARRAY",
	BindlessImage2DMSAAArray:               "BINDLESS_IMAGE_2D_MSAA_ARRAY",
	BindlessImage2DMSAADepthArray:          "BINDLESS_IMAGE_2D_MSAA_DEPTH_ARRAY",
	BindlessImageCubeArray:                 "BINDLESS_IMAGE_CUBE_ARRAY",
	BindlessImageCubeDepthArray:            "BINDLESS_IMAGE_CUBE_DEPTH_ARRAY",
	Struct:                                 "STRUCT",
	End:                                    "END",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) && categoryNames[c] != "" {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// AlwaysAllocated reports whether arguments of c always take payload space.
func (c Category) AlwaysAllocated() bool { return c < NotToAllocate }

// IsImage reports whether c is a bound or bindless image.
func (c Category) IsImage() bool {
	return (c >= Image1D && c <= ImageCubeDepthArray) ||
		(c >= BindlessImage1D && c <= BindlessImageCubeDepthArray)
}

// IsPointer reports whether c is one of the explicit pointer classes.
func (c Category) IsPointer() bool {
	return c == PtrLocal || c == PtrGlobal || c == PtrConstant || c == PtrDeviceQueue
}

// IsLocalID reports whether c is one of the per-lane local ids.
func (c Category) IsLocalID() bool {
	return c == LocalIDX || c == LocalIDY || c == LocalIDZ
}
