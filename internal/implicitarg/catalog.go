package implicitarg

import (
	"fmt"
	"sync"

	"kernelabi/internal/ir"
)

// ValType is the element type of an implicit argument.
type ValType uint8

const (
	Byte ValType = iota
	Short
	Int
	Long
	FP32
	ConstPtr
	GlobalPtr
	PrivatePtr
)

// Uniformity is how an implicit argument varies across lanes.
type Uniformity uint8

const (
	Uniform Uniformity = iota
	Random
)

// AlignClass selects how an implicit argument is aligned in the payload.
type AlignClass uint8

const (
	AlignDWord AlignClass = iota
	AlignQWord
	AlignGRF
	AlignPtr
)

// Descriptor is the physical shape of one implicit argument.
type Descriptor struct {
	Kind           Kind
	Name           string
	ValType        ValType
	Uniformity     Uniformity
	Count          int
	Align          AlignClass
	ConstantBuffer bool
	Intrinsic      ir.Intrinsic
}

func d(k Kind, name string, vt ValType, u Uniformity, n int, a AlignClass, cb bool, id ir.Intrinsic) Descriptor {
	return Descriptor{Kind: k, Name: name, ValType: vt, Uniformity: u, Count: n, Align: a, ConstantBuffer: cb, Intrinsic: id}
}

const none = ir.NotIntrinsic

var table = [...]Descriptor{
	d(R0, "r0", Int, Uniform, 8, AlignGRF, false, ir.IntrinsicGetR0),
	d(PayloadHeader, "payloadHeader", Int, Uniform, 8, AlignGRF, true, ir.IntrinsicGetPayloadHeader),
	d(WorkDim, "workDim", Int, Uniform, 1, AlignDWord, true, ir.IntrinsicGetWorkDim),
	d(NumGroups, "numWorkGroups", Int, Uniform, 3, AlignDWord, true, ir.IntrinsicGetNumWorkGroups),
	d(GlobalSize, "globalSize", Int, Uniform, 3, AlignDWord, true, ir.IntrinsicGetGlobalSize),
	d(LocalSize, "localSize", Int, Uniform, 3, AlignDWord, true, ir.IntrinsicGetLocalSize),
	d(EnqueuedLocalWorkSize, "enqueuedLocalSize", Int, Uniform, 3, AlignDWord, true, ir.IntrinsicGetEnqueuedLocalSize),
	d(LocalIDX, "localIdX", Short, Random, 16, AlignGRF, false, ir.IntrinsicGetLocalIDX),
	d(LocalIDY, "localIdY", Short, Random, 16, AlignGRF, false, ir.IntrinsicGetLocalIDY),
	d(LocalIDZ, "localIdZ", Short, Random, 16, AlignGRF, false, ir.IntrinsicGetLocalIDZ),
	d(ConstantBase, "constBase", ConstPtr, Uniform, 1, AlignPtr, true, none),
	d(GlobalBase, "globalBase", GlobalPtr, Uniform, 1, AlignPtr, true, none),
	d(PrivateBase, "privateBase", PrivatePtr, Uniform, 1, AlignPtr, true, ir.IntrinsicGetPrivateBase),
	d(PrintfBuffer, "printfBuffer", GlobalPtr, Uniform, 1, AlignPtr, true, ir.IntrinsicGetPrintfBuffer),
	d(BufferOffset, "bufferOffset", Int, Uniform, 1, AlignDWord, true, none),

	d(ConstantRegFP32, "const_reg_fp32", FP32, Uniform, 1, AlignDWord, true, none),
	d(ConstantRegQWord, "const_reg_qword", Long, Uniform, 1, AlignQWord, true, none),
	d(ConstantRegDWord, "const_reg_dword", Int, Uniform, 1, AlignDWord, true, none),
	d(ConstantRegWord, "const_reg_word", Short, Uniform, 1, AlignDWord, true, none),
	d(ConstantRegByte, "const_reg_byte", Byte, Uniform, 1, AlignDWord, true, none),

	d(ImageHeight, "imageHeigt", Int, Uniform, 1, AlignDWord, true, none),
	d(ImageWidth, "imageWidth", Int, Uniform, 1, AlignDWord, true, none),
	d(ImageDepth, "imageDepth", Int, Uniform, 1, AlignDWord, true, none),
	d(ImageNumMipLevels, "imageNumMipLevels", Int, Uniform, 1, AlignDWord, true, none),
	d(ImageChannelDataType, "imageDataType", Int, Uniform, 1, AlignDWord, true, none),
	d(ImageChannelOrder, "imageOrder", Int, Uniform, 1, AlignDWord, true, none),
	d(ImageSRGBChannelOrder, "imageSrgbOrder", Int, Uniform, 1, AlignDWord, true, none),
	d(ImageArraySize, "imageArrSize", Int, Uniform, 1, AlignDWord, true, none),
	d(ImageNumSamples, "imageNumSamples", Int, Uniform, 1, AlignDWord, true, none),
	d(SamplerAddress, "smpAddress", Int, Uniform, 1, AlignDWord, true, none),
	d(SamplerNormalized, "smpNormalized", Int, Uniform, 1, AlignDWord, true, none),
	d(SamplerSnapWA, "smpSnapWA", Int, Uniform, 1, AlignDWord, true, none),
	d(InlineSampler, "inlineSampler", Int, Uniform, 1, AlignDWord, true, none),
	d(FlatImageBaseOffset, "flatImageBaseoffset", Long, Uniform, 1, AlignQWord, true, none),
	d(FlatImageHeight, "flatImageHeight", Int, Uniform, 1, AlignDWord, true, none),
	d(FlatImageWidth, "flatImageWidth", Int, Uniform, 1, AlignDWord, true, none),
	d(FlatImagePitch, "flatImagePitch", Int, Uniform, 1, AlignDWord, true, none),

	d(VMEMbBlockType, "vmeMbBlockType", Int, Uniform, 1, AlignDWord, true, none),
	d(VMESubpixelMode, "vmeSubpixelMode", Int, Uniform, 1, AlignDWord, true, none),
	d(VMESadAdjustMode, "vmeSadAdjustMode", Int, Uniform, 1, AlignDWord, true, none),
	d(VMESearchPathType, "vmeSearchPathType", Int, Uniform, 1, AlignDWord, true, none),

	d(DeviceEnqueueDefaultDeviceQueue, "deviceEnqueueDefaultDeviceQueue", GlobalPtr, Uniform, 1, AlignPtr, true, none),
	d(DeviceEnqueueEventPool, "deviceEnqueueEventPool", GlobalPtr, Uniform, 1, AlignPtr, true, none),
	d(DeviceEnqueueMaxWorkgroupSize, "deviceEnqueueMaxWorkgroupSize", Int, Uniform, 1, AlignDWord, true, none),
	d(DeviceEnqueueParentEvent, "deviceEnqueueParentEvent", Int, Uniform, 1, AlignDWord, true, none),
	d(DeviceEnqueuePreferedWorkgroupMultiple, "deviceEnqueuePreferedWorkgroupMultiple", Int, Uniform, 1, AlignDWord, true, none),
	d(GetObjectID, "deviceEnqueueGetObjectId", Int, Uniform, 1, AlignDWord, true, none),
	d(GetBlockSimdSize, "deviceEnqueueGetBlockSimdSize", Int, Uniform, 1, AlignDWord, true, none),

	d(LocalMemoryStatelessWindowStartAddress, "localMemStatelessWindowStartAddr", GlobalPtr, Uniform, 1, AlignPtr, true, none),
	d(LocalMemoryStatelessWindowSize, "localMemStatelessWindowSize", Int, Uniform, 1, AlignDWord, true, none),
	d(PrivateMemoryStatelessSize, "PrivateMemStatelessSize", Int, Uniform, 1, AlignDWord, true, none),

	d(StageInGridOrigin, "stageInGridOrigin", Int, Uniform, 3, AlignGRF, true, ir.IntrinsicGetStageInGridOrigin),
	d(StageInGridSize, "stageInGridSize", Int, Uniform, 3, AlignGRF, true, ir.IntrinsicGetStageInGridSize),
	d(SyncBuffer, "syncBuffer", GlobalPtr, Uniform, 1, AlignPtr, false, ir.IntrinsicGetSyncBuffer),

	d(GlobalOffset, "globalOffset", Int, Uniform, 3, AlignDWord, true, ir.IntrinsicGetGlobalOffset),
	d(BufferSize, "bufferSize", Long, Uniform, 1, AlignQWord, true, none),
	d(RTStackID, "rtStackID", Short, Random, 16, AlignGRF, false, none),
	d(RTGlobalBufferPointer, "globalPointer", GlobalPtr, Uniform, 1, AlignPtr, true, ir.IntrinsicGetRTGlobalBuffer),
	d(BindlessOffset, "bindlessOffset", Int, Uniform, 1, AlignDWord, true, none),
	d(ImplicitArgBufferPtr, "implicitArgBuffer", GlobalPtr, Uniform, 1, AlignPtr, true, ir.IntrinsicGetImplicitArgBuffer),
	d(AssertBufferPointer, "assertBufferPointer", GlobalPtr, Uniform, 1, AlignPtr, true, ir.IntrinsicGetAssertBuffer),
	d(IndirectDataPointer, "indirectDataPointer", GlobalPtr, Uniform, 1, AlignPtr, true, ir.IntrinsicGetIndirectDataPtr),
	d(ScratchPointer, "scratchPointer", GlobalPtr, Uniform, 1, AlignPtr, true, ir.IntrinsicGetScratchPointer),
	d(RegionGroupSize, "regionGroupSize", Int, Uniform, 3, AlignDWord, true, ir.IntrinsicGetRegionGroupSize),
	d(RegionGroupWGCount, "regionGroupWGCount", Int, Uniform, 1, AlignDWord, true, ir.IntrinsicGetRegionGroupWGCount),
	d(RegionGroupBarrierBuffer, "regionGroupBarrierBuffer", GlobalPtr, Uniform, 1, AlignPtr, true, none),
}

var checkOnce sync.Once

// verify panics if the table drifted from the Kind enum.
func verify() {
	checkOnce.Do(func() {
		if len(table) != int(KindCount) {
			panic(fmt.Errorf("implicitarg: catalog has %d entries, enum has %d", len(table), KindCount))
		}
		for i := range table {
			if table[i].Kind != Kind(i) {
				panic(fmt.Errorf("implicitarg: catalog entry %d (%s) is out of sync with the enum", i, table[i].Name))
			}
		}
	})
}

// Lookup returns the descriptor of k. An out-of-range kind is a
// corrupted input and panics.
func Lookup(k Kind) Descriptor {
	verify()
	if k >= KindCount {
		panic(fmt.Errorf("implicitarg: kind %d out of range", uint16(k)))
	}
	return table[k]
}

// LookupByIntrinsic finds the implicit argument an intrinsic reads.
func LookupByIntrinsic(id ir.Intrinsic) (Descriptor, bool) {
	verify()
	if id == ir.NotIntrinsic {
		return Descriptor{}, false
	}
	for i := range table {
		if table[i].Intrinsic == id {
			return table[i], true
		}
	}
	return Descriptor{}, false
}

// All returns a copy of the catalog in kind order.
func All() []Descriptor {
	verify()
	out := make([]Descriptor, len(table))
	copy(out, table[:])
	return out
}
