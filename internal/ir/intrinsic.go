package ir

// Intrinsic identifies a target intrinsic called by OpCall.
type Intrinsic string

const (
	NotIntrinsic Intrinsic = ""

	IntrinsicSimdBlockRead        Intrinsic = "simdBlockRead"
	IntrinsicSimdBlockWrite       Intrinsic = "simdBlockWrite"
	IntrinsicHDCUncompressedWrite Intrinsic = "HDCuncompressedwrite"

	IntrinsicIntAtomicRaw          Intrinsic = "intatomicraw"
	IntrinsicFloatAtomicRaw        Intrinsic = "floatatomicraw"
	IntrinsicIntAtomicRawA64       Intrinsic = "intatomicrawA64"
	IntrinsicFloatAtomicRawA64     Intrinsic = "floatatomicrawA64"
	IntrinsicICmpXchgAtomicRaw     Intrinsic = "icmpxchgatomicraw"
	IntrinsicFCmpXchgAtomicRaw     Intrinsic = "fcmpxchgatomicraw"
	IntrinsicICmpXchgAtomicRawA64  Intrinsic = "icmpxchgatomicrawA64"
	IntrinsicFCmpXchgAtomicRawA64  Intrinsic = "fcmpxchgatomicrawA64"

	IntrinsicSimdSize   Intrinsic = "simdSize"
	IntrinsicSimdLaneID Intrinsic = "simdLaneId"

	IntrinsicGetR0                 Intrinsic = "getR0"
	IntrinsicGetPayloadHeader      Intrinsic = "getPayloadHeader"
	IntrinsicGetWorkDim            Intrinsic = "getWorkDim"
	IntrinsicGetNumWorkGroups      Intrinsic = "getNumWorkGroups"
	IntrinsicGetGlobalSize         Intrinsic = "getGlobalSize"
	IntrinsicGetLocalSize          Intrinsic = "getLocalSize"
	IntrinsicGetEnqueuedLocalSize  Intrinsic = "getEnqueuedLocalSize"
	IntrinsicGetLocalIDX           Intrinsic = "getLocalID.X"
	IntrinsicGetLocalIDY           Intrinsic = "getLocalID.Y"
	IntrinsicGetLocalIDZ           Intrinsic = "getLocalID.Z"
	IntrinsicGetPrivateBase        Intrinsic = "getPrivateBase"
	IntrinsicGetPrintfBuffer       Intrinsic = "getPrintfBuffer"
	IntrinsicGetStageInGridOrigin  Intrinsic = "getStageInGridOrigin"
	IntrinsicGetStageInGridSize    Intrinsic = "getStageInGridSize"
	IntrinsicGetSyncBuffer         Intrinsic = "getSyncBuffer"
	IntrinsicGetAssertBuffer       Intrinsic = "getAssertBufferPtr"
	IntrinsicGetRTGlobalBuffer     Intrinsic = "getRtGlobalBufferPtr"
	IntrinsicGetGlobalOffset       Intrinsic = "getGlobalOffset"
	IntrinsicGetImplicitArgBuffer  Intrinsic = "getImplicitBufferPtr"
	IntrinsicGetIndirectDataPtr    Intrinsic = "getIndirectDataPtr"
	IntrinsicGetScratchPointer     Intrinsic = "getScratchPointer"
	IntrinsicGetRegionGroupSize    Intrinsic = "getRegionGroupSize"
	IntrinsicGetRegionGroupWGCount Intrinsic = "getRegionGroupWGCount"
)

// IsUntypedAtomic reports whether id is a raw buffer atomic.
func (id Intrinsic) IsUntypedAtomic() bool {
	switch id {
	case IntrinsicIntAtomicRaw, IntrinsicFloatAtomicRaw,
		IntrinsicIntAtomicRawA64, IntrinsicFloatAtomicRawA64,
		IntrinsicICmpXchgAtomicRaw, IntrinsicFCmpXchgAtomicRaw,
		IntrinsicICmpXchgAtomicRawA64, IntrinsicFCmpXchgAtomicRawA64:
		return true
	}
	return false
}

// IsA64 reports whether id is an atomic taking a 64-bit address pair.
func (id Intrinsic) IsA64() bool {
	switch id {
	case IntrinsicIntAtomicRawA64, IntrinsicFloatAtomicRawA64,
		IntrinsicICmpXchgAtomicRawA64, IntrinsicFCmpXchgAtomicRawA64:
		return true
	}
	return false
}

// IsBlockAccess reports whether id is a SIMD block read or write.
func (id Intrinsic) IsBlockAccess() bool {
	switch id {
	case IntrinsicSimdBlockRead, IntrinsicSimdBlockWrite, IntrinsicHDCUncompressedWrite:
		return true
	}
	return false
}
