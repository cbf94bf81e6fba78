package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// неявные аргументы
	ArgInfo               Code = 1000
	ArgRecursion          Code = 1001
	ArgIndirectlyCalled   Code = 1002
	ArgMissingImplicit    Code = 1003
	ArgBufferOffsetAdded  Code = 1004
	ArgUnknownEntryFunc   Code = 1005
	ArgBindlessResolution Code = 1006

	// раскладка аргументов
	KargInfo             Code = 2000
	KargBadPriorityList  Code = 2001
	KargZeroPerThread    Code = 2002
	KargUnsizedArgument  Code = 2003
	KargUnknownImageType Code = 2004

	// приватная память
	FrmInfo            Code = 3000
	FrmScratchClamped  Code = 3001
	FrmScratchExceeded Code = 3002
	FrmVariableLength  Code = 3003
	FrmStackCall       Code = 3004
	FrmSIMDReduced     Code = 3005

	// продвижение адресов
	PrmInfo           Code = 4000
	PrmPromoted       Code = 4001
	PrmNegativeOffset Code = 4002
	PrmNotAffine      Code = 4003
	PrmCapReached     Code = 4004
	PrmNonKernelArg   Code = 4005
	PrmNoResource     Code = 4006

	// граф вызовов
	CgInfo          Code = 5000
	CgCallCycle     Code = 5001
	CgMissingCallee Code = 5002
	CgDuplicateFunc Code = 5003

	// IO и конфигурация
	IOInfo        Code = 6000
	IOLoadFailed  Code = 6001
	IOBadConfig   Code = 6002
	IOCacheFailed Code = 6003

	// Наблюдаемость
	ObsInfo    Code = 7000
	ObsTimings Code = 7001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		ArgInfo:               "Implicit argument information",
		ArgRecursion:          "Implicit argument propagation hit a recursive call chain",
		ArgIndirectlyCalled:   "Indirectly called function does not receive implicit arguments",
		ArgMissingImplicit:    "Requested implicit argument is not present on the function",
		ArgBufferOffsetAdded:  "Buffer offset argument added for stateful access",
		ArgUnknownEntryFunc:   "Metadata names a function missing from the module",
		ArgBindlessResolution: "Bindless resource argument resolved from uses",
		KargInfo:              "Kernel argument layout information",
		KargBadPriorityList:   "Payload priority list is not a permutation of categories",
		KargZeroPerThread:     "Kernel has no per-thread payload; R1 added",
		KargUnsizedArgument:   "Kernel argument type has no size",
		KargUnknownImageType:  "Unrecognised image type name",
		FrmInfo:               "Private memory information",
		FrmScratchClamped:     "Private memory exceeds the scratch limit; per-lane size clamped",
		FrmScratchExceeded:    "Private memory exceeds the scratch limit",
		FrmVariableLength:     "Function uses a variable length stack allocation",
		FrmStackCall:          "Function uses stack calls; frame moved to the call stack",
		FrmSIMDReduced:        "SIMD width reduced to fit private memory",
		PrmInfo:               "Address promotion information",
		PrmPromoted:           "Global access promoted to a stateful surface",
		PrmNegativeOffset:     "Access offset may be negative; kept stateless",
		PrmNotAffine:          "Access address is not affine in the base; kept stateless",
		PrmCapReached:         "Promotion limit reached; remaining accesses kept stateless",
		PrmNonKernelArg:       "Access is not based on a kernel argument; kept stateless",
		PrmNoResource:         "Buffer argument has no pre-assigned surface slot",
		CgInfo:                "Call graph information",
		CgCallCycle:           "Function participates in a call cycle",
		CgMissingCallee:       "Call targets a function outside the module",
		CgDuplicateFunc:       "Duplicate function name in module",
		IOInfo:                "IO information",
		IOLoadFailed:          "Failed to load input",
		IOBadConfig:           "Invalid configuration",
		IOCacheFailed:         "Cache access failed",
		ObsInfo:               "Observability information",
		ObsTimings:            "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ARG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("KRG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("FRM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("PRM%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
