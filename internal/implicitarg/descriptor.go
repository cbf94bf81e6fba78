package implicitarg

import "kernelabi/internal/ir"

// IsPointer reports whether the value is an address.
func (v ValType) IsPointer() bool {
	return v == ConstPtr || v == GlobalPtr || v == PrivatePtr
}

// Space is the address space of a pointer value type.
func (v ValType) Space() ir.AddressSpace {
	switch v {
	case ConstPtr:
		return ir.SpaceConstant
	case PrivatePtr:
		return ir.SpacePrivate
	}
	return ir.SpaceGlobal
}

func (v ValType) String() string {
	switch v {
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case FP32:
		return "fp32"
	case ConstPtr:
		return "constptr"
	case GlobalPtr:
		return "globalptr"
	case PrivatePtr:
		return "privateptr"
	}
	return "?"
}

func (u Uniformity) String() string {
	if u == Random {
		return "random"
	}
	return "uniform"
}

func (a AlignClass) String() string {
	switch a {
	case AlignDWord:
		return "dword"
	case AlignQWord:
		return "qword"
	case AlignGRF:
		return "grf"
	}
	return "ptr"
}

// PointerSize returns the pointer width the descriptor uses, 0 for
// non-pointer kinds.
func (d Descriptor) PointerSize(dl *ir.DataLayout) int {
	if !d.ValType.IsPointer() {
		return 0
	}
	return dl.PointerSize(d.ValType.Space())
}

// ElemSize is the byte size of one element.
func (d Descriptor) ElemSize(dl *ir.DataLayout) int {
	switch d.ValType {
	case Byte:
		return 1
	case Short:
		return 2
	case Int, FP32:
		return 4
	case Long:
		return 8
	}
	return d.PointerSize(dl)
}

// AllocSize is Count elements of ElemSize bytes.
func (d Descriptor) AllocSize(dl *ir.DataLayout) int {
	return d.Count * d.ElemSize(dl)
}

// Alignment returns the payload alignment in bytes.
func (d Descriptor) Alignment(dl *ir.DataLayout, grfSize int) int {
	switch d.Align {
	case AlignDWord:
		return 4
	case AlignQWord:
		return 8
	case AlignGRF:
		return grfSize
	}
	if d.PointerSize(dl) == 4 {
		return 4
	}
	return 8
}

// ScalarType is the element IR type.
func (d Descriptor) ScalarType() *ir.Type {
	switch d.ValType {
	case Byte:
		return ir.I8
	case Short:
		return ir.I16
	case Int:
		return ir.I32
	case Long:
		return ir.I64
	case FP32:
		return ir.F32
	}
	return ir.Ptr(ir.I8, d.ValType.Space())
}

// Type is the IR type of the argument as a function parameter. Every
// lane sees a scalar for per-lane kinds, so only uniform kinds with
// more than one element become vectors.
func (d Descriptor) Type() *ir.Type {
	base := d.ScalarType()
	if d.Count == 1 || d.Uniformity != Uniform {
		return base
	}
	return ir.Vec(base, d.Count)
}
