package ir

import (
	"fmt"
	"strings"
)

// AddressSpace identifies the memory a pointer refers to.
type AddressSpace uint32

const (
	SpacePrivate  AddressSpace = 0
	SpaceGlobal   AddressSpace = 1
	SpaceConstant AddressSpace = 2
	SpaceLocal    AddressSpace = 3
	SpaceGeneric  AddressSpace = 4

	SpaceGlobalOrPrivate AddressSpace = 20
	SpaceA32             AddressSpace = 22

	// NumAddressSpaces bounds the plain address spaces. Anything above it
	// is an encoded resource address space.
	NumAddressSpaces AddressSpace = 24
)

func (s AddressSpace) String() string {
	switch s {
	case SpacePrivate:
		return "private"
	case SpaceGlobal:
		return "global"
	case SpaceConstant:
		return "constant"
	case SpaceLocal:
		return "local"
	case SpaceGeneric:
		return "generic"
	}
	return fmt.Sprintf("as(%d)", uint32(s))
}

// IsStateful reports whether s is an encoded resource address space.
func (s AddressSpace) IsStateful() bool {
	return s > NumAddressSpaces
}

// TypeKind classifies a Type.
type TypeKind uint8

const (
	KindVoid TypeKind = iota
	KindInt
	KindFloat
	KindPointer
	KindVector
	KindArray
	KindStruct
	KindOpaque
)

// Type is an IR type. Types are compared by identity for structs and
// opaque handles, structurally for everything else (see Equal).
type Type struct {
	Kind   TypeKind
	Bits   int          // int, float
	Space  AddressSpace // pointer
	Elem   *Type        // pointer pointee, vector and array element
	Len    int          // vector, array
	Fields []*Type      // struct
	Name   string       // struct, opaque
	Packed bool         // struct
}

var (
	Void = &Type{Kind: KindVoid}
	I1   = &Type{Kind: KindInt, Bits: 1}
	I8   = &Type{Kind: KindInt, Bits: 8}
	I16  = &Type{Kind: KindInt, Bits: 16}
	I32  = &Type{Kind: KindInt, Bits: 32}
	I64  = &Type{Kind: KindInt, Bits: 64}
	F16  = &Type{Kind: KindFloat, Bits: 16}
	F32  = &Type{Kind: KindFloat, Bits: 32}
	F64  = &Type{Kind: KindFloat, Bits: 64}
)

// Int returns the integer type of the given width.
func Int(bits int) *Type {
	switch bits {
	case 1:
		return I1
	case 8:
		return I8
	case 16:
		return I16
	case 32:
		return I32
	case 64:
		return I64
	}
	return &Type{Kind: KindInt, Bits: bits}
}

// Ptr returns a pointer to elem in the given address space.
func Ptr(elem *Type, space AddressSpace) *Type {
	return &Type{Kind: KindPointer, Elem: elem, Space: space}
}

// Vec returns a fixed vector type.
func Vec(elem *Type, n int) *Type {
	return &Type{Kind: KindVector, Elem: elem, Len: n}
}

// Array returns a fixed array type.
func Array(elem *Type, n int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: n}
}

// Struct returns a new named struct type.
func Struct(name string, fields ...*Type) *Type {
	return &Type{Kind: KindStruct, Name: name, Fields: fields}
}

// Opaque returns a named opaque handle type such as an image.
func Opaque(name string) *Type {
	return &Type{Kind: KindOpaque, Name: name}
}

func (t *Type) IsPointer() bool { return t != nil && t.Kind == KindPointer }
func (t *Type) IsInt() bool     { return t != nil && t.Kind == KindInt }
func (t *Type) IsStruct() bool  { return t != nil && t.Kind == KindStruct }

// Scalar returns the element type of a vector, t otherwise.
func (t *Type) Scalar() *Type {
	if t != nil && t.Kind == KindVector {
		return t.Elem
	}
	return t
}

// Sized reports whether the type has a storage size.
func (t *Type) Sized() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindVoid, KindOpaque:
		return false
	case KindArray, KindVector:
		return t.Elem.Sized()
	}
	return true
}

// Equal compares two types structurally. Structs and opaque handles
// compare by name.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInt, KindFloat:
		return a.Bits == b.Bits
	case KindPointer:
		return a.Space == b.Space && Equal(a.Elem, b.Elem)
	case KindVector, KindArray:
		return a.Len == b.Len && Equal(a.Elem, b.Elem)
	case KindStruct, KindOpaque:
		return a.Name == b.Name && a.Name != ""
	}
	return true
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindInt:
		return fmt.Sprintf("i%d", t.Bits)
	case KindFloat:
		switch t.Bits {
		case 16:
			return "half"
		case 64:
			return "double"
		}
		return "float"
	case KindPointer:
		if t.Space == SpacePrivate {
			return t.Elem.String() + "*"
		}
		return fmt.Sprintf("%s addrspace(%d)*", t.Elem, uint32(t.Space))
	case KindVector:
		return fmt.Sprintf("<%d x %s>", t.Len, t.Elem)
	case KindArray:
		return fmt.Sprintf("[%d x %s]", t.Len, t.Elem)
	case KindStruct:
		if t.Name != "" {
			return "%" + t.Name
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case KindOpaque:
		return "%opaque." + t.Name
	}
	return "?"
}
