package layout

import (
	"math/bits"

	"kernelabi/internal/ir"
)

func (e *LayoutEngine) computeLayout(t *ir.Type, state *layoutState) (TypeLayout, *LayoutError) {
	switch t.Kind {
	case ir.KindVoid, ir.KindOpaque:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnsized, Type: t}

	case ir.KindInt, ir.KindFloat:
		return scalarLayoutBytes((t.Bits + 7) / 8), nil

	case ir.KindPointer:
		return e.ptrLayout(t.Space), nil

	case ir.KindVector:
		if t.Len < 0 {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrNegativeLength, Type: t, Value: t.Len}
		}
		el, err := e.layoutOf(t.Elem, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		size := el.Size * t.Len
		return TypeLayout{Size: size, Align: nextPow2(size)}, nil

	case ir.KindArray:
		if t.Len < 0 {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrNegativeLength, Type: t, Value: t.Len}
		}
		return e.arrayFixedLayout(t.Elem, t.Len, state)

	case ir.KindStruct:
		return e.structLayout(t, state)
	}
	return TypeLayout{Size: 0, Align: 1}, nil
}

func (e *LayoutEngine) ptrLayout(space ir.AddressSpace) TypeLayout {
	size := e.PointerSize(space)
	if size <= 0 {
		size = 8
	}
	return TypeLayout{Size: size, Align: size}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: nextPow2(size)}
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

// RoundUp rounds n up to a multiple of align.
func RoundUp(n, align int) int { return roundUp(n, align) }

// NextPow2 rounds n up to a power of two.
func NextPow2(n int) int { return nextPow2(n) }

func (e *LayoutEngine) arrayFixedLayout(elem *ir.Type, length int, state *layoutState) (TypeLayout, *LayoutError) {
	elemLayout, err := e.layoutOf(elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	elemAlign := max(elemLayout.Align, 1)
	stride := roundUp(elemLayout.Size, elemAlign)
	return TypeLayout{
		Size:  stride * length,
		Align: elemAlign,
	}, nil
}

func (e *LayoutEngine) structLayout(t *ir.Type, state *layoutState) (TypeLayout, *LayoutError) {
	if len(t.Fields) == 0 {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	offsets := make([]int, len(t.Fields))
	aligns := make([]int, len(t.Fields))

	size := 0
	align := 1
	for i, f := range t.Fields {
		fl, err := e.layoutOf(f, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		fAlign := max(fl.Align, 1)
		if t.Packed {
			fAlign = 1
		}
		size = roundUp(size, fAlign)
		offsets[i] = size
		aligns[i] = fAlign
		size += fl.AllocSize()
		align = max(align, fAlign)
	}
	size = roundUp(size, align)
	return TypeLayout{
		Size:         size,
		Align:        align,
		FieldOffsets: offsets,
		FieldAligns:  aligns,
	}, nil
}
