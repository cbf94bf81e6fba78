package kernelargs

import (
	"fmt"

	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
	"kernelabi/internal/layout"
	"kernelabi/internal/metadata"
)

// DataParameterSize is the granularity of payload slots in bytes.
const DataParameterSize = 4

// ImageInfo records how an image argument is sampled.
type ImageInfo struct {
	FloatCoords bool
	IntCoords   bool
}

// KernelArg is one explicit or implicit argument as the payload sees it.
type KernelArg struct {
	Implicit bool
	Category Category
	Access   AccessQual

	// Size is the raw byte size, ElemSize the size of one scalar element.
	Size     int
	ElemSize int
	Align    int

	ConstantBuffer  bool
	NeedsAllocation bool

	// Arg is nil for synthetic arguments such as the R1 filler.
	Arg *ir.Argument
	// AssociatedArg is the explicit argument an implicit piece belongs to,
	// or the argument's own position.
	AssociatedArg int
	// StructOffset is the byte offset of a struct piece, -1 otherwise.
	StructOffset int

	// LocationIndex and LocationCount are -1 when absent.
	LocationIndex int
	LocationCount int

	IsEmulation bool
	ScalarAsPtr bool
	Image       ImageInfo

	// ImplicitKind is meaningful only when Implicit is set.
	ImplicitKind implicitarg.Kind
}

// AllocateSize is Size rounded up to DataParameterSize.
func (k *KernelArg) AllocateSize() int {
	return layout.RoundUp(k.Size, DataParameterSize)
}

// NumComponents is the vector width of the argument type, 1 for scalars.
func (k *KernelArg) NumComponents() int {
	if k.Arg == nil {
		return 1
	}
	if t := k.Arg.Type(); t.Kind == ir.KindVector {
		return t.Len
	}
	return 1
}

func (k *KernelArg) IsPointer() bool { return k.Category.IsPointer() }
func (k *KernelArg) IsLocalID() bool { return k.Category.IsLocalID() }

func (k *KernelArg) String() string {
	kind := "explicit"
	if k.Implicit {
		kind = "implicit"
	}
	return fmt.Sprintf("%s %s size=%d align=%d assoc=%d", kind, k.Category, k.Size, k.Align, k.AssociatedArg)
}

// NewFixed builds a synthetic argument with given shape.
func NewFixed(cat Category, size, elemSize, align int, constBuf bool, arg *ir.Argument, assoc int) KernelArg {
	return KernelArg{
		Category:        cat,
		Size:            size,
		ElemSize:        elemSize,
		Align:           align,
		ConstantBuffer:  constBuf,
		NeedsAllocation: cat.AlwaysAllocated(),
		Arg:             arg,
		AssociatedArg:   assoc,
		StructOffset:    -1,
		LocationIndex:   -1,
		LocationCount:   -1,
	}
}

// ExplicitOptions carries the metadata merged into an explicit argument.
type ExplicitOptions struct {
	TypeStr        string
	AccessQual     string
	Location       *metadata.BufferLocation
	BindlessHandle bool
	IsEmulation    bool
	ScalarAsPtr    bool
}

// NewExplicit classifies a and sizes it with le. Arguments that take no
// payload space have zero size, element size and alignment.
func NewExplicit(a *ir.Argument, le *layout.LayoutEngine, opts ExplicitOptions) (KernelArg, error) {
	cat := Classify(a, opts.TypeStr)
	need := opts.BindlessHandle || cat.AlwaysAllocated()
	k := KernelArg{
		Category:        cat,
		Access:          ParseAccessQual(opts.AccessQual),
		ConstantBuffer:  need,
		NeedsAllocation: need,
		Arg:             a,
		AssociatedArg:   a.No,
		StructOffset:    -1,
		LocationIndex:   -1,
		LocationCount:   -1,
		IsEmulation:     opts.IsEmulation,
		ScalarAsPtr:     opts.ScalarAsPtr,
	}
	if opts.Location != nil {
		k.LocationIndex = opts.Location.Index
		k.LocationCount = opts.Location.Count
	}
	if !need {
		return k, nil
	}
	var err error
	if k.Size, err = le.AllocSizeOf(a.Type()); err != nil {
		return KernelArg{}, fmt.Errorf("argument %d: %w", a.No, err)
	}
	if k.ElemSize, err = le.AllocSizeOf(a.Type().Scalar()); err != nil {
		return KernelArg{}, fmt.Errorf("argument %d: %w", a.No, err)
	}
	if k.Align, err = explicitAlign(a, cat, le); err != nil {
		return KernelArg{}, fmt.Errorf("argument %d: %w", a.No, err)
	}
	return k, nil
}

func explicitAlign(a *ir.Argument, cat Category, le *layout.LayoutEngine) (int, error) {
	if al := a.Attrs.Align; al != 0 && (al != 1 || a.Attrs.ByVal != nil) {
		return al, nil
	}
	t := a.Type()
	if cat == PtrLocal {
		switch {
		case a.Attrs.ByVal != nil:
			t = a.Attrs.ByVal
		case t.IsPointer() && t.Elem.Sized():
			t = t.Elem
		default:
			return 1, nil
		}
	}
	return le.AlignOf(t)
}

// NewImplicit builds the payload record for view entry e materialized as
// parameter a.
func NewImplicit(e metadata.Entry, a *ir.Argument, dl *ir.DataLayout, grfSize int, scalarAsPtr bool) KernelArg {
	desc := implicitarg.Lookup(e.Kind())
	cat := ImplicitCategory(e.Kind())
	k := KernelArg{
		Implicit:        true,
		ImplicitKind:    e.Kind(),
		Category:        cat,
		Size:            desc.AllocSize(dl),
		Align:           desc.Alignment(dl, grfSize),
		ConstantBuffer:  desc.ConstantBuffer,
		NeedsAllocation: cat.AlwaysAllocated(),
		Arg:             a,
		AssociatedArg:   associatedArg(e, a),
		StructOffset:    -1,
		LocationIndex:   -1,
		LocationCount:   -1,
		ScalarAsPtr:     scalarAsPtr,
	}
	if off, ok := metadata.StructOffset(e); ok {
		k.StructOffset = off
	}
	if desc.Count == 0 {
		panic(fmt.Errorf("kernelargs: %s has no elements", e.Kind()))
	}
	k.ElemSize = k.Size / desc.Count
	if implicitarg.IsLocalID(e.Kind()) && grfSize == 64 {
		k.ElemSize = k.Size / (grfSize / 2)
	}
	return k
}

func associatedArg(e metadata.Entry, a *ir.Argument) int {
	k := e.Kind()
	switch {
	case implicitarg.IsImageKind(k), implicitarg.IsStructKind(k),
		k == implicitarg.GetObjectID, k == implicitarg.GetBlockSimdSize,
		k == implicitarg.BufferOffset, k == implicitarg.BindlessOffset:
		if n, ok := metadata.ExplicitArg(e); ok {
			return n
		}
	}
	if a == nil {
		return -1
	}
	return a.No
}
