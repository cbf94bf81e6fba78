package layout

import (
	"fortio.org/safecast"

	"kernelabi/internal/ir"
)

// TypeLayout is the ABI layout of a type for a specific data layout.
type TypeLayout struct {
	Size  int // store size
	Align int // ABI alignment

	// Struct-only:
	FieldOffsets []int
	FieldAligns  []int
}

// AllocSize is the store size rounded up to the ABI alignment.
func (l TypeLayout) AllocSize() int {
	return roundUp(l.Size, l.Align)
}

// LayoutEngine computes memory layout for IR types.
type LayoutEngine struct {
	DL *ir.DataLayout

	cache *cache
}

// New creates a new LayoutEngine for the given data layout.
func New(dl *ir.DataLayout) *LayoutEngine {
	if dl == nil {
		dl = ir.DefaultDataLayout()
	}
	return &LayoutEngine{
		DL:    dl,
		cache: newCache(),
	}
}

// ForModule creates an engine over the module's data layout.
func ForModule(m *ir.Module) *LayoutEngine {
	return New(m.DataLayout)
}

type layoutState struct {
	stack []*ir.Type
	index map[*ir.Type]int
}

func newLayoutState() *layoutState {
	return &layoutState{
		stack: nil,
		index: make(map[*ir.Type]int, 16),
	}
}

// LayoutOf computes and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t *ir.Type) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	layout, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return layout, err
	}
	return layout, nil
}

func (e *LayoutEngine) layoutOf(t *ir.Type, state *layoutState) (TypeLayout, *LayoutError) {
	if t == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if cached, ok := e.cache.get(t); ok {
		return cached.Layout, cached.Err
	}

	if idx, ok := state.index[t]; ok {
		cycle := append([]*ir.Type(nil), state.stack[idx:]...)
		cycle = append(cycle, t)
		err := &LayoutError{
			Kind:  LayoutErrRecursiveUnsized,
			Type:  t,
			Cycle: cycle,
		}
		e.cache.put(t, &cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err})
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	layout, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, t)

	e.cache.put(t, &cacheEntry{Layout: layout, Err: err})
	return layout, err
}

// SizeOf returns the store size of a type in bytes.
func (e *LayoutEngine) SizeOf(t *ir.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AllocSizeOf returns the size a type occupies in an array or on the stack.
func (e *LayoutEngine) AllocSizeOf(t *ir.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.AllocSize(), err
}

// AlignOf returns the ABI alignment of a type in bytes.
func (e *LayoutEngine) AlignOf(t *ir.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct field.
func (e *LayoutEngine) FieldOffset(structT *ir.Type, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(structT)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}

// PointerSize returns the pointer width of an address space in bytes.
func (e *LayoutEngine) PointerSize(space ir.AddressSpace) int {
	if e == nil || e.DL == nil {
		return 8
	}
	return e.DL.PointerSize(space)
}

// MustAllocSize is AllocSizeOf for types already known to be sized.
func (e *LayoutEngine) MustAllocSize(t *ir.Type) int {
	n, err := e.AllocSizeOf(t)
	if err != nil {
		panic(err)
	}
	return n
}

// MustAlign is AlignOf for types already known to be sized.
func (e *LayoutEngine) MustAlign(t *ir.Type) int {
	n, err := e.AlignOf(t)
	if err != nil {
		panic(err)
	}
	return n
}

// SizeU32 narrows a byte size for payload fields.
func SizeU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(err)
	}
	return v
}
