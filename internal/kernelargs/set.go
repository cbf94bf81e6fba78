package kernelargs

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"kernelabi/internal/ir"
	"kernelabi/internal/layout"
	"kernelabi/internal/metadata"
)

// ErrSignature is returned when a function has fewer parameters than
// its implicit and runtime value slots.
var ErrSignature = errors.New("function signature does not match implicit argument metadata")

// Set groups the arguments of one function by category and iterates
// them in payload order. Arguments within a category keep insertion
// order.
type Set struct {
	policy *Policy
	groups map[Category][]KernelArg
}

// NewSet returns an empty set ordered by p.
func NewSet(p *Policy) *Set {
	return &Set{policy: p, groups: map[Category][]KernelArg{}}
}

func (s *Set) Policy() *Policy { return s.policy }

// Add appends k to its category.
func (s *Set) Add(k KernelArg) {
	s.groups[k.Category] = append(s.groups[k.Category], k)
}

// Categories returns the non-empty categories in payload order.
func (s *Set) Categories() []Category {
	cats := make([]Category, 0, len(s.groups))
	for c, g := range s.groups {
		if len(g) > 0 {
			cats = append(cats, c)
		}
	}
	slices.SortFunc(cats, func(a, b Category) int { return s.policy.Rank(a) - s.policy.Rank(b) })
	return cats
}

// Group returns the arguments of category c.
func (s *Set) Group(c Category) []KernelArg { return s.groups[c] }

// Len is the total number of arguments.
func (s *Set) Len() int {
	n := 0
	for _, g := range s.groups {
		n += len(g)
	}
	return n
}

func (s *Set) Empty() bool { return s.Len() == 0 }

// All yields the arguments in payload order.
func (s *Set) All() iter.Seq[*KernelArg] {
	return func(yield func(*KernelArg) bool) {
		for _, c := range s.Categories() {
			g := s.groups[c]
			for i := range g {
				if !yield(&g[i]) {
					return
				}
			}
		}
	}
}

// Backward yields the arguments in reverse payload order.
func (s *Set) Backward() iter.Seq[*KernelArg] {
	return func(yield func(*KernelArg) bool) {
		cats := s.Categories()
		for ci := len(cats) - 1; ci >= 0; ci-- {
			g := s.groups[cats[ci]]
			for i := len(g) - 1; i >= 0; i-- {
				if !yield(&g[i]) {
					return
				}
			}
		}
	}
}

// Args returns a flat copy in payload order.
func (s *Set) Args() []KernelArg {
	out := make([]KernelArg, 0, s.Len())
	for k := range s.All() {
		out = append(out, *k)
	}
	return out
}

// CheckForZeroPerThreadData adds an R1 filler when R0 is the only
// category with per-thread payload. It reports whether R1 was added.
func (s *Set) CheckForZeroPerThreadData() bool {
	perThread := 0
	for _, c := range s.Categories() {
		first := &s.groups[c][0]
		if first.NeedsAllocation && !first.ConstantBuffer {
			perThread++
			if perThread > 1 {
				return false
			}
		}
	}
	s.Add(NewFixed(R1, 32, 4, 32, false, nil, 0))
	return true
}

// BuildOptions configure Build.
type BuildOptions struct {
	Layout  Layout
	GRFSize int
}

// Build collects the explicit, implicit and runtime value arguments of
// fn. The implicit entries must already be materialized.
func Build(fn *ir.Function, md *metadata.Container, le *layout.LayoutEngine, opts BuildOptions) (*Set, error) {
	fmd, ok := md.Lookup(fn.Name)
	if !ok {
		fmd = &metadata.FunctionMD{Name: fn.Name}
	}
	nImplicit := len(fmd.ImplicitArgs)
	nRuntime := md.Flags.PushConstantRegs
	if len(fn.Args) < nImplicit+nRuntime {
		return nil, fmt.Errorf("%s: %d parameters, %d implicit, %d runtime values: %w",
			fn.Name, len(fn.Args), nImplicit, nRuntime, ErrSignature)
	}
	nExplicit := len(fn.Args) - nImplicit - nRuntime

	set := NewSet(NewPolicy(opts.Layout))
	for i := range nExplicit {
		a := fn.Args[i]
		amd := fmd.Arg(i)
		bindless := false
		if md.Flags.UseBindlessImage {
			if alloc, ok := fmd.ResAlloc.Arg(a.No); ok &&
				(alloc.Type == metadata.BindlessUAVResource || alloc.Type == metadata.BindlessSamplerResource) {
				bindless = fn.HasUses(a)
			}
		}
		k, err := NewExplicit(a, le, ExplicitOptions{
			TypeStr:        amd.BaseType,
			AccessQual:     amd.AccessQual,
			Location:       amd.Location,
			BindlessHandle: bindless,
			IsEmulation:    amd.IsEmulation,
			ScalarAsPtr:    amd.ScalarAsPtr,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name, err)
		}
		if (k.Category == Image3D || k.Category == BindlessImage3D) && amd.ImgFloatCoord != nil && amd.ImgIntCoord != nil {
			k.Image = ImageInfo{FloatCoords: *amd.ImgFloatCoord, IntCoords: *amd.ImgIntCoord}
		}
		set.Add(k)
	}

	for i, e := range fmd.ImplicitArgs {
		a := fn.Args[nExplicit+i]
		set.Add(NewImplicit(e, a, le.DL, opts.GRFSize, fmd.Arg(a.No).ScalarAsPtr))
	}

	for i := range nRuntime {
		a := fn.Args[nExplicit+nImplicit+i]
		set.Add(NewFixed(RuntimeValue, 4, 4, 4, true, a, nExplicit+nImplicit+1))
	}
	return set, nil
}
