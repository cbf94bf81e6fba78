package kernelargs

import (
	"errors"
	"slices"
	"testing"

	"kernelabi/internal/argview"
	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
	"kernelabi/internal/layout"
	"kernelabi/internal/metadata"
)

func TestNewExplicitSizes(t *testing.T) {
	le := layout.New(nil)

	local := arg(ir.Ptr(ir.Vec(ir.F32, 4), ir.SpaceLocal))
	aligned := arg(ir.Ptr(ir.I8, ir.SpaceGlobal))
	aligned.Attrs.Align = 64
	alignOne := arg(ir.Ptr(ir.I8, ir.SpaceGlobal))
	alignOne.Attrs.Align = 1

	tests := []struct {
		name                  string
		arg                   *ir.Argument
		typeStr               string
		size, elem, alignment int
	}{
		{"global pointer", arg(ir.Ptr(ir.I32, ir.SpaceGlobal)), "int*", 8, 8, 8},
		{"local uses pointee align", local, "float4*", 4, 4, 16},
		{"align attribute", aligned, "char*", 8, 8, 64},
		{"align 1 ignored", alignOne, "char*", 8, 8, 8},
		{"vector scalar", arg(ir.Vec(ir.I16, 3)), "short3", 8, 2, 8},
		{"image not allocated", arg(ir.Ptr(ir.Opaque("img"), ir.SpaceGlobal)), "image2d_t", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewExplicit(tt.arg, le, ExplicitOptions{TypeStr: tt.typeStr})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if k.Size != tt.size || k.ElemSize != tt.elem || k.Align != tt.alignment {
				t.Fatalf("size/elem/align = %d/%d/%d, want %d/%d/%d",
					k.Size, k.ElemSize, k.Align, tt.size, tt.elem, tt.alignment)
			}
			if k.ConstantBuffer != k.NeedsAllocation {
				t.Fatalf("explicit arguments are in the constant buffer iff allocated")
			}
		})
	}
}

func TestBindlessHandleForcesAllocation(t *testing.T) {
	a := arg(ir.Ptr(ir.Opaque("img"), ir.SpaceGlobal))
	k, err := NewExplicit(a, layout.New(nil), ExplicitOptions{TypeStr: "bindless_image2d_t", BindlessHandle: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !k.NeedsAllocation || k.Size != 8 || k.Category != BindlessImage2D {
		t.Fatalf("bindless image = %v", &k)
	}
}

func TestNewImplicitLocalIDElemSize(t *testing.T) {
	dl := ir.DefaultDataLayout()
	fn := ir.NewFunction("k", ir.Void, ir.I16)
	e := metadata.Plain{K: implicitarg.LocalIDX}
	k32 := NewImplicit(e, fn.Args[0], dl, 32, false)
	k64 := NewImplicit(e, fn.Args[0], dl, 64, false)
	if k32.Size != 32 || k32.ElemSize != 2 {
		t.Fatalf("GRF 32 size/elem = %d/%d", k32.Size, k32.ElemSize)
	}
	if k64.ElemSize != 1 {
		t.Fatalf("GRF 64 elem = %d, want 1", k64.ElemSize)
	}
	if k64.Align != 64 || k64.ConstantBuffer {
		t.Fatalf("local id align %d constbuf %v", k64.Align, k64.ConstantBuffer)
	}
}

func TestAssociatedArg(t *testing.T) {
	dl := ir.DefaultDataLayout()
	fn := ir.NewFunction("k", ir.Void, ir.I32, ir.I32, ir.I32)
	off := NewImplicit(metadata.Numbered{K: implicitarg.BufferOffset, Arg: 0}, fn.Args[2], dl, 32, false)
	if off.AssociatedArg != 0 {
		t.Fatalf("buffer offset assoc = %d, want 0", off.AssociatedArg)
	}
	piece := NewImplicit(metadata.StructField{K: implicitarg.ConstantRegDWord, Arg: 1, Offset: 12}, fn.Args[2], dl, 32, false)
	if piece.AssociatedArg != 1 || piece.StructOffset != 12 || piece.Category != ConstantReg {
		t.Fatalf("struct piece = %v offset %d", &piece, piece.StructOffset)
	}
	size := NewImplicit(metadata.Numbered{K: implicitarg.BufferSize, Arg: 0}, fn.Args[2], dl, 32, false)
	if size.AssociatedArg != 2 {
		t.Fatalf("buffer size uses its own position, got %d", size.AssociatedArg)
	}
	wd := NewImplicit(metadata.Plain{K: implicitarg.WorkDim}, fn.Args[1], dl, 32, false)
	if wd.AssociatedArg != 1 || wd.AllocateSize() != 4 {
		t.Fatalf("work dim = %v", &wd)
	}
}

func TestAllocateSizeRoundsToDataParameter(t *testing.T) {
	k := NewFixed(ConstantReg, 6, 2, 2, true, nil, 0)
	if k.AllocateSize() != 8 {
		t.Fatalf("AllocateSize = %d, want 8", k.AllocateSize())
	}
}

// kernel(global int* a, float s, image2d_t img) with R0, WORK_DIM and
// BUFFER_OFFSET(a) plus one push constant register.
func buildKernel(t *testing.T) (*ir.Function, *metadata.Container) {
	t.Helper()
	m := ir.NewModule("m")
	fn := m.Add(ir.NewFunction("k", ir.Void,
		ir.Ptr(ir.I32, ir.SpaceGlobal), ir.F32, ir.Ptr(ir.Opaque("image2d_t"), ir.SpaceGlobal)))
	md := metadata.New()
	md.Flags.PushConstantRegs = 1
	fmd := md.Func("k")
	fmd.IsEntry = true
	fmd.SetArg(0, metadata.ArgMD{BaseType: "int*", Location: &metadata.BufferLocation{Index: 1, Count: 2}})
	fmd.SetArg(1, metadata.ArgMD{BaseType: "float"})
	fmd.SetArg(2, metadata.ArgMD{BaseType: "image2d_t", AccessQual: "read_only"})

	v := argview.New(m, md, nil)
	v.Add(fn, implicitarg.R0, implicitarg.WorkDim)
	v.AddBufferOffsetArgs(fn)
	v.Materialize(fn)
	fn.AddArg("rv0", ir.I32)
	return fn, md
}

func TestBuildOrdersByPolicy(t *testing.T) {
	fn, md := buildKernel(t)
	set, err := Build(fn, md, layout.New(nil), BuildOptions{Layout: LayoutCurbe, GRFSize: 32})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var got []Category
	for k := range set.All() {
		got = append(got, k.Category)
	}
	want := []Category{R0, RuntimeValue, PtrGlobal, ConstantReg, BufferOffset, WorkDim, Image2D}
	if !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}

	var back []Category
	for k := range set.Backward() {
		back = append(back, k.Category)
	}
	slices.Reverse(back)
	if !slices.Equal(back, want) {
		t.Fatalf("backward order = %v", back)
	}

	ptr := set.Group(PtrGlobal)[0]
	if ptr.LocationIndex != 1 || ptr.LocationCount != 2 {
		t.Fatalf("location not merged: %d/%d", ptr.LocationIndex, ptr.LocationCount)
	}
	img := set.Group(Image2D)[0]
	if img.Access != AccessReadOnly || img.NeedsAllocation {
		t.Fatalf("image = %v access %s", &img, img.Access)
	}
	rv := set.Group(RuntimeValue)[0]
	if rv.AssociatedArg != 3+3+1 || rv.Arg != fn.Args[6] {
		t.Fatalf("runtime value assoc = %d", rv.AssociatedArg)
	}
}

func TestBuildSignatureMismatch(t *testing.T) {
	fn, md := buildKernel(t)
	md.Flags.PushConstantRegs = 10
	_, err := Build(fn, md, layout.New(nil), BuildOptions{})
	if !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestBuildBindlessImageNeedsAllocationWhenUsed(t *testing.T) {
	m := ir.NewModule("m")
	img := ir.Ptr(ir.Opaque("image2d_t"), ir.SpaceGlobal)
	fn := m.Add(ir.NewFunction("k", ir.Void, img, img))
	ir.NewBuilder(fn).PtrToInt(fn.Args[0], ir.I64, "h")
	md := metadata.New()
	md.Flags.UseBindlessImage = true
	fmd := md.Func("k")
	fmd.SetArg(0, metadata.ArgMD{BaseType: "image2d_t"})
	fmd.SetArg(1, metadata.ArgMD{BaseType: "image2d_t"})
	fmd.ResAlloc.SetArg(0, metadata.ArgAlloc{Type: metadata.BindlessUAVResource})
	fmd.ResAlloc.SetArg(1, metadata.ArgAlloc{Type: metadata.BindlessUAVResource, Index: 1})

	set, err := Build(fn, md, layout.New(nil), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	imgs := set.Group(Image2D)
	if len(imgs) != 2 || !imgs[0].NeedsAllocation || imgs[1].NeedsAllocation {
		t.Fatalf("only the used bindless image needs allocation: %v", imgs)
	}
}

func TestCheckForZeroPerThreadData(t *testing.T) {
	p := NewPolicy(LayoutIndirect)

	onlyR0 := NewSet(p)
	onlyR0.Add(NewFixed(R0, 32, 4, 32, false, nil, 0))
	onlyR0.Add(NewFixed(WorkDim, 4, 4, 4, true, nil, 0))
	if !onlyR0.CheckForZeroPerThreadData() {
		t.Fatalf("R1 should be added")
	}
	r1 := onlyR0.Group(R1)
	if len(r1) != 1 || r1[0].Size != 32 || r1[0].Align != 32 || r1[0].ConstantBuffer || r1[0].Arg != nil {
		t.Fatalf("unexpected R1 filler %v", r1)
	}
	if cats := onlyR0.Categories(); cats[1] != R1 {
		t.Fatalf("indirect layout puts R1 right after R0: %v", cats)
	}

	withIDs := NewSet(p)
	withIDs.Add(NewFixed(R0, 32, 4, 32, false, nil, 0))
	withIDs.Add(NewFixed(LocalIDX, 32, 2, 32, false, nil, 0))
	if withIDs.CheckForZeroPerThreadData() {
		t.Fatalf("local ids already provide per-thread data")
	}
	if len(withIDs.Group(R1)) != 0 {
		t.Fatalf("R1 added unexpectedly")
	}
}
