package kernelargs

import (
	"testing"

	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
)

func arg(t *ir.Type) *ir.Argument {
	return ir.NewFunction("f", ir.Void, t).Args[0]
}

func TestClassify(t *testing.T) {
	pair := ir.Struct("pair", ir.I32, ir.I32)
	byval := arg(ir.Ptr(pair, ir.SpacePrivate))
	byval.Attrs.ByVal = pair

	uav := ir.EncodeResource(2, ir.UAV, true)
	smp := ir.EncodeResource(0, ir.SamplerBuffer, true)
	cb := ir.EncodeResource(0, ir.ConstantBuffer, true)

	tests := []struct {
		name    string
		arg     *ir.Argument
		typeStr string
		want    Category
	}{
		{"global int", arg(ir.Ptr(ir.I32, ir.SpaceGlobal)), "int*", PtrGlobal},
		{"global image", arg(ir.Ptr(ir.Opaque("img"), ir.SpaceGlobal)), "image2d_ro_t", Image2D},
		{"global cube array", arg(ir.Ptr(ir.Opaque("img"), ir.SpaceGlobal)), "image_cube_array_depth_rw_t", ImageCubeDepthArray},
		{"global bindless", arg(ir.Ptr(ir.Opaque("img"), ir.SpaceGlobal)), "bindless_image3d_t", BindlessImage3D},
		{"constant", arg(ir.Ptr(ir.F32, ir.SpaceConstant)), "float*", PtrConstant},
		{"constant sampler", arg(ir.Ptr(ir.I8, ir.SpaceConstant)), "sampler_t", Sampler},
		{"constant bindless sampler", arg(ir.Ptr(ir.I8, ir.SpaceConstant)), "bindless_sampler_t", BindlessSampler},
		{"local", arg(ir.Ptr(ir.I32, ir.SpaceLocal)), "int*", PtrLocal},
		{"queue", arg(ir.Ptr(ir.I8, ir.SpacePrivate)), "queue_t", PtrDeviceQueue},
		{"byval struct", byval, "pair", Struct},
		{"private", arg(ir.Ptr(ir.I32, ir.SpacePrivate)), "int*", PrivateBase},
		{"uav image", arg(ir.Ptr(ir.Opaque("img"), uav)), "image1d_buffer_wo_t", Image1DBuffer},
		{"uav buffer", arg(ir.Ptr(ir.I32, uav)), "int*", NotToAllocate},
		{"sampler resource", arg(ir.Ptr(ir.I8, smp)), "", Sampler},
		{"constant buffer resource", arg(ir.Ptr(ir.I8, cb)), "", NotToAllocate},
		{"int sampler", arg(ir.I32), "sampler_t", Sampler},
		{"int", arg(ir.I32), "int", ConstantReg},
		{"vector", arg(ir.Vec(ir.F32, 4)), "float4", ConstantReg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.arg, tt.typeStr); got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestImageCategoryRejects(t *testing.T) {
	for _, s := range []string{"image2d", "image4d_t", "bindless_image2d_ro_t", "pipe_t", ""} {
		if c, ok := ImageCategory(s); ok {
			t.Fatalf("ImageCategory(%q) = %s, want no match", s, c)
		}
	}
}

func TestParseAccessQual(t *testing.T) {
	tests := map[string]AccessQual{
		"read_write": AccessReadWrite,
		"read_only":  AccessReadOnly,
		"write_only": AccessWriteOnly,
		"none":       AccessNone,
		"":           AccessNone,
	}
	for in, want := range tests {
		if got := ParseAccessQual(in); got != want {
			t.Fatalf("ParseAccessQual(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestImplicitCategory(t *testing.T) {
	tests := []struct {
		kind implicitarg.Kind
		want Category
	}{
		{implicitarg.R0, R0},
		{implicitarg.ConstantRegQWord, ConstantReg},
		{implicitarg.GetObjectID, DEObjectID},
		{implicitarg.GetBlockSimdSize, DEDispatcherSIMDSize},
		{implicitarg.RTGlobalBufferPointer, RTGlobalBuffer},
		{implicitarg.ImplicitArgBufferPtr, ArgBuffer},
		{implicitarg.FlatImageWidth, NotToAllocate},
	}
	for _, tt := range tests {
		if got := ImplicitCategory(tt.kind); got != tt.want {
			t.Fatalf("ImplicitCategory(%s) = %s, want %s", tt.kind, got, tt.want)
		}
	}
	for k := range implicitarg.KindCount {
		if c := ImplicitCategory(k); c >= End {
			t.Fatalf("%s maps outside the taxonomy", k)
		}
	}
}
