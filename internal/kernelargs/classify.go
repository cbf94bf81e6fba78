package kernelargs

import (
	"strings"

	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
)

// AccessQual is the image access qualifier of an explicit argument.
type AccessQual uint8

const (
	AccessNone AccessQual = iota
	AccessReadOnly
	AccessWriteOnly
	AccessReadWrite
)

func (a AccessQual) String() string {
	switch a {
	case AccessReadOnly:
		return "read_only"
	case AccessWriteOnly:
		return "write_only"
	case AccessReadWrite:
		return "read_write"
	}
	return "none"
}

// ParseAccessQual interprets the front end qualifier string.
func ParseAccessQual(s string) AccessQual {
	switch {
	case s == "read_write":
		return AccessReadWrite
	case strings.HasPrefix(s, "read"):
		return AccessReadOnly
	case strings.HasPrefix(s, "write"):
		return AccessWriteOnly
	}
	return AccessNone
}

type imageCategories struct {
	bound, bindless Category
}

var imageTypes = map[string]imageCategories{
	"image1d":                  {Image1D, BindlessImage1D},
	"image1d_buffer":           {Image1DBuffer, BindlessImage1DBuffer},
	"image2d":                  {Image2D, BindlessImage2D},
	"image2d_depth":            {Image2DDepth, BindlessImage2DDepth},
	"image2d_msaa":             {Image2DMSAA, BindlessImage2DMSAA},
	"image2d_msaa_depth":       {Image2DMSAADepth, BindlessImage2DMSAADepth},
	"image3d":                  {Image3D, BindlessImage3D},
	"image_cube":               {ImageCube, BindlessImageCube},
	"image_cube_depth":         {ImageCubeDepth, BindlessImageCubeDepth},
	"image1d_array":            {Image1DArray, BindlessImage1DArray},
	"image2d_array":            {Image2DArray, BindlessImage2DArray},
	"image2d_array_depth":      {Image2DDepthArray, BindlessImage2DDepthArray},
	"image2d_array_msaa":       {Image2DMSAAArray, BindlessImage2DMSAAArray},
	"image2d_array_msaa_depth": {Image2DMSAADepthArray, BindlessImage2DMSAADepthArray},
	"image_cube_array":         {ImageCubeArray, BindlessImageCubeArray},
	"image_cube_array_depth":   {ImageCubeDepthArray, BindlessImageCubeDepthArray},
}

var imageSuffixes = []string{"_t", "_ro_t", "_wo_t", "_rw_t"}

// ImageCategory maps an OpenCL image type name to its category.
// Bindless names only take the plain "_t" suffix.
func ImageCategory(typeStr string) (Category, bool) {
	if rest, ok := strings.CutPrefix(typeStr, "bindless_"); ok {
		base, ok := strings.CutSuffix(rest, "_t")
		if !ok {
			return 0, false
		}
		ic, ok := imageTypes[base]
		return ic.bindless, ok
	}
	if !strings.HasPrefix(typeStr, "image") {
		return 0, false
	}
	for _, suffix := range imageSuffixes {
		base, ok := strings.CutSuffix(typeStr, suffix)
		if !ok {
			continue
		}
		if ic, ok := imageTypes[base]; ok {
			return ic.bound, true
		}
	}
	return 0, false
}

func isDeviceQueue(typeStr string) bool {
	return typeStr == "queue_t" || typeStr == "spirv.Queue"
}

// Classify picks the category of explicit argument a with OpenCL base
// type typeStr.
func Classify(a *ir.Argument, typeStr string) Category {
	t := a.Type()
	switch {
	case t.IsPointer():
		return classifyPointer(a, typeStr)
	case t.IsInt() && typeStr == "sampler_t":
		return Sampler
	}
	return ConstantReg
}

func classifyPointer(a *ir.Argument, typeStr string) Category {
	switch a.Type().Space {
	case ir.SpacePrivate:
		switch {
		case isDeviceQueue(typeStr):
			return PtrDeviceQueue
		case a.Attrs.ByVal != nil && a.Attrs.ByVal.IsStruct():
			return Struct
		}
		return PrivateBase
	case ir.SpaceGlobal:
		if c, ok := ImageCategory(typeStr); ok {
			return c
		}
		return PtrGlobal
	case ir.SpaceConstant:
		switch typeStr {
		case "sampler_t":
			return Sampler
		case "bindless_sampler_t":
			return BindlessSampler
		}
		return PtrConstant
	case ir.SpaceLocal:
		return PtrLocal
	}
	return classifyResource(a.Type().Space, typeStr)
}

// classifyResource decodes a surface address space.
func classifyResource(as ir.AddressSpace, typeStr string) Category {
	bt, _, _ := ir.DecodeResource(as)
	switch bt {
	case ir.UAV:
		if c, ok := ImageCategory(typeStr); ok {
			return c
		}
	case ir.SamplerBuffer:
		return Sampler
	}
	return NotToAllocate
}

var implicitCategories = map[implicitarg.Kind]Category{
	implicitarg.R0:                                     R0,
	implicitarg.PayloadHeader:                          PayloadHeader,
	implicitarg.GlobalOffset:                           GlobalOffset,
	implicitarg.PrivateBase:                            PrivateBase,
	implicitarg.ConstantBase:                           ConstantBase,
	implicitarg.PrintfBuffer:                           PrintfBuffer,
	implicitarg.SyncBuffer:                             SyncBuffer,
	implicitarg.BufferOffset:                           BufferOffset,
	implicitarg.GlobalBase:                             GlobalBase,
	implicitarg.WorkDim:                                WorkDim,
	implicitarg.NumGroups:                              NumGroups,
	implicitarg.GlobalSize:                             GlobalSize,
	implicitarg.LocalSize:                              LocalSize,
	implicitarg.EnqueuedLocalWorkSize:                  EnqueuedLocalWorkSize,
	implicitarg.LocalIDX:                               LocalIDX,
	implicitarg.LocalIDY:                               LocalIDY,
	implicitarg.LocalIDZ:                               LocalIDZ,
	implicitarg.BufferSize:                             BufferSize,
	implicitarg.StageInGridOrigin:                      StageInGridOrigin,
	implicitarg.StageInGridSize:                        StageInGridSize,
	implicitarg.ConstantRegFP32:                        ConstantReg,
	implicitarg.ConstantRegQWord:                       ConstantReg,
	implicitarg.ConstantRegDWord:                       ConstantReg,
	implicitarg.ConstantRegWord:                        ConstantReg,
	implicitarg.ConstantRegByte:                        ConstantReg,
	implicitarg.ImageHeight:                            ImageHeight,
	implicitarg.ImageWidth:                             ImageWidth,
	implicitarg.ImageDepth:                             ImageDepth,
	implicitarg.ImageNumMipLevels:                      ImageNumMipLevels,
	implicitarg.ImageChannelDataType:                   ImageChannelDataType,
	implicitarg.ImageChannelOrder:                      ImageChannelOrder,
	implicitarg.ImageSRGBChannelOrder:                  ImageSRGBChannelOrder,
	implicitarg.ImageArraySize:                         ImageArraySize,
	implicitarg.ImageNumSamples:                        ImageNumSamples,
	implicitarg.SamplerAddress:                         SamplerAddress,
	implicitarg.SamplerNormalized:                      SamplerNormalized,
	implicitarg.SamplerSnapWA:                          SamplerSnapWA,
	implicitarg.InlineSampler:                          InlineSampler,
	implicitarg.VMEMbBlockType:                         VMEMbBlockType,
	implicitarg.VMESubpixelMode:                        VMESubpixelMode,
	implicitarg.VMESadAdjustMode:                       VMESadAdjustMode,
	implicitarg.VMESearchPathType:                      VMESearchPathType,
	implicitarg.DeviceEnqueueDefaultDeviceQueue:        DEDefaultDeviceQueue,
	implicitarg.DeviceEnqueueEventPool:                 DEEventPool,
	implicitarg.DeviceEnqueueMaxWorkgroupSize:          DEMaxWorkgroupSize,
	implicitarg.DeviceEnqueueParentEvent:               DEParentEvent,
	implicitarg.DeviceEnqueuePreferedWorkgroupMultiple: DEPreferedWorkgroupMultiple,
	implicitarg.GetObjectID:                            DEObjectID,
	implicitarg.GetBlockSimdSize:                       DEDispatcherSIMDSize,
	implicitarg.LocalMemoryStatelessWindowStartAddress: LocalMemoryStatelessWindowStartAddress,
	implicitarg.LocalMemoryStatelessWindowSize:         LocalMemoryStatelessWindowSize,
	implicitarg.PrivateMemoryStatelessSize:             PrivateMemoryStatelessSize,
	implicitarg.RTStackID:                              RTStackID,
	implicitarg.RTGlobalBufferPointer:                  RTGlobalBuffer,
	implicitarg.BindlessOffset:                         BindlessOffset,
	implicitarg.ImplicitArgBufferPtr:                   ArgBuffer,
	implicitarg.AssertBufferPointer:                    AssertBuffer,
	implicitarg.IndirectDataPointer:                    IndirectDataPointer,
	implicitarg.ScratchPointer:                         ScratchPointer,
	implicitarg.RegionGroupSize:                        RegionGroupSize,
	implicitarg.RegionGroupWGCount:                     RegionGroupWGCount,
	implicitarg.RegionGroupBarrierBuffer:               RegionGroupBarrierBuffer,
}

// ImplicitCategory maps an implicit kind to its category. Kinds with no
// payload slot, such as the flat image properties, are NotToAllocate.
func ImplicitCategory(k implicitarg.Kind) Category {
	if c, ok := implicitCategories[k]; ok {
		return c
	}
	return NotToAllocate
}
