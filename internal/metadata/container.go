package metadata

import (
	"slices"

	"kernelabi/internal/implicitarg"
)

// ResourceType is the kind of binding-table slot an argument received.
type ResourceType uint8

const (
	OtherResource ResourceType = iota
	UAVResource
	SamplerResource
	ExtensionResource
	BindlessUAVResource
	BindlessSamplerResource
)

func (r ResourceType) String() string {
	switch r {
	case UAVResource:
		return "uav"
	case SamplerResource:
		return "sampler"
	case ExtensionResource:
		return "extension"
	case BindlessUAVResource:
		return "bindless_uav"
	case BindlessSamplerResource:
		return "bindless_sampler"
	}
	return "other"
}

// ArgAlloc is the slot assigned to one argument.
type ArgAlloc struct {
	Type  ResourceType `msgpack:"t" yaml:"type"`
	Index int          `msgpack:"i" yaml:"index"`
}

// ResourceAlloc is the per-function binding-table record.
type ResourceAlloc struct {
	UAVsNum int        `msgpack:"uavs" yaml:"uavs"`
	Args    []ArgAlloc `msgpack:"args" yaml:"args,omitempty"`
}

// SetArg stores the slot of argument n, growing the list as needed.
func (r *ResourceAlloc) SetArg(n int, a ArgAlloc) {
	for len(r.Args) <= n {
		r.Args = append(r.Args, ArgAlloc{})
	}
	r.Args[n] = a
}

// Arg returns the slot of argument n.
func (r *ResourceAlloc) Arg(n int) (ArgAlloc, bool) {
	if n < 0 || n >= len(r.Args) {
		return ArgAlloc{}, false
	}
	return r.Args[n], true
}

// BufferLocation identifies a buffer in a multi-location allocation.
type BufferLocation struct {
	Index int `msgpack:"i" yaml:"index"`
	Count int `msgpack:"c" yaml:"count"`
}

// ArgMD is per explicit argument information from the front end.
type ArgMD struct {
	Location      *BufferLocation `msgpack:"loc,omitempty" yaml:"location,omitempty"`
	IsEmulation   bool            `msgpack:"emu,omitempty" yaml:"emulation,omitempty"`
	BaseType      string          `msgpack:"bt,omitempty" yaml:"base_type,omitempty"`
	AccessQual    string          `msgpack:"aq,omitempty" yaml:"access,omitempty"`
	ScalarAsPtr   bool            `msgpack:"sap,omitempty" yaml:"scalar_as_pointer,omitempty"`
	ImgFloatCoord *bool           `msgpack:"ifc,omitempty" yaml:"img_float_coords,omitempty"`
	ImgIntCoord   *bool           `msgpack:"iic,omitempty" yaml:"img_int_coords,omitempty"`
}

// FrameMD is the private frame result stored after allocation.
type FrameMD struct {
	UniformSize   int  `msgpack:"us" yaml:"uniform_size"`
	PerLaneStride int  `msgpack:"pl" yaml:"per_lane_stride"`
	SIMD          int  `msgpack:"simd" yaml:"simd"`
	Clamped       bool `msgpack:"cl,omitempty" yaml:"clamped,omitempty"`
	StackCallSize int  `msgpack:"sc,omitempty" yaml:"stack_call_size,omitempty"`
}

// FunctionMD is everything the passes record about one function.
type FunctionMD struct {
	Name         string        `msgpack:"name" yaml:"name"`
	IsEntry      bool          `msgpack:"entry" yaml:"entry"`
	ImplicitArgs []Entry       `msgpack:"-" yaml:"-"`
	Materialized int           `msgpack:"mat,omitempty" yaml:"materialized,omitempty"`
	Args         []ArgMD       `msgpack:"args,omitempty" yaml:"args,omitempty"`
	ResAlloc     ResourceAlloc `msgpack:"res" yaml:"resources"`
	Frame        *FrameMD      `msgpack:"frame,omitempty" yaml:"frame,omitempty"`

	// Set by promotion when an access is not based on a kernel argument.
	HasNonKernelArgLoad   bool `msgpack:"nkl,omitempty" yaml:"non_kernel_arg_load,omitempty"`
	HasNonKernelArgStore  bool `msgpack:"nks,omitempty" yaml:"non_kernel_arg_store,omitempty"`
	HasNonKernelArgAtomic bool `msgpack:"nka,omitempty" yaml:"non_kernel_arg_atomic,omitempty"`
}

// Arg returns the metadata of explicit argument n, or the zero value.
func (f *FunctionMD) Arg(n int) ArgMD {
	if n < 0 || n >= len(f.Args) {
		return ArgMD{}
	}
	return f.Args[n]
}

// SetArg stores metadata for explicit argument n.
func (f *FunctionMD) SetArg(n int, a ArgMD) {
	for len(f.Args) <= n {
		f.Args = append(f.Args, ArgMD{})
	}
	f.Args[n] = a
}

// BaseType is the OpenCL base type string of argument n.
func (f *FunctionMD) BaseType(n int) string { return f.Arg(n).BaseType }

// ModuleFlags are the module-wide options recorded with the metadata.
type ModuleFlags struct {
	UseBindlessImage bool `msgpack:"bindless_image" yaml:"use_bindless_image"`
	PushConstantRegs int  `msgpack:"push_regs" yaml:"push_constant_regs"`
}

// Container owns the metadata of one module.
type Container struct {
	Flags ModuleFlags

	funcs map[string]*FunctionMD
	order []string
}

// New returns an empty container.
func New() *Container {
	return &Container{funcs: map[string]*FunctionMD{}}
}

// Func returns the metadata of the named function, creating it.
func (c *Container) Func(name string) *FunctionMD {
	if c.funcs == nil {
		c.funcs = map[string]*FunctionMD{}
	}
	if md, ok := c.funcs[name]; ok {
		return md
	}
	md := &FunctionMD{Name: name}
	c.funcs[name] = md
	c.order = append(c.order, name)
	return md
}

// Lookup returns the metadata of name without creating it.
func (c *Container) Lookup(name string) (*FunctionMD, bool) {
	md, ok := c.funcs[name]
	return md, ok
}

// Functions returns the function metadata in creation order.
func (c *Container) Functions() []*FunctionMD {
	out := make([]*FunctionMD, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.funcs[n])
	}
	return out
}

// Entries returns the names of the entry functions.
func (c *Container) Entries() []string {
	var out []string
	for _, n := range c.order {
		if c.funcs[n].IsEntry {
			out = append(out, n)
		}
	}
	return out
}

// IsEntry reports whether name is a kernel.
func (c *Container) IsEntry(name string) bool {
	md, ok := c.funcs[name]
	return ok && md.IsEntry
}

// Kinds lists the implicit kinds of fn in list order.
func (f *FunctionMD) Kinds() []implicitarg.Kind {
	out := make([]implicitarg.Kind, len(f.ImplicitArgs))
	for i, e := range f.ImplicitArgs {
		out[i] = e.Kind()
	}
	return out
}

// Clone returns a deep copy of the function metadata.
func (f *FunctionMD) Clone() *FunctionMD {
	cp := *f
	cp.ImplicitArgs = slices.Clone(f.ImplicitArgs)
	cp.Args = slices.Clone(f.Args)
	cp.ResAlloc.Args = slices.Clone(f.ResAlloc.Args)
	if f.Frame != nil {
		fr := *f.Frame
		cp.Frame = &fr
	}
	return &cp
}
