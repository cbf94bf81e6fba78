package ir

import "fmt"

// BufferType is the kind of surface a resource address space refers to.
type BufferType uint8

const (
	ConstantBuffer BufferType = iota
	UAV
	Resource
	SLM
	PointerBuffer
	Bindless
	BindlessConstantBuffer
	BindlessTexture
	SamplerBuffer
	BindlessSampler
	RenderTarget
	Stateless
	StatelessReadOnly
	StatelessA32
	SSHBindless
	SSHBindlessConstantBuffer
	SSHBindlessTexture
	BufferTypeUnknown
)

var bufferTypeNames = [...]string{
	ConstantBuffer:            "CONSTANT_BUFFER",
	UAV:                       "UAV",
	Resource:                  "RESOURCE",
	SLM:                       "SLM",
	PointerBuffer:             "POINTER",
	Bindless:                  "BINDLESS",
	BindlessConstantBuffer:    "BINDLESS_CONSTANT_BUFFER",
	BindlessTexture:           "BINDLESS_TEXTURE",
	SamplerBuffer:             "SAMPLER",
	BindlessSampler:           "BINDLESS_SAMPLER",
	RenderTarget:              "RENDER_TARGET",
	Stateless:                 "STATELESS",
	StatelessReadOnly:         "STATELESS_READONLY",
	StatelessA32:              "STATELESS_A32",
	SSHBindless:               "SSH_BINDLESS",
	SSHBindlessConstantBuffer: "SSH_BINDLESS_CONSTANT_BUFFER",
	SSHBindlessTexture:        "SSH_BINDLESS_TEXTURE",
	BufferTypeUnknown:         "BUFFER_TYPE_UNKNOWN",
}

func (b BufferType) String() string {
	if int(b) < len(bufferTypeNames) {
		return bufferTypeNames[b]
	}
	return fmt.Sprintf("BufferType(%d)", uint8(b))
}

// resource address space bit layout: bufId:16 | bufType:4 | indirect:1
const (
	resIDBits      = 16
	resTypeShift   = 16
	resTypeMask    = 0xF
	resIndirectBit = 1 << 20
)

// EncodeResource packs a surface reference into an address space.
// SLM and the stateless kinds map onto the plain address spaces. When
// direct is false, id is a unique per-access tag instead of a slot.
func EncodeResource(id uint16, bt BufferType, direct bool) AddressSpace {
	if bt+1 >= 16 {
		panic(fmt.Errorf("ir: buffer type %s does not fit the address space encoding", bt))
	}
	switch bt {
	case SLM:
		return SpaceLocal
	case StatelessReadOnly:
		return SpaceConstant
	case Stateless:
		return SpaceGlobal
	}
	v := uint32(id) | uint32(bt+1)<<resTypeShift
	if !direct {
		v |= resIndirectBit
	}
	return AddressSpace(v)
}

// DecodeResource unpacks an address space produced by EncodeResource.
func DecodeResource(as AddressSpace) (bt BufferType, id uint16, direct bool) {
	v := uint32(as)
	direct = v&resIndirectBit == 0
	id = uint16(v & (1<<resIDBits - 1))
	if as == SpaceLocal {
		return SLM, id, direct
	}
	raw := (v >> resTypeShift) & resTypeMask
	if raw == 0 || BufferType(raw-1) >= BufferTypeUnknown {
		return BufferTypeUnknown, id, direct
	}
	return BufferType(raw - 1), id, direct
}
