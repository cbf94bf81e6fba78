package platform

import "strings"

// Options are the module-wide compile flags.
type Options struct {
	// Layout names the payload layout: curbe, indirect or independent.
	Layout string `toml:"layout"`

	PreferBindless       bool `toml:"prefer_bindless"`
	LegacyBindless       bool `toml:"legacy_bindless"`
	HasBufferOffset      bool `toml:"buffer_offset"`
	BufferOffsetOptional bool `toml:"buffer_offset_optional"`
	AssumePositiveOffset bool `toml:"assume_positive_offset"`
	SubDWAlignedPtrArg   bool `toml:"sub_dw_aligned_ptr_arg"`
	SupportNonGEPPtr     bool `toml:"non_gep_ptr"`
	IgnoreSyncBuffer     bool `toml:"ignore_sync_buffer"`
	UseBindlessImage     bool `toml:"bindless_image"`

	// StatefulAtomics lets raw buffer atomics be promoted too.
	StatefulAtomics bool `toml:"stateful_atomics"`

	// UseScratchSpace places private memory in the scratch space rather
	// than in a stateless global buffer.
	UseScratchSpace bool `toml:"scratch_space_private"`
}

// DefaultOptions promote to stateful surfaces with CURBE layout.
func DefaultOptions() Options {
	return Options{
		Layout:          "curbe",
		StatefulAtomics: true,
		UseScratchSpace: true,
	}
}

// Normalize lowercases string options and fills blanks.
func (o *Options) Normalize() {
	o.Layout = strings.ToLower(strings.TrimSpace(o.Layout))
	if o.Layout == "" {
		o.Layout = "curbe"
	}
}

// Config is a complete target description.
type Config struct {
	Caps    Caps    `toml:"platform"`
	Options Options `toml:"options"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{Caps: DefaultCaps(), Options: DefaultOptions()}
}
