package metadata

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Current schema version - increment when the persisted format changes
const SchemaVersion uint16 = 1

type wireFunc struct {
	FunctionMD `msgpack:",inline"`
	Implicit   []wireEntry `msgpack:"implicit,omitempty"`
}

type wireContainer struct {
	Schema uint16      `msgpack:"schema"`
	Flags  ModuleFlags `msgpack:"flags"`
	Funcs  []wireFunc  `msgpack:"funcs"`
}

// Save writes the container as msgpack.
func (c *Container) Save(w io.Writer) error {
	wc := wireContainer{Schema: SchemaVersion, Flags: c.Flags}
	for _, md := range c.Functions() {
		wf := wireFunc{FunctionMD: *md}
		wf.ImplicitArgs = nil
		for _, e := range md.ImplicitArgs {
			wf.Implicit = append(wf.Implicit, toWire(e))
		}
		wc.Funcs = append(wc.Funcs, wf)
	}
	if err := msgpack.NewEncoder(w).Encode(&wc); err != nil {
		return fmt.Errorf("metadata: encode: %w", err)
	}
	return nil
}

// Load reads a container written by Save.
func Load(r io.Reader) (*Container, error) {
	var wc wireContainer
	if err := msgpack.NewDecoder(r).Decode(&wc); err != nil {
		return nil, fmt.Errorf("metadata: decode: %w", err)
	}
	if wc.Schema != SchemaVersion {
		return nil, fmt.Errorf("metadata: schema %d, want %d", wc.Schema, SchemaVersion)
	}
	c := New()
	c.Flags = wc.Flags
	for _, wf := range wc.Funcs {
		md := c.Func(wf.Name)
		*md = wf.FunctionMD
		for _, we := range wf.Implicit {
			md.ImplicitArgs = append(md.ImplicitArgs, fromWire(we))
		}
	}
	return c, nil
}

type yamlEntry struct {
	Kind   string `yaml:"kind"`
	Arg    *int   `yaml:"arg,omitempty"`
	Offset *int   `yaml:"offset,omitempty"`
}

type yamlFunc struct {
	FunctionMD `yaml:",inline"`
	Implicit   []yamlEntry `yaml:"implicit,omitempty"`
}

type yamlDoc struct {
	Flags     ModuleFlags `yaml:"flags"`
	Functions []yamlFunc  `yaml:"functions"`
}

// DumpYAML writes a human readable view of the container.
func (c *Container) DumpYAML(w io.Writer) error {
	doc := yamlDoc{Flags: c.Flags}
	for _, md := range c.Functions() {
		yf := yamlFunc{FunctionMD: *md}
		for _, e := range md.ImplicitArgs {
			ye := yamlEntry{Kind: e.Kind().String()}
			if n, ok := ExplicitArg(e); ok {
				ye.Arg = &n
			}
			if off, ok := StructOffset(e); ok {
				ye.Offset = &off
			}
			yf.Implicit = append(yf.Implicit, ye)
		}
		doc.Functions = append(doc.Functions, yf)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("metadata: yaml: %w", err)
	}
	return enc.Close()
}
