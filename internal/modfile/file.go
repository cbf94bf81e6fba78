// Package modfile reads kernel module descriptions written in YAML.
//
// A description lists struct types, functions with their argument
// metadata, and function bodies as one instruction per entry:
//
//	module: saxpy
//	functions:
//	  - name: saxpy
//	    entry: true
//	    args:
//	      - {name: y, type: "float addrspace(1)*", base_type: "float*"}
//	    body:
//	      - {op: call, name: gid, type: i32, intrinsic: getLocalID.X}
//	      - {op: gep, name: p, src: float, args: ["%y", "%gid"]}
//	      - {op: load, name: v, type: float, args: ["%p"], align: 4}
//	      - {op: ret}
//
// Operands are "%name" for arguments and earlier instructions, "5" or
// "i64 -3" for integer constants and "float undef" for undefined values.
package modfile

import (
	"gopkg.in/yaml.v3"

	"kernelabi/internal/metadata"
)

// File is the document root.
type File struct {
	Module           string       `yaml:"module"`
	DataLayout       string       `yaml:"data_layout,omitempty"`
	UseBindlessImage bool         `yaml:"use_bindless_image,omitempty"`
	PushConstantRegs int          `yaml:"push_constant_regs,omitempty"`
	Structs          []StructDecl `yaml:"structs,omitempty"`
	Functions        []FuncDecl   `yaml:"functions"`
}

// StructDecl declares a named struct. Fields may refer to any struct of
// the file through pointers.
type StructDecl struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
	Packed bool     `yaml:"packed,omitempty"`

	Line int `yaml:"-"`
}

// FuncDecl declares a kernel or device function.
type FuncDecl struct {
	Name  string            `yaml:"name"`
	Entry bool              `yaml:"entry,omitempty"`
	Ret   string            `yaml:"ret,omitempty"`
	Attrs map[string]string `yaml:"attrs,omitempty"`
	UAVs  int               `yaml:"uavs,omitempty"`
	Args  []ArgDecl         `yaml:"args,omitempty"`
	Body  []InstDecl        `yaml:"body,omitempty"`

	Line int `yaml:"-"`
}

// ArgDecl is one explicit parameter and its front-end metadata.
type ArgDecl struct {
	Name        string                   `yaml:"name"`
	Type        string                   `yaml:"type"`
	Align       int                      `yaml:"align,omitempty"`
	ByVal       string                   `yaml:"byval,omitempty"`
	NoAlias     bool                     `yaml:"noalias,omitempty"`
	BaseType    string                   `yaml:"base_type,omitempty"`
	Access      string                   `yaml:"access,omitempty"`
	ScalarAsPtr bool                     `yaml:"scalar_as_pointer,omitempty"`
	Emulation   bool                     `yaml:"emulation,omitempty"`
	Location    *metadata.BufferLocation `yaml:"location,omitempty"`
}

// InstDecl is one instruction.
type InstDecl struct {
	Op        string            `yaml:"op"`
	Name      string            `yaml:"name,omitempty"`
	Type      string            `yaml:"type,omitempty"`
	Src       string            `yaml:"src,omitempty"`
	Args      []string          `yaml:"args,omitempty"`
	Callee    string            `yaml:"callee,omitempty"`
	Intrinsic string            `yaml:"intrinsic,omitempty"`
	Count     string            `yaml:"count,omitempty"`
	Align     int               `yaml:"align,omitempty"`
	Volatile  bool              `yaml:"volatile,omitempty"`
	Invariant bool              `yaml:"invariant,omitempty"`
	Meta      map[string]string `yaml:"meta,omitempty"`

	Line int `yaml:"-"`
}

func (d *StructDecl) UnmarshalYAML(n *yaml.Node) error {
	type plain StructDecl
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Line = n.Line
	return nil
}

func (d *FuncDecl) UnmarshalYAML(n *yaml.Node) error {
	type plain FuncDecl
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Line = n.Line
	return nil
}

func (d *InstDecl) UnmarshalYAML(n *yaml.Node) error {
	type plain InstDecl
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Line = n.Line
	return nil
}
