package ir

import (
	"fmt"
	"slices"
)

// Function attribute keys understood by the passes.
const (
	AttrIndirectlyCalled     = "IndirectlyCalled"
	AttrVariableLengthAlloca = "hasVLA"
	AttrStackCall            = "visaStackCall"
)

// Function is a kernel or a device function.
type Function struct {
	Name   string
	Args   []*Argument
	Ret    *Type
	Body   []*Instruction
	Attrs  map[string]string
	Parent *Module

	seq int
}

// NewFunction creates a function with the given parameter types.
func NewFunction(name string, ret *Type, params ...*Type) *Function {
	if ret == nil {
		ret = Void
	}
	fn := &Function{Name: name, Ret: ret, Attrs: map[string]string{}}
	for _, p := range params {
		fn.AddArg(fmt.Sprintf("arg%d", len(fn.Args)), p)
	}
	return fn
}

// AddArg appends a formal parameter to the signature.
func (f *Function) AddArg(name string, t *Type) *Argument {
	a := &Argument{name: name, typ: t, No: len(f.Args), Parent: f}
	f.Args = append(f.Args, a)
	return a
}

// Arg returns parameter n or nil.
func (f *Function) Arg(n int) *Argument {
	if n < 0 || n >= len(f.Args) {
		return nil
	}
	return f.Args[n]
}

// HasAttr reports whether the function carries attribute key.
func (f *Function) HasAttr(key string) bool {
	_, ok := f.Attrs[key]
	return ok
}

// SetAttr sets a function attribute.
func (f *Function) SetAttr(key, val string) {
	if f.Attrs == nil {
		f.Attrs = map[string]string{}
	}
	f.Attrs[key] = val
}

func (f *Function) nextName() string {
	f.seq++
	return fmt.Sprintf("%d", f.seq)
}

func (f *Function) indexOf(inst *Instruction) int {
	return slices.Index(f.Body, inst)
}

// Append adds instructions at the end of the body.
func (f *Function) Append(insts ...*Instruction) {
	for _, inst := range insts {
		inst.Parent = f
		if inst.name == "" && inst.typ != nil && inst.typ != Void {
			inst.name = f.nextName()
		}
	}
	f.Body = append(f.Body, insts...)
}

// InsertBefore inserts instructions right before pos. A nil or foreign
// pos appends.
func (f *Function) InsertBefore(pos *Instruction, insts ...*Instruction) {
	for _, inst := range insts {
		inst.Parent = f
		if inst.name == "" && inst.typ != nil && inst.typ != Void {
			inst.name = f.nextName()
		}
	}
	at := -1
	if pos != nil {
		at = f.indexOf(pos)
	}
	if at < 0 {
		f.Body = append(f.Body, insts...)
		return
	}
	f.Body = slices.Insert(f.Body, at, insts...)
}

// Erase removes inst from the body. Remaining uses are left dangling,
// callers replace them first.
func (f *Function) Erase(inst *Instruction) {
	if at := f.indexOf(inst); at >= 0 {
		f.Body = slices.Delete(f.Body, at, at+1)
		inst.Parent = nil
	}
}

// Users returns the instructions that take v as an operand.
func (f *Function) Users(v Value) []*Instruction {
	var out []*Instruction
	for _, inst := range f.Body {
		if slices.Contains(inst.Operands, v) {
			out = append(out, inst)
		}
	}
	return out
}

// HasUses reports whether any instruction uses v.
func (f *Function) HasUses(v Value) bool {
	for _, inst := range f.Body {
		if slices.Contains(inst.Operands, v) {
			return true
		}
	}
	return false
}

// ReplaceAllUses rewrites every operand equal to old into repl.
func (f *Function) ReplaceAllUses(old, repl Value) int {
	n := 0
	for _, inst := range f.Body {
		for i, op := range inst.Operands {
			if op == old {
				inst.Operands[i] = repl
				n++
			}
		}
	}
	return n
}

// Calls returns the direct call instructions of f.
func (f *Function) Calls() []*Instruction {
	var out []*Instruction
	for _, inst := range f.Body {
		if inst.Op == OpCall && inst.Callee != nil {
			out = append(out, inst)
		}
	}
	return out
}

// HasIndirectCalls reports whether f calls through a pointer.
func (f *Function) HasIndirectCalls() bool {
	for _, inst := range f.Body {
		if inst.IsIndirectCall() {
			return true
		}
	}
	return false
}

// Allocas returns the stack allocations of f in body order.
func (f *Function) Allocas() []*Instruction {
	var out []*Instruction
	for _, inst := range f.Body {
		if inst.Op == OpAlloca {
			out = append(out, inst)
		}
	}
	return out
}
