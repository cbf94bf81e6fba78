package ir

import "slices"

// Module owns functions and the module-wide state passes mutate.
type Module struct {
	Name       string
	DataLayout *DataLayout
	Functions  []*Function

	// UseBindless is set once any access is rewritten to bindless form.
	UseBindless bool

	byName map[string]*Function
}

// NewModule returns an empty module with the default data layout.
func NewModule(name string) *Module {
	return &Module{
		Name:       name,
		DataLayout: DefaultDataLayout(),
		byName:     map[string]*Function{},
	}
}

// Add registers fn in m.
func (m *Module) Add(fn *Function) *Function {
	if m.byName == nil {
		m.byName = map[string]*Function{}
	}
	fn.Parent = m
	m.Functions = append(m.Functions, fn)
	m.byName[fn.Name] = fn
	return fn
}

// Func returns the function named name or nil.
func (m *Module) Func(name string) *Function {
	return m.byName[name]
}

// Callers returns the functions with a direct call to fn, in module order.
func (m *Module) Callers(fn *Function) []*Function {
	var out []*Function
	for _, f := range m.Functions {
		if slices.ContainsFunc(f.Body, func(inst *Instruction) bool {
			return inst.Op == OpCall && inst.Callee == fn
		}) {
			out = append(out, f)
		}
	}
	return out
}

// CallSites returns every direct call to fn across the module.
func (m *Module) CallSites(fn *Function) []*Instruction {
	var out []*Instruction
	for _, f := range m.Functions {
		for _, inst := range f.Body {
			if inst.Op == OpCall && inst.Callee == fn {
				out = append(out, inst)
			}
		}
	}
	return out
}
