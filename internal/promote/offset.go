package promote

import (
	"fmt"

	"kernelabi/internal/ir"
	"kernelabi/internal/layout"
)

// Step is one term of an address computation relative to a kernel
// argument. The set is closed: Base, Field, ConstIndex and DynIndex.
type Step interface {
	isStep()
}

// Base is the starting value of the offset: the argument's buffer
// offset or zero.
type Base struct {
	Value ir.Value // nil means 0
}

// Field selects a struct member at a constant byte offset.
type Field struct {
	Offset int64
}

// ConstIndex steps over Count elements of Size bytes.
type ConstIndex struct {
	Count int64
	Size  int64
}

// DynIndex steps over a runtime number of elements of Size bytes.
type DynIndex struct {
	Index ir.Value
	Size  int64
}

func (Base) isStep()       {}
func (Field) isStep()      {}
func (ConstIndex) isStep() {}
func (DynIndex) isStep()   {}

// Expr is bias + Σ const + Σ trunc(idx)·size, in execution order.
type Expr struct {
	Steps []Step
}

// Bytes is the constant part of e and whether e has no dynamic term.
func (e Expr) Bytes() (int64, bool) {
	var total int64
	static := true
	for _, s := range e.Steps {
		switch s := s.(type) {
		case Base:
			if s.Value != nil {
				static = false
			}
		case Field:
			total += s.Offset
		case ConstIndex:
			total += s.Count * s.Size
		case DynIndex:
			static = false
		}
	}
	return total, static
}

func (e Expr) String() string {
	out := ""
	for _, s := range e.Steps {
		var term string
		switch s := s.(type) {
		case Base:
			if s.Value == nil {
				term = "0"
			} else {
				term = "%" + s.Value.Name()
			}
		case Field:
			term = fmt.Sprintf("%d", s.Offset)
		case ConstIndex:
			term = fmt.Sprintf("%d", s.Count*s.Size)
		case DynIndex:
			term = "%" + s.Index.Name()
			if s.Size != 1 {
				term = fmt.Sprintf("%s*%d", term, s.Size)
			}
		}
		if out != "" {
			out += " + "
		}
		out += term
	}
	return out
}

// Decompose turns a GEP chain into an offset expression. geps holds the
// chain last-executed first, as TRACE collects it. seed is the base term
// (nil for 0).
func Decompose(geps []*ir.Instruction, seed ir.Value, le *layout.LayoutEngine) (Expr, error) {
	e := Expr{Steps: []Step{Base{Value: seed}}}
	for i := len(geps) - 1; i >= 0; i-- {
		g := geps[i]
		t := g.SrcElem
		for n, idx := range g.Indices() {
			if n > 0 {
				switch t.Kind {
				case ir.KindStruct:
					c, ok := ir.AsConst(idx)
					if !ok {
						return Expr{}, fmt.Errorf("promote: %%%s: non-constant struct index", g.Name())
					}
					off, err := le.FieldOffset(t, int(c.Val))
					if err != nil {
						return Expr{}, err
					}
					if off != 0 {
						e.Steps = append(e.Steps, Field{Offset: int64(off)})
					}
					t = t.Fields[c.Val]
					continue
				case ir.KindArray, ir.KindVector:
					t = t.Elem
				default:
					return Expr{}, fmt.Errorf("promote: %%%s: cannot index %s", g.Name(), t)
				}
			}
			size, err := le.AllocSizeOf(t)
			if err != nil {
				return Expr{}, err
			}
			if c, ok := ir.AsConst(idx); ok {
				if c.Val != 0 {
					e.Steps = append(e.Steps, ConstIndex{Count: c.Val, Size: int64(size)})
				}
				continue
			}
			e.Steps = append(e.Steps, DynIndex{Index: idx, Size: int64(size)})
		}
	}
	return e, nil
}

// Emit materializes e as 32-bit integer arithmetic before pos and returns
// the final value. Constant terms are folded into the running value
// while it is still constant.
func (e Expr) Emit(pos *ir.Instruction) ir.Value {
	b := ir.At(pos)
	var acc ir.Value = ir.ConstInt(ir.I32, 0)
	add := func(v ir.Value) {
		ac, accConst := ir.AsConst(acc)
		vc, vConst := ir.AsConst(v)
		switch {
		case accConst && vConst:
			acc = ir.ConstInt(ir.I32, ac.Val+vc.Val)
		case accConst && ac.Val == 0:
			acc = v
		default:
			acc = b.Add(acc, v, "")
		}
	}
	for _, s := range e.Steps {
		switch s := s.(type) {
		case Base:
			if s.Value != nil {
				acc = s.Value
			}
		case Field:
			add(ir.ConstInt(ir.I32, s.Offset))
		case ConstIndex:
			add(ir.ConstInt(ir.I32, s.Count*s.Size))
		case DynIndex:
			idx := b.TruncOrSelf(s.Index, ir.I32, "")
			if t := idx.Type(); t.IsInt() && t.Bits < 32 {
				idx = b.SExt(idx, ir.I32, "")
			}
			if s.Size != 1 {
				idx = b.Mul(idx, ir.ConstInt(ir.I32, s.Size), "")
			}
			add(idx)
		}
	}
	return acc
}
