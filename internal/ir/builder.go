package ir

import "fmt"

// Builder creates instructions inside a function. With a nil insertion
// point instructions are appended; otherwise they go right before it.
type Builder struct {
	fn  *Function
	pos *Instruction
}

// NewBuilder appends to fn.
func NewBuilder(fn *Function) *Builder {
	return &Builder{fn: fn}
}

// At positions the builder before inst.
func At(inst *Instruction) *Builder {
	return &Builder{fn: inst.Parent, pos: inst}
}

// Func is the function being built.
func (b *Builder) Func() *Function { return b.fn }

// SetInsertPoint moves the insertion point before inst; nil appends.
func (b *Builder) SetInsertPoint(inst *Instruction) { b.pos = inst }

func (b *Builder) insert(inst *Instruction) *Instruction {
	if b.pos == nil {
		b.fn.Append(inst)
	} else {
		b.fn.InsertBefore(b.pos, inst)
	}
	return inst
}

func (b *Builder) named(inst *Instruction, name string) *Instruction {
	inst.name = name
	return b.insert(inst)
}

func (b *Builder) BitCast(v Value, to *Type, name string) *Instruction {
	return b.named(&Instruction{Op: OpBitCast, Operands: []Value{v}, typ: to}, name)
}

func (b *Builder) AddrSpaceCast(v Value, to *Type, name string) *Instruction {
	return b.named(&Instruction{Op: OpAddrSpaceCast, Operands: []Value{v}, typ: to}, name)
}

// GEP indexes base, whose first index steps over src.
func (b *Builder) GEP(src *Type, base Value, indices []Value, name string) *Instruction {
	elem, ok := IndexedType(src, indices)
	if !ok {
		panic(fmt.Errorf("ir: invalid GEP indices over %s", src))
	}
	space := SpacePrivate
	if pt := base.Type(); pt.IsPointer() {
		space = pt.Space
	}
	ops := append([]Value{base}, indices...)
	return b.named(&Instruction{Op: OpGEP, Operands: ops, SrcElem: src, typ: Ptr(elem, space)}, name)
}

func (b *Builder) Load(t *Type, ptr Value, name string) *Instruction {
	return b.named(&Instruction{Op: OpLoad, Operands: []Value{ptr}, typ: t}, name)
}

func (b *Builder) Store(val, ptr Value) *Instruction {
	return b.insert(&Instruction{Op: OpStore, Operands: []Value{val, ptr}, typ: Void})
}

// Call emits a direct call to callee.
func (b *Builder) Call(callee *Function, args []Value, name string) *Instruction {
	return b.named(&Instruction{Op: OpCall, Callee: callee, Operands: args, typ: callee.Ret}, name)
}

// CallIntrinsic emits a call to a target intrinsic returning ret.
func (b *Builder) CallIntrinsic(id Intrinsic, ret *Type, args []Value, name string) *Instruction {
	if ret == nil {
		ret = Void
	}
	return b.named(&Instruction{Op: OpCall, Intrinsic: id, Operands: args, typ: ret}, name)
}

// CallIndirect emits a call through fnPtr.
func (b *Builder) CallIndirect(fnPtr Value, ret *Type, args []Value, name string) *Instruction {
	if ret == nil {
		ret = Void
	}
	ops := append([]Value{fnPtr}, args...)
	return b.named(&Instruction{Op: OpCall, Operands: ops, typ: ret}, name)
}

func (b *Builder) binary(op Opcode, x, y Value, name string) *Instruction {
	return b.named(&Instruction{Op: op, Operands: []Value{x, y}, typ: x.Type()}, name)
}

func (b *Builder) Add(x, y Value, name string) *Instruction { return b.binary(OpAdd, x, y, name) }
func (b *Builder) Sub(x, y Value, name string) *Instruction { return b.binary(OpSub, x, y, name) }
func (b *Builder) Mul(x, y Value, name string) *Instruction { return b.binary(OpMul, x, y, name) }

func (b *Builder) cast(op Opcode, v Value, to *Type, name string) *Instruction {
	return b.named(&Instruction{Op: op, Operands: []Value{v}, typ: to}, name)
}

func (b *Builder) Trunc(v Value, to *Type, name string) *Instruction {
	return b.cast(OpTrunc, v, to, name)
}

func (b *Builder) ZExt(v Value, to *Type, name string) *Instruction {
	return b.cast(OpZExt, v, to, name)
}

func (b *Builder) SExt(v Value, to *Type, name string) *Instruction {
	return b.cast(OpSExt, v, to, name)
}

func (b *Builder) IntToPtr(v Value, to *Type, name string) *Instruction {
	return b.cast(OpIntToPtr, v, to, name)
}

func (b *Builder) PtrToInt(v Value, to *Type, name string) *Instruction {
	return b.cast(OpPtrToInt, v, to, name)
}

// TruncOrSelf truncates v to `to` only when it is wider.
func (b *Builder) TruncOrSelf(v Value, to *Type, name string) Value {
	if t := v.Type(); t.IsInt() && t.Bits > to.Bits {
		return b.Trunc(v, to, name)
	}
	return v
}

// ZExtOrSelf widens v to `to` only when it is narrower.
func (b *Builder) ZExtOrSelf(v Value, to *Type, name string) Value {
	if t := v.Type(); t.IsInt() && t.Bits < to.Bits {
		return b.ZExt(v, to, name)
	}
	return v
}

// Alloca reserves a private stack slot of type t.
func (b *Builder) Alloca(t *Type, align int, name string) *Instruction {
	return b.named(&Instruction{Op: OpAlloca, AllocType: t, Align: align, typ: Ptr(t, SpacePrivate)}, name)
}

// AllocaN reserves n elements of type t. A non-constant n makes the
// slot variable length.
func (b *Builder) AllocaN(t *Type, n Value, align int, name string) *Instruction {
	return b.named(&Instruction{Op: OpAlloca, AllocType: t, Operands: []Value{n}, Align: align, typ: Ptr(t, SpacePrivate)}, name)
}

func (b *Builder) Ret(v Value) *Instruction {
	var ops []Value
	if v != nil {
		ops = []Value{v}
	}
	return b.insert(&Instruction{Op: OpRet, Operands: ops, typ: Void})
}
