package ir

import "fmt"

// Opcode is the operation an Instruction performs.
type Opcode uint8

const (
	OpInvalid Opcode = iota
	OpBitCast
	OpAddrSpaceCast
	OpGEP
	OpLoad
	OpStore
	OpCall
	OpAdd
	OpSub
	OpMul
	OpTrunc
	OpZExt
	OpSExt
	OpIntToPtr
	OpPtrToInt
	OpAlloca
	OpRet
)

var opNames = [...]string{
	OpInvalid:       "invalid",
	OpBitCast:       "bitcast",
	OpAddrSpaceCast: "addrspacecast",
	OpGEP:           "getelementptr",
	OpLoad:          "load",
	OpStore:         "store",
	OpCall:          "call",
	OpAdd:           "add",
	OpSub:           "sub",
	OpMul:           "mul",
	OpTrunc:         "trunc",
	OpZExt:          "zext",
	OpSExt:          "sext",
	OpIntToPtr:      "inttoptr",
	OpPtrToInt:      "ptrtoint",
	OpAlloca:        "alloca",
	OpRet:           "ret",
}

func (op Opcode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// IsCast reports whether op only reinterprets its operand.
func (op Opcode) IsCast() bool {
	return op == OpBitCast || op == OpAddrSpaceCast
}

// Instruction is a single operation inside a Function body.
//
// Operand conventions:
//   - GEP: Operands[0] is the base pointer, the rest are indices; SrcElem
//     is the type the first index steps over.
//   - Load: Operands[0] is the pointer.
//   - Store: Operands[0] is the value, Operands[1] the pointer.
//   - Call: Operands are the call arguments; Callee or Intrinsic names
//     the target. A call with neither is indirect.
//   - Alloca: AllocType is the allocated type; an optional Operands[0]
//     is the element count.
type Instruction struct {
	Op        Opcode
	Operands  []Value
	Parent    *Function
	SrcElem   *Type
	AllocType *Type
	Callee    *Function
	Intrinsic Intrinsic
	Align     int
	Volatile  bool
	Invariant bool
	Meta      map[string]string

	name string
	typ  *Type
}

func (i *Instruction) Type() *Type  { return i.typ }
func (i *Instruction) Name() string { return i.name }

// SetName renames the instruction.
func (i *Instruction) SetName(name string) { i.name = name }

// Operand returns operand n or nil.
func (i *Instruction) Operand(n int) Value {
	if n < 0 || n >= len(i.Operands) {
		return nil
	}
	return i.Operands[n]
}

// PointerOperand returns the address operand of a memory instruction.
func (i *Instruction) PointerOperand() Value {
	switch i.Op {
	case OpLoad, OpGEP, OpBitCast, OpAddrSpaceCast:
		return i.Operand(0)
	case OpStore:
		return i.Operand(1)
	case OpCall:
		if i.Intrinsic.IsBlockAccess() || i.Intrinsic.IsUntypedAtomic() {
			return i.Operand(0)
		}
	}
	return nil
}

// Indices returns the GEP index operands.
func (i *Instruction) Indices() []Value {
	if i.Op != OpGEP || len(i.Operands) == 0 {
		return nil
	}
	return i.Operands[1:]
}

// IsIndirectCall reports whether i calls through a pointer.
func (i *Instruction) IsIndirectCall() bool {
	return i.Op == OpCall && i.Callee == nil && i.Intrinsic == NotIntrinsic
}

// IndexedType walks a GEP index list starting at src and returns the
// element type the final index selects. ok is false if a struct index
// is not constant or a step indexes a scalar.
func IndexedType(src *Type, indices []Value) (*Type, bool) {
	t := src
	for n, idx := range indices {
		if n == 0 {
			continue
		}
		switch t.Kind {
		case KindStruct:
			c, isConst := idx.(*Const)
			if !isConst || c.Val < 0 || int(c.Val) >= len(t.Fields) {
				return nil, false
			}
			t = t.Fields[c.Val]
		case KindArray, KindVector:
			t = t.Elem
		default:
			return nil, false
		}
	}
	return t, true
}

// UnderlyingObject strips casts and GEPs from v and returns the base.
func UnderlyingObject(v Value) Value {
	for {
		inst, ok := v.(*Instruction)
		if !ok {
			return v
		}
		switch {
		case inst.Op.IsCast(), inst.Op == OpGEP:
			v = inst.Operands[0]
		default:
			return v
		}
	}
}

// StripCasts removes bitcasts and address space casts from v.
func StripCasts(v Value) Value {
	for {
		inst, ok := v.(*Instruction)
		if !ok || !inst.Op.IsCast() {
			return v
		}
		v = inst.Operands[0]
	}
}
