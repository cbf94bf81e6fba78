package ir

import (
	"fmt"
	"io"
	"strings"
)

func operandString(v Value) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case *Const:
		return fmt.Sprintf("%s %d", x.typ, x.Val)
	case *Undef:
		return fmt.Sprintf("%s undef", x.typ)
	}
	return fmt.Sprintf("%s %%%s", v.Type(), v.Name())
}

// String renders the instruction in an LLVM-like textual form.
func (i *Instruction) String() string {
	var sb strings.Builder
	if i.typ != nil && i.typ != Void {
		fmt.Fprintf(&sb, "%%%s = ", i.name)
	}
	sb.WriteString(i.Op.String())
	switch i.Op {
	case OpCall:
		switch {
		case i.Callee != nil:
			fmt.Fprintf(&sb, " %s @%s(", i.typ, i.Callee.Name)
		case i.Intrinsic != NotIntrinsic:
			fmt.Fprintf(&sb, " %s @%s(", i.typ, i.Intrinsic)
		default:
			fmt.Fprintf(&sb, " %s (", i.typ)
		}
		ops := make([]string, len(i.Operands))
		for n, op := range i.Operands {
			ops[n] = operandString(op)
		}
		sb.WriteString(strings.Join(ops, ", "))
		sb.WriteString(")")
		return sb.String()
	case OpGEP:
		fmt.Fprintf(&sb, " %s,", i.SrcElem)
	case OpLoad:
		fmt.Fprintf(&sb, " %s,", i.typ)
	case OpAlloca:
		fmt.Fprintf(&sb, " %s", i.AllocType)
		if n := i.Operand(0); n != nil {
			fmt.Fprintf(&sb, ", %s", operandString(n))
		}
		fmt.Fprintf(&sb, ", align %d", i.Align)
		return sb.String()
	}
	for n, op := range i.Operands {
		if n > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" ")
		sb.WriteString(operandString(op))
	}
	switch i.Op {
	case OpBitCast, OpAddrSpaceCast, OpTrunc, OpZExt, OpSExt, OpIntToPtr, OpPtrToInt:
		fmt.Fprintf(&sb, " to %s", i.typ)
	}
	if i.Invariant {
		sb.WriteString(", !invariant.load")
	}
	return sb.String()
}

// Print writes fn to w.
func (f *Function) Print(w io.Writer) error {
	params := make([]string, len(f.Args))
	for n, a := range f.Args {
		params[n] = fmt.Sprintf("%s %%%s", a.typ, a.name)
	}
	if _, err := fmt.Fprintf(w, "define %s @%s(%s) {\n", f.Ret, f.Name, strings.Join(params, ", ")); err != nil {
		return err
	}
	for _, inst := range f.Body {
		if _, err := fmt.Fprintf(w, "  %s\n", inst); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

// Print writes the whole module to w.
func (m *Module) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "; module %s\ntarget datalayout = %q\n", m.Name, m.DataLayout); err != nil {
		return err
	}
	for _, fn := range m.Functions {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := fn.Print(w); err != nil {
			return err
		}
	}
	return nil
}
