package ir

import "fmt"

// Value is anything an instruction can take as an operand.
type Value interface {
	Type() *Type
	Name() string
}

// ArgAttrs are the ABI attributes of a function argument.
type ArgAttrs struct {
	Align   int   // 0 when absent
	ByVal   *Type // pointee of a byval pointer argument
	NoAlias bool
}

// Argument is a formal parameter of a Function.
type Argument struct {
	name   string
	typ    *Type
	No     int
	Parent *Function
	Attrs  ArgAttrs
}

func (a *Argument) Type() *Type  { return a.typ }
func (a *Argument) Name() string { return a.name }

// SetName renames the argument.
func (a *Argument) SetName(name string) { a.name = name }

// Const is an integer constant.
type Const struct {
	typ *Type
	Val int64
}

// ConstInt returns an integer constant of type t.
func ConstInt(t *Type, v int64) *Const {
	return &Const{typ: t, Val: v}
}

func (c *Const) Type() *Type  { return c.typ }
func (c *Const) Name() string { return fmt.Sprintf("%d", c.Val) }

// IsZero reports whether v is the integer constant zero.
func IsZero(v Value) bool {
	c, ok := v.(*Const)
	return ok && c.Val == 0
}

// AsConst returns the constant behind v, if any.
func AsConst(v Value) (*Const, bool) {
	c, ok := v.(*Const)
	return c, ok
}

// Undef is a placeholder value of a given type.
type Undef struct {
	typ *Type
}

// UndefOf returns an undefined value of type t.
func UndefOf(t *Type) *Undef { return &Undef{typ: t} }

func (u *Undef) Type() *Type  { return u.typ }
func (u *Undef) Name() string { return "undef" }
