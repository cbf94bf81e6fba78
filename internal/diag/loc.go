package diag

import "fmt"

// Loc points at a function and, optionally, one of its instructions.
// Inst is -1 when the diagnostic concerns the function as a whole.
type Loc struct {
	Func string `msgpack:"func"`
	Inst int    `msgpack:"inst"`
}

// FuncLoc returns a Loc for the whole of fn.
func FuncLoc(fn string) Loc { return Loc{Func: fn, Inst: -1} }

// InstLoc returns a Loc for instruction idx of fn.
func InstLoc(fn string, idx int) Loc { return Loc{Func: fn, Inst: idx} }

func (l Loc) IsZero() bool { return l.Func == "" }

func (l Loc) String() string {
	switch {
	case l.Func == "":
		return "<module>"
	case l.Inst < 0:
		return "@" + l.Func
	}
	return fmt.Sprintf("@%s#%d", l.Func, l.Inst)
}

// Less orders locations by function name, then instruction.
func (l Loc) Less(o Loc) bool {
	if l.Func != o.Func {
		return l.Func < o.Func
	}
	return l.Inst < o.Inst
}
