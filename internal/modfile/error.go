package modfile

import (
	"fmt"
	"strings"
)

// Error locates a problem in a module description.
type Error struct {
	Path string
	Line int    // 0 when unknown
	Func string // empty outside function bodies
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Path)
	if e.Line > 0 {
		fmt.Fprintf(&sb, ":%d", e.Line)
	}
	if e.Func != "" {
		fmt.Fprintf(&sb, ": @%s", e.Func)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }
