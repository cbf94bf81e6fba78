package argview

import (
	"fmt"
	"strings"

	"kernelabi/internal/diag"
	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
)

// NumExplicit is the number of parameters of fn that are not
// materialized implicit arguments.
func (v *View) NumExplicit(fn *ir.Function) int {
	n := len(fn.Args)
	if md, ok := v.MD.Lookup(fn.Name); ok {
		n -= md.Materialized
	}
	return n
}

func isImageOrSampler(baseType string) bool {
	return strings.Contains(baseType, "image") || strings.Contains(baseType, "sampler")
}

// AddBufferOffsetArgs gives every global or constant pointer argument of
// an entry function a BUFFER_OFFSET slot. It returns the number added.
func (v *View) AddBufferOffsetArgs(fn *ir.Function) int {
	if !v.MD.IsEntry(fn.Name) {
		return 0
	}
	md := v.fmd(fn)
	var argNos []int
	for i := range v.NumExplicit(fn) {
		t := fn.Args[i].Type()
		if !t.IsPointer() || (t.Space != ir.SpaceGlobal && t.Space != ir.SpaceConstant) {
			continue
		}
		if isImageOrSampler(md.BaseType(i)) {
			continue
		}
		if _, ok := v.NumberedArgIndex(fn, implicitarg.BufferOffset, i); ok {
			continue
		}
		argNos = append(argNos, i)
	}
	if len(argNos) == 0 {
		return 0
	}
	v.AddNumbered(fn, implicitarg.BufferOffset, argNos...)
	diag.ReportInfo(v.Reporter, diag.ArgBufferOffsetAdded, diag.FuncLoc(fn.Name),
		fmt.Sprintf("%d buffer offset argument(s) added", len(argNos))).Emit()
	return len(argNos)
}
