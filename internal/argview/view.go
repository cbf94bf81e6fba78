// Package argview is the per-function list of implicit arguments a
// function needs, backed by the module metadata container.
//
// The list is append-only. Once Materialize has turned entries into
// function parameters, entry i of a function with n parameters and m
// materialized entries lives at parameter n-m+i.
package argview

import (
	"fmt"
	"slices"

	"kernelabi/internal/diag"
	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
	"kernelabi/internal/metadata"
)

// View reads and extends the implicit argument lists of one module.
type View struct {
	Module   *ir.Module
	MD       *metadata.Container
	Reporter diag.Reporter
}

// New returns a view over m and md. A nil reporter discards diagnostics.
func New(m *ir.Module, md *metadata.Container, r diag.Reporter) *View {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &View{Module: m, MD: md, Reporter: r}
}

func (v *View) fmd(fn *ir.Function) *metadata.FunctionMD {
	return v.MD.Func(fn.Name)
}

// Entries returns the implicit list of fn. Do not modify the result.
func (v *View) Entries(fn *ir.Function) []metadata.Entry {
	md, ok := v.MD.Lookup(fn.Name)
	if !ok {
		return nil
	}
	return md.ImplicitArgs
}

// Len is the number of implicit entries of fn.
func (v *View) Len(fn *ir.Function) int { return len(v.Entries(fn)) }

// Has reports whether fn carries kind k in any form.
func (v *View) Has(fn *ir.Function, k implicitarg.Kind) bool {
	_, ok := v.ArgIndex(fn, k)
	return ok
}

// ArgIndex returns the position of the first entry of kind k.
func (v *View) ArgIndex(fn *ir.Function, k implicitarg.Kind) (int, bool) {
	i := slices.IndexFunc(v.Entries(fn), func(e metadata.Entry) bool { return e.Kind() == k })
	return i, i >= 0
}

// NumberedArgIndex returns the position of the entry of kind k tied to
// explicit argument argNo.
func (v *View) NumberedArgIndex(fn *ir.Function, k implicitarg.Kind, argNo int) (int, bool) {
	i := slices.IndexFunc(v.Entries(fn), func(e metadata.Entry) bool {
		n, ok := metadata.ExplicitArg(e)
		return ok && e.Kind() == k && n == argNo
	})
	return i, i >= 0
}

func (v *View) skip(fn *ir.Function) bool {
	if !fn.HasAttr(ir.AttrIndirectlyCalled) {
		return false
	}
	diag.ReportInfo(v.Reporter, diag.ArgIndirectlyCalled, diag.FuncLoc(fn.Name),
		fmt.Sprintf("%s is indirectly called; implicit arguments are not added", fn.Name)).Emit()
	return true
}

func byCatalogOrder(kinds []implicitarg.Kind) []implicitarg.Kind {
	sorted := slices.Clone(kinds)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

// Add appends the plain kinds fn does not have yet, in catalog order.
// Numbered kinds must go through AddNumbered or AddStructFields.
func (v *View) Add(fn *ir.Function, kinds ...implicitarg.Kind) {
	if v.skip(fn) {
		return
	}
	md := v.fmd(fn)
	for _, k := range byCatalogOrder(kinds) {
		if implicitarg.IsNumbered(k) {
			panic(fmt.Errorf("argview: %s needs an explicit argument number", k))
		}
		if v.Has(fn, k) {
			continue
		}
		md.ImplicitArgs = append(md.ImplicitArgs, metadata.Plain{K: k})
	}
}

// AddNumbered appends one entry of kind k per explicit argument in argNos.
func (v *View) AddNumbered(fn *ir.Function, k implicitarg.Kind, argNos ...int) {
	if !implicitarg.IsNumbered(k) || implicitarg.IsStructKind(k) {
		panic(fmt.Errorf("argview: %s is not a numbered kind", k))
	}
	if v.skip(fn) {
		return
	}
	md := v.fmd(fn)
	for _, n := range argNos {
		if _, ok := v.NumberedArgIndex(fn, k, n); ok {
			continue
		}
		md.ImplicitArgs = append(md.ImplicitArgs, metadata.Numbered{K: k, Arg: n})
	}
}

// StructPiece is one register-sized chunk of a by-value aggregate.
type StructPiece struct {
	Kind   implicitarg.Kind
	Offset int
}

// AddStructFields appends the pieces of by-value argument argNo.
func (v *View) AddStructFields(fn *ir.Function, argNo int, pieces []StructPiece) {
	if v.skip(fn) {
		return
	}
	md := v.fmd(fn)
	for _, p := range pieces {
		if !implicitarg.IsStructKind(p.Kind) {
			panic(fmt.Errorf("argview: %s is not a struct piece kind", p.Kind))
		}
		exists := slices.ContainsFunc(md.ImplicitArgs, func(e metadata.Entry) bool {
			sf, ok := e.(metadata.StructField)
			return ok && sf.Arg == argNo && sf.Offset == p.Offset
		})
		if exists {
			continue
		}
		md.ImplicitArgs = append(md.ImplicitArgs, metadata.StructField{K: p.Kind, Arg: argNo, Offset: p.Offset})
	}
}
