package frame

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"kernelabi/internal/argview"
	"kernelabi/internal/callgraph"
	"kernelabi/internal/diag"
	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
	"kernelabi/internal/layout"
	"kernelabi/internal/metadata"
	"kernelabi/internal/platform"
	"kernelabi/internal/trace"
)

// Allocator runs frame layout over a module.
type Allocator struct {
	View     *argview.View
	Layout   *layout.LayoutEngine
	Caps     platform.Caps
	Options  platform.Options
	Uniform  Uniformity
	Reporter diag.Reporter

	// CallGraph is computed from View.Module when nil.
	CallGraph *callgraph.CallGraph
}

// Result is the frame of one function.
type Result struct {
	Func      string
	Desc      *Description
	Fit       Fit
	Resolved  int
	StackCall int
	Group     *Group // entries only
}

func (a *Allocator) reporter() diag.Reporter {
	if a.Reporter == nil {
		return diag.NopReporter{}
	}
	return a.Reporter
}

func (a *Allocator) uniformity() Uniformity {
	if !a.Caps.UniformPrivateAllocs {
		return AllVarying
	}
	if a.Uniform == nil {
		return MetaUniformity
	}
	return a.Uniform
}

// Run lays out, fits and resolves the frame of every defined function,
// callees first, then sizes the call stack of every entry. Results are
// recorded in the function metadata.
//
// Before any frame is resolved the private base is recorded on every
// function with private slots and on its callers, and the implicit lists
// of the whole module are materialized at once. A function that reaches
// itself through its callers fails the run before any signature changes.
func (a *Allocator) Run(ctx context.Context) ([]Result, error) {
	m := a.View.Module
	if a.Layout == nil {
		a.Layout = layout.ForModule(m)
	}
	if a.CallGraph == nil {
		a.CallGraph = callgraph.Analyze(m, diag.NopReporter{})
	}
	span, ctx := trace.Start(ctx, trace.ScopePass, "frame")
	defer span.End("")

	r := a.reporter()
	order := a.CallGraph.BottomUp()
	descs := make(map[*ir.Function]*Description, len(order))
	for _, fn := range order {
		d, err := Build(fn, a.Layout, a.uniformity())
		if err != nil {
			return nil, err
		}
		descs[fn] = d
	}
	if err := a.recordPrivateBases(order, descs); err != nil {
		return nil, err
	}
	a.View.MaterializeAll()

	var results []Result
	perLane := map[string]int{}
	for _, fn := range order {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := a.function(ctx, fn, descs[fn])
		if err != nil {
			return results, err
		}
		perLane[fn.Name] = res.Fit.PerLaneStride + res.Desc.UniformSize
		results = append(results, res)
	}

	for i := range results {
		res := &results[i]
		if !a.View.MD.IsEntry(res.Func) {
			continue
		}
		fn := m.Func(res.Func)
		size, g, err := StackCallSize(a.CallGraph, fn, perLane, a.Layout, a.Caps)
		if err != nil {
			return results, err
		}
		res.Group = &g
		if !g.NeedsStack() {
			continue
		}
		res.StackCall = size
		a.View.MD.Func(fn.Name).Frame.StackCallSize = size
		diag.ReportInfo(r, diag.FrmStackCall, diag.FuncLoc(fn.Name),
			fmt.Sprintf("call stack of %d bytes per lane for %d functions", size, len(g.Members))).Emit()
	}
	span.WithExtra("functions", strconv.Itoa(len(results)))
	return results, nil
}

func needsPrivateBase(fn *ir.Function, d *Description) bool {
	return len(d.Slots) > 0 && !fn.HasAttr(ir.AttrIndirectlyCalled)
}

func (a *Allocator) recordPrivateBases(order []*ir.Function, descs map[*ir.Function]*Description) error {
	var errs []error
	for _, fn := range order {
		if !needsPrivateBase(fn, descs[fn]) {
			continue
		}
		if err := a.View.CheckCallers(fn, implicitarg.PrivateBase); err != nil {
			errs = append(errs, fmt.Errorf("frame: @%s: %w", fn.Name, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, fn := range order {
		if !needsPrivateBase(fn, descs[fn]) {
			continue
		}
		if err := a.View.AddToFunctionAndCallers(fn, implicitarg.PrivateBase); err != nil {
			return err
		}
	}
	return nil
}

func (a *Allocator) function(ctx context.Context, fn *ir.Function, d *Description) (Result, error) {
	span, _ := trace.Start(ctx, trace.ScopeFunction, "frame:@"+fn.Name)
	defer span.End("")

	r := a.reporter()
	res := Result{Func: fn.Name, Desc: d}
	if len(d.VLAs) > 0 {
		fn.SetAttr(ir.AttrVariableLengthAlloca, "")
		diag.ReportInfo(r, diag.FrmVariableLength, diag.FuncLoc(fn.Name),
			fmt.Sprintf("%d variable length allocation(s) kept on the stack", len(d.VLAs))).Emit()
	}

	fit, err := d.Fit(a.Caps, a.Options)
	if err != nil {
		diag.ReportError(r, diag.FrmScratchExceeded, diag.FuncLoc(fn.Name), err.Error()).Emit()
		return res, fmt.Errorf("frame: @%s: %w", fn.Name, err)
	}
	res.Fit = fit
	if fit.Reduced {
		diag.ReportInfo(r, diag.FrmSIMDReduced, diag.FuncLoc(fn.Name),
			fmt.Sprintf("dispatch width reduced to SIMD%d", fit.SIMD)).Emit()
	}
	if fit.Clamped {
		diag.ReportWarning(r, diag.FrmScratchClamped, diag.FuncLoc(fn.Name),
			fmt.Sprintf("per-lane private memory clamped from %d to %d bytes at SIMD%d",
				layoutStride(d), fit.PerLaneStride, fit.SIMD)).Emit()
	}

	if needsPrivateBase(fn, d) {
		base := a.View.Argument(fn, implicitarg.PrivateBase)
		if base == nil {
			return res, fmt.Errorf("frame: @%s: no private base argument", fn.Name)
		}
		res.Resolved = d.Resolve(fn, base, a.Caps)
	}

	a.View.MD.Func(fn.Name).Frame = &metadata.FrameMD{
		UniformSize:   d.UniformSize,
		PerLaneStride: fit.PerLaneStride,
		SIMD:          fit.SIMD,
		Clamped:       fit.Clamped,
	}
	span.WithExtra("simd", strconv.Itoa(fit.SIMD)).
		WithExtra("uniform", strconv.Itoa(d.UniformSize)).
		WithExtra("stride", strconv.Itoa(fit.PerLaneStride))
	return res, nil
}

func layoutStride(d *Description) int {
	return layout.RoundUp(d.PerLaneStride, d.Align())
}
