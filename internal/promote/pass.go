// Package promote rewrites global memory accesses of kernels from
// stateless pointers into surface relative (stateful) or bindless
// references.
//
// An access is promoted when its address traces back through casts and
// element-pointer steps to a pointer argument of the kernel and the
// offset from that argument can be shown to stay inside the buffer. The
// access is then addressed by the byte offset alone in an address space
// that names the buffer's binding-table slot.
package promote

import (
	"context"
	"fmt"
	"strconv"

	"kernelabi/internal/argview"
	"kernelabi/internal/diag"
	"kernelabi/internal/ir"
	"kernelabi/internal/layout"
	"kernelabi/internal/platform"
	"kernelabi/internal/trace"
)

// MaxCandidates bounds the accesses promoted in one function.
const MaxCandidates = 32

// Reason is why an access was left stateless.
type Reason uint8

const (
	ReasonNotKernelArg Reason = iota
	ReasonNoGEP
	ReasonSkippedBuffer
	ReasonUnaligned
	ReasonMaybeNegative
	ReasonNotAffine
	ReasonNoBufferOffset
	ReasonAtomic
	ReasonCap
	ReasonNoResource

	numReasons
)

var reasonNames = [...]string{
	ReasonNotKernelArg:   "not-kernel-arg",
	ReasonNoGEP:          "no-gep",
	ReasonSkippedBuffer:  "stateless-only-buffer",
	ReasonUnaligned:      "unaligned",
	ReasonMaybeNegative:  "maybe-negative",
	ReasonNotAffine:      "not-affine",
	ReasonNoBufferOffset: "no-buffer-offset",
	ReasonAtomic:         "atomic",
	ReasonCap:            "cap",
	ReasonNoResource:     "no-resource",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "Reason(" + strconv.Itoa(int(r)) + ")"
}

func (r Reason) code() diag.Code {
	switch r {
	case ReasonMaybeNegative:
		return diag.PrmNegativeOffset
	case ReasonNotAffine:
		return diag.PrmNotAffine
	case ReasonNotKernelArg:
		return diag.PrmNonKernelArg
	case ReasonCap:
		return diag.PrmCapReached
	case ReasonNoResource:
		return diag.PrmNoResource
	}
	return diag.PrmInfo
}

// Stats counts what one run did.
type Stats struct {
	Functions  int
	Candidates int
	Promoted   int
	Arguments  int
	Rejected   [numReasons]int

	// OffsetsDropped counts buffer offsets replaced by 0.
	OffsetsDropped int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Functions += o.Functions
	s.Candidates += o.Candidates
	s.Promoted += o.Promoted
	s.Arguments += o.Arguments
	s.OffsetsDropped += o.OffsetsDropped
	for i := range s.Rejected {
		s.Rejected[i] += o.Rejected[i]
	}
}

// Kept is the number of candidate accesses left stateless.
func (s Stats) Kept() int {
	return s.Candidates - s.Promoted
}

// Pass promotes the accesses of every entry function of a module.
type Pass struct {
	View     *argview.View
	Layout   *layout.LayoutEngine
	Caps     platform.Caps
	Options  platform.Options
	Oracle   Oracle
	Reporter diag.Reporter

	// Remarks reports every access left stateless as an info diagnostic.
	Remarks bool
}

func (p *Pass) reporter() diag.Reporter {
	if p.Reporter == nil {
		return diag.NopReporter{}
	}
	return p.Reporter
}

func (p *Pass) oracle() Oracle {
	if p.Oracle == nil {
		return KnownBits{Layout: p.Layout}
	}
	return p.Oracle
}

// Run scans, rewrites and finalizes every entry function in module order.
func (p *Pass) Run(ctx context.Context) (Stats, error) {
	m := p.View.Module
	if p.Layout == nil {
		p.Layout = layout.ForModule(m)
	}
	span, ctx := trace.Start(ctx, trace.ScopePass, "promote")
	defer span.End("")

	var total Stats
	for _, fn := range m.Functions {
		if !p.View.MD.IsEntry(fn.Name) || len(fn.Body) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
		st, err := p.Function(ctx, fn)
		total.Add(st)
		if err != nil {
			return total, err
		}
	}
	span.WithExtra("promoted", strconv.Itoa(total.Promoted)).
		WithExtra("kept", strconv.Itoa(total.Kept()))
	return total, nil
}

// Function promotes the accesses of one entry function.
func (p *Pass) Function(ctx context.Context, fn *ir.Function) (Stats, error) {
	span, ctx := trace.Start(ctx, trace.ScopeFunction, "promote:@"+fn.Name)
	defer span.End("")

	st := Stats{Functions: 1}
	s := p.scan(ctx, fn, &st)
	if err := p.rewrite(fn, s, &st); err != nil {
		return st, fmt.Errorf("promote: @%s: %w", fn.Name, err)
	}
	st.OffsetsDropped = p.finalize(fn, s)

	span.WithExtra("candidates", strconv.Itoa(st.Candidates)).
		WithExtra("promoted", strconv.Itoa(st.Promoted))
	return st, nil
}
