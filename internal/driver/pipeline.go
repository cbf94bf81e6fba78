package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"kernelabi/internal/argview"
	"kernelabi/internal/diag"
	"kernelabi/internal/frame"
	"kernelabi/internal/implicitarg"
	"kernelabi/internal/ir"
	"kernelabi/internal/kernelargs"
	"kernelabi/internal/layout"
	"kernelabi/internal/metadata"
	"kernelabi/internal/modfile"
	"kernelabi/internal/observ"
	"kernelabi/internal/promote"
	"kernelabi/internal/trace"
)

// Phase names reported to observers and timers.
const (
	PhaseImplicit = "implicit"
	PhaseFrame    = "frame"
	PhasePromote  = "promote"
	PhaseArgs     = "args"
)

// Phases lists the pipeline phases in execution order.
var Phases = []string{PhaseImplicit, PhaseFrame, PhasePromote, PhaseArgs}

// ArgSummary is one payload slot of an entry.
type ArgSummary struct {
	Name      string `msgpack:"name"`
	Category  string `msgpack:"cat"`
	Implicit  bool   `msgpack:"imp,omitempty"`
	Allocated bool   `msgpack:"alloc,omitempty"`
	Offset    int    `msgpack:"off"` // -1 when not allocated
	Size      int    `msgpack:"size"`
	Align     int    `msgpack:"align"`
	Assoc     int    `msgpack:"assoc"`
}

// EntrySummary describes the payload and frame of one entry function.
type EntrySummary struct {
	Func        string            `msgpack:"func"`
	Args        []ArgSummary      `msgpack:"args"`
	PayloadSize int               `msgpack:"payload"`
	R1Added     bool              `msgpack:"r1,omitempty"`
	UAVs        int               `msgpack:"uavs"`
	Frame       *metadata.FrameMD `msgpack:"frame,omitempty"`
}

// Result is the outcome of running the pipeline over one module.
type Result struct {
	Path    string
	Module  *ir.Module // nil for cached results
	MD      *metadata.Container
	Frames  []frame.Result
	Entries []EntrySummary
	Promote promote.Stats
	Bag     *diag.Bag
	Timing  observ.Report
	Cached  bool

	// Err is the failure of this module when run through RunAll.
	Err error
}

// Run takes a loaded module through every phase. Diagnostics go to the
// result's bag; the returned error is the first phase failure.
func (s *Session) Run(ctx context.Context, u *modfile.Unit) (*Result, error) {
	res := &Result{
		Path: u.Path,
		MD:   u.MD,
		Bag:  diag.NewBag(s.maxDiagnostics()),
	}
	m := u.Module
	res.Module = m

	label := u.Path
	if label == "" {
		label = m.Name
	}
	span, ctx := trace.Start(trace.WithModule(ctx, label), trace.ScopeDriver, "module:"+m.Name)
	span.WithExtra("session", s.ID.String())
	defer span.End("")

	r := diag.NewDedupReporter(diag.NewBagReporter(res.Bag))
	view := argview.New(m, u.MD, r)
	le := layout.ForModule(m)
	cfg := s.Config
	timer := observ.NewTimer()

	phases := []struct {
		name string
		run  func(context.Context) error
	}{
		{PhaseImplicit, func(context.Context) error {
			return s.implicit(view)
		}},
		{PhaseFrame, func(ctx context.Context) error {
			a := &frame.Allocator{
				View:     view,
				Layout:   le,
				Caps:     cfg.Caps,
				Options:  cfg.Options,
				Uniform:  s.Uniform,
				Reporter: r,
			}
			frames, err := a.Run(ctx)
			res.Frames = frames
			return err
		}},
		{PhasePromote, func(ctx context.Context) error {
			p := &promote.Pass{
				View:     view,
				Layout:   le,
				Caps:     cfg.Caps,
				Options:  cfg.Options,
				Oracle:   s.Oracle,
				Reporter: r,
				Remarks:  s.Remarks,
			}
			st, err := p.Run(ctx)
			res.Promote = st
			return err
		}},
		{PhaseArgs, func(context.Context) error {
			entries, err := s.payloads(m, u.MD, le, r)
			res.Entries = entries
			return err
		}},
	}

	var err error
	for _, ph := range phases {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = s.phase(ctx, res.Path, timer, ph.name, ph.run); err != nil {
			break
		}
	}
	res.Timing = timer.Report()
	if s.Timings {
		appendTimingDiagnostic(res.Bag, s.timingPayload(res))
	}
	res.Bag.Sort()
	return res, err
}

func (s *Session) phase(ctx context.Context, path string, timer *observ.Timer, name string, run func(context.Context) error) error {
	s.emit(PhaseEvent{Path: path, Name: name, Status: PhaseStart})
	start := time.Now()
	idx := timer.Begin(name)
	err := run(ctx)
	note := ""
	if err != nil {
		note = "failed"
	}
	timer.End(idx, note)
	s.emit(PhaseEvent{Path: path, Name: name, Status: PhaseEnd, Elapsed: time.Since(start), Err: err})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

type implicitRequest struct {
	fn   *ir.Function
	kind implicitarg.Kind
}

// implicit records the implicit arguments read by intrinsic calls on the
// calling function and its callers and adds buffer offsets to entries.
// Any recursive chain fails the module before a list changes. Lists are
// materialized by the frame phase once private bases are known.
func (s *Session) implicit(v *argview.View) error {
	m := v.Module
	var reqs []implicitRequest
	for _, fn := range m.Functions {
		seen := map[implicitarg.Kind]bool{}
		for _, inst := range fn.Body {
			if inst.Op != ir.OpCall || inst.Intrinsic == ir.NotIntrinsic {
				continue
			}
			desc, ok := implicitarg.LookupByIntrinsic(inst.Intrinsic)
			if !ok || seen[desc.Kind] {
				continue
			}
			seen[desc.Kind] = true
			reqs = append(reqs, implicitRequest{fn: fn, kind: desc.Kind})
		}
	}
	var errs []error
	for _, rq := range reqs {
		if err := v.CheckCallers(rq.fn, rq.kind); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, rq := range reqs {
		if err := v.AddToFunctionAndCallers(rq.fn, rq.kind); err != nil {
			return err
		}
	}
	if s.Config.Options.HasBufferOffset {
		for _, fn := range m.Functions {
			v.AddBufferOffsetArgs(fn)
		}
	}
	return nil
}

// payloads builds and summarizes the argument set of every entry.
func (s *Session) payloads(m *ir.Module, md *metadata.Container, le *layout.LayoutEngine, r diag.Reporter) ([]EntrySummary, error) {
	lay, err := kernelargs.ParseLayout(s.Config.Options.Layout)
	if err != nil {
		return nil, err
	}
	var out []EntrySummary
	for _, name := range md.Entries() {
		fn := m.Func(name)
		if fn == nil {
			diag.ReportWarning(r, diag.ArgUnknownEntryFunc, diag.FuncLoc(name),
				"entry "+strconv.Quote(name)+" has no definition").Emit()
			continue
		}
		set, err := kernelargs.Build(fn, md, le, kernelargs.BuildOptions{
			Layout:  lay,
			GRFSize: s.Config.Caps.GRFSize,
		})
		if err != nil {
			return out, err
		}
		r1 := set.CheckForZeroPerThreadData()
		es := summarize(fn, set)
		es.R1Added = r1
		if r1 {
			diag.ReportInfo(r, diag.KargZeroPerThread, diag.FuncLoc(name), "R1 added to the payload").Emit()
		}
		fmd := md.Func(name)
		es.UAVs = fmd.ResAlloc.UAVsNum
		es.Frame = fmd.Frame
		out = append(out, es)
	}
	return out, nil
}

// summarize lays the allocated arguments out back to back in policy
// order, each at its own alignment.
func summarize(fn *ir.Function, set *kernelargs.Set) EntrySummary {
	es := EntrySummary{Func: fn.Name}
	off := 0
	for k := range set.All() {
		as := ArgSummary{
			Category:  k.Category.String(),
			Implicit:  k.Implicit,
			Allocated: k.NeedsAllocation,
			Offset:    -1,
			Size:      k.Size,
			Align:     k.Align,
			Assoc:     k.AssociatedArg,
		}
		if k.Arg != nil {
			as.Name = k.Arg.Name()
		}
		if k.NeedsAllocation {
			off = layout.RoundUp(off, max(k.Align, 1))
			as.Offset = off
			off += k.AllocateSize()
		}
		es.Args = append(es.Args, as)
	}
	es.PayloadSize = off
	return es
}

// RunFile loads path and runs it, consulting the session cache first.
func (s *Session) RunFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var key Digest
	if s.Cache != nil {
		key, err = CacheKey(data, s.Config)
		if err != nil {
			return nil, err
		}
		var p DiskPayload
		hit, err := s.Cache.Get(key, &p)
		if err == nil && hit {
			if res, err := s.fromPayload(path, &p); err == nil {
				return res, nil
			}
		}
	}

	u, err := modfile.Parse(path, data)
	if err != nil {
		return nil, err
	}
	res, err := s.Run(ctx, u)
	if err != nil || s.Cache == nil || res.Bag.HasErrors() {
		return res, err
	}
	if perr := s.store(key, res); perr != nil {
		diag.ReportWarning(diag.NewBagReporter(res.Bag), diag.IOCacheFailed, diag.Loc{Inst: -1}, perr.Error()).Emit()
	}
	return res, nil
}

func (s *Session) store(key Digest, res *Result) error {
	var buf bytes.Buffer
	if err := res.MD.Save(&buf); err != nil {
		return err
	}
	return s.Cache.Put(key, &DiskPayload{
		Session:     s.ID.String(),
		Module:      res.Module.Name,
		Path:        res.Path,
		Created:     time.Now().UTC(),
		Metadata:    buf.Bytes(),
		Entries:     res.Entries,
		Promote:     res.Promote,
		Diagnostics: res.Bag.Items(),
	})
}

func (s *Session) fromPayload(path string, p *DiskPayload) (*Result, error) {
	md, err := p.Container()
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(max(s.maxDiagnostics(), len(p.Diagnostics)))
	for _, d := range p.Diagnostics {
		bag.Add(d)
	}
	return &Result{
		Path:    path,
		MD:      md,
		Entries: p.Entries,
		Promote: p.Promote,
		Bag:     bag,
		Cached:  true,
	}, nil
}
