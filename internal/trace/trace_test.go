package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeFunction, false},
		{LevelDetail, ScopeFunction, true},
		{LevelDetail, ScopeAccess, false},
		{LevelDebug, ScopeAccess, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(DETAIL) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStartPropagatesParent(t *testing.T) {
	ring := NewRingTracer(16, LevelDetail)
	ctx := WithTracer(context.Background(), ring)

	outer, ctx := Start(ctx, ScopePass, "frame")
	inner, _ := Start(ctx, ScopeFunction, "frame:@k")
	inner.WithExtra("simd", "16").End("")
	outer.End("done")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}
	if events[1].ParentID != outer.ID() {
		t.Fatalf("inner parent = %d, want %d", events[1].ParentID, outer.ID())
	}
	if events[2].Extra["simd"] != "16" {
		t.Fatalf("extra lost: %v", events[2].Extra)
	}
}

func TestDisabledScopeIsSilent(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	sp, ctx2 := Start(ctx, ScopeFunction, "f")
	sp.End("")
	Point(ctx2, ScopeAccess, "decision", "skip")
	if n := len(ring.Snapshot()); n != 0 {
		t.Fatalf("got %d events, want 0", n)
	}
	if ctx2 != ctx {
		t.Fatalf("context should be unchanged for a suppressed span")
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatAuto)
	ctx := WithTracer(context.Background(), tr)
	sp, ctx := Start(ctx, ScopePass, "promote")
	Point(ctx, ScopeAccess, "candidate", "arg 0")
	sp.WithExtra("b", "2").WithExtra("a", "1").End("")

	out := buf.String()
	for _, want := range []string{"→ promote", "• candidate (arg 0)", "← promote {a=1, b=2}"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNewPicksFormat(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf, OutputPath: "run.ndjson"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopeDriver, "run", 0).End("")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("expected NDJSON, got %q", buf.String())
	}
	off, err := New(Config{Level: LevelOff})
	if err != nil || off.Enabled() {
		t.Fatalf("LevelOff should give the nop tracer")
	}
}

func TestMultiRing(t *testing.T) {
	var buf bytes.Buffer
	m := NewMultiTracer(LevelPhase, NewStreamTracer(&buf, LevelPhase, FormatText), NewRingTracer(4, LevelPhase))
	Begin(m, ScopeDriver, "run", 0).End("")
	if m.Ring() == nil || len(m.Ring().Snapshot()) != 2 {
		t.Fatalf("ring did not receive events")
	}
}

func TestModuleLabel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	ctx := WithModule(WithTracer(context.Background(), tr), "saxpy")
	sp, ctx := Start(ctx, ScopePass, "frame")
	if ModuleFrom(ctx) != "saxpy" || CurrentSpan(ctx) != sp.ID() {
		t.Fatalf("context lost module or span")
	}
	sp.End("")
	if n := strings.Count(buf.String(), "<saxpy> "); n != 2 {
		t.Fatalf("module label on %d events:\n%s", n, buf.String())
	}
}

func TestHeartbeatStops(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	if h == nil {
		t.Fatalf("no heartbeat for an enabled tracer")
	}
	time.Sleep(10 * time.Millisecond)
	h.Stop()
	h.Stop()
	n := len(ring.Snapshot())
	time.Sleep(5 * time.Millisecond)
	if got := len(ring.Snapshot()); got != n {
		t.Fatalf("heartbeat kept emitting after Stop: %d -> %d", n, got)
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("heartbeat started for the nop tracer")
	}
}

func TestRingForModule(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	base := WithTracer(context.Background(), ring)
	for _, m := range []string{"a.yaml", "b.yaml", "a.yaml"} {
		sp, _ := Start(WithModule(base, m), ScopePass, "frame")
		sp.End("")
	}
	if got := len(ring.ForModule("a.yaml")); got != 4 {
		t.Fatalf("a.yaml has %d events, want 4", got)
	}
	var buf bytes.Buffer
	if err := ring.DumpModule(&buf, "b.yaml", FormatText); err != nil {
		t.Fatalf("DumpModule: %v", err)
	}
	if strings.Contains(buf.String(), "a.yaml") || strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("dump:\n%s", buf.String())
	}
	if RingOf(ring) != ring || RingOf(Nop) != nil {
		t.Fatalf("RingOf")
	}
}
