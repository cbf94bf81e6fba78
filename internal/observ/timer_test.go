package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("frame")
	tm.End(a, "")
	b := tm.Begin("promote")
	tm.End(b, "failed")
	tm.End(7, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "frame" || r.Phases[1].Note != "failed" {
		t.Fatalf("report %+v", r)
	}
	if r.TotalMS < r.Phases[0].DurationMS {
		t.Fatalf("total %.3f below a phase", r.TotalMS)
	}
	s := tm.Summary()
	if !strings.Contains(s, "promote") || !strings.Contains(s, "// failed") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("empty report %+v", r)
	}
}

func TestAggregate(t *testing.T) {
	r := Aggregate(
		Report{TotalMS: 3, Phases: []PhaseReport{{Name: "a", DurationMS: 1}, {Name: "b", DurationMS: 2}}},
		Report{TotalMS: 4, Phases: []PhaseReport{{Name: "b", DurationMS: 3}, {Name: "c", DurationMS: 1, Note: "x"}}},
	)
	if r.TotalMS != 7 || len(r.Phases) != 3 {
		t.Fatalf("aggregate %+v", r)
	}
	want := []PhaseReport{{Name: "a", DurationMS: 1}, {Name: "b", DurationMS: 5}, {Name: "c", DurationMS: 1}}
	for i, p := range r.Phases {
		if p != want[i] {
			t.Fatalf("phase %d = %+v, want %+v", i, p, want[i])
		}
	}
}
