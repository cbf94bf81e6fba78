package diag

import "testing"

func TestFormatShort(t *testing.T) {
	diags := []Diagnostic{
		NewError(FrmScratchExceeded, FuncLoc("k"), "first line\nsecond").
			WithNote(InstLoc("caller", 3), "called here"),
		New(SevWarning, PrmNegativeOffset, InstLoc("k", 2), "another"),
		New(SevInfo, PrmPromoted, InstLoc("a", 0), "promoted"),
	}

	expected := "info PRM4001 @a#0 promoted\n" +
		"error FRM3002 @k first line second\n" +
		"note FRM3002 @caller#3 called here\n" +
		"warning PRM4002 @k#2 another"

	if got := FormatShort(diags, true); got != expected {
		t.Fatalf("unexpected diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(8)
	r := NewDedupReporter(NewBagReporter(bag))
	for range 3 {
		ReportWarning(r, PrmCapReached, FuncLoc("k"), "cap").Emit()
	}
	ReportWarning(r, PrmCapReached, FuncLoc("j"), "cap").Emit()
	if bag.Len() != 2 || r.Suppressed() != 2 {
		t.Fatalf("bag has %d items, %d suppressed; want 2 and 2", bag.Len(), r.Suppressed())
	}
	if !bag.HasWarnings() || bag.HasErrors() {
		t.Fatalf("unexpected severities in bag")
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(CgCallCycle, FuncLoc("a"), "x")) {
		t.Fatalf("first add should succeed")
	}
	if bag.Add(NewError(CgCallCycle, FuncLoc("b"), "x")) {
		t.Fatalf("second add should hit the limit")
	}
}

func TestCodeIDs(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{ArgRecursion, "ARG1001"},
		{KargZeroPerThread, "KRG2002"},
		{FrmScratchClamped, "FRM3001"},
		{PrmCapReached, "PRM4004"},
		{CgCallCycle, "CG5001"},
		{IOBadConfig, "IO6002"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Fatalf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestBagCountsDropped(t *testing.T) {
	bag := NewBag(2)
	bag.Add(New(SevInfo, PrmPromoted, InstLoc("a", 0), "p"))
	bag.Add(NewError(CgCallCycle, FuncLoc("b"), "x"))
	bag.Add(NewError(CgCallCycle, FuncLoc("c"), "x"))
	if bag.Dropped() != 1 || bag.Count(SevInfo) != 2 || bag.Count(SevError) != 1 {
		t.Fatalf("dropped %d, counts %d/%d", bag.Dropped(), bag.Count(SevInfo), bag.Count(SevError))
	}

	other := NewBag(1)
	other.Add(NewError(CgCallCycle, FuncLoc("d"), "x"))
	other.Add(NewError(CgCallCycle, FuncLoc("e"), "x"))
	bag.Merge(other)
	if bag.Len() != 3 || bag.Dropped() != 2 {
		t.Fatalf("after merge: %d kept, %d dropped", bag.Len(), bag.Dropped())
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(4)
	for range 3 {
		bag.Add(New(SevWarning, PrmCapReached, FuncLoc("k"), "cap"))
	}
	bag.Add(New(SevWarning, PrmCapReached, FuncLoc("j"), "cap"))
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("dedup kept %d", bag.Len())
	}
}

func TestParseSeverity(t *testing.T) {
	for _, s := range []Severity{SevInfo, SevWarning, SevError} {
		got, err := ParseSeverity(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseSeverity(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Fatalf("fatal accepted")
	}
}
