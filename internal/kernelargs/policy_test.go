package kernelargs

import (
	"strings"
	"testing"
)

func TestPolicyIsStrictTotalOrder(t *testing.T) {
	for _, l := range []Layout{LayoutCurbe, LayoutIndirect, LayoutIndependent} {
		t.Run(l.String(), func(t *testing.T) {
			p := NewPolicy(l)
			var ranks [End]bool
			for c := range End {
				r := p.Rank(c)
				if r < 0 || r >= int(End) || ranks[r] {
					t.Fatalf("%s has rank %d which collides or is out of range", c, r)
				}
				ranks[r] = true
				if p.Less(c, c) {
					t.Fatalf("Less(%s, %s) must be false", c, c)
				}
			}
			for a := range End {
				for b := range End {
					if a != b && p.Less(a, b) == p.Less(b, a) {
						t.Fatalf("%s and %s are not ordered", a, b)
					}
				}
			}
			ordered := p.Ordered()
			for i := 1; i < len(ordered); i++ {
				if !p.Less(ordered[i-1], ordered[i]) {
					t.Fatalf("ordered[%d]=%s not before %s", i-1, ordered[i-1], ordered[i])
				}
			}
			if ordered[0] != R0 || ordered[len(ordered)-1] != Default {
				t.Fatalf("order starts with %s and ends with %s", ordered[0], ordered[len(ordered)-1])
			}
		})
	}
}

func TestLayoutsPlacePerThreadDataDifferently(t *testing.T) {
	curbe := NewPolicy(LayoutCurbe)
	indirect := NewPolicy(LayoutIndirect)
	if !curbe.Less(PtrGlobal, LocalIDX) {
		t.Fatalf("curbe places local ids after pointers")
	}
	if !indirect.Less(LocalIDX, PtrGlobal) {
		t.Fatalf("indirect places local ids before pointers")
	}
	if NewPolicy(LayoutIndependent).Ordered()[5] != curbe.Ordered()[5] {
		t.Fatalf("independent shares the curbe order")
	}
}

func TestVerifyOrderRejectsBadLists(t *testing.T) {
	good := priorityList(LayoutCurbe)

	noSentinel := append([]Category(nil), good...)
	noSentinel[len(noSentinel)-1] = Default
	dup := append([]Category(nil), good...)
	dup[1] = R0
	short := good[:len(good)-1]

	tests := []struct {
		name  string
		order []Category
		want  string
	}{
		{"missing sentinel", noSentinel, "sentinel"},
		{"duplicate", dup, "twice"},
		{"short", short, "slots"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newPolicy(LayoutCurbe, tt.order)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestParseLayout(t *testing.T) {
	if l, err := ParseLayout("indirect"); err != nil || l != LayoutIndirect {
		t.Fatalf("ParseLayout(indirect) = %v, %v", l, err)
	}
	if _, err := ParseLayout("sideways"); err == nil {
		t.Fatalf("expected error")
	}
}
