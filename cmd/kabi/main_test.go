package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"kernelabi/internal/diag"
)

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in   string
		want uiMode
		ok   bool
	}{
		{"", uiModeAuto, true},
		{" ON ", uiModeOn, true},
		{"off", uiModeOff, true},
		{"sometimes", "", false},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestApplyColorModeRejectsUnknown(t *testing.T) {
	if err := applyColorMode("loud"); err == nil {
		t.Fatalf("expected error")
	}
	if err := applyColorMode("off"); err != nil {
		t.Fatalf("off: %v", err)
	}
}

func TestCatalogRows(t *testing.T) {
	all, err := catalogRows(nil)
	if err != nil || len(all) == 0 {
		t.Fatalf("catalogRows(nil) = %d rows, %v", len(all), err)
	}
	picked, err := catalogRows([]string{all[1].Name, all[0].Name})
	if err != nil || len(picked) != 2 || picked[0].Name != all[1].Name {
		t.Fatalf("picked %+v, %v", picked, err)
	}
	if _, err := catalogRows([]string{"noSuchArg"}); err == nil {
		t.Fatalf("unknown name accepted")
	}
}

func TestPrintDiagnosticsFiltersBySeverity(t *testing.T) {
	applyColorMode("off")
	bag := diag.NewBag(2)
	bag.Add(diag.New(diag.SevInfo, diag.KargZeroPerThread, diag.FuncLoc("k"), "R1 added"))
	bag.Add(diag.NewError(diag.IOLoadFailed, diag.Loc{Inst: -1}, "boom").WithNote(diag.FuncLoc("k"), "here"))
	bag.Add(diag.NewError(diag.IOLoadFailed, diag.Loc{Inst: -1}, "dropped"))

	var buf bytes.Buffer
	printDiagnostics(&buf, "m.yaml", bag, diag.SevWarning)
	out := buf.String()
	if strings.Contains(out, "R1 added") {
		t.Fatalf("info printed above its threshold:\n%s", out)
	}
	if !strings.Contains(out, "m.yaml: error[") || !strings.Contains(out, "note: @k: here") {
		t.Fatalf("output:\n%s", out)
	}
	if !strings.Contains(out, "1 more diagnostics not shown") {
		t.Fatalf("dropped count missing:\n%s", out)
	}
}

func TestVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := renderVersionJSON(&buf, versionOptions{showHash: true}); err != nil {
		t.Fatalf("renderVersionJSON: %v", err)
	}
	var p versionPayload
	if err := json.Unmarshal(buf.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Tool != "kabi" || p.Version == "" || p.GitCommit == "" || p.BuildDate != "" {
		t.Fatalf("payload %+v", p)
	}
}
