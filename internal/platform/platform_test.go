package platform

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := DefaultCaps().Validate(); err != nil {
		t.Fatalf("default caps invalid: %v", err)
	}
	if got := DefaultCaps().PerLaneCeiling(32); got != 64<<10 {
		t.Fatalf("PerLaneCeiling(32) = %d, want %d", got, 64<<10)
	}
}

func TestWidths(t *testing.T) {
	c := DefaultCaps()
	c.MinDispatchWidth = 16
	if got := c.Widths(); !slices.Equal(got, []int{32, 16}) {
		t.Fatalf("Widths = %v", got)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	doc := `
[platform]
name = "small"
grf_size = 64
scratch_budget = 1024
max_hw_threads = 2

[options]
layout = " Indirect "
prefer_bindless = true
`
	cfg, err := Parse("small.toml", doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Caps.GRFSize != 64 || cfg.Caps.ScratchBudget != 1024 {
		t.Fatalf("caps not applied: %+v", cfg.Caps)
	}
	if cfg.Caps.MinDispatchWidth != 8 || !cfg.Caps.UniformPrivateAllocs {
		t.Fatalf("defaults lost: %+v", cfg.Caps)
	}
	if cfg.Options.Layout != "indirect" || !cfg.Options.PreferBindless {
		t.Fatalf("options = %+v", cfg.Options)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
		is   error
	}{
		{name: "no platform", doc: "[options]\nlayout = \"curbe\"\n", is: ErrPlatformSectionMissing},
		{name: "no name", doc: "[platform]\ngrf_size = 32\n", is: ErrPlatformNameMissing},
		{name: "bad grf", doc: "[platform]\nname = \"x\"\ngrf_size = 16\n", is: ErrBadGRF},
		{name: "unknown key", doc: "[platform]\nname = \"x\"\nwarp = 1\n", want: "unknown keys"},
		{name: "syntax", doc: "[platform\n", want: "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("p.toml", tt.doc)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("error %v is not %v", err, tt.is)
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpu.toml")
	if err := os.WriteFile(path, []byte("[platform]\nname = \"gpu\"\nmin_dispatch_width = 16\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Caps.Name != "gpu" || cfg.Caps.MinDispatchWidth != 16 {
		t.Fatalf("caps = %+v", cfg.Caps)
	}
	if _, err := Resolve(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("Resolve of a missing file should fail")
	}
	if cfg, err := Resolve(""); err != nil || cfg.Caps.Name != "default" {
		t.Fatalf("Resolve(\"\") = %+v, %v", cfg.Caps, err)
	}
}
