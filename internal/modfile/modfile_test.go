package modfile

import (
	"errors"
	"strings"
	"testing"

	"kernelabi/internal/ir"
)

func TestLoadSample(t *testing.T) {
	u, err := Load("testdata/saxpy.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if u.Module.Name != "saxpy" {
		t.Fatalf("module name %q", u.Module.Name)
	}
	if got := u.Module.DataLayout.PointerSize(ir.SpaceGlobal); got != 8 {
		t.Fatalf("global pointer size %d, want 8", got)
	}

	fn := u.Module.Func("saxpy")
	if fn == nil {
		t.Fatalf("saxpy not found")
	}
	if len(fn.Args) != 3 || len(fn.Body) != 10 {
		t.Fatalf("saxpy has %d args and %d instructions", len(fn.Args), len(fn.Body))
	}
	if fn.Args[0].Attrs.Align != 4 {
		t.Fatalf("align attr %d", fn.Args[0].Attrs.Align)
	}
	if bv := fn.Args[2].Attrs.ByVal; bv == nil || bv.Name != "Pair" || len(bv.Fields) != 2 {
		t.Fatalf("byval attr %v", bv)
	}
	if fn.Args[2].Type().Elem != fn.Args[2].Attrs.ByVal {
		t.Fatalf("struct references are not shared")
	}

	md, ok := u.MD.Lookup("saxpy")
	if !ok || !md.IsEntry {
		t.Fatalf("saxpy is not an entry")
	}
	if md.Arg(1).AccessQual != "read_only" || md.BaseType(0) != "float*" {
		t.Fatalf("arg metadata %+v", md.Args)
	}
	if u.MD.IsEntry("scale") {
		t.Fatalf("scale marked as entry")
	}

	load := fn.Body[3]
	if load.Op != ir.OpLoad || !load.Invariant || load.Align != 4 {
		t.Fatalf("load = %s", load)
	}
	if p := load.PointerOperand().(*ir.Instruction); p.Op != ir.OpGEP || p.Operands[0] != fn.Args[1] {
		t.Fatalf("load pointer = %s", p)
	}
	call := fn.Body[4]
	if call.Callee != u.Module.Func("scale") || call.Type() != ir.F32 {
		t.Fatalf("call = %s", call)
	}
	if fn.Body[0].Intrinsic != ir.IntrinsicGetLocalIDX {
		t.Fatalf("intrinsic %q", fn.Body[0].Intrinsic)
	}
	add := fn.Body[8]
	if _, ok := add.Meta["nsw"]; !ok {
		t.Fatalf("meta not copied: %v", add.Meta)
	}
	if c, ok := ir.AsConst(add.Operands[1]); !ok || c.Val != 3 {
		t.Fatalf("add operand %v", add.Operands[1])
	}
	alloca := fn.Body[7]
	if alloca.AllocType.Kind != ir.KindArray || alloca.AllocType.Len != 4 || alloca.Align != 16 {
		t.Fatalf("alloca = %s", alloca)
	}
}

func TestParseType(t *testing.T) {
	pair := ir.Struct("Pair", ir.I32, ir.I64)
	structs := map[string]*ir.Type{"Pair": pair}
	tests := []struct {
		in   string
		want string
	}{
		{"i32", "i32"},
		{"f32", "float"},
		{"<4 x float>", "<4 x float>"},
		{"[16 x i8]", "[16 x i8]"},
		{"float addrspace(1)*", "float addrspace(1)*"},
		{"i8**", "i8**"},
		{"%Pair*", "%Pair*"},
		{"%opaque.image2d_t addrspace(1)*", "%opaque.image2d_t addrspace(1)*"},
	}
	for _, tt := range tests {
		got, err := parseType(tt.in, structs)
		if err != nil {
			t.Fatalf("parseType(%q): %v", tt.in, err)
		}
		if got.String() != tt.want {
			t.Fatalf("parseType(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	got, err := parseType("{ i32, %Pair }", structs)
	if err != nil {
		t.Fatalf("literal struct: %v", err)
	}
	if len(got.Fields) != 2 || got.Fields[1] != pair {
		t.Fatalf("literal struct fields %v", got.Fields)
	}

	for _, bad := range []string{"", "i0", "i65", "[x i8]", "<4 float>", "%Missing", "float addrspace(1)", "i32 junk"} {
		if _, err := parseType(bad, structs); err == nil {
			t.Fatalf("parseType(%q) succeeded", bad)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		want string
	}{
		{
			name: "unknown field",
			src:  "module: m\nbogus: 1\nfunctions: []\n",
			want: "invalid YAML",
		},
		{
			name: "missing module",
			src:  "functions: []\n",
			want: "module name is required",
		},
		{
			name: "undefined value",
			src: `module: m
functions:
  - name: f
    body:
      - {op: load, type: i32, args: ["%nope"]}
`,
			line: 5,
			want: "undefined value %nope",
		},
		{
			name: "duplicate value",
			src: `module: m
functions:
  - name: f
    args: [{name: a, type: i32}]
    body:
      - {op: add, name: a, args: ["%a", "1"]}
`,
			line: 6,
			want: "%a defined twice",
		},
		{
			name: "bad gep",
			src: `module: m
structs:
  - {name: S, fields: [i32, i32]}
functions:
  - name: f
    args: [{name: p, type: "%S*"}, {name: i, type: i32}]
    body:
      - {op: gep, src: "%S", args: ["%p", "0", "%i"]}
`,
			line: 8,
			want: "invalid indices",
		},
		{
			name: "unknown callee",
			src: `module: m
functions:
  - name: f
    body:
      - {op: call, callee: "@g"}
`,
			line: 5,
			want: "unknown function @g",
		},
		{
			name: "unknown op",
			src: `module: m
functions:
  - name: f
    body:
      - {op: phi}
`,
			line: 5,
			want: `unknown op "phi"`,
		},
		{
			name: "duplicate function",
			src: `module: m
functions:
  - name: f
  - name: f
`,
			line: 4,
			want: "declared twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("in.yaml", []byte(tt.src))
			if err == nil {
				t.Fatalf("Parse succeeded")
			}
			var me *Error
			if !errors.As(err, &me) {
				t.Fatalf("error %T is not *Error", err)
			}
			if tt.line != 0 && me.Line != tt.line {
				t.Fatalf("line %d, want %d (%v)", me.Line, tt.line, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestNamesAreNormalized(t *testing.T) {
	// Declared decomposed, referenced and looked up composed.
	src := "module: m\nfunctions:\n" +
		"  - name: \"cafe\u0301\"\n" +
		"    args: [{name: \"ve\u0301\", type: i32}]\n" +
		"    body:\n" +
		"      - {op: add, name: r, args: [\"%v\u00e9\", \"1\"]}\n"
	u, err := Parse("in.yaml", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if u.Module.Func("caf\u00e9") == nil {
		t.Fatalf("function name not normalized")
	}
}
