package metadata_test

import (
	"bytes"
	"strings"
	"testing"

	"kernelabi/internal/implicitarg"
	"kernelabi/internal/metadata"
)

func sampleContainer() *metadata.Container {
	c := metadata.New()
	c.Flags.UseBindlessImage = true
	k := c.Func("k")
	k.IsEntry = true
	k.SetArg(1, metadata.ArgMD{BaseType: "image2d_t", AccessQual: "read_only"})
	k.ImplicitArgs = []metadata.Entry{
		metadata.Plain{K: implicitarg.R0},
		metadata.Numbered{K: implicitarg.ImageWidth, Arg: 1},
		metadata.StructField{K: implicitarg.ConstantRegDWord, Arg: 2, Offset: 8},
	}
	k.ResAlloc.SetArg(0, metadata.ArgAlloc{Type: metadata.UAVResource, Index: 0})
	k.ResAlloc.UAVsNum = 1
	c.Func("helper")
	return c
}

func TestSaveLoadPreservesEntries(t *testing.T) {
	c := sampleContainer()
	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := metadata.Load(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Flags.UseBindlessImage {
		t.Fatalf("flags lost")
	}
	if names := got.Entries(); len(names) != 1 || names[0] != "k" {
		t.Fatalf("entries = %v", names)
	}
	k, ok := got.Lookup("k")
	if !ok {
		t.Fatalf("function k missing")
	}
	if len(k.ImplicitArgs) != 3 {
		t.Fatalf("implicit args = %v", k.ImplicitArgs)
	}
	sf, ok := k.ImplicitArgs[2].(metadata.StructField)
	if !ok || sf.Arg != 2 || sf.Offset != 8 {
		t.Fatalf("struct entry = %#v", k.ImplicitArgs[2])
	}
	if n, ok := metadata.ExplicitArg(k.ImplicitArgs[1]); !ok || n != 1 {
		t.Fatalf("numbered entry arg = %d, %v", n, ok)
	}
	if _, ok := metadata.ExplicitArg(k.ImplicitArgs[0]); ok {
		t.Fatalf("plain entry must not carry an argument")
	}
	if k.BaseType(1) != "image2d_t" {
		t.Fatalf("base type lost")
	}
	if a, ok := k.ResAlloc.Arg(0); !ok || a.Type != metadata.UAVResource {
		t.Fatalf("resource record lost: %+v", k.ResAlloc)
	}
}

func TestLoadRejectsWrongSchema(t *testing.T) {
	if _, err := metadata.Load(strings.NewReader("garbage")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDumpYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleContainer().DumpYAML(&buf); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"kind: imageWidth", "offset: 8", "use_bindless_image: true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("yaml output missing %q:\n%s", want, out)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	k := sampleContainer().Func("k")
	cp := k.Clone()
	cp.ImplicitArgs[0] = metadata.Plain{K: implicitarg.WorkDim}
	cp.ResAlloc.Args[0].Index = 9
	if k.ImplicitArgs[0].Kind() != implicitarg.R0 || k.ResAlloc.Args[0].Index != 0 {
		t.Fatalf("clone shares storage with the original")
	}
}
