package modfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"kernelabi/internal/ir"
	"kernelabi/internal/metadata"
)

// Unit is a loaded module with the metadata its description carries.
type Unit struct {
	Path   string
	Module *ir.Module
	MD     *metadata.Container
}

// Load reads and builds the module description at path.
func Load(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modfile: %w", err)
	}
	return Parse(path, data)
}

// Parse builds a module from YAML. path is only used in errors.
func Parse(path string, data []byte) (*Unit, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Path: path, Msg: "empty document"}
		}
		return nil, &Error{Path: path, Msg: "invalid YAML", Err: err}
	}
	return Build(path, &f)
}

// name normalizes identifiers so visually equal names compare equal.
func name(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

type builder struct {
	path    string
	structs map[string]*ir.Type
	m       *ir.Module
	md      *metadata.Container
}

func (b *builder) errorf(line int, fn string, err error, format string, args ...any) *Error {
	return &Error{Path: b.path, Line: line, Func: fn, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Build turns a decoded description into IR and metadata.
func Build(path string, f *File) (*Unit, error) {
	if name(f.Module) == "" {
		return nil, &Error{Path: path, Msg: "module name is required"}
	}
	b := &builder{
		path:    path,
		structs: map[string]*ir.Type{},
		m:       ir.NewModule(name(f.Module)),
		md:      metadata.New(),
	}
	if f.DataLayout != "" {
		dl, err := ir.ParseDataLayout(f.DataLayout)
		if err != nil {
			return nil, &Error{Path: path, Msg: "data_layout", Err: err}
		}
		b.m.DataLayout = dl
	}
	b.md.Flags = metadata.ModuleFlags{
		UseBindlessImage: f.UseBindlessImage,
		PushConstantRegs: f.PushConstantRegs,
	}

	if err := b.declareStructs(f.Structs); err != nil {
		return nil, err
	}
	fns := make([]*ir.Function, len(f.Functions))
	for i := range f.Functions {
		fn, err := b.declareFunc(&f.Functions[i])
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	for i := range f.Functions {
		if err := b.body(fns[i], &f.Functions[i]); err != nil {
			return nil, err
		}
	}
	return &Unit{Path: path, Module: b.m, MD: b.md}, nil
}

func (b *builder) declareStructs(decls []StructDecl) error {
	for _, d := range decls {
		n := name(d.Name)
		if n == "" {
			return b.errorf(d.Line, "", nil, "struct without a name")
		}
		if _, dup := b.structs[n]; dup {
			return b.errorf(d.Line, "", nil, "struct %%%s declared twice", n)
		}
		st := ir.Struct(n)
		st.Packed = d.Packed
		b.structs[n] = st
	}
	for _, d := range decls {
		st := b.structs[name(d.Name)]
		for _, fs := range d.Fields {
			t, err := parseType(fs, b.structs)
			if err != nil {
				return b.errorf(d.Line, "", err, "struct %%%s", st.Name)
			}
			st.Fields = append(st.Fields, t)
		}
	}
	return nil
}

func (b *builder) declareFunc(d *FuncDecl) (*ir.Function, error) {
	n := name(d.Name)
	if n == "" {
		return nil, b.errorf(d.Line, "", nil, "function without a name")
	}
	if b.m.Func(n) != nil {
		return nil, b.errorf(d.Line, n, nil, "declared twice")
	}
	ret := ir.Void
	if d.Ret != "" {
		t, err := parseType(d.Ret, b.structs)
		if err != nil {
			return nil, b.errorf(d.Line, n, err, "return type")
		}
		ret = t
	}
	fn := b.m.Add(ir.NewFunction(n, ret))
	for k, v := range d.Attrs {
		fn.SetAttr(k, v)
	}

	md := b.md.Func(n)
	md.IsEntry = d.Entry
	md.ResAlloc.UAVsNum = d.UAVs
	for i, ad := range d.Args {
		t, err := parseType(ad.Type, b.structs)
		if err != nil {
			return nil, b.errorf(d.Line, n, err, "argument %d", i)
		}
		argName := name(ad.Name)
		if argName == "" {
			argName = "arg" + strconv.Itoa(i)
		}
		a := fn.AddArg(argName, t)
		a.Attrs.Align = ad.Align
		a.Attrs.NoAlias = ad.NoAlias
		if ad.ByVal != "" {
			bv, err := parseType(ad.ByVal, b.structs)
			if err != nil {
				return nil, b.errorf(d.Line, n, err, "argument %d byval", i)
			}
			a.Attrs.ByVal = bv
		}
		md.SetArg(i, metadata.ArgMD{
			Location:    ad.Location,
			IsEmulation: ad.Emulation,
			BaseType:    ad.BaseType,
			AccessQual:  ad.Access,
			ScalarAsPtr: ad.ScalarAsPtr,
		})
	}
	return fn, nil
}

// scope resolves operand names inside one function body.
type scope struct {
	b      *builder
	fn     *ir.Function
	values map[string]ir.Value
}

func (s *scope) operand(text string) (ir.Value, error) {
	text = strings.TrimSpace(text)
	if ref, ok := strings.CutPrefix(text, "%"); ok {
		v, ok := s.values[name(ref)]
		if !ok {
			return nil, fmt.Errorf("undefined value %%%s", ref)
		}
		return v, nil
	}
	t := ir.I32
	lit := text
	if sp := strings.LastIndexByte(text, ' '); sp >= 0 {
		typ, err := parseType(text[:sp], s.b.structs)
		if err != nil {
			return nil, err
		}
		t, lit = typ, text[sp+1:]
	}
	if lit == "undef" {
		return ir.UndefOf(t), nil
	}
	if !t.IsInt() {
		return nil, fmt.Errorf("constant %q must be an integer", text)
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad operand %q", text)
	}
	return ir.ConstInt(t, n), nil
}

func (s *scope) operands(texts []string) ([]ir.Value, error) {
	out := make([]ir.Value, len(texts))
	for i, t := range texts {
		v, err := s.operand(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (b *builder) body(fn *ir.Function, d *FuncDecl) error {
	s := &scope{b: b, fn: fn, values: map[string]ir.Value{}}
	for _, a := range fn.Args {
		s.values[a.Name()] = a
	}
	for _, id := range d.Body {
		inst, err := s.inst(&id)
		if err != nil {
			return b.errorf(id.Line, fn.Name, err, "%s", id.Op)
		}
		if inst == nil {
			continue
		}
		if id.Meta != nil {
			inst.Meta = make(map[string]string, len(id.Meta))
			for k, v := range id.Meta {
				inst.Meta[k] = v
			}
		}
		if n := name(id.Name); n != "" {
			if _, dup := s.values[n]; dup {
				return b.errorf(id.Line, fn.Name, nil, "%%%s defined twice", n)
			}
			s.values[n] = inst
		}
	}
	return nil
}

var castOps = map[string]ir.Opcode{
	"bitcast":       ir.OpBitCast,
	"addrspacecast": ir.OpAddrSpaceCast,
	"trunc":         ir.OpTrunc,
	"zext":          ir.OpZExt,
	"sext":          ir.OpSExt,
	"inttoptr":      ir.OpIntToPtr,
	"ptrtoint":      ir.OpPtrToInt,
}

func (s *scope) typeOf(d *InstDecl) (*ir.Type, error) {
	if d.Type == "" {
		return nil, errors.New("type is required")
	}
	return parseType(d.Type, s.b.structs)
}

func arity(d *InstDecl, args []ir.Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s takes %d operand(s), got %d", d.Op, n, len(args))
	}
	return nil
}

func (s *scope) inst(d *InstDecl) (*ir.Instruction, error) {
	args, err := s.operands(d.Args)
	if err != nil {
		return nil, err
	}
	b := ir.NewBuilder(s.fn)
	n := name(d.Name)
	op := strings.ToLower(strings.TrimSpace(d.Op))

	if cast, ok := castOps[op]; ok {
		if err := arity(d, args, 1); err != nil {
			return nil, err
		}
		t, err := s.typeOf(d)
		if err != nil {
			return nil, err
		}
		switch cast {
		case ir.OpBitCast:
			return b.BitCast(args[0], t, n), nil
		case ir.OpAddrSpaceCast:
			return b.AddrSpaceCast(args[0], t, n), nil
		case ir.OpTrunc:
			return b.Trunc(args[0], t, n), nil
		case ir.OpZExt:
			return b.ZExt(args[0], t, n), nil
		case ir.OpSExt:
			return b.SExt(args[0], t, n), nil
		case ir.OpIntToPtr:
			return b.IntToPtr(args[0], t, n), nil
		default:
			return b.PtrToInt(args[0], t, n), nil
		}
	}

	switch op {
	case "add", "sub", "mul":
		if err := arity(d, args, 2); err != nil {
			return nil, err
		}
		switch op {
		case "add":
			return b.Add(args[0], args[1], n), nil
		case "sub":
			return b.Sub(args[0], args[1], n), nil
		}
		return b.Mul(args[0], args[1], n), nil

	case "gep":
		if len(args) < 2 {
			return nil, errors.New("gep needs a base and at least one index")
		}
		if !args[0].Type().IsPointer() {
			return nil, fmt.Errorf("gep base %s is not a pointer", args[0].Type())
		}
		src, err := parseType(d.Src, s.b.structs)
		if err != nil {
			return nil, fmt.Errorf("gep src: %w", err)
		}
		if _, ok := ir.IndexedType(src, args[1:]); !ok {
			return nil, fmt.Errorf("invalid indices over %s", src)
		}
		return b.GEP(src, args[0], args[1:], n), nil

	case "load":
		if err := arity(d, args, 1); err != nil {
			return nil, err
		}
		t, err := s.typeOf(d)
		if err != nil {
			return nil, err
		}
		inst := b.Load(t, args[0], n)
		inst.Align, inst.Volatile, inst.Invariant = d.Align, d.Volatile, d.Invariant
		return inst, nil

	case "store":
		if err := arity(d, args, 2); err != nil {
			return nil, err
		}
		inst := b.Store(args[0], args[1])
		inst.Align, inst.Volatile = d.Align, d.Volatile
		return inst, nil

	case "call":
		return s.call(b, d, args, n)

	case "alloca":
		t, err := s.typeOf(d)
		if err != nil {
			return nil, err
		}
		if d.Count == "" {
			return b.Alloca(t, d.Align, n), nil
		}
		count, err := s.operand(d.Count)
		if err != nil {
			return nil, err
		}
		return b.AllocaN(t, count, d.Align, n), nil

	case "ret":
		if len(args) > 1 {
			return nil, errors.New("ret takes at most one operand")
		}
		var v ir.Value
		if len(args) == 1 {
			v = args[0]
		}
		return b.Ret(v), nil
	}
	return nil, fmt.Errorf("unknown op %q", d.Op)
}

func (s *scope) call(b *ir.Builder, d *InstDecl, args []ir.Value, n string) (*ir.Instruction, error) {
	ret := ir.Void
	if d.Type != "" {
		t, err := parseType(d.Type, s.b.structs)
		if err != nil {
			return nil, err
		}
		ret = t
	}
	switch {
	case d.Intrinsic != "":
		return b.CallIntrinsic(ir.Intrinsic(strings.TrimSpace(d.Intrinsic)), ret, args, n), nil
	case strings.HasPrefix(d.Callee, "@"):
		callee := s.b.m.Func(name(d.Callee[1:]))
		if callee == nil {
			return nil, fmt.Errorf("unknown function %s", d.Callee)
		}
		if len(args) != len(callee.Args) {
			return nil, fmt.Errorf("%s takes %d argument(s), got %d", d.Callee, len(callee.Args), len(args))
		}
		return b.Call(callee, args, n), nil
	case strings.HasPrefix(d.Callee, "%"):
		fp, err := s.operand(d.Callee)
		if err != nil {
			return nil, err
		}
		return b.CallIndirect(fp, ret, args, n), nil
	}
	return nil, errors.New("call needs a callee or an intrinsic")
}
