package modfile

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"kernelabi/internal/ir"
)

// typeParser reads the textual type syntax the IR printer produces:
//
//	void i1 i8 i16 i32 i64 half float double
//	<4 x float>  [16 x i8]  { i32, i64 }  %Name  %opaque.image2d_t
//	T*  T addrspace(1)*
type typeParser struct {
	src     string
	pos     int
	structs map[string]*ir.Type
}

func parseType(s string, structs map[string]*ir.Type) (*ir.Type, error) {
	p := &typeParser{src: s, structs: structs}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("type %q: unexpected %q", s, p.src[p.pos:])
	}
	return t, nil
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) eat(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *typeParser) expect(tok string) error {
	if !p.eat(tok) {
		return p.errorf("expected %q", tok)
	}
	return nil
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) word() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' && r != '$' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) number() (int, error) {
	w := p.word()
	n, err := strconv.Atoi(w)
	if err != nil || n < 0 {
		return 0, p.errorf("expected a count, got %q", w)
	}
	return n, nil
}

func (p *typeParser) parse() (*ir.Type, error) {
	t, err := p.base()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.eat("*"):
			t = ir.Ptr(t, ir.SpacePrivate)
		case p.eat("addrspace("):
			n, err := p.number()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			if err := p.expect("*"); err != nil {
				return nil, err
			}
			t = ir.Ptr(t, ir.AddressSpace(n))
		default:
			return t, nil
		}
	}
}

func (p *typeParser) sequence(end string) (int, *ir.Type, error) {
	n, err := p.number()
	if err != nil {
		return 0, nil, err
	}
	if err := p.expect("x"); err != nil {
		return 0, nil, err
	}
	elem, err := p.parse()
	if err != nil {
		return 0, nil, err
	}
	if err := p.expect(end); err != nil {
		return 0, nil, err
	}
	return n, elem, nil
}

func (p *typeParser) base() (*ir.Type, error) {
	switch {
	case p.eat("<"):
		n, elem, err := p.sequence(">")
		if err != nil {
			return nil, err
		}
		return ir.Vec(elem, n), nil
	case p.eat("["):
		n, elem, err := p.sequence("]")
		if err != nil {
			return nil, err
		}
		return ir.Array(elem, n), nil
	case p.eat("{"):
		var fields []*ir.Type
		for {
			f, err := p.parse()
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
			if p.eat("}") {
				return ir.Struct("", fields...), nil
			}
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	case p.eat("%"):
		name := p.word()
		if opaque, ok := strings.CutPrefix(name, "opaque."); ok {
			return ir.Opaque(opaque), nil
		}
		t, ok := p.structs[name]
		if !ok {
			return nil, p.errorf("unknown struct %%%s", name)
		}
		return t, nil
	}

	w := p.word()
	switch w {
	case "void":
		return ir.Void, nil
	case "half", "f16":
		return ir.F16, nil
	case "float", "f32":
		return ir.F32, nil
	case "double", "f64":
		return ir.F64, nil
	}
	if bits, ok := strings.CutPrefix(w, "i"); ok {
		n, err := strconv.Atoi(bits)
		if err == nil && n > 0 && n <= 64 {
			return ir.Int(n), nil
		}
	}
	return nil, p.errorf("unknown type %q", w)
}
