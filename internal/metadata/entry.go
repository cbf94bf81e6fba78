package metadata

import "kernelabi/internal/implicitarg"

// Entry is one element of a function's implicit argument list. It is
// one of Plain, Numbered or StructField.
type Entry interface {
	Kind() implicitarg.Kind
	isEntry()
}

// Plain is a kind with no associated explicit argument.
type Plain struct {
	K implicitarg.Kind
}

// Numbered ties a kind to an explicit argument, e.g. one image's width
// or one buffer's offset.
type Numbered struct {
	K   implicitarg.Kind
	Arg int
}

// StructField is a piece of a by-value aggregate argument.
type StructField struct {
	K      implicitarg.Kind
	Arg    int
	Offset int
}

func (e Plain) Kind() implicitarg.Kind       { return e.K }
func (e Numbered) Kind() implicitarg.Kind    { return e.K }
func (e StructField) Kind() implicitarg.Kind { return e.K }

func (Plain) isEntry()       {}
func (Numbered) isEntry()    {}
func (StructField) isEntry() {}

// ExplicitArg returns the explicit argument number an entry refers to.
func ExplicitArg(e Entry) (int, bool) {
	switch x := e.(type) {
	case Numbered:
		return x.Arg, true
	case StructField:
		return x.Arg, true
	}
	return 0, false
}

// StructOffset returns the byte offset of a struct piece.
func StructOffset(e Entry) (int, bool) {
	if x, ok := e.(StructField); ok {
		return x.Offset, true
	}
	return 0, false
}

// wire form used by Save and Load
type entryForm uint8

const (
	formPlain entryForm = iota
	formNumbered
	formStructField
)

type wireEntry struct {
	Form   entryForm        `msgpack:"f" yaml:"-"`
	Kind   implicitarg.Kind `msgpack:"k" yaml:"-"`
	Arg    int              `msgpack:"a,omitempty" yaml:"-"`
	Offset int              `msgpack:"o,omitempty" yaml:"-"`
}

func toWire(e Entry) wireEntry {
	switch x := e.(type) {
	case Numbered:
		return wireEntry{Form: formNumbered, Kind: x.K, Arg: x.Arg}
	case StructField:
		return wireEntry{Form: formStructField, Kind: x.K, Arg: x.Arg, Offset: x.Offset}
	}
	return wireEntry{Form: formPlain, Kind: e.Kind()}
}

func fromWire(w wireEntry) Entry {
	switch w.Form {
	case formNumbered:
		return Numbered{K: w.Kind, Arg: w.Arg}
	case formStructField:
		return StructField{K: w.Kind, Arg: w.Arg, Offset: w.Offset}
	}
	return Plain{K: w.Kind}
}
