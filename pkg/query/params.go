package query

import (
	"slices"
)

// Placeholder is a bound-parameter marker. It renders as $n or ? depending
// on the dialect; the slot number is decided when the statement compiles.
type Placeholder struct {
	list  *ParameterList
	dict  *ParameterDict
	index int
	key   string
}

// WriteSQL implements Term.
func (p Placeholder) WriteSQL(w *Writer) {
	if p.dict != nil {
		w.registerDict(p.dict)
	}
	w.writePlaceholder(slotKey{list: p.list, index: p.index, key: p.key})
}

// Key returns the logical key of a keyed placeholder.
func (p Placeholder) Key() string { return p.key }

// Param returns a keyed placeholder that is not tied to any binder. It joins
// the statement's keyed parameters by name.
func Param(key string) Placeholder {
	return Placeholder{key: key}
}

// ParameterList binds values by position. Values are supplied in Add order.
type ParameterList struct {
	n int
}

// Add registers one more positional binding.
func (l *ParameterList) Add() Placeholder {
	p := Placeholder{list: l, index: l.n}
	l.n++
	return p
}

// Len returns the number of registered bindings.
func (l *ParameterList) Len() int { return l.n }

// ParameterDict binds values by key. The same key may be added many times
// and is supplied once when binding.
type ParameterDict struct {
	keys []string
}

// Add registers a binding for key.
func (d *ParameterDict) Add(key string) Placeholder {
	d.keys = append(d.keys, key)
	return Placeholder{dict: d, key: key}
}

// Keys returns the distinct registered keys, sorted.
func (d *ParameterDict) Keys() []string {
	keys := slices.Clone(d.keys)
	slices.Sort(keys)
	return slices.Compact(keys)
}

// binders is embedded by every builder; the binders are created on first use.
type binders struct {
	list *ParameterList
	dict *ParameterDict
}

// Params returns the builder's keyed binder.
func (b *binders) Params() *ParameterDict {
	if b.dict == nil {
		b.dict = &ParameterDict{}
	}
	return b.dict
}

// Positional returns the builder's positional binder.
func (b *binders) Positional() *ParameterList {
	if b.list == nil {
		b.list = &ParameterList{}
	}
	return b.list
}

func (b *binders) register(w *Writer) {
	w.registerDict(b.dict)
	w.registerList(b.list)
}
