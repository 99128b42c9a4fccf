package query

import (
	"strings"

	"github.com/lib/pq"

	"github.com/pthm/sqlast/pkg/dialect"
)

// Term is any node that renders to SQL.
type Term interface {
	WriteSQL(w *Writer)
}

// Writer accumulates rendered SQL for one compile pass. It records the first
// error reported by any term and allocates placeholder slots in render order.
type Writer struct {
	sb      strings.Builder
	dialect dialect.Dialect
	err     error

	slots    []slotKey
	numbered map[slotKey]int
	keys     map[string]struct{}
	lists    []*ParameterList
	seen     map[*ParameterList]bool
}

// slotKey identifies one logical binding. Named bindings share a key space
// across the whole statement; positional ones are scoped to their list.
type slotKey struct {
	list  *ParameterList
	index int
	key   string
}

func newWriter(d dialect.Dialect) *Writer {
	return &Writer{
		dialect:  d,
		numbered: make(map[slotKey]int),
		keys:     make(map[string]struct{}),
		seen:     make(map[*ParameterList]bool),
	}
}

// Dialect returns the dialect being rendered.
func (w *Writer) Dialect() dialect.Dialect { return w.dialect }

// WriteString appends raw SQL text.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// WriteIdent appends a double-quoted identifier.
func (w *Writer) WriteIdent(name string) {
	w.sb.WriteString(pq.QuoteIdentifier(name))
}

// WriteTerm renders t, rendering a nil term as NULL.
func (w *Writer) WriteTerm(t Term) {
	if t == nil {
		w.sb.WriteString("NULL")
		return
	}
	t.WriteSQL(w)
}

// WriteList renders terms separated by sep.
func (w *Writer) WriteList(terms []Term, sep string) {
	for i, t := range terms {
		if i > 0 {
			w.sb.WriteString(sep)
		}
		w.WriteTerm(t)
	}
}

// Fail records err unless an earlier error was already recorded.
func (w *Writer) Fail(err error) {
	if err != nil && w.err == nil {
		w.err = err
	}
}

// Err returns the first recorded error.
func (w *Writer) Err() error { return w.err }

// writeCondition renders t wrapped in exactly one pair of parentheses.
func (w *Writer) writeCondition(t Term) {
	t = condition(t)
	switch x := t.(type) {
	case Expression:
		if x.paren && x.alias == "" {
			w.WriteTerm(x)
			return
		}
	case OrList:
		if len(x.terms) > 0 {
			w.WriteTerm(x)
			return
		}
	}
	w.sb.WriteString("(")
	w.WriteTerm(t)
	w.sb.WriteString(")")
}

// condition strips an output alias, which is only valid in a select list.
func condition(t Term) Term {
	switch x := t.(type) {
	case Expression:
		x.alias = ""
		return x
	case Column:
		x.alias = ""
		return x
	case Function:
		x.alias = ""
		return x
	case Value:
		x.alias = ""
		return x
	}
	return t
}

func conditions(ts []Term) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = condition(t)
	}
	return out
}

func (w *Writer) registerList(l *ParameterList) {
	if l == nil || w.seen[l] {
		return
	}
	w.seen[l] = true
	w.lists = append(w.lists, l)
}

func (w *Writer) registerDict(d *ParameterDict) {
	if d == nil {
		return
	}
	for _, k := range d.keys {
		w.keys[k] = struct{}{}
	}
}

func (w *Writer) writePlaceholder(k slotKey) {
	if k.list == nil {
		w.keys[k.key] = struct{}{}
	} else {
		w.registerList(k.list)
	}
	if w.dialect.ReusesPlaceholders() {
		if n, ok := w.numbered[k]; ok {
			w.sb.WriteString(w.dialect.Placeholder(n))
			return
		}
	}
	w.slots = append(w.slots, k)
	n := len(w.slots)
	w.numbered[k] = n
	w.sb.WriteString(w.dialect.Placeholder(n))
}

func (w *Writer) String() string { return w.sb.String() }
