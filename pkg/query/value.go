package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a literal: a string, a Go integer or float, or nil for NULL.
type Value struct {
	v     any
	alias string
	err   error
}

// Val wraps a literal. Unsupported types and non-finite floats produce a
// Value whose Err is set.
func Val(v any) Value {
	switch x := v.(type) {
	case float32:
		if !finite(float64(x)) {
			return Value{v: v, err: newError(ErrUnsupportedValue, "non-finite float %v", x)}
		}
		return Value{v: v}
	case float64:
		if !finite(x) {
			return Value{v: v, err: newError(ErrUnsupportedValue, "non-finite float %v", x)}
		}
		return Value{v: v}
	case nil, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return Value{v: v}
	default:
		return Value{v: v, err: newError(ErrUnsupportedValue, "%T", v)}
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Null is the NULL literal.
func Null() Value { return Value{} }

// As returns the value under an output alias.
func (v Value) As(alias string) Value {
	v.alias = alias
	return v
}

// Err reports an unsupported literal type.
func (v Value) Err() error { return v.err }

// OutputName implements the select-list naming used by subqueries.
func (v Value) OutputName() string { return v.alias }

// WriteSQL implements Term.
func (v Value) WriteSQL(w *Writer) {
	if v.err != nil {
		w.Fail(v.err)
		return
	}
	w.WriteString(literal(v.v))
	if v.alias != "" {
		w.WriteString(" AS ")
		w.WriteIdent(v.alias)
	}
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// term wraps non-term operands in a Value.
func term(v any) Term {
	if t, ok := v.(Term); ok {
		return t
	}
	return Val(v)
}

func terms(vs []any) []Term {
	out := make([]Term, len(vs))
	for i, v := range vs {
		out[i] = term(v)
	}
	return out
}

func firstErr(ts []Term) error {
	for _, t := range ts {
		if err := errOf(t); err != nil {
			return err
		}
	}
	return nil
}
