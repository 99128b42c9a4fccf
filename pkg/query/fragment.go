package query

import (
	"fmt"

	"github.com/mitranim/sqlp"
)

// Fragment is hand-written SQL whose :name parameters become keyed
// placeholders of the enclosing statement.
type Fragment struct {
	parts []fragmentPart
	err   error
}

type fragmentPart struct {
	text  string
	param string
}

// SQL parses src into a fragment. Ordinal parameters such as $1 are rejected
// since their numbering belongs to the compiled statement.
func SQL(src string) (frag Fragment) {
	defer func() {
		if r := recover(); r != nil {
			frag = Fragment{err: newError(ErrFragment, "%v", r)}
		}
	}()

	tokenizer := sqlp.Tokenizer{Source: src}
	var buf []byte
	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}
		switch node := node.(type) {
		case sqlp.NodeNamedParam:
			frag.parts = append(frag.parts, fragmentPart{text: string(buf), param: string(node)})
			buf = buf[:0]
		case sqlp.NodeOrdinalParam:
			return Fragment{err: newError(ErrFragment, "ordinal parameter %s", fmt.Sprint(node))}
		default:
			node.Append(&buf)
		}
	}
	if len(buf) > 0 {
		frag.parts = append(frag.parts, fragmentPart{text: string(buf)})
	}
	return frag
}

// Params returns the parameter names in order of appearance.
func (f Fragment) Params() []string {
	var out []string
	for _, p := range f.parts {
		if p.param != "" {
			out = append(out, p.param)
		}
	}
	return out
}

// Err reports a malformed fragment.
func (f Fragment) Err() error { return f.err }

// WriteSQL implements Term.
func (f Fragment) WriteSQL(w *Writer) {
	if f.err != nil {
		w.Fail(f.err)
		return
	}
	for _, p := range f.parts {
		w.WriteString(p.text)
		if p.param != "" {
			Param(p.param).WriteSQL(w)
		}
	}
}
