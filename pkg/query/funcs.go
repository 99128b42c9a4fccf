package query

// Function is a call such as count(*) or lower("name").
type Function struct {
	name  string
	args  []Term
	alias string
	err   error
}

// Func builds a function call. The name is written as given.
func Func(name string, args ...any) Function {
	ts := terms(args)
	return Function{name: name, args: ts, err: firstErr(ts)}
}

// As returns the call under an output alias.
func (f Function) As(alias string) Function {
	f.alias = alias
	return f
}

// Err returns the first error carried by an argument.
func (f Function) Err() error { return f.err }

// OutputName returns the alias.
func (f Function) OutputName() string { return f.alias }

// WriteSQL implements Term.
func (f Function) WriteSQL(w *Writer) {
	w.WriteString(f.name + "(")
	w.WriteList(f.args, ", ")
	w.WriteString(")")
	if f.alias != "" {
		w.WriteString(" AS ")
		w.WriteIdent(f.alias)
	}
}

// CastExpr renders CAST(x AS type).
type CastExpr struct {
	term Term
	typ  string
}

// Cast converts t to the SQL type typ.
func Cast(t any, typ string) CastExpr {
	return CastExpr{term: term(t), typ: typ}
}

// Err returns the operand's error.
func (c CastExpr) Err() error { return errOf(c.term) }

// WriteSQL implements Term.
func (c CastExpr) WriteSQL(w *Writer) {
	w.WriteString("CAST(")
	w.WriteTerm(c.term)
	w.WriteString(" AS " + c.typ + ")")
}

// TupleExpr renders (a, b, ...).
type TupleExpr struct {
	terms []Term
	err   error
}

// Tuple builds a row literal. At least one term is required.
func Tuple(vs ...any) TupleExpr {
	if len(vs) == 0 {
		return TupleExpr{err: newError(ErrEmptyTuple, "")}
	}
	ts := terms(vs)
	return TupleExpr{terms: ts, err: firstErr(ts)}
}

// Err reports an empty tuple or an invalid member.
func (t TupleExpr) Err() error { return t.err }

// WriteSQL implements Term.
func (t TupleExpr) WriteSQL(w *Writer) {
	if t.err != nil {
		w.Fail(t.err)
		return
	}
	w.WriteString("(")
	w.WriteList(t.terms, ", ")
	w.WriteString(")")
}

// AnyExpr renders ANY(a, ...).
type AnyExpr struct {
	terms []Term
	err   error
}

// Any builds ANY(...). At least one term is required.
func Any(vs ...any) AnyExpr {
	if len(vs) == 0 {
		return AnyExpr{err: newError(ErrEmptyAny, "")}
	}
	ts := terms(vs)
	return AnyExpr{terms: ts, err: firstErr(ts)}
}

// Err reports an empty list or an invalid member.
func (a AnyExpr) Err() error { return a.err }

// WriteSQL implements Term.
func (a AnyExpr) WriteSQL(w *Writer) {
	if a.err != nil {
		w.Fail(a.err)
		return
	}
	w.WriteString("ANY(")
	w.WriteList(a.terms, ", ")
	w.WriteString(")")
}

// AndList is a conjunction of conditions. An empty list is always true.
type AndList struct {
	terms []Term
}

// And conjoins conditions.
func And(vs ...any) AndList { return AndList{terms: terms(vs)} }

// Err returns the first member error.
func (a AndList) Err() error { return firstErr(a.terms) }

// WriteSQL implements Term.
func (a AndList) WriteSQL(w *Writer) {
	if len(a.terms) == 0 {
		w.WriteString("1 = 1")
		return
	}
	w.WriteList(a.terms, " AND ")
}

// OrList is a parenthesised disjunction. An empty list is always false.
type OrList struct {
	terms []Term
}

// Or disjoins conditions.
func Or(vs ...any) OrList { return OrList{terms: terms(vs)} }

// Err returns the first member error.
func (o OrList) Err() error { return firstErr(o.terms) }

// WriteSQL implements Term.
func (o OrList) WriteSQL(w *Writer) {
	if len(o.terms) == 0 {
		w.WriteString("1 = 0")
		return
	}
	w.WriteString("(")
	w.WriteList(o.terms, " OR ")
	w.WriteString(")")
}

// Descending marks an ORDER BY term as DESC.
type Descending struct {
	term Term
}

// Desc orders by t descending.
func Desc(t any) Descending { return Descending{term: term(t)} }

// Err returns the operand's error.
func (d Descending) Err() error { return errOf(d.term) }

// WriteSQL implements Term.
func (d Descending) WriteSQL(w *Writer) {
	w.WriteTerm(d.term)
	w.WriteString(" DESC")
}

// ExistsExpr renders EXISTS over a correlated select.
type ExistsExpr struct {
	sel *Select
}

// Exists builds EXISTS (sel).
func Exists(sel *Select) ExistsExpr { return ExistsExpr{sel: sel} }

// Err reports a missing select or the select's own error.
func (e ExistsExpr) Err() error {
	if e.sel == nil {
		return newError(ErrEmptyExists, "")
	}
	return e.sel.Err()
}

// WriteSQL implements Term.
func (e ExistsExpr) WriteSQL(w *Writer) {
	if e.sel == nil {
		w.Fail(newError(ErrEmptyExists, ""))
		return
	}
	w.WriteString("EXISTS (\n")
	e.sel.WriteSQL(w)
	w.WriteString("\n)")
}

// Raw is an escape hatch for SQL text written verbatim.
type Raw string

// WriteSQL implements Term.
func (r Raw) WriteSQL(w *Writer) { w.WriteString(string(r)) }
