package query

// Expression combines an optional left operand, an operator and a right
// operand. Expressions are values; every combinator returns a new one.
type Expression struct {
	left  Term
	op    string
	right Term
	alias string
	paren bool
	err   error
}

func binary(l any, op string, r any, paren bool) Expression {
	lt, rt := term(l), term(r)
	return Expression{left: lt, op: op, right: rt, paren: paren, err: firstErr([]Term{lt, rt})}
}

// Eq builds l = r.
func Eq(l, r any) Expression { return binary(l, "=", r, false) }

// Ne builds l <> r.
func Ne(l, r any) Expression { return binary(l, "<>", r, false) }

// Lt builds l < r.
func Lt(l, r any) Expression { return binary(l, "<", r, false) }

// Lte builds l <= r.
func Lte(l, r any) Expression { return binary(l, "<=", r, false) }

// Gt builds l > r.
func Gt(l, r any) Expression { return binary(l, ">", r, false) }

// Gte builds l >= r.
func Gte(l, r any) Expression { return binary(l, ">=", r, false) }

// Add builds l + r.
func Add(l, r any) Expression { return binary(l, "+", r, false) }

// Like builds l LIKE r.
func Like(l, r any) Expression { return binary(l, "LIKE", r, false) }

// In builds l IN r, where r is normally a Tuple.
func In(l, r any) Expression { return binary(l, "IN", r, false) }

// Not builds NOT t.
func Not(t any) Expression {
	rt := term(t)
	return Expression{op: "NOT", right: rt, err: errOf(rt)}
}

// Eq builds e = v.
func (e Expression) Eq(v any) Expression { return Eq(e, v) }

// Ne builds e <> v.
func (e Expression) Ne(v any) Expression { return Ne(e, v) }

// Lt builds e < v.
func (e Expression) Lt(v any) Expression { return Lt(e, v) }

// Lte builds e <= v.
func (e Expression) Lte(v any) Expression { return Lte(e, v) }

// Gt builds e > v.
func (e Expression) Gt(v any) Expression { return Gt(e, v) }

// Gte builds e >= v.
func (e Expression) Gte(v any) Expression { return Gte(e, v) }

// Add builds e + v.
func (e Expression) Add(v any) Expression { return Add(e, v) }

// Like builds e LIKE v.
func (e Expression) Like(v any) Expression { return Like(e, v) }

// And builds e AND v.
func (e Expression) And(v any) Expression { return binary(e, "AND", v, false) }

// Or builds (e OR v).
func (e Expression) Or(v any) Expression { return binary(e, "OR", v, true) }

// Not builds NOT e.
func (e Expression) Not() Expression { return Not(e) }

// As returns the expression parenthesised under an output alias.
func (e Expression) As(alias string) Expression {
	e.alias = alias
	e.paren = true
	return e
}

// Err returns the first error carried by an operand.
func (e Expression) Err() error { return e.err }

// OutputName returns the alias.
func (e Expression) OutputName() string { return e.alias }

// WriteSQL implements Term.
func (e Expression) WriteSQL(w *Writer) {
	if e.paren {
		w.WriteString("(")
	}
	if e.left == nil {
		w.WriteString(e.op + " ")
		if compound(e.right) {
			w.WriteString("(")
			w.WriteTerm(e.right)
			w.WriteString(")")
		} else {
			w.WriteTerm(e.right)
		}
	} else {
		w.WriteTerm(e.left)
		w.WriteString(" " + e.op + " ")
		w.WriteTerm(e.right)
	}
	if e.paren {
		w.WriteString(")")
	}
	if e.alias != "" {
		w.WriteString(" AS ")
		w.WriteIdent(e.alias)
	}
}

// compound reports whether t needs parentheses under a prefix operator.
func compound(t Term) bool {
	switch x := t.(type) {
	case Expression:
		return !x.paren && x.left != nil
	case AndList:
		return len(x.terms) > 1
	}
	return false
}

// Eq builds c = v.
func (c Column) Eq(v any) Expression { return Eq(c, v) }

// Ne builds c <> v.
func (c Column) Ne(v any) Expression { return Ne(c, v) }

// Lt builds c < v.
func (c Column) Lt(v any) Expression { return Lt(c, v) }

// Lte builds c <= v.
func (c Column) Lte(v any) Expression { return Lte(c, v) }

// Gt builds c > v.
func (c Column) Gt(v any) Expression { return Gt(c, v) }

// Gte builds c >= v.
func (c Column) Gte(v any) Expression { return Gte(c, v) }

// Add builds c + v.
func (c Column) Add(v any) Expression { return Add(c, v) }

// Like builds c LIKE v.
func (c Column) Like(v any) Expression { return Like(c, v) }

// In builds c IN v.
func (c Column) In(v any) Expression { return In(c, v) }

// And builds c AND v.
func (c Column) And(v any) Expression { return binary(c, "AND", v, false) }

// Or builds (c OR v).
func (c Column) Or(v any) Expression { return binary(c, "OR", v, true) }

// Not builds NOT c.
func (c Column) Not() Expression { return Not(c) }

// Desc orders by c descending.
func (c Column) Desc() Descending { return Desc(c) }

// Eq builds f = v.
func (f Function) Eq(v any) Expression { return Eq(f, v) }

// Ne builds f <> v.
func (f Function) Ne(v any) Expression { return Ne(f, v) }

// Lt builds f < v.
func (f Function) Lt(v any) Expression { return Lt(f, v) }

// Lte builds f <= v.
func (f Function) Lte(v any) Expression { return Lte(f, v) }

// Gt builds f > v.
func (f Function) Gt(v any) Expression { return Gt(f, v) }

// Gte builds f >= v.
func (f Function) Gte(v any) Expression { return Gte(f, v) }

// Add builds f + v.
func (f Function) Add(v any) Expression { return Add(f, v) }
