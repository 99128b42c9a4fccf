package query

import (
	"github.com/pthm/sqlast/pkg/dialect"
)

// Option configures a statement builder.
type Option func(*options)

type options struct {
	dialect dialect.Dialect
}

// WithDialect selects the dialect the statement compiles for. The default
// is dialect.Postgres.
func WithDialect(d dialect.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Select builds a SELECT statement. The FROM source is fixed at construction;
// the select list and WHERE and HAVING conditions accumulate, GROUP BY may be
// set once, and ORDER BY, LIMIT and OFFSET keep the last value given.
type Select struct {
	binders

	dialect  dialect.Dialect
	from     TableSource
	distinct bool
	columns  []Term
	joins    []join
	where    []Term
	groupBy  []Term
	grouped  bool
	having   []Term
	orderBy  []Term
	limit    int
	offset   int
	err      error
}

type join struct {
	how    string
	source TableSource
	ident  string
	on     []Term
}

// NewSelect starts a select from the given source.
func NewSelect(from TableParam, opts ...Option) *Select {
	o := buildOptions(opts)
	s := &Select{dialect: o.dialect, from: resolveTable(from), limit: -1, offset: -1}
	if s.from == nil {
		s.fail(newError(ErrInvalidTarget, "select has no FROM source"))
	} else {
		s.fail(errOf(s.from))
	}
	return s
}

func (s *Select) fail(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// Dialect returns the dialect the statement compiles for.
func (s *Select) Dialect() dialect.Dialect { return s.dialect }

// Err returns the first error recorded by a builder call.
func (s *Select) Err() error { return s.err }

// Distinct makes the statement SELECT DISTINCT.
func (s *Select) Distinct() *Select {
	s.distinct = true
	return s
}

// SelectAll appends * to the select list.
func (s *Select) SelectAll() *Select {
	s.columns = append(s.columns, Star())
	return s
}

// Select appends terms to the select list.
func (s *Select) Select(vs ...any) *Select {
	ts := terms(vs)
	s.fail(firstErr(ts))
	s.columns = append(s.columns, ts...)
	return s
}

// SelectMainColumns appends every registered column of the FROM source.
func (s *Select) SelectMainColumns() *Select {
	if s.from == nil {
		return s
	}
	cols := s.from.Columns()
	if len(cols) == 0 {
		s.fail(newError(ErrNoColumns, "select from %s", sourceName(s.from)))
		return s
	}
	for _, c := range cols {
		s.columns = append(s.columns, c)
	}
	return s
}

// Join adds an inner join. The ON conditions are combined with AND.
func (s *Select) Join(table TableParam, on ...any) *Select {
	return s.JoinHow("", table, on...)
}

// LeftJoin adds a LEFT join.
func (s *Select) LeftJoin(table TableParam, on ...any) *Select {
	return s.JoinHow("LEFT", table, on...)
}

// JoinHow adds a join of the given kind, e.g. "LEFT", "FULL" or "CROSS".
// Joining a source whose identifier is already in the statement fails.
func (s *Select) JoinHow(how string, table TableParam, on ...any) *Select {
	src := resolveTable(table)
	if src == nil {
		s.fail(newError(ErrInvalidTarget, "join has no source"))
		return s
	}
	ident, err := src.Identifier()
	if err != nil {
		s.fail(err)
		return s
	}
	if s.from != nil {
		if fromIdent, err := s.from.Identifier(); err == nil && fromIdent == ident {
			s.fail(newError(ErrDuplicateJoin, "%q", ident))
			return s
		}
	}
	for _, j := range s.joins {
		if j.ident == ident {
			s.fail(newError(ErrDuplicateJoin, "%q", ident))
			return s
		}
	}
	ts := terms(on)
	s.fail(errOf(src))
	s.fail(firstErr(ts))
	s.joins = append(s.joins, join{how: how, source: src, ident: ident, on: ts})
	return s
}

// Where appends conditions. Conditions are AND-combined.
func (s *Select) Where(conds ...any) *Select {
	ts := terms(conds)
	s.fail(firstErr(ts))
	s.where = append(s.where, ts...)
	return s
}

// GroupBy sets the GROUP BY list. It may only be called once.
func (s *Select) GroupBy(vs ...any) *Select {
	if s.grouped {
		s.fail(newError(ErrGroupByTwice, ""))
		return s
	}
	ts := terms(vs)
	s.fail(firstErr(ts))
	s.grouped = true
	s.groupBy = ts
	return s
}

// Having appends HAVING conditions. GROUP BY must already be set.
func (s *Select) Having(conds ...any) *Select {
	if len(s.groupBy) == 0 {
		s.fail(newError(ErrHavingWithoutGroupBy, ""))
	}
	ts := terms(conds)
	s.fail(firstErr(ts))
	s.having = append(s.having, ts...)
	return s
}

// OrderBy replaces the ORDER BY list.
func (s *Select) OrderBy(vs ...any) *Select {
	ts := terms(vs)
	s.fail(firstErr(ts))
	s.orderBy = ts
	return s
}

// Limit sets the row limit. A negative n removes it.
func (s *Select) Limit(n int) *Select {
	s.limit = n
	return s
}

// Offset sets the number of rows to skip. A negative n removes it.
func (s *Select) Offset(n int) *Select {
	s.offset = n
	return s
}

// Compile renders the statement for its dialect.
func (s *Select) Compile() (*Compiled, error) {
	return compile(s, s.dialect, &s.binders)
}

// WriteSQL implements Term. Nested selects render in the dialect of the
// enclosing statement.
func (s *Select) WriteSQL(w *Writer) {
	if s.err != nil {
		w.Fail(s.err)
		return
	}
	if len(s.columns) == 0 {
		w.Fail(newError(ErrEmptySelect, "select from %s", sourceName(s.from)))
		return
	}
	if len(s.having) > 0 && len(s.groupBy) == 0 {
		w.Fail(newError(ErrHavingWithoutGroupBy, ""))
		return
	}
	s.binders.register(w)

	w.WriteString("SELECT ")
	if s.distinct {
		w.WriteString("DISTINCT ")
	}
	w.WriteList(s.columns, ", ")
	w.WriteString("\nFROM ")
	s.from.WriteSQL(w)

	for _, j := range s.joins {
		w.WriteString("\n")
		if j.how != "" {
			w.WriteString(j.how + " ")
		}
		w.WriteString("JOIN ")
		j.source.WriteSQL(w)
		if len(j.on) > 0 {
			w.WriteString(" ON ")
			And(conditions(j.on)...).WriteSQL(w)
		}
	}
	writeConditions(w, "\nWHERE ", " AND ", s.where)
	if len(s.groupBy) > 0 {
		w.WriteString("\nGROUP BY ")
		w.WriteList(s.groupBy, ", ")
	}
	writeConditions(w, "\nHAVING ", " AND ", s.having)
	page := w.Dialect().Pagination(s.limit, s.offset)
	switch {
	case len(s.orderBy) > 0:
		w.WriteString("\nORDER BY ")
		w.WriteList(s.orderBy, ", ")
	case len(page) > 0 && w.Dialect() == dialect.SQLServer:
		// OFFSET/FETCH is part of ORDER BY on SQL Server.
		w.WriteString("\nORDER BY (SELECT NULL)")
	}
	for _, line := range page {
		w.WriteString("\n" + line)
	}
}

// writeConditions renders each condition in its own parentheses.
func writeConditions(w *Writer, prefix, sep string, conds []Term) {
	if len(conds) == 0 {
		return
	}
	w.WriteString(prefix)
	for i, c := range conds {
		if i > 0 {
			w.WriteString(sep)
		}
		w.writeCondition(c)
	}
}

func sourceName(src TableSource) string {
	if src == nil {
		return "<none>"
	}
	ident, err := src.Identifier()
	if err != nil {
		return "<unaliased>"
	}
	return `"` + ident + `"`
}
