package query

import (
	"github.com/pthm/sqlast/pkg/dialect"
)

// Update builds an UPDATE statement. It refuses to compile without a WHERE
// condition.
type Update struct {
	binders

	dialect dialect.Dialect
	table   *Table
	sets    []assignment
	where   []Term
	err     error
}

type assignment struct {
	column string
	value  Term
}

// NewUpdate starts an update of table.
func NewUpdate(table TableParam, opts ...Option) *Update {
	o := buildOptions(opts)
	t, err := targetTable(table)
	return &Update{dialect: o.dialect, table: t, err: err}
}

func (b *Update) fail(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

// Dialect returns the dialect the statement compiles for.
func (b *Update) Dialect() dialect.Dialect { return b.dialect }

// Err returns the first error recorded by a builder call.
func (b *Update) Err() error { return b.err }

// Set assigns value to column. The column must be registered on the table
// when the table has a registry, and may only be set once.
func (b *Update) Set(column string, value any) *Update {
	if b.table == nil {
		return b
	}
	if len(b.table.columns) > 0 && !b.table.HasColumn(column) {
		b.fail(newError(ErrUnknownColumn, "%q on %q", column, b.table.name))
		return b
	}
	for _, a := range b.sets {
		if a.column == column {
			b.fail(newError(ErrColumnSetTwice, "%q", column))
			return b
		}
	}
	t := term(value)
	b.fail(errOf(t))
	b.sets = append(b.sets, assignment{column: column, value: t})
	return b
}

// Where appends conditions. Conditions are AND-combined.
func (b *Update) Where(conds ...any) *Update {
	ts := terms(conds)
	b.fail(firstErr(ts))
	b.where = append(b.where, ts...)
	return b
}

// Compile renders the statement for its dialect.
func (b *Update) Compile() (*Compiled, error) {
	return compile(b, b.dialect, &b.binders)
}

// WriteSQL implements Term.
func (b *Update) WriteSQL(w *Writer) {
	if b.err != nil {
		w.Fail(b.err)
		return
	}
	if len(b.sets) == 0 {
		w.Fail(newError(ErrNoAssignments, "update %q", b.table.name))
		return
	}
	if len(b.where) == 0 {
		w.Fail(newError(ErrMissingWhere, "update %q", b.table.name))
		return
	}
	b.binders.register(w)

	w.WriteString("UPDATE ")
	b.table.WriteSQL(w)
	w.WriteString(" SET\n")
	for i, a := range b.sets {
		if i > 0 {
			w.WriteString(",\n")
		}
		w.WriteIdent(a.column)
		w.WriteString(" = ")
		w.WriteTerm(a.value)
	}
	writeConditions(w, "\nWHERE\n", "\nAND ", b.where)
}
