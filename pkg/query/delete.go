package query

import (
	"github.com/pthm/sqlast/pkg/dialect"
)

// Delete builds a DELETE statement. Like Update it requires a WHERE
// condition.
type Delete struct {
	binders

	dialect dialect.Dialect
	table   *Table
	where   []Term
	err     error
}

// NewDelete starts a delete from table.
func NewDelete(table TableParam, opts ...Option) *Delete {
	o := buildOptions(opts)
	t, err := targetTable(table)
	return &Delete{dialect: o.dialect, table: t, err: err}
}

// Dialect returns the dialect the statement compiles for.
func (b *Delete) Dialect() dialect.Dialect { return b.dialect }

// Err returns the first error recorded by a builder call.
func (b *Delete) Err() error { return b.err }

// Where appends conditions. Conditions are AND-combined.
func (b *Delete) Where(conds ...any) *Delete {
	ts := terms(conds)
	if err := firstErr(ts); err != nil && b.err == nil {
		b.err = err
	}
	b.where = append(b.where, ts...)
	return b
}

// Compile renders the statement for its dialect.
func (b *Delete) Compile() (*Compiled, error) {
	return compile(b, b.dialect, &b.binders)
}

// WriteSQL implements Term.
func (b *Delete) WriteSQL(w *Writer) {
	if b.err != nil {
		w.Fail(b.err)
		return
	}
	if len(b.where) == 0 {
		w.Fail(newError(ErrMissingWhere, "delete from %q", b.table.name))
		return
	}
	b.binders.register(w)

	w.WriteString("DELETE FROM ")
	b.table.WriteSQL(w)
	writeConditions(w, "\nWHERE\n", "\nAND ", b.where)
}
