package query

import (
	"slices"
	"strings"

	"github.com/pthm/sqlast/pkg/dialect"
)

// Row supplies one row of insert values by column name.
type Row map[string]any

// Insert builds an INSERT statement. Each Values call adds one row.
type Insert struct {
	binders

	dialect   dialect.Dialect
	table     *Table
	columns   []string
	rows      []insertRow
	returning []Term
	err       error
}

// insertRow holds either positional values or values keyed by column.
// Keyed rows are matched to the column list when the statement renders.
type insertRow struct {
	values []Term
	named  map[string]Term
}

// resolve returns the row in column order.
func (r insertRow) resolve(columns []string) ([]Term, error) {
	if r.named == nil {
		if len(r.values) != len(columns) {
			return nil, newError(ErrColumnCount, "got %d values for %d columns", len(r.values), len(columns))
		}
		return r.values, nil
	}
	if err := checkKeys(r.named, columns); err != nil {
		return nil, err
	}
	out := make([]Term, len(columns))
	for i, c := range columns {
		out[i] = r.named[c]
	}
	return out, nil
}

func checkKeys[V any](row map[string]V, columns []string) error {
	var missing, unexpected []string
	for _, c := range columns {
		if _, ok := row[c]; !ok {
			missing = append(missing, c)
		}
	}
	for k := range row {
		if !slices.Contains(columns, k) {
			unexpected = append(unexpected, k)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		slices.Sort(unexpected)
		return newError(ErrKeySetMismatch, "missing [%s], unexpected [%s]",
			strings.Join(missing, ", "), strings.Join(unexpected, ", "))
	}
	return nil
}

// NewInsert starts an insert into table.
func NewInsert(table TableParam, opts ...Option) *Insert {
	o := buildOptions(opts)
	t, err := targetTable(table)
	return &Insert{dialect: o.dialect, table: t, err: err}
}

func (b *Insert) fail(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

// Dialect returns the dialect the statement compiles for.
func (b *Insert) Dialect() dialect.Dialect { return b.dialect }

// Err returns the first error recorded by a builder call.
func (b *Insert) Err() error { return b.err }

// SetColumnsFromTable uses the table's column registry as the column list.
func (b *Insert) SetColumnsFromTable() *Insert {
	if b.table == nil {
		return b
	}
	if len(b.table.columns) == 0 {
		b.fail(newError(ErrNoColumns, "insert into %q", b.table.name))
		return b
	}
	b.columns = b.table.ColumnNames()
	return b
}

// Columns sets the column list.
func (b *Insert) Columns(names ...string) *Insert {
	b.columns = slices.Clone(names)
	return b
}

// Values appends a row. The arguments are either one value per column, in
// column order, or a single Row keyed by column name.
func (b *Insert) Values(args ...any) *Insert {
	if len(args) == 1 {
		if r, ok := args[0].(Row); ok {
			return b.namedValues(r)
		}
	}
	for _, a := range args {
		if _, ok := a.(Row); ok {
			b.fail(newError(ErrMixedValues, ""))
			return b
		}
	}
	if len(args) != len(b.columns) {
		b.fail(newError(ErrColumnCount, "got %d values for %d columns", len(args), len(b.columns)))
		return b
	}
	row := terms(args)
	b.fail(firstErr(row))
	b.rows = append(b.rows, insertRow{values: row})
	return b
}

func (b *Insert) namedValues(r Row) *Insert {
	if err := checkKeys(r, b.columns); err != nil {
		b.fail(err)
		return b
	}
	row := make(map[string]Term, len(r))
	for _, c := range b.columns {
		t := term(r[c])
		b.fail(errOf(t))
		row[c] = t
	}
	b.rows = append(b.rows, insertRow{named: row})
	return b
}

// Returning sets a RETURNING list.
func (b *Insert) Returning(vs ...any) *Insert {
	ts := terms(vs)
	b.fail(firstErr(ts))
	b.returning = ts
	return b
}

// HasReturning reports whether the statement produces rows.
func (b *Insert) HasReturning() bool { return len(b.returning) > 0 }

// Compile renders the statement for its dialect.
func (b *Insert) Compile() (*Compiled, error) {
	return compile(b, b.dialect, &b.binders)
}

// WriteSQL implements Term.
func (b *Insert) WriteSQL(w *Writer) {
	if b.err != nil {
		w.Fail(b.err)
		return
	}
	if len(b.columns) == 0 {
		w.Fail(newError(ErrNoColumns, "insert into %q", b.table.name))
		return
	}
	if len(b.rows) == 0 {
		w.Fail(newError(ErrNoValues, "insert into %q", b.table.name))
		return
	}
	rows := make([][]Term, len(b.rows))
	for i, r := range b.rows {
		row, err := r.resolve(b.columns)
		if err != nil {
			w.Fail(err)
			return
		}
		rows[i] = row
	}
	b.binders.register(w)

	w.WriteString("INSERT INTO ")
	b.table.writeName(w)
	w.WriteString(" (")
	for i, c := range b.columns {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteIdent(c)
	}
	w.WriteString(")\nVALUES ")
	for i, row := range rows {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString("(")
		w.WriteList(row, ", ")
		w.WriteString(")")
	}
	if len(b.returning) > 0 {
		w.WriteString("\nRETURNING ")
		w.WriteList(b.returning, ", ")
	}
}

// targetTable resolves the table a data-modifying statement writes to.
func targetTable(p TableParam) (*Table, error) {
	src := resolveTable(p)
	t, ok := src.(*Table)
	if !ok {
		return nil, newError(ErrInvalidTarget, "%T", src)
	}
	return t, nil
}
