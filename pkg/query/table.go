package query

import (
	"slices"
)

// TableSource is anything usable in a FROM or JOIN position.
type TableSource interface {
	Term
	TableParam
	// Identifier is the name other clauses use to reference the source:
	// its alias, else its name.
	Identifier() (string, error)
	// Columns returns the source's column registry, owned by the source.
	Columns() []Column
}

// TableParam is the set of things a builder or column accepts as a table:
// a TableSource, a TableName, or a TableRef.
type TableParam interface {
	tableRef() TableRef
}

// TableName names a table by raw identifier.
type TableName string

func (n TableName) tableRef() TableRef { return TableRef{name: string(n)} }

// TableRef is a resolved TableParam: either a source or a raw identifier.
type TableRef struct {
	source TableSource
	name   string
}

func (r TableRef) tableRef() TableRef { return r }

// Source returns the referenced source, building a registry-less Table when
// the reference is a raw identifier.
func (r TableRef) Source() TableSource {
	if r.source != nil {
		return r.source
	}
	return NewTable(r.name)
}

// Resolve returns the identifier used to qualify columns. The zero TableRef
// resolves to the empty string.
func (r TableRef) Resolve() (string, error) {
	if r.source != nil {
		return r.source.Identifier()
	}
	return r.name, nil
}

// Table is a named table with an optional schema, alias and column registry.
type Table struct {
	name    string
	schema  string
	alias   string
	columns []string
}

// NewTable creates a table with the given registered columns.
func NewTable(name string, columns ...string) *Table {
	return &Table{name: name, columns: slices.Clone(columns)}
}

// InSchema returns a copy qualified by schema.
func (t *Table) InSchema(schema string) *Table {
	c := t.clone()
	c.schema = schema
	return c
}

// As returns a copy of the table under alias, sharing no state with t.
func (t *Table) As(alias string) *Table {
	c := t.clone()
	c.alias = alias
	return c
}

func (t *Table) clone() *Table {
	c := *t
	c.columns = slices.Clone(t.columns)
	return &c
}

// AddColumns extends the column registry.
func (t *Table) AddColumns(names ...string) *Table {
	t.columns = append(t.columns, names...)
	return t
}

// Name returns the unqualified table name.
func (t *Table) Name() string { return t.name }

// ColumnNames returns the registered column names.
func (t *Table) ColumnNames() []string { return slices.Clone(t.columns) }

// HasColumn reports whether name is registered.
func (t *Table) HasColumn(name string) bool { return slices.Contains(t.columns, name) }

// Col references a column of this table.
func (t *Table) Col(name string) Column { return ColOf(t, name) }

// Star references every column of this table.
func (t *Table) Star() Column { return ColOf(t, "*") }

// Identifier implements TableSource.
func (t *Table) Identifier() (string, error) {
	if t.alias != "" {
		return t.alias, nil
	}
	return t.name, nil
}

// Columns implements TableSource.
func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.columns))
	for i, name := range t.columns {
		cols[i] = t.Col(name)
	}
	return cols
}

func (t *Table) tableRef() TableRef { return TableRef{source: t} }

// WriteSQL implements Term.
func (t *Table) WriteSQL(w *Writer) {
	t.writeName(w)
	if t.alias != "" {
		w.WriteString(" ")
		w.WriteIdent(t.alias)
	}
}

func (t *Table) writeName(w *Writer) {
	if t.schema != "" {
		w.WriteIdent(t.schema)
		w.WriteString(".")
	}
	w.WriteIdent(t.name)
}

// SubQuery is a parenthesised select used as a source.
type SubQuery struct {
	sel   *Select
	alias string
}

// NewSubQuery wraps sel. Without an alias the subquery cannot be referenced.
func NewSubQuery(sel *Select, alias string) *SubQuery {
	return &SubQuery{sel: sel, alias: alias}
}

// Identifier implements TableSource.
func (s *SubQuery) Identifier() (string, error) {
	if s.alias == "" {
		return "", newError(ErrUnaliasedSource, "subquery")
	}
	return s.alias, nil
}

// Columns returns the output columns of the inner select list.
func (s *SubQuery) Columns() []Column {
	if s.sel == nil {
		return nil
	}
	var cols []Column
	for _, t := range s.sel.columns {
		if n, ok := t.(interface{ OutputName() string }); ok && n.OutputName() != "" {
			cols = append(cols, ColOf(s, n.OutputName()))
		}
	}
	return cols
}

// Col references an output column of the subquery.
func (s *SubQuery) Col(name string) Column { return ColOf(s, name) }

// Err returns the inner select's error.
func (s *SubQuery) Err() error {
	if s.sel == nil {
		return newError(ErrEmptySelect, "subquery has no select")
	}
	return s.sel.Err()
}

func (s *SubQuery) tableRef() TableRef { return TableRef{source: s} }

// WriteSQL implements Term.
func (s *SubQuery) WriteSQL(w *Writer) {
	if s.sel == nil {
		w.Fail(s.Err())
		return
	}
	w.WriteString("(\n")
	s.sel.WriteSQL(w)
	w.WriteString("\n)")
	if s.alias != "" {
		w.WriteString(" ")
		w.WriteIdent(s.alias)
	}
}

// Unnest expands arrays into rows: UNNEST(a, b) AS "alias"("c1", "c2").
type Unnest struct {
	arrays  []Term
	alias   string
	columns []string
	err     error
}

// NewUnnest builds an UNNEST source. Column names need an alias and must
// match the number of arrays.
func NewUnnest(arrays []any, alias string, columns ...string) *Unnest {
	u := &Unnest{arrays: terms(arrays), alias: alias, columns: slices.Clone(columns)}
	switch {
	case len(columns) > 0 && alias == "":
		u.err = newError(ErrUnnestColumns, "column names given without alias")
	case len(columns) > 0 && len(columns) != len(arrays):
		u.err = newError(ErrUnnestColumns, "%d column names for %d arrays", len(columns), len(arrays))
	default:
		u.err = firstErr(u.arrays)
	}
	return u
}

// Identifier implements TableSource.
func (u *Unnest) Identifier() (string, error) {
	if u.alias == "" {
		return "", newError(ErrUnaliasedSource, "unnest")
	}
	return u.alias, nil
}

// Columns implements TableSource.
func (u *Unnest) Columns() []Column {
	cols := make([]Column, len(u.columns))
	for i, name := range u.columns {
		cols[i] = ColOf(u, name)
	}
	return cols
}

// Col references a column of the unnested rows.
func (u *Unnest) Col(name string) Column { return ColOf(u, name) }

// Err reports an invalid column list.
func (u *Unnest) Err() error { return u.err }

func (u *Unnest) tableRef() TableRef { return TableRef{source: u} }

// WriteSQL implements Term.
func (u *Unnest) WriteSQL(w *Writer) {
	if u.err != nil {
		w.Fail(u.err)
		return
	}
	w.WriteString("UNNEST(")
	w.WriteList(u.arrays, ", ")
	w.WriteString(")")
	if u.alias == "" {
		return
	}
	w.WriteString(" AS ")
	w.WriteIdent(u.alias)
	if len(u.columns) > 0 {
		w.WriteString("(")
		for i, c := range u.columns {
			if i > 0 {
				w.WriteString(", ")
			}
			w.WriteIdent(c)
		}
		w.WriteString(")")
	}
}

// resolveTable turns a TableParam into the source a builder works on.
func resolveTable(p TableParam) TableSource {
	if p == nil {
		return nil
	}
	return p.tableRef().Source()
}
