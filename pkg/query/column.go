package query

// Column references a column, optionally qualified by its owning source.
type Column struct {
	name  string
	owner TableRef
	alias string
	err   error
}

// Col references an unqualified column.
func Col(name string) Column {
	return Column{name: name}
}

// ColOf references a column qualified by owner, which may be a table source
// or a raw identifier given as TableName.
func ColOf(owner TableParam, name string) Column {
	return Column{name: name, owner: owner.tableRef()}
}

// Star is the unqualified * column.
func Star() Column { return Col("*") }

// Name returns the column name.
func (c Column) Name() string { return c.name }

// OutputName returns the alias, or the name when unaliased.
func (c Column) OutputName() string {
	if c.alias != "" {
		return c.alias
	}
	if c.name == "*" {
		return ""
	}
	return c.name
}

// As returns the column under an output alias. Aliasing * is an error.
func (c Column) As(alias string) Column {
	if c.name == "*" && alias != "" {
		c.err = newError(ErrAliasOnStar, "alias %q", alias)
		return c
	}
	c.alias = alias
	return c
}

// Err reports an invalid alias.
func (c Column) Err() error { return c.err }

// WriteSQL implements Term.
func (c Column) WriteSQL(w *Writer) {
	if c.err != nil {
		w.Fail(c.err)
		return
	}
	owner, err := c.owner.Resolve()
	if err != nil {
		w.Fail(err)
		return
	}
	if owner != "" {
		w.WriteIdent(owner)
		w.WriteString(".")
	}
	if c.name == "*" {
		w.WriteString("*")
		return
	}
	w.WriteIdent(c.name)
	if c.alias != "" {
		w.WriteString(" AS ")
		w.WriteIdent(c.alias)
	}
}
