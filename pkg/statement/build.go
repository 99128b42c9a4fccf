package statement

import (
	"github.com/pthm/sqlast/pkg/dialect"
	"github.com/pthm/sqlast/pkg/query"
)

type buildOptions struct {
	dialect dialect.Dialect
}

func (o buildOptions) option() query.Option { return query.WithDialect(o.dialect) }

// source converts a table spec. Subqueries register their parameters on ps
// so the enclosing statement binds them.
func (t TableSpec) source(ps paramSource, o buildOptions) (query.TableSource, error) {
	switch {
	case t.Subquery != nil:
		sel, err := selectFor(t.Subquery, ps, o)
		if err != nil {
			return nil, err
		}
		return query.NewSubQuery(sel, t.Alias), nil
	case t.Unnest != nil:
		arrays, err := termList(t.Unnest, ps, o)
		if err != nil {
			return nil, err
		}
		u := query.NewUnnest(anys(arrays), t.Alias, t.Columns...)
		return u, u.Err()
	case t.Name != "":
		tbl := query.NewTable(t.Name, t.Columns...)
		if t.Schema != "" {
			tbl = tbl.InSchema(t.Schema)
		}
		if t.Alias != "" {
			tbl = tbl.As(t.Alias)
		}
		return tbl, nil
	default:
		return nil, invalid("table has no name, subquery or unnest")
	}
}

// detachedParams collects keyed parameters met before the owning builder
// exists. Keyed parameters share one namespace per statement, so the
// placeholders stay valid once the builder takes over.
type detachedParams struct {
	dict query.ParameterDict
}

func (d *detachedParams) Params() *query.ParameterDict { return &d.dict }

func buildSelect(d *Document, o buildOptions) (query.Statement, error) {
	return selectFor(d, nil, o)
}

// selectFor builds a select. Nested selects pass the parameter source of the
// outermost statement so keyed parameters share one namespace.
func selectFor(d *Document, outer paramSource, o buildOptions) (*query.Select, error) {
	ps := outer
	if ps == nil {
		ps = &detachedParams{}
	}
	from, err := d.Table.source(ps, o)
	if err != nil {
		return nil, err
	}
	sel := query.NewSelect(from, o.option())
	if outer == nil {
		ps = sel
	}

	if d.Distinct {
		sel.Distinct()
	}
	cols, err := termList(d.Select, ps, o)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		sel.SelectAll()
	} else {
		sel.Select(anys(cols)...)
	}
	for _, j := range d.Joins {
		src, err := j.Table.source(ps, o)
		if err != nil {
			return nil, err
		}
		on, err := termList(j.On, ps, o)
		if err != nil {
			return nil, err
		}
		sel.JoinHow(j.How, src, anys(on)...)
	}
	if err := addTerms(d.Where, ps, o, func(ts ...any) { sel.Where(ts...) }); err != nil {
		return nil, err
	}
	if len(d.GroupBy) > 0 {
		ts, err := termList(d.GroupBy, ps, o)
		if err != nil {
			return nil, err
		}
		sel.GroupBy(anys(ts)...)
	}
	if err := addTerms(d.Having, ps, o, func(ts ...any) { sel.Having(ts...) }); err != nil {
		return nil, err
	}
	if len(d.OrderBy) > 0 {
		ts, err := termList(d.OrderBy, ps, o)
		if err != nil {
			return nil, err
		}
		sel.OrderBy(anys(ts)...)
	}
	if d.Limit != nil {
		sel.Limit(*d.Limit)
	}
	if d.Offset != nil {
		sel.Offset(*d.Offset)
	}
	return sel, sel.Err()
}

func addTerms(specs []ExprSpec, ps paramSource, o buildOptions, add func(...any)) error {
	if len(specs) == 0 {
		return nil
	}
	ts, err := termList(specs, ps, o)
	if err != nil {
		return err
	}
	add(anys(ts)...)
	return nil
}

func buildInsert(d *Document, o buildOptions) (query.Statement, error) {
	target, err := targetOf(d.Table)
	if err != nil {
		return nil, err
	}
	ins := query.NewInsert(target, o.option())
	if len(d.Columns) > 0 {
		ins.Columns(d.Columns...)
	} else {
		ins.SetColumnsFromTable()
	}
	for _, row := range d.Rows {
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = cell(v, ins)
		}
		ins.Values(vals...)
	}
	for _, row := range d.NamedRows {
		r := make(query.Row, len(row))
		for k, v := range row {
			r[k] = cell(v, ins)
		}
		ins.Values(r)
	}
	if len(d.Returning) > 0 {
		ts, err := termList(d.Returning, ins, o)
		if err != nil {
			return nil, err
		}
		ins.Returning(anys(ts)...)
	}
	return ins, nil
}

// cell converts one insert value. A map of the form {param: key} becomes a
// keyed placeholder.
func cell(v any, ps paramSource) any {
	if m, ok := v.(map[string]any); ok {
		if key, ok := m["param"].(string); ok && len(m) == 1 {
			return ps.Params().Add(key)
		}
	}
	return v
}

func buildUpdate(d *Document, o buildOptions) (query.Statement, error) {
	target, err := targetOf(d.Table)
	if err != nil {
		return nil, err
	}
	upd := query.NewUpdate(target, o.option())
	for _, s := range d.Set {
		switch {
		case s.Expr != nil:
			t, err := s.Expr.Term(upd, o)
			if err != nil {
				return nil, err
			}
			upd.Set(s.Column, t)
		case s.Param != "":
			upd.Set(s.Column, upd.Params().Add(s.Param))
		case s.Null:
			upd.Set(s.Column, query.Null())
		default:
			upd.Set(s.Column, s.Value)
		}
	}
	if err := addTerms(d.Where, upd, o, func(ts ...any) { upd.Where(ts...) }); err != nil {
		return nil, err
	}
	return upd, nil
}

func buildDelete(d *Document, o buildOptions) (query.Statement, error) {
	target, err := targetOf(d.Table)
	if err != nil {
		return nil, err
	}
	del := query.NewDelete(target, o.option())
	if err := addTerms(d.Where, del, o, func(ts ...any) { del.Where(ts...) }); err != nil {
		return nil, err
	}
	return del, nil
}

// targetOf converts the target of a data-modifying statement. Subquery and
// unnest targets are passed through so the builder reports them.
func targetOf(t TableSpec) (query.TableParam, error) {
	return t.source(&detachedParams{}, buildOptions{})
}
