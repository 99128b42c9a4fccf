package statement

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/pthm/sqlast/pkg/query"
)

// ExprSpec is one expression node. The populated field decides the node:
//
//	{col: users.id}                       column, optionally owner-qualified
//	{value: 18} / {null: true}            literal
//	{param: name}                         keyed placeholder
//	{func: count, args: [{col: "*"}]}     function call
//	{cast: {col: id}, type: text}         CAST
//	{op: "=", left: {...}, right: {...}}  binary operator
//	{col: age, op: ">", value: 18}        shorthand with the column on the left
//	{and: [...]} / {or: [...]} / {not: {...}}
//	{tuple: [...]} / {any: [...]}
//	{exists: {kind: select, ...}}
//	{raw: "now()"} / {sql: "age > :min"}
//
// alias and desc apply to any node.
type ExprSpec struct {
	Col    string     `json:"col,omitempty"`
	Value  any        `json:"value,omitempty"`
	Null   bool       `json:"null,omitempty"`
	Param  string     `json:"param,omitempty"`
	Func   string     `json:"func,omitempty"`
	Args   []ExprSpec `json:"args,omitempty"`
	Cast   *ExprSpec  `json:"cast,omitempty"`
	Type   string     `json:"type,omitempty"`
	Op     string     `json:"op,omitempty"`
	Left   *ExprSpec  `json:"left,omitempty"`
	Right  *ExprSpec  `json:"right,omitempty"`
	And    []ExprSpec `json:"and,omitempty"`
	Or     []ExprSpec `json:"or,omitempty"`
	Not    *ExprSpec  `json:"not,omitempty"`
	Tuple  []ExprSpec `json:"tuple,omitempty"`
	Any    []ExprSpec `json:"any,omitempty"`
	Exists *Document  `json:"exists,omitempty"`
	Raw    string     `json:"raw,omitempty"`
	SQL    string     `json:"sql,omitempty"`
	Alias  string     `json:"alias,omitempty"`
	Desc   bool       `json:"desc,omitempty"`
}

// paramSource is satisfied by every query builder.
type paramSource interface {
	Params() *query.ParameterDict
}

type binaryOp func(l, r any) query.Expression

var operators = map[string]binaryOp{
	"=":    query.Eq,
	"eq":   query.Eq,
	"<>":   query.Ne,
	"!=":   query.Ne,
	"ne":   query.Ne,
	"<":    query.Lt,
	"lt":   query.Lt,
	"<=":   query.Lte,
	"lte":  query.Lte,
	">":    query.Gt,
	"gt":   query.Gt,
	">=":   query.Gte,
	"gte":  query.Gte,
	"+":    query.Add,
	"add":  query.Add,
	"like": query.Like,
	"in":   query.In,
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDocument, fmt.Sprintf(format, args...))
}

// Term converts the node into a query term. Keyed parameters are added to
// ps.
func (e ExprSpec) Term(ps paramSource, o buildOptions) (query.Term, error) {
	t, err := e.term(ps, o)
	if err != nil {
		return nil, err
	}
	if e.Desc {
		return query.Desc(t), nil
	}
	return t, nil
}

func (e ExprSpec) term(ps paramSource, o buildOptions) (query.Term, error) {
	switch {
	case e.Op != "":
		return e.binary(ps, o)
	case e.Col != "":
		c := column(e.Col)
		if e.Alias != "" {
			c = c.As(e.Alias)
		}
		return c, c.Err()
	case e.Null:
		return query.Null().As(e.Alias), nil
	case e.Value != nil:
		v := query.Val(normalizeValue(e.Value)).As(e.Alias)
		return v, v.Err()
	case e.Param != "":
		return ps.Params().Add(e.Param), nil
	case e.Func != "":
		args, err := termList(e.Args, ps, o)
		if err != nil {
			return nil, err
		}
		return query.Func(e.Func, anys(args)...).As(e.Alias), nil
	case e.Cast != nil:
		if e.Type == "" {
			return nil, invalid("cast needs a type")
		}
		t, err := e.Cast.Term(ps, o)
		if err != nil {
			return nil, err
		}
		return query.Cast(t, e.Type), nil
	case e.And != nil:
		ts, err := termList(e.And, ps, o)
		return query.And(anys(ts)...), err
	case e.Or != nil:
		ts, err := termList(e.Or, ps, o)
		return query.Or(anys(ts)...), err
	case e.Not != nil:
		t, err := e.Not.Term(ps, o)
		if err != nil {
			return nil, err
		}
		return query.Not(t), nil
	case e.Tuple != nil:
		ts, err := termList(e.Tuple, ps, o)
		if err != nil {
			return nil, err
		}
		t := query.Tuple(anys(ts)...)
		return t, t.Err()
	case e.Any != nil:
		ts, err := termList(e.Any, ps, o)
		if err != nil {
			return nil, err
		}
		t := query.Any(anys(ts)...)
		return t, t.Err()
	case e.Exists != nil:
		sel, err := selectFor(e.Exists, ps, o)
		if err != nil {
			return nil, err
		}
		return query.Exists(sel), nil
	case e.Raw != "":
		return query.Raw(e.Raw), nil
	case e.SQL != "":
		f := query.SQL(e.SQL)
		return f, f.Err()
	default:
		return nil, invalid("empty expression")
	}
}

func (e ExprSpec) binary(ps paramSource, o buildOptions) (query.Term, error) {
	op := strings.ToLower(e.Op)
	var (
		left, right query.Term
		err         error
	)
	switch {
	case e.Left != nil:
		if left, err = e.Left.Term(ps, o); err != nil {
			return nil, err
		}
	case e.Col != "":
		left = column(e.Col)
	case op == "not":
	default:
		return nil, invalid("operator %q has no left operand", e.Op)
	}
	switch {
	case e.Right != nil:
		right, err = e.Right.Term(ps, o)
	case e.Param != "":
		right = ps.Params().Add(e.Param)
	case e.Null:
		right = query.Null()
	case e.Value != nil:
		v := query.Val(normalizeValue(e.Value))
		right, err = v, v.Err()
	default:
		return nil, invalid("operator %q has no right operand", e.Op)
	}
	if err != nil {
		return nil, err
	}

	switch op {
	case "and", "or":
		if e.Alias != "" {
			return nil, invalid("operator %q cannot be aliased", e.Op)
		}
		if op == "and" {
			return query.And(left, right), nil
		}
		return query.Or(left, right), nil
	}

	var x query.Expression
	if op == "not" {
		x = query.Not(right)
	} else {
		f, ok := operators[op]
		if !ok {
			return nil, invalid("unknown operator %q", e.Op)
		}
		x = f(left, right)
	}
	if e.Alias != "" {
		x = x.As(e.Alias)
	}
	return x, x.Err()
}

// column parses "name" or "owner.name".
func column(ref string) query.Column {
	if owner, name, ok := strings.Cut(ref, "."); ok {
		return query.ColOf(query.TableName(owner), name)
	}
	return query.Col(ref)
}

func termList(specs []ExprSpec, ps paramSource, o buildOptions) ([]query.Term, error) {
	out := make([]query.Term, 0, len(specs))
	for _, s := range specs {
		t, err := s.Term(ps, o)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func anys(ts []query.Term) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = t
	}
	return out
}

// normalizeValue turns json.Number into int64 or float64 and float64 values
// holding whole numbers into int64.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case []any:
		for i := range x {
			x[i] = normalizeValue(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalizeValue(x[k])
		}
		return x
	default:
		return v
	}
}
