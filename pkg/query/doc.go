// Package query builds SQL statements from composable terms.
//
// Terms (columns, literals, expressions, function calls and so on) are
// immutable values combined with named methods:
//
//	users := query.NewTable("users", "id", "name", "age")
//	sel := query.NewSelect(users).
//		Select(users.Col("id"), users.Col("name")).
//		Where(query.Col("age").Gt(18)).
//		OrderBy(query.Col("name"))
//
// Statement builders (Select, Insert, Update, Delete) accumulate clauses and
// check their structure. Compile renders the statement once and returns a
// Compiled value holding the SQL text and the order of its placeholders:
//
//	name := sel.Params().Add("name")
//	sel.Where(query.Col("name").Eq(name))
//	c, err := sel.Compile()
//	args, err := c.Params(map[string]any{"name": "Bob"})
//	rows, err := db.QueryContext(ctx, c.SQL, args...)
//
// Under dialect.Postgres placeholders are numbered $1, $2, ... and a keyed
// parameter used twice renders the same number both times. Under
// dialect.SQLServer every occurrence is a separate ?; Bind repeats the value
// as needed, so callers always supply each key once.
//
// Every error is a *Error whose reason can be matched with errors.Is.
package query
