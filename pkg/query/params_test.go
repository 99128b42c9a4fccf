package query

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/sqlast/pkg/dialect"
)

func TestParameterDict_PostgresReusesPlaceholder(t *testing.T) {
	sel := NewSelect(TableName("t")).SelectAll()
	sel.Where(Col("a").Eq(sel.Params().Add("x")), Col("b").Lt(sel.Params().Add("x")))

	c, err := sel.Compile()
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM \"t\"\nWHERE (\"a\" = $1) AND (\"b\" < $1)", c.SQL)
	assert.Equal(t, 1, c.Placeholders())
	assert.Equal(t, []string{"x"}, c.Keys())

	args, err := c.Params(map[string]any{"x": 5})
	require.NoError(t, err)
	assert.Equal(t, []any{5}, args)
}

func TestParameterDict_KeySetMustMatch(t *testing.T) {
	sel := NewSelect(TableName("t")).SelectAll()
	sel.Where(Col("a").Eq(sel.Params().Add("x")), Col("b").Eq(sel.Params().Add("x")))
	c, err := sel.Compile()
	require.NoError(t, err)

	tests := []struct {
		name   string
		values map[string]any
	}{
		{"missing", map[string]any{}},
		{"nil", nil},
		{"extra", map[string]any{"x": 1, "y": 2}},
		{"wrong", map[string]any{"y": 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := c.Params(tt.values)
			require.ErrorIs(t, err, ErrParamMismatch)
			assert.Nil(t, args)
		})
	}
}

func TestParameterDict_UnrenderedKeyIsRequired(t *testing.T) {
	sel := NewSelect(TableName("t")).SelectAll()
	sel.Where(Col("a").Eq(sel.Params().Add("x")))
	sel.Params().Add("unused")

	c, err := sel.Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{"unused", "x"}, c.Keys())

	_, err = c.Params(map[string]any{"x": 1})
	require.ErrorIs(t, err, ErrParamMismatch)
}

func TestParameterList_SQLServerIsPositional(t *testing.T) {
	sel := NewSelect(TableName("t"), WithDialect(dialect.SQLServer)).SelectAll()
	p := sel.Positional()
	sel.Where(Col("a").Eq(p.Add()), Col("b").Eq(p.Add()), Col("c").Eq(p.Add()))

	c, err := sel.Compile()
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM \"t\"\nWHERE (\"a\" = ?) AND (\"b\" = ?) AND (\"c\" = ?)", c.SQL)
	assert.Equal(t, 3, c.Placeholders())
	assert.Equal(t, 3, c.Positional())

	args, err := c.BoundValues(1, "two", 3.0)
	require.NoError(t, err)
	assert.Equal(t, []any{1, "two", 3.0}, args)

	_, err = c.BoundValues(1, 2)
	require.ErrorIs(t, err, ErrParamMismatch)
	_, err = c.BoundValues(1, 2, 3, 4)
	require.ErrorIs(t, err, ErrParamMismatch)
}

func TestParameterDict_SQLServerRepeatsValuePerOccurrence(t *testing.T) {
	sel := NewSelect(TableName("t"), WithDialect(dialect.SQLServer)).SelectAll()
	x := sel.Params().Add("x")
	sel.Where(Col("a").Eq(x), Col("b").Eq(sel.Params().Add("y")), Col("c").Eq(x))

	c, err := sel.Compile()
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM \"t\"\nWHERE (\"a\" = ?) AND (\"b\" = ?) AND (\"c\" = ?)", c.SQL)

	args, err := c.Params(map[string]any{"x": "X", "y": "Y"})
	require.NoError(t, err)
	assert.Equal(t, []any{"X", "Y", "X"}, args)
}

func TestParameterList_SQLServerRepeatsValuePerOccurrence(t *testing.T) {
	sel := NewSelect(TableName("t"), WithDialect(dialect.SQLServer)).SelectAll()
	p := sel.Positional().Add()
	sel.Where(Col("a").Eq(p), Col("b").Eq(p))

	c, err := sel.Compile()
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM \"t\"\nWHERE (\"a\" = ?) AND (\"b\" = ?)", c.SQL)
	assert.Equal(t, 2, c.Placeholders())
	assert.Equal(t, 1, c.Positional())

	args, err := c.BoundValues(1)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 1}, args)
}

func TestBind_MixedBinders(t *testing.T) {
	sel := NewSelect(TableName("t")).SelectAll()
	sel.Where(
		Col("a").Eq(sel.Params().Add("x")),
		Col("b").Eq(sel.Positional().Add()),
		Col("c").Eq(sel.Params().Add("y")),
		Col("d").Eq(sel.Params().Add("x")),
	)

	c, err := sel.Compile()
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM \"t\"\nWHERE (\"a\" = $1) AND (\"b\" = $2) AND (\"c\" = $3) AND (\"d\" = $1)", c.SQL)

	args, err := c.Bind(map[string]any{"x": 10, "y": 30}, 20)
	require.NoError(t, err)
	assert.Equal(t, []any{10, 20, 30}, args)
}

func TestBind_IsRepeatableAndConcurrent(t *testing.T) {
	sel := NewSelect(TableName("t")).SelectAll()
	sel.Where(Col("a").Eq(sel.Params().Add("x")))
	c, err := sel.Compile()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			args, err := c.Params(map[string]any{"x": i})
			assert.NoError(t, err)
			assert.Equal(t, []any{i}, args)
		}()
	}
	wg.Wait()

	again, err := sel.Compile()
	require.NoError(t, err)
	assert.Equal(t, c.SQL, again.SQL)
}

func TestBind_NestedSelectParameters(t *testing.T) {
	orders := NewTable("orders")
	users := NewTable("users")
	sub := NewSelect(orders).SelectAll()
	sub.Where(orders.Col("user_id").Eq(users.Col("id")), orders.Col("total").Gt(sub.Params().Add("min")))

	sel := NewSelect(users).SelectAll()
	sel.Where(users.Col("name").Eq(sel.Params().Add("name")), Exists(sub))

	c, err := sel.Compile()
	require.NoError(t, err)
	assert.Contains(t, c.SQL, `"users"."name" = $1`)
	assert.Contains(t, c.SQL, `"orders"."total" > $2`)
	assert.Equal(t, []string{"min", "name"}, c.Keys())

	args, err := c.Params(map[string]any{"name": "Bob", "min": 100})
	require.NoError(t, err)
	assert.Equal(t, []any{"Bob", 100}, args)
}

func TestFragment(t *testing.T) {
	sel := NewSelect(TableName("users")).SelectAll().
		Where(SQL("age > :min and name = :name")).
		Where(SQL("id::text <> :name"))

	c, err := sel.Compile()
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM \"users\"\nWHERE (age > $1 and name = $2) AND (id::text <> $2)", c.SQL)

	args, err := c.Params(map[string]any{"min": 18, "name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, []any{18, "Bob"}, args)

	assert.Equal(t, []string{"min", "name"}, SQL("a = :min or b = :name").Params())
}

func TestFragment_RejectsOrdinalParams(t *testing.T) {
	f := SQL("id = $1")
	require.ErrorIs(t, f.Err(), ErrFragment)

	_, err := NewSelect(TableName("t")).SelectAll().Where(f).Compile()
	require.ErrorIs(t, err, ErrFragment)
}
