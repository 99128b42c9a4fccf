package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/sqlast/pkg/dialect"
)

func TestInsert_SQL(t *testing.T) {
	users := NewTable("users", "id", "name")

	tests := []struct {
		name string
		ins  *Insert
		want string
	}{
		{
			name: "columns from table",
			ins:  NewInsert(users).SetColumnsFromTable().Values(1, "a"),
			want: "INSERT INTO \"users\" (\"id\", \"name\")\nVALUES (1, 'a')",
		},
		{
			name: "multiple rows, positional and keyword",
			ins:  NewInsert(users).SetColumnsFromTable().Values(1, "a").Values(Row{"name": "b", "id": 2}),
			want: "INSERT INTO \"users\" (\"id\", \"name\")\nVALUES (1, 'a'), (2, 'b')",
		},
		{
			name: "explicit columns and schema",
			ins:  NewInsert(NewTable("events").InSchema("audit")).Columns("kind").Values(nil),
			want: "INSERT INTO \"audit\".\"events\" (\"kind\")\nVALUES (NULL)",
		},
		{
			name: "returning",
			ins:  NewInsert(users).Columns("name").Values("a").Returning(Col("id")),
			want: "INSERT INTO \"users\" (\"name\")\nVALUES ('a')\nRETURNING \"id\"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.ins.Compile()
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.SQL)
		})
	}
}

func TestInsert_ValueCount(t *testing.T) {
	three := NewTable("t", "a", "b", "c")

	ok := NewInsert(three).SetColumnsFromTable().Values(1, 2, 3)
	require.NoError(t, ok.Err())

	short := NewInsert(three).SetColumnsFromTable().Values(1, 2)
	require.ErrorIs(t, short.Err(), ErrColumnCount)
	c, err := short.Compile()
	require.ErrorIs(t, err, ErrColumnCount)
	assert.Nil(t, c)
}

func TestInsert_Errors(t *testing.T) {
	users := NewTable("users", "id", "name")

	tests := []struct {
		name string
		ins  *Insert
		want error
	}{
		{"keyword keys mismatch", NewInsert(users).SetColumnsFromTable().Values(Row{"id": 1}), ErrKeySetMismatch},
		{"keyword extra key", NewInsert(users).SetColumnsFromTable().Values(Row{"id": 1, "name": "a", "x": 2}), ErrKeySetMismatch},
		{"mixed values", NewInsert(users).SetColumnsFromTable().Values(1, Row{"name": "a"}), ErrMixedValues},
		{"empty registry", NewInsert(NewTable("bare")).SetColumnsFromTable(), ErrNoColumns},
		{"no rows", NewInsert(users).SetColumnsFromTable(), ErrNoValues},
		{"no columns", NewInsert(TableName("bare")).Values(), ErrNoColumns},
		{"subquery target", NewInsert(NewSubQuery(NewSelect(users).SelectAll(), "s")), ErrInvalidTarget},
		{"invalid value", NewInsert(users).SetColumnsFromTable().Values(1, true), ErrUnsupportedValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.ins.Compile()
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, c)
		})
	}
}

func TestInsert_KeywordRowFollowsColumnOrder(t *testing.T) {
	ins := NewInsert(TableName("t")).Columns("a", "b").Values(Row{"a": 1, "b": 2}).Columns("b", "a")

	c, err := ins.Compile()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO \"t\" (\"b\", \"a\")\nVALUES (2, 1)", c.SQL)

	ins.Columns("a", "c")
	c, err = ins.Compile()
	require.ErrorIs(t, err, ErrKeySetMismatch)
	assert.Nil(t, c)

	ins.Columns("a")
	_, err = ins.Compile()
	require.ErrorIs(t, err, ErrKeySetMismatch)
}

func TestInsert_Placeholders(t *testing.T) {
	ins := NewInsert(NewTable("users", "id", "name"), WithDialect(dialect.SQLServer)).SetColumnsFromTable()
	p := ins.Positional()
	ins.Values(p.Add(), p.Add()).Values(p.Add(), p.Add())

	c, err := ins.Compile()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO \"users\" (\"id\", \"name\")\nVALUES (?, ?), (?, ?)", c.SQL)

	args, err := c.BoundValues(1, "a", 2, "b")
	require.NoError(t, err)
	assert.Equal(t, []any{1, "a", 2, "b"}, args)
}

func TestUpdate_Example(t *testing.T) {
	upd := NewUpdate(NewTable("users")).Set("name", Val("Bob")).Where(Col("id").Eq(Val(1)))

	c, err := upd.Compile()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE \"users\" SET\n\"name\" = 'Bob'\nWHERE\n(\"id\" = 1)", c.SQL)
}

func TestUpdate_SQL(t *testing.T) {
	users := NewTable("users", "id", "name", "age")
	upd := NewUpdate(users).
		Set("name", "Bob").
		Set("age", users.Col("age").Add(1)).
		Where(Col("id").Eq(1)).
		Where(Col("age").Gt(3))

	c, err := upd.Compile()
	require.NoError(t, err)
	want := "UPDATE \"users\" SET\n" +
		"\"name\" = 'Bob',\n" +
		"\"age\" = \"users\".\"age\" + 1\n" +
		"WHERE\n" +
		"(\"id\" = 1)\n" +
		"AND (\"age\" > 3)"
	assert.Equal(t, want, c.SQL)
}

func TestUpdate_Errors(t *testing.T) {
	users := NewTable("users", "id", "name")

	tests := []struct {
		name string
		upd  *Update
		want error
	}{
		{"missing where", NewUpdate(users).Set("name", "Bob"), ErrMissingWhere},
		{"unknown column", NewUpdate(users).Set("nope", 1).Where(Col("id").Eq(1)), ErrUnknownColumn},
		{"set twice", NewUpdate(users).Set("name", "a").Set("name", "b").Where(Col("id").Eq(1)), ErrColumnSetTwice},
		{"no assignments", NewUpdate(users).Where(Col("id").Eq(1)), ErrNoAssignments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.upd.Compile()
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, c)
		})
	}
}

func TestUpdate_UnregisteredTableAcceptsAnyColumn(t *testing.T) {
	upd := NewUpdate(TableName("users")).Set("anything", 1).Where(Col("id").Eq(1))
	require.NoError(t, upd.Err())
}

func TestDelete(t *testing.T) {
	del := NewDelete(NewTable("users")).Where(Col("id").Eq(1))
	c, err := del.Compile()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM \"users\"\nWHERE\n(\"id\" = 1)", c.SQL)

	del = NewDelete(NewTable("users"), WithDialect(dialect.SQLServer))
	del.Where(Col("id").Eq(del.Params().Add("id")), Col("name").Like("a%"))
	c, err = del.Compile()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM \"users\"\nWHERE\n(\"id\" = ?)\nAND (\"name\" LIKE 'a%')", c.SQL)

	_, err = NewDelete(NewTable("users")).Compile()
	require.ErrorIs(t, err, ErrMissingWhere)

	c, err = NewDelete(NewTable("users")).Where(Col("id").Eq(1).As("x")).Compile()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM \"users\"\nWHERE\n(\"id\" = 1)", c.SQL)
}
