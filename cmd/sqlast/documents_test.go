package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/sqlast/internal/cli"
	"github.com/pthm/sqlast/pkg/dialect"
	"github.com/pthm/sqlast/pkg/query"
	"github.com/pthm/sqlast/pkg/statement"
)

const twoDocuments = `
kind: select
name: active-users
table: {name: users}
select: [{col: id}]
where: [{col: status, op: "=", param: status}]
---
kind: delete
table: {name: users}
where: [{col: id, op: "=", param: id}]
params: {id: 3}
`

func parseTwo(t *testing.T, d dialect.Dialect) []compiledDocument {
	t.Helper()
	docs, err := statement.Parse([]byte(twoDocuments))
	require.NoError(t, err)
	compiled, err := compileDocuments(docs, d)
	require.NoError(t, err)
	require.Len(t, compiled, 2)
	return compiled
}

func TestRenderDocuments(t *testing.T) {
	out, err := renderDocuments(parseTwo(t, dialect.Postgres), map[string]any{"status": "active"})
	require.NoError(t, err)

	assert.Equal(t, "active-users", out[0].Name)
	assert.Equal(t, "SELECT \"id\"\nFROM \"users\"\nWHERE (\"status\" = $1)", out[0].SQL)
	assert.Equal(t, []any{"active"}, out[0].Args)
	assert.Empty(t, out[0].Unbound)

	assert.Equal(t, "delete", out[1].Name)
	assert.Equal(t, "DELETE FROM \"users\"\nWHERE\n(\"id\" = $1)", out[1].SQL)
	assert.Equal(t, []any{int64(3)}, out[1].Args)
}

func TestRenderDocuments_Unbound(t *testing.T) {
	out, err := renderDocuments(parseTwo(t, dialect.SQLServer), nil)
	require.NoError(t, err)

	assert.Equal(t, "SELECT \"id\"\nFROM \"users\"\nWHERE (\"status\" = ?)", out[0].SQL)
	assert.Equal(t, []string{"status"}, out[0].Unbound)
	assert.Nil(t, out[0].Args)
}

func TestCompileDocuments_ReportsLabel(t *testing.T) {
	docs, err := statement.Parse([]byte("kind: update\nname: bump\ntable: {name: users}\nset: [{column: n, value: 1}]\n"))
	require.NoError(t, err)

	_, err = compileDocuments(docs, dialect.Postgres)
	require.ErrorIs(t, err, query.ErrMissingWhere)
	assert.Contains(t, err.Error(), "bump")
	assert.Equal(t, cli.ExitStatement, cli.ExitCode(err))
}

func TestWriteOutput(t *testing.T) {
	out, err := renderDocuments(parseTwo(t, dialect.Postgres), map[string]any{"status": "a'b"})
	require.NoError(t, err)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutput(&buf, "text", out, func(w io.Writer) error {
			return writeRenderedText(w, out)
		}))
		assert.Contains(t, buf.String(), "-- active-users (select, postgres)\n")
		assert.Contains(t, buf.String(), "-- args: [\"a'b\"]\n")
		assert.Contains(t, buf.String(), "-- args: [3]\n")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutput(&buf, "json", out, nil))
		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "active-users", decoded[0]["name"])
		assert.Equal(t, []any{"status"}, decoded[0]["keys"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOutput(&buf, "yaml", out, nil))
		assert.Contains(t, buf.String(), "name: active-users")
		assert.Contains(t, buf.String(), "dialect: postgres")
	})
}

func TestParamFlags(t *testing.T) {
	p := paramFlags{
		assignments: []string{"id=7", "name=Bob"},
		json:        `{"id": 1, "flag": true}`,
	}
	got, err := p.values()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(7), "name": "Bob", "flag": true}, got)

	p = paramFlags{assignments: []string{"novalue"}}
	_, err = p.values()
	assert.ErrorIs(t, err, statement.ErrInvalidDocument)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoDocuments), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	t.Chdir(dir)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"render", path, "--dialect", "sqlserver", "--param", "status=active", "--format", "json"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		renderDialect, renderFormat = "", ""
		renderParams = paramFlags{}
	})
	require.NoError(t, rootCmd.Execute())

	var decoded []rendered
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "sqlserver", decoded[0].Dialect)
	assert.Equal(t, "DELETE FROM \"users\"\nWHERE\n(\"id\" = ?)", decoded[1].SQL)
}
