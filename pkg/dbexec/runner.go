// Package dbexec executes compiled statements against PostgreSQL through
// database/sql.
//
// A Runner accepts any query.Statement, compiles it, binds the supplied
// values in placeholder order, and either queries or executes it depending
// on whether the statement yields rows.
//
//	db, err := dbexec.Open(ctx, "pgx", dsn)
//	runner := dbexec.NewRunner(db)
//	res, err := runner.Run(ctx, sel, map[string]any{"status": "active"})
package dbexec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pthm/sqlast/pkg/dialect"
	"github.com/pthm/sqlast/pkg/query"
)

// ErrDialectMismatch is returned when a statement was compiled for a dialect
// other than the one the runner's connection speaks.
var ErrDialectMismatch = errors.New("statement dialect does not match connection")

// Querier is the minimal database interface the runner needs.
// Implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Result is the outcome of running one statement.
type Result struct {
	SQL          string           `json:"sql"`
	Args         []any            `json:"args"`
	RowsAffected int64            `json:"rows_affected"`
	Columns      []string         `json:"columns,omitempty"`
	Rows         []map[string]any `json:"rows,omitempty"`
}

// Runner executes statements on a Querier.
type Runner struct {
	q       Querier
	dialect dialect.Dialect
	log     zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger logs each statement at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithDialect sets the dialect the connection speaks. Defaults to Postgres.
func WithDialect(d dialect.Dialect) Option {
	return func(r *Runner) { r.dialect = d }
}

// NewRunner creates a Runner on q.
func NewRunner(q Querier, opts ...Option) *Runner {
	r := &Runner{q: q, dialect: dialect.Postgres, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run compiles stmt, binds named and positional values, and runs it.
// SELECT statements and INSERTs with a RETURNING list are queried; everything
// else is executed.
func (r *Runner) Run(ctx context.Context, stmt query.Statement, named map[string]any, positional ...any) (*Result, error) {
	c, err := stmt.Compile()
	if err != nil {
		return nil, err
	}
	args, err := c.Bind(named, positional...)
	if err != nil {
		return nil, err
	}
	if returnsRows(stmt) {
		return r.Query(ctx, c, args)
	}
	return r.Exec(ctx, c, args)
}

// Exec executes c with already bound args.
func (r *Runner) Exec(ctx context.Context, c *query.Compiled, args []any) (*Result, error) {
	if err := r.check(c, args); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := r.q.ExecContext(ctx, c.SQL, args...)
	if err != nil {
		return nil, mapError("exec", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, mapError("rows affected", err)
	}
	r.log.Debug().
		Str("sql", c.SQL).
		Int("args", len(args)).
		Int64("rows_affected", n).
		Dur("elapsed", time.Since(start)).
		Msg("exec")
	return &Result{SQL: c.SQL, Args: args, RowsAffected: n}, nil
}

// Query runs c with already bound args and collects every row.
func (r *Runner) Query(ctx context.Context, c *query.Compiled, args []any) (*Result, error) {
	if err := r.check(c, args); err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := r.q.QueryContext(ctx, c.SQL, args...)
	if err != nil {
		return nil, mapError("query", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, mapError("columns", err)
	}
	out := &Result{SQL: c.SQL, Args: args, Columns: cols}
	for rows.Next() {
		row, err := scanRow(rows, cols)
		if err != nil {
			return nil, mapError("scan", err)
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("rows", err)
	}
	out.RowsAffected = int64(len(out.Rows))
	r.log.Debug().
		Str("sql", c.SQL).
		Int("args", len(args)).
		Int("rows", len(out.Rows)).
		Dur("elapsed", time.Since(start)).
		Msg("query")
	return out, nil
}

func (r *Runner) check(c *query.Compiled, args []any) error {
	if c.Dialect != r.dialect {
		return fmt.Errorf("%w: compiled for %s, connection is %s", ErrDialectMismatch, c.Dialect, r.dialect)
	}
	if len(args) != c.Placeholders() {
		return fmt.Errorf("%w: %d placeholders, %d args", query.ErrParamMismatch, c.Placeholders(), len(args))
	}
	return nil
}

func returnsRows(stmt query.Statement) bool {
	switch s := stmt.(type) {
	case *query.Select:
		return true
	case interface{ HasReturning() bool }:
		return s.HasReturning()
	}
	return false
}

func scanRow(rows *sql.Rows, cols []string) (map[string]any, error) {
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	row := make(map[string]any, len(cols))
	for i, col := range cols {
		if b, ok := vals[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = vals[i]
	}
	return row, nil
}
