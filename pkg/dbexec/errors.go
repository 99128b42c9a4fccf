package dbexec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrDatabase is the family sentinel for failures reported by the database
// while executing a compiled statement.
var ErrDatabase = errors.New("database error")

// Sentinels for SQLSTATE classes callers commonly react to.
var (
	ErrUndefinedTable    = errors.New("undefined table")
	ErrUndefinedColumn   = errors.New("undefined column")
	ErrUndefinedFunction = errors.New("undefined function")
	ErrUniqueViolation   = errors.New("unique violation")
	ErrSyntax            = errors.New("syntax error")
)

// PostgreSQL error codes.
const (
	pgUndefinedTable    = "42P01" // undefined_table
	pgUndefinedColumn   = "42703" // undefined_column
	pgUndefinedFunction = "42883" // undefined_function
	pgUniqueViolation   = "23505" // unique_violation
	pgSyntaxError       = "42601" // syntax_error
)

var sentinels = map[string]error{
	pgUndefinedTable:    ErrUndefinedTable,
	pgUndefinedColumn:   ErrUndefinedColumn,
	pgUndefinedFunction: ErrUndefinedFunction,
	pgUniqueViolation:   ErrUniqueViolation,
	pgSyntaxError:       ErrSyntax,
}

// IsDatabaseError reports whether err came from executing a statement.
func IsDatabaseError(err error) bool {
	if errors.Is(err, ErrDatabase) {
		return true
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// mapError wraps a driver error with the sentinel matching its SQLSTATE,
// falling back to ErrDatabase.
func mapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if s, ok := sentinels[sqlState(err)]; ok {
		return fmt.Errorf("%s: %w: %w", operation, s, err)
	}
	return fmt.Errorf("%s: %w: %w", operation, ErrDatabase, err)
}

// sqlState extracts the SQLSTATE code from a PostgreSQL error.
// Works with multiple drivers:
//   - pgx/pgconn: *pgconn.PgError
//   - lib/pq: *pq.Error
//   - anything exposing SQLState() or Code()
//
// Returns empty string if the error doesn't contain a SQLSTATE.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	type sqlStateErr interface{ SQLState() string }
	var se sqlStateErr
	if errors.As(err, &se) {
		return se.SQLState()
	}

	type codeErr interface{ Code() string }
	var ce codeErr
	if errors.As(err, &ce) {
		return ce.Code()
	}

	// Format: "... (SQLSTATE 42P01)" or "SQLSTATE: 42P01"
	errStr := err.Error()
	for _, prefix := range []string{"SQLSTATE ", "SQLSTATE: "} {
		if idx := strings.Index(errStr, prefix); idx >= 0 {
			start := idx + len(prefix)
			if start+5 <= len(errStr) {
				return errStr[start : start+5]
			}
		}
	}
	return ""
}
