// Package dialect describes the syntax differences between the SQL engines
// the query builder targets: placeholder markers and pagination clauses.
package dialect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies a target SQL engine.
type Dialect int

const (
	// Postgres numbers placeholders $1, $2, ... and may reference one
	// placeholder from several places in a statement.
	Postgres Dialect = iota
	// SQLServer uses a bare ? for every placeholder occurrence.
	SQLServer
)

// ErrUnknownDialect is returned when a dialect name cannot be resolved.
var ErrUnknownDialect = errors.New("sqlast: unknown dialect")

// String returns the canonical dialect name.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLServer:
		return "sqlserver"
	default:
		return "dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

// Parse resolves a dialect name. Matching is case-insensitive and accepts
// the common aliases used in driver names and config files.
func Parse(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "postgres", "postgresql", "pg", "pgx", "pq":
		return Postgres, nil
	case "sqlserver", "mssql", "tsql":
		return SQLServer, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// ForDriver returns the dialect for a database/sql driver name.
func ForDriver(driver string) (Dialect, error) {
	return Parse(driver)
}

// MarshalText implements encoding.TextMarshaler.
func (d Dialect) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dialect) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ReusesPlaceholders reports whether one placeholder may stand for a value
// at several positions of the statement.
func (d Dialect) ReusesPlaceholders() bool {
	return d == Postgres
}

// Placeholder renders the marker for the n-th (1-based) bound slot.
func (d Dialect) Placeholder(n int) string {
	if d == SQLServer {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

// Pagination renders the trailing row-window clauses. A negative limit or
// offset means the clause is absent. The result has one clause per line and
// is empty when neither is set.
//
// SQL Server only accepts FETCH after OFFSET, so a limit without an offset
// renders OFFSET 0 ROWS first. The caller supplies an ORDER BY, which SQL
// Server requires before OFFSET.
func (d Dialect) Pagination(limit, offset int) []string {
	var lines []string
	switch d {
	case SQLServer:
		if limit < 0 && offset < 0 {
			return nil
		}
		if offset < 0 {
			offset = 0
		}
		lines = append(lines, fmt.Sprintf("OFFSET %d ROWS", offset))
		if limit >= 0 {
			lines = append(lines, fmt.Sprintf("FETCH NEXT %d ROWS ONLY", limit))
		}
	default:
		if limit >= 0 {
			lines = append(lines, fmt.Sprintf("LIMIT %d", limit))
		}
		if offset >= 0 {
			lines = append(lines, fmt.Sprintf("OFFSET %d", offset))
		}
	}
	return lines
}
