package query

import (
	"errors"
	"fmt"
)

// ErrQueryBuilder matches every error produced by this package.
var ErrQueryBuilder = errors.New("sqlast: query builder error")

// Reasons carried by *Error. Compare with errors.Is.
var (
	ErrEmptySelect          = errors.New("sqlast: select list is empty")
	ErrHavingWithoutGroupBy = errors.New("sqlast: HAVING requires GROUP BY")
	ErrGroupByTwice         = errors.New("sqlast: GROUP BY already set")
	ErrDuplicateJoin        = errors.New("sqlast: table already joined")
	ErrMissingWhere         = errors.New("sqlast: statement has no WHERE condition")
	ErrColumnCount          = errors.New("sqlast: value count does not match column count")
	ErrKeySetMismatch       = errors.New("sqlast: value keys do not match columns")
	ErrMixedValues          = errors.New("sqlast: positional and keyword values mixed")
	ErrNoColumns            = errors.New("sqlast: table has no registered columns")
	ErrNoValues             = errors.New("sqlast: insert has no rows")
	ErrNoAssignments        = errors.New("sqlast: update has no SET assignments")
	ErrUnknownColumn        = errors.New("sqlast: unknown column")
	ErrColumnSetTwice       = errors.New("sqlast: column already set")
	ErrEmptyTuple           = errors.New("sqlast: tuple needs at least one term")
	ErrEmptyAny             = errors.New("sqlast: ANY needs at least one term")
	ErrEmptyExists          = errors.New("sqlast: EXISTS needs a select")
	ErrAliasOnStar          = errors.New("sqlast: * cannot be aliased")
	ErrUnaliasedSource      = errors.New("sqlast: source has no alias")
	ErrUnnestColumns        = errors.New("sqlast: invalid UNNEST column list")
	ErrInvalidTarget        = errors.New("sqlast: statement target must be a table")
	ErrUnsupportedValue     = errors.New("sqlast: unsupported value type")
	ErrFragment             = errors.New("sqlast: malformed SQL fragment")
	ErrParamMismatch        = errors.New("sqlast: bound values do not match placeholders")
)

// Error is the single error kind of the query builder. Reason is one of the
// sentinel errors above and Detail names the offending element.
type Error struct {
	Reason error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return e.Reason.Error() + ": " + e.Detail
}

// Unwrap returns the reason so errors.Is matches the sentinel.
func (e *Error) Unwrap() error { return e.Reason }

// Is reports the family sentinel as a match.
func (e *Error) Is(target error) bool { return target == ErrQueryBuilder }

// IsBuilderError reports whether err came from the query builder.
func IsBuilderError(err error) bool {
	return errors.Is(err, ErrQueryBuilder)
}

func newError(reason error, format string, args ...any) *Error {
	e := &Error{Reason: reason}
	if format != "" {
		e.Detail = fmt.Sprintf(format, args...)
	}
	return e
}

// errorer is implemented by terms and builders that can carry a deferred
// construction error.
type errorer interface {
	Err() error
}

func errOf(v any) error {
	if e, ok := v.(errorer); ok {
		return e.Err()
	}
	return nil
}
