// Package cli provides shared configuration and utilities for the sqlast CLI.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/pthm/sqlast/pkg/dbexec"
	"github.com/pthm/sqlast/pkg/query"
	"github.com/pthm/sqlast/pkg/statement"
)

// Exit codes.
const (
	ExitSuccess   = 0
	ExitGeneral   = 1
	ExitConfig    = 2
	ExitStatement = 3
	ExitDatabase  = 4
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitWithError prints the error and exits with the appropriate code.
func ExitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(ExitCode(err))
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case query.IsBuilderError(err),
		errors.Is(err, statement.ErrInvalidDocument),
		errors.Is(err, statement.ErrUnknownKind):
		return ExitStatement
	case dbexec.IsDatabaseError(err):
		return ExitDatabase
	default:
		return ExitGeneral
	}
}

// ConfigError creates an ExitError with ExitConfig code.
func ConfigError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Err: err}
}

// StatementError creates an ExitError with ExitStatement code.
func StatementError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitStatement, Message: msg, Err: err}
}

// DatabaseError creates an ExitError with ExitDatabase code.
func DatabaseError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitDatabase, Message: msg, Err: err}
}

// GeneralError creates an ExitError with ExitGeneral code.
func GeneralError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitGeneral, Message: msg, Err: err}
}
