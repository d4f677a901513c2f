package pgsetup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := runner.Start(ctx, job)
//	if errors.Is(err, pgsetup.ErrBusy) {
//	    // Another operation is still in flight on this connection
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrExecutionFailed indicates SQL execution failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrBusy indicates a long-running operation is already in flight on the
	// connection. The connection is not safe for concurrent statement
	// submission, so the runner enforces a single worker slot.
	ErrBusy = errors.New("operation already in progress")

	// ErrPresetNotFound indicates the named connection preset does not exist.
	ErrPresetNotFound = errors.New("preset not found")

	// ErrUsage indicates the command line itself was invalid (unknown
	// flag, missing argument). Maps to ExitUsageError.
	ErrUsage = errors.New("invalid usage")

	// ErrCancelled indicates the user stopped the run before every
	// statement was attempted. Maps to ExitCancelled so a partial run is
	// never mistaken for a successful one.
	ErrCancelled = errors.New("execution cancelled")

	// ErrEncodingExhausted indicates no candidate encoding decoded the input.
	// The default candidate chain ends in a total single-byte fallback, so
	// this is never returned in practice; it exists as a named category for
	// custom candidate lists that omit the fallback.
	ErrEncodingExhausted = errors.New("no candidate encoding decoded the input")
)

// LexError reports a script that could not be split into statements:
// end of input was reached inside an open string, comment, or dollar-quoted
// block. A LexError aborts the whole operation before anything is executed;
// partially parseable input is never partially executed.
type LexError struct {
	// Index is the zero-based position of the offending statement.
	Index int

	// Offset is the byte offset in the decoded text where the open
	// construct began.
	Offset int

	// Mode names the construct left open: "string", "quoted identifier",
	// "block comment", or "dollar-quoted block".
	Mode string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("statement %d: unterminated %s (opened at byte %d)", e.Index+1, e.Mode, e.Offset)
}

// StatementError reports a single statement rejected by the server.
// It carries the statement's batch position and exact SQL text so the
// user can diagnose and re-run with a narrowed file.
type StatementError struct {
	// Index is the zero-based position of the statement in the batch.
	Index int

	// File is the source file the statement came from, if any.
	File string

	// SQL is the exact text of the failing statement.
	SQL string

	// Err is the underlying driver error, typically a *pgconn.PgError
	// carrying the server message and error position.
	Err error
}

func (e *StatementError) Error() string {
	preview := e.SQL
	if len(preview) > MaxErrorPreviewLength {
		preview = preview[:MaxErrorPreviewLength] + "..."
	}
	where := fmt.Sprintf("statement %d", e.Index+1)
	if e.File != "" {
		where = fmt.Sprintf("%s, %s", e.File, where)
	}

	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) && pgErr.Position > 0 {
		return fmt.Sprintf("%s failed at position %d: %s\n  %s", where, pgErr.Position, pgErr.Message, preview)
	}
	return fmt.Sprintf("%s failed: %v\n  %s", where, e.Err, preview)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return ExitLexError
	}

	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsageError
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrPresetNotFound):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrCancelled):
		return ExitCancelled
	}

	// cobra reports argument and unknown-command errors as plain strings.
	errStr := err.Error()
	if strings.HasPrefix(errStr, "unknown command") ||
		strings.HasPrefix(errStr, "accepts ") ||
		strings.HasPrefix(errStr, "requires at least") {
		return ExitUsageError
	}

	// Check for common connection error patterns from the driver
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
