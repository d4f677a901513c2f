package pgsetup

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestLexError_Error(t *testing.T) {
	err := &LexError{Index: 2, Offset: 41, Mode: "dollar-quoted block"}
	assert.Equal(t,
		"statement 3: unterminated dollar-quoted block (opened at byte 41)",
		err.Error())
}

func TestStatementError_Error(t *testing.T) {
	err := &StatementError{
		Index: 0,
		File:  "001_schema.sql",
		SQL:   "CREATE TABLE t (id int)",
		Err:   fmt.Errorf("relation already exists"),
	}

	msg := err.Error()
	assert.Contains(t, msg, "001_schema.sql, statement 1 failed")
	assert.Contains(t, msg, "CREATE TABLE t (id int)")
}

func TestStatementError_ServerPosition(t *testing.T) {
	err := &StatementError{
		Index: 4,
		SQL:   "SELECT * FRM t",
		Err:   &pgconn.PgError{Code: "42601", Message: "syntax error", Position: 10},
	}

	msg := err.Error()
	assert.Contains(t, msg, "statement 5 failed at position 10: syntax error")
}

func TestStatementError_PreviewTruncation(t *testing.T) {
	err := &StatementError{
		SQL: strings.Repeat("x", MaxErrorPreviewLength+50),
		Err: fmt.Errorf("boom"),
	}

	msg := err.Error()
	assert.Contains(t, msg, strings.Repeat("x", MaxErrorPreviewLength)+"...")
	assert.NotContains(t, msg, strings.Repeat("x", MaxErrorPreviewLength+1))
}

func TestStatementError_Unwrap(t *testing.T) {
	inner := &pgconn.PgError{Code: "23505"}
	err := &StatementError{Err: inner}

	var pgErr *pgconn.PgError
	assert.ErrorAs(t, error(err), &pgErr)
	assert.Equal(t, "23505", pgErr.Code)
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "Nil", err: nil, expected: ExitSuccess},
		{name: "Invalid config", err: fmt.Errorf("bad: %w", ErrInvalidConfig), expected: ExitConfigError},
		{name: "Preset not found", err: fmt.Errorf("x: %w", ErrPresetNotFound), expected: ExitConfigError},
		{name: "Connection failed", err: fmt.Errorf("x: %w", ErrConnectionFailed), expected: ExitConnectionError},
		{name: "Execution failed", err: fmt.Errorf("x: %w", ErrExecutionFailed), expected: ExitExecutionFailed},
		{name: "Usage", err: fmt.Errorf("%w: unknown flag --frobnicate", ErrUsage), expected: ExitUsageError},
		{name: "Cancelled", err: fmt.Errorf("%w: 2 of 5 statement(s) not attempted", ErrCancelled), expected: ExitCancelled},
		{name: "Bad argument count", err: fmt.Errorf("accepts at most 1 arg(s), received 2"), expected: ExitUsageError},
		{name: "Lex error", err: &LexError{Mode: "string"}, expected: ExitLexError},
		{name: "Wrapped lex error", err: fmt.Errorf("split: %w", &LexError{Mode: "string"}), expected: ExitLexError},
		{name: "Driver refused", err: fmt.Errorf("failed to connect to `host=x`"), expected: ExitConnectionError},
		{name: "Unclassified", err: fmt.Errorf("something else"), expected: ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCodeForError(tt.err))
		})
	}
}
