package pgsetup

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string
}

// Validate checks if the ConnectionConfig has all required fields.
// It returns a multi-error if multiple validation failures occur.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Host == "" {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range: %w", c.Port, ErrInvalidConfig))
	}
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database is required: %w", ErrInvalidConfig))
	}
	if c.Username == "" {
		errs = append(errs, fmt.Errorf("username is required: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// Statement is one top-level executable SQL unit as delivered to the server.
type Statement struct {
	// Index is the zero-based position of the statement within its script.
	Index int

	// Offset is the byte offset of the statement's first significant
	// character in the decoded text.
	Offset int

	// Text is the statement body without the terminating semicolon.
	Text string
}

// Script is one decoded SQL file split into statements, ready for execution.
type Script struct {
	// File is the path the script was read from, for reporting.
	File string

	// Encoding names the encoding the raw bytes were decoded under.
	Encoding string

	// Statements are the script's statements in source order.
	Statements []Statement
}

// TransactionMode selects the unit of work for a batch.
type TransactionMode int

const (
	// PerStatement executes each statement as its own unit of work.
	// Failures are recorded and execution continues; later statements may
	// still be independently useful when setting up a delivered machine.
	PerStatement TransactionMode = iota

	// SingleTransaction wraps the whole batch (all selected files) in one
	// physical transaction. The first failure rolls back everything executed
	// so far and the remaining statements are not attempted.
	SingleTransaction
)

func (m TransactionMode) String() string {
	switch m {
	case PerStatement:
		return "per-statement"
	case SingleTransaction:
		return "single-transaction"
	default:
		return fmt.Sprintf("TransactionMode(%d)", int(m))
	}
}

// StatementStatus is the terminal state of one statement in a batch.
type StatementStatus int

const (
	// StatusSucceeded means the server accepted and executed the statement.
	// Under SingleTransaction the work may still have been rolled back;
	// Summary.RolledBack records that.
	StatusSucceeded StatementStatus = iota

	// StatusFailed means the server rejected the statement.
	StatusFailed

	// StatusNotAttempted means the statement was never sent: execution
	// stopped earlier due to a failure in SingleTransaction mode or a
	// cancellation. Distinct from StatusFailed.
	StatusNotAttempted
)

func (s StatementStatus) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusNotAttempted:
		return "not attempted"
	default:
		return fmt.Sprintf("StatementStatus(%d)", int(s))
	}
}

// Outcome is the per-statement execution result.
type Outcome struct {
	// Index is the zero-based position of the statement across the whole
	// batch (all files concatenated).
	Index int

	// File is the source file the statement came from.
	File string

	Status       StatementStatus
	RowsAffected int64
	Elapsed      time.Duration

	// Err is set when Status is StatusFailed.
	Err error
}

// Summary aggregates a batch execution.
type Summary struct {
	// RunID uniquely identifies this execution for logs and reports.
	RunID uuid.UUID

	Mode TransactionMode

	TotalFiles  int
	FailedFiles int

	TotalStatements int
	Succeeded       int
	Failed          int
	NotAttempted    int

	// RolledBack is true when a SingleTransaction batch was rolled back,
	// either after a failure or a cancellation.
	RolledBack bool

	// Cancelled is true when the batch stopped early on a cooperative
	// cancellation request.
	Cancelled bool

	// FirstError is the first statement or transport error encountered.
	FirstError error

	Elapsed  time.Duration
	Outcomes []Outcome
}

// String renders the one-line result summary shown after a run.
func (s Summary) String() string {
	return fmt.Sprintf("files %d (ok %d / failed %d) | statements %d (ok %d / failed %d / skipped %d) | %.1fs",
		s.TotalFiles, s.TotalFiles-s.FailedFiles, s.FailedFiles,
		s.TotalStatements, s.Succeeded, s.Failed, s.NotAttempted,
		s.Elapsed.Seconds())
}
