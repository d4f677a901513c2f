// Package executor runs split SQL scripts against a connection capability
// under one of two transaction disciplines, reporting per-statement
// progress through a typed event channel.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// Options configures one batch execution.
type Options struct {
	// Mode selects the transaction discipline. Default is PerStatement.
	Mode pgsetup.TransactionMode

	// Events receives Progress and Failure events as each statement
	// completes. May be nil. The channel is not closed by Execute.
	Events chan<- pgsetup.Event

	// Logger receives file-level progress. Defaults to no logging.
	Logger pgsetup.Logger
}

// execer is the common Exec surface of pgsetup.Conn and pgsetup.Tx.
type execer interface {
	Exec(ctx context.Context, sql string) (int64, error)
}

// entry is one statement with its batch-global position.
type entry struct {
	index int
	file  string
	text  string
}

// Execute runs the scripts' statements in order against conn.
//
// Side effects are observable exactly in statement order; there is no
// reordering or speculative execution. Each statement's outcome is pushed
// to opts.Events immediately on completion, so the initiator is never more
// than one statement's latency behind.
//
// Cancellation is cooperative: ctx is checked between statements, never
// mid-statement. The statement in flight finishes, remaining statements
// are marked not-attempted, and a SingleTransaction batch is rolled back.
func Execute(ctx context.Context, conn pgsetup.Conn, scripts []pgsetup.Script, opts Options) pgsetup.Summary {
	start := time.Now()
	batch := flatten(scripts)

	summary := pgsetup.Summary{
		RunID:           uuid.New(),
		Mode:            opts.Mode,
		TotalFiles:      len(scripts),
		TotalStatements: len(batch),
		Outcomes:        make([]pgsetup.Outcome, 0, len(batch)),
	}

	if opts.Mode == pgsetup.SingleTransaction {
		executeSingleTransaction(ctx, conn, batch, opts, &summary)
	} else {
		executePerStatement(ctx, conn, batch, opts, &summary)
	}

	failedFiles := map[string]bool{}
	for _, o := range summary.Outcomes {
		if o.Status == pgsetup.StatusFailed {
			failedFiles[o.File] = true
		}
	}
	summary.FailedFiles = len(failedFiles)
	summary.Elapsed = time.Since(start)
	return summary
}

// executePerStatement is best-effort: each statement is its own unit of
// work, a rejected statement is recorded and execution continues. Only a
// transport-level failure stops the batch, because nothing further can be
// delivered on a dead connection.
func executePerStatement(ctx context.Context, conn pgsetup.Conn, batch []entry, opts Options, summary *pgsetup.Summary) {
	for pos, e := range batch {
		if ctx.Err() != nil {
			summary.Cancelled = true
			markNotAttempted(batch[pos:], opts, summary)
			return
		}

		if !runStatement(ctx, conn, e, len(batch), opts, summary) {
			markNotAttempted(batch[pos+1:], opts, summary)
			return
		}
	}
}

// executeSingleTransaction wraps the whole batch in one physical
// transaction. The first rejected statement rolls back everything executed
// so far; statements after it are never sent.
func executeSingleTransaction(ctx context.Context, conn pgsetup.Conn, batch []entry, opts Options, summary *pgsetup.Summary) {
	if len(batch) == 0 {
		return
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		wrapped := fmt.Errorf("begin transaction: %w (%w)", err, pgsetup.ErrConnectionFailed)
		summary.FirstError = wrapped
		markNotAttempted(batch, opts, summary)
		return
	}

	for pos, e := range batch {
		if ctx.Err() != nil {
			summary.Cancelled = true
			rollback(tx, summary, opts.Logger)
			markNotAttempted(batch[pos:], opts, summary)
			return
		}

		if !runStatement(ctx, tx, e, len(batch), opts, summary) {
			rollback(tx, summary, opts.Logger)
			markNotAttempted(batch[pos+1:], opts, summary)
			return
		}
	}

	// A cancel that landed during the last statement still rolls back.
	if ctx.Err() != nil {
		summary.Cancelled = true
		rollback(tx, summary, opts.Logger)
		return
	}

	if err := tx.Commit(context.WithoutCancel(ctx)); err != nil {
		wrapped := fmt.Errorf("commit: %w (%w)", err, pgsetup.ErrConnectionFailed)
		if summary.FirstError == nil {
			summary.FirstError = wrapped
		}
		if opts.Logger != nil {
			opts.Logger.Error("commit failed: %v", err)
		}
		return
	}
	if opts.Logger != nil {
		opts.Logger.Ok("transaction committed (%d statements)", len(batch))
	}
}

// runStatement sends one statement and records its outcome. It returns
// false when the batch must stop: a server rejection under
// SingleTransaction, or a transport failure under either mode.
func runStatement(ctx context.Context, ex execer, e entry, total int, opts Options, summary *pgsetup.Summary) bool {
	stmtStart := time.Now()
	// The statement in flight always runs to completion; cancellation is
	// only honored between statements by the callers' ctx.Err() checks.
	rows, err := ex.Exec(context.WithoutCancel(ctx), e.text)
	elapsed := time.Since(stmtStart)

	if err == nil {
		summary.Succeeded++
		summary.Outcomes = append(summary.Outcomes, pgsetup.Outcome{
			Index:        e.index,
			File:         e.file,
			Status:       pgsetup.StatusSucceeded,
			RowsAffected: rows,
			Elapsed:      elapsed,
		})
		emit(opts.Events, pgsetup.Progress{
			Index:        e.index,
			Total:        total,
			File:         e.file,
			RowsAffected: rows,
			Elapsed:      elapsed,
		})
		return true
	}

	stmtErr := &pgsetup.StatementError{
		Index: e.index,
		File:  e.file,
		SQL:   e.text,
		Err:   err,
	}
	summary.Failed++
	summary.Outcomes = append(summary.Outcomes, pgsetup.Outcome{
		Index:   e.index,
		File:    e.file,
		Status:  pgsetup.StatusFailed,
		Elapsed: elapsed,
		Err:     stmtErr,
	})
	if summary.FirstError == nil {
		summary.FirstError = stmtErr
	}
	emit(opts.Events, pgsetup.Failure{
		Index: e.index,
		Total: total,
		File:  e.file,
		Err:   stmtErr,
	})
	if opts.Logger != nil {
		opts.Logger.Error("%v", stmtErr)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		// Not a server rejection: the transport itself failed, so nothing
		// further can be attempted on this connection.
		return false
	}
	return summary.Mode != pgsetup.SingleTransaction
}

func rollback(tx pgsetup.Tx, summary *pgsetup.Summary, logger pgsetup.Logger) {
	summary.RolledBack = true
	if err := tx.Rollback(context.Background()); err != nil {
		if logger != nil {
			logger.Error("rollback failed: %v", err)
		}
		return
	}
	if logger != nil {
		logger.Warn("transaction rolled back")
	}
}

func markNotAttempted(rest []entry, opts Options, summary *pgsetup.Summary) {
	for _, e := range rest {
		summary.NotAttempted++
		summary.Outcomes = append(summary.Outcomes, pgsetup.Outcome{
			Index:  e.index,
			File:   e.file,
			Status: pgsetup.StatusNotAttempted,
		})
	}
}

func emit(events chan<- pgsetup.Event, ev pgsetup.Event) {
	if events != nil {
		events <- ev
	}
}

func flatten(scripts []pgsetup.Script) []entry {
	var batch []entry
	for _, s := range scripts {
		for _, stmt := range s.Statements {
			batch = append(batch, entry{
				index: len(batch),
				file:  s.File,
				text:  stmt.Text,
			})
		}
	}
	return batch
}
