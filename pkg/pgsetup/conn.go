package pgsetup

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Conn is the narrow connection capability the execution engine consumes.
// Outside an explicit transaction each Exec is its own unit of work
// (server-side autocommit), which is exactly PerStatement mode; Begin
// opens the single physical transaction for SingleTransaction mode.
//
// Thread-Safety: NOT safe for concurrent statement submission. The runner
// serializes access with a single worker slot.
type Conn interface {
	// Exec sends one statement and returns the number of rows affected.
	Exec(ctx context.Context, sql string) (int64, error)

	// Begin opens a transaction on the underlying connection.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is an open transaction on a Conn.
type Tx interface {
	// Exec sends one statement inside the transaction.
	Exec(ctx context.Context, sql string) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Querier abstracts read access for the dumper and the verifier. It is
// satisfied by *pgxpool.Pool, *pgxpool.Conn, and *pgx.Conn.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
