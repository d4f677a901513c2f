package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// ConnAdapter pins one connection acquired from a pool and exposes it as a
// pgsetup.Conn. Pinning matters: session state such as SET commands and
// autocommit semantics only hold if every statement of a run travels over
// the same physical connection.
//
// Thread-Safety: NOT safe for concurrent use. The runner serializes access.
type ConnAdapter struct {
	conn *pgxpool.Conn
}

// AcquireConn pins a dedicated connection from the pool.
func AcquireConn(ctx context.Context, pool *pgxpool.Pool) (*ConnAdapter, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &ConnAdapter{conn: conn}, nil
}

// Exec sends one statement outside any explicit transaction.
func (a *ConnAdapter) Exec(ctx context.Context, sql string) (int64, error) {
	tag, err := a.conn.Exec(ctx, sql)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Begin opens a transaction on the pinned connection.
func (a *ConnAdapter) Begin(ctx context.Context) (pgsetup.Tx, error) {
	tx, err := a.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txAdapter{tx: tx}, nil
}

// Release returns the pinned connection to the pool.
func (a *ConnAdapter) Release() {
	a.conn.Release()
}

// txAdapter adapts pgx.Tx to pgsetup.Tx.
type txAdapter struct {
	tx pgx.Tx
}

func (t *txAdapter) Exec(ctx context.Context, sql string) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *txAdapter) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *txAdapter) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

var _ pgsetup.Conn = (*ConnAdapter)(nil)
var _ pgsetup.Tx = (*txAdapter)(nil)
