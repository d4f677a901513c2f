package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// mockConn scripts per-statement behavior by SQL text. Unlisted statements
// succeed with one row affected.
type mockConn struct {
	mu sync.Mutex

	// failWith maps statement text to the error its Exec returns.
	failWith map[string]error

	// executed records every statement sent, in order, including those
	// sent inside a transaction.
	executed []string

	begins    int
	beginErr  error
	commits   int
	rollbacks int
}

func newMockConn() *mockConn {
	return &mockConn{failWith: map[string]error{}}
}

func (m *mockConn) failOn(sql string, err error) {
	m.failWith[sql] = err
}

func (m *mockConn) exec(sql string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executed = append(m.executed, sql)
	if err, ok := m.failWith[sql]; ok {
		return 0, err
	}
	return 1, nil
}

func (m *mockConn) Exec(ctx context.Context, sql string) (int64, error) {
	return m.exec(sql)
}

func (m *mockConn) Begin(ctx context.Context) (pgsetup.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.begins++
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	return &mockTx{conn: m}, nil
}

type mockTx struct {
	conn *mockConn
}

func (t *mockTx) Exec(ctx context.Context, sql string) (int64, error) {
	return t.conn.exec(sql)
}

func (t *mockTx) Commit(ctx context.Context) error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.commits++
	return nil
}

func (t *mockTx) Rollback(ctx context.Context) error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.rollbacks++
	return nil
}

// pgError builds a server-rejection error the way the driver reports one.
func pgError(code, message string) error {
	return &pgconn.PgError{Code: code, Message: message, Severity: "ERROR"}
}

// transportError stands in for a dead-connection failure: not a PgError.
func transportError() error {
	return fmt.Errorf("unexpected EOF")
}

// script builds a one-file Script from statement texts.
func script(file string, texts ...string) pgsetup.Script {
	s := pgsetup.Script{File: file}
	for i, text := range texts {
		s.Statements = append(s.Statements, pgsetup.Statement{Index: i, Text: text})
	}
	return s
}

// drainEvents collects every event from a channel until it closes.
func drainEvents(events <-chan pgsetup.Event) []pgsetup.Event {
	var out []pgsetup.Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}
