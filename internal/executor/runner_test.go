package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

func TestRunner_CompletedIsLastEvent(t *testing.T) {
	runner := NewRunner()
	conn := newMockConn()
	scripts := []pgsetup.Script{script("a.sql", "A", "B")}

	events, err := runner.Start(context.Background(), conn, scripts, Options{})
	require.NoError(t, err)

	collected := drainEvents(events)
	require.NotEmpty(t, collected)

	completed, ok := collected[len(collected)-1].(pgsetup.Completed)
	require.True(t, ok, "last event should be Completed, got %T", collected[len(collected)-1])
	assert.Equal(t, 2, completed.Summary.Succeeded)

	for _, ev := range collected[:len(collected)-1] {
		_, isCompleted := ev.(pgsetup.Completed)
		assert.False(t, isCompleted, "Completed must appear exactly once, at the end")
	}
}

func TestRunner_BusySlot(t *testing.T) {
	runner := NewRunner()
	conn := newMockConn()

	// Hold the slot by not consuming events past the buffer: use a
	// blocking first statement instead. The mock is synchronous, so gate
	// the worker with a channel.
	release := make(chan struct{})
	gate := &gatedConn{inner: conn, release: release}

	events, err := runner.Start(context.Background(), gate, []pgsetup.Script{script("a.sql", "A")}, Options{})
	require.NoError(t, err)

	// Second start while the first is in flight.
	_, err = runner.Start(context.Background(), conn, []pgsetup.Script{script("b.sql", "B")}, Options{})
	assert.ErrorIs(t, err, pgsetup.ErrBusy)

	close(release)
	drainEvents(events)

	// Slot frees after completion.
	events2, err := runner.Start(context.Background(), conn, []pgsetup.Script{script("b.sql", "B")}, Options{})
	require.NoError(t, err)
	drainEvents(events2)
}

// gatedConn blocks the first Exec until released, keeping the worker
// slot observably busy.
type gatedConn struct {
	inner   *mockConn
	release <-chan struct{}
}

func (g *gatedConn) Exec(ctx context.Context, sql string) (int64, error) {
	<-g.release
	return g.inner.Exec(ctx, sql)
}

func (g *gatedConn) Begin(ctx context.Context) (pgsetup.Tx, error) {
	return g.inner.Begin(ctx)
}

func TestRunner_ChannelClosesAfterCompleted(t *testing.T) {
	runner := NewRunner()
	conn := newMockConn()

	events, err := runner.Start(context.Background(), conn, []pgsetup.Script{script("a.sql", "A")}, Options{})
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	sawCompleted := false
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				require.True(t, sawCompleted, "channel closed before Completed")
				return
			}
			if _, isCompleted := ev.(pgsetup.Completed); isCompleted {
				sawCompleted = true
			}
		case <-deadline:
			t.Fatal("event channel never closed")
		}
	}
}
