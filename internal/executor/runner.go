package executor

import (
	"context"
	"sync"

	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// Runner owns the single worker slot for long-running operations against
// one connection. The connection capability is not safe for concurrent
// statement submission, so at most one operation may be in flight; Start
// returns pgsetup.ErrBusy while one is running.
type Runner struct {
	mu   sync.Mutex
	busy bool
}

// NewRunner creates a Runner with a free worker slot.
func NewRunner() *Runner {
	return &Runner{}
}

// Start launches the batch on a background worker and returns the event
// channel the initiator consumes. Events arrive in order: zero or more
// Progress/Failure events, then exactly one Completed carrying the
// Summary, after which the channel is closed. The channel is bounded;
// a stalled consumer backpressures the worker rather than growing memory.
//
// Cancel via ctx: the worker finishes the statement in flight, marks the
// rest not-attempted, and completes normally with Summary.Cancelled set.
func (r *Runner) Start(ctx context.Context, conn pgsetup.Conn, scripts []pgsetup.Script, opts Options) (<-chan pgsetup.Event, error) {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return nil, pgsetup.ErrBusy
	}
	r.busy = true
	r.mu.Unlock()

	events := make(chan pgsetup.Event, pgsetup.DefaultEventBuffer)
	opts.Events = events

	go func() {
		defer func() {
			r.mu.Lock()
			r.busy = false
			r.mu.Unlock()
			close(events)
		}()

		summary := Execute(ctx, conn, scripts, opts)
		events <- pgsetup.Completed{Summary: summary}
	}()

	return events, nil
}
