package pgsetup

import "time"

// Event is the closed union of messages a worker delivers to its initiator
// while a long-running operation runs. Consumers switch on the concrete
// type; the completion marker is a distinct kind, never a sentinel value
// smuggled through a generic message.
//
// Events for one operation are delivered in order on a bounded channel.
// A Completed event is always the final event, after which the channel
// is closed.
type Event interface {
	isEvent()
}

// Progress reports one statement that executed successfully.
type Progress struct {
	// Index is the zero-based position of the statement across the batch.
	Index int

	// Total is the number of statements in the batch.
	Total int

	// File is the source file the statement came from.
	File string

	RowsAffected int64
	Elapsed      time.Duration
}

// Failure reports one statement the server rejected.
type Failure struct {
	Index int
	Total int
	File  string

	// Err is a *StatementError carrying the failing SQL text.
	Err error
}

// Completed is the final event of an operation, carrying the full summary.
type Completed struct {
	Summary Summary
}

func (Progress) isEvent()  {}
func (Failure) isEvent()   {}
func (Completed) isEvent() {}
