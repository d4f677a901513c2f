package pgsetup

// Logger provides a pluggable logging interface for pgsetup operations.
// The tag methods mirror the tool's log categories: Info for progress,
// Ok for completed steps, Warn for recoverable conditions, Error for
// failures. Implementations must be safe for concurrent use by multiple
// goroutines.
type Logger interface {
	// Verbose logs detailed diagnostic information.
	// Only logged when verbose mode is enabled.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations.
	Info(format string, args ...interface{})

	// Ok logs successful completion of a step.
	Ok(format string, args ...interface{})

	// Warn logs recoverable problems, such as a rolled-back file in
	// per-statement mode.
	Warn(format string, args ...interface{})

	// Error logs error messages.
	Error(format string, args ...interface{})
}
