package pgsetup

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitLexError        = 12 // SQL script could not be split into statements
	ExitExecutionFailed = 13 // SQL execution failed

	// ExitCancelled follows the shell convention of 128+SIGINT for runs
	// stopped by the user before completion.
	ExitCancelled = 130
)

const (
	// DefaultMaintenanceDB is the database to connect to for server-level
	// operations such as listing databases.
	DefaultMaintenanceDB = "postgres"

	// DefaultDataBatchSize is the number of rows fetched and flushed per
	// batch when dumping table data. Bounds memory for arbitrarily large
	// tables.
	DefaultDataBatchSize = 1000

	// DefaultEventBuffer is the capacity of the execution event channel.
	// Large enough that the worker rarely blocks on a slow consumer, small
	// enough to keep memory bounded.
	DefaultEventBuffer = 64

	// MaxErrorPreviewLength is the maximum number of characters of a failing
	// statement shown inline in error messages. The full text is always
	// available on the StatementError itself.
	MaxErrorPreviewLength = 200

	// PresetFileName is the JSON file holding saved connection presets,
	// located next to the executable.
	PresetFileName = "presets.json"
)

// Connection defaults, matching PostgreSQL conventions.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 5432
	DefaultUser     = "postgres"
	DefaultDatabase = "postgres"
	DefaultSSLMode  = "prefer"
)
