// Package logging provides concrete implementations of the pgsetup.Logger interface.
package logging

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Tag styles match the original desktop tool's log panel palette.
var (
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	styleOk    = lipgloss.NewStyle().Foreground(lipgloss.Color("43"))
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// ConsoleLogger writes tagged log messages to stderr.
// Tags are colored when stderr is a terminal and NO_COLOR is unset.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose bool
	color   bool
	mu      sync.Mutex
}

// NewConsoleLogger creates a new ConsoleLogger.
// If verbose is true, Verbose() calls will produce output.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	color := term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == ""
	return &ConsoleLogger{
		verbose: verbose,
		color:   color,
	}
}

func (l *ConsoleLogger) write(tag string, style lipgloss.Style, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.color {
		tag = style.Render(tag)
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", tag, msg)
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write("VERBOSE", styleInfo, format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("INFO", styleInfo, format, args)
}

// Ok logs successful completion of a step.
func (l *ConsoleLogger) Ok(format string, args ...interface{}) {
	l.write("OK", styleOk, format, args)
}

// Warn logs recoverable problems.
func (l *ConsoleLogger) Warn(format string, args ...interface{}) {
	l.write("WARN", styleWarn, format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write("ERROR", styleError, format, args)
}
