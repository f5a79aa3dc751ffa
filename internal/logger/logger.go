package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Logger defines the common logging interface used throughout the application.
// It separates diagnostic logs, which are only emitted when debug output is
// enabled, from user-facing messages, which are always shown.
//
// Neither channel is the audit log. Audit records are written by the audit
// package.
type Logger interface {
	// Info logs an informational message for debugging purposes.
	//
	// The format string follows fmt.Printf style formatting.
	Info(format string, args ...interface{})

	// Warning logs a warning message for debugging purposes.
	//
	// The format string follows fmt.Printf style formatting.
	Warning(format string, args ...interface{})

	// Error logs an error message. Errors are always shown to the user on
	// stderr, and are also logged as diagnostics when debug output is enabled.
	//
	// The format string follows fmt.Printf style formatting.
	Error(format string, args ...interface{})

	// InfoToUser shows an informational message on stdout.
	//
	// The format string follows fmt.Printf style formatting.
	InfoToUser(format string, args ...interface{})

	// WarningToUser shows a warning on stderr.
	//
	// The format string follows fmt.Printf style formatting.
	WarningToUser(format string, args ...interface{})

	// Success shows a success message on stdout.
	//
	// The format string follows fmt.Printf style formatting.
	Success(format string, args ...interface{})

	// StatusMessage prints a plain line on stdout.
	//
	// The format string follows fmt.Printf style formatting.
	StatusMessage(format string, args ...interface{})

	// Close flushes diagnostic output.
	Close() error
}

var (
	successPrefix = color.New(color.FgGreen).Sprint("✅")
	infoPrefix    = color.New(color.FgCyan).Sprint("ℹ️ ")
	warningPrefix = color.New(color.FgYellow).Sprint("⚠️ ")
	errorPrefix   = color.New(color.FgRed).Sprint("❌")
)

// DefaultLogger writes diagnostics through zerolog and user messages as
// prefixed lines. It implements the Logger interface.
type DefaultLogger struct {
	mu     sync.Mutex
	zlog   zerolog.Logger
	debug  bool
	stdout io.Writer
	stderr io.Writer
}

// New creates a Logger writing to the process's stdout and stderr.
func New(debug bool) Logger {
	return NewWithOutput(debug, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers.
// Diagnostics go to stderr in zerolog's console format when debug is true
// and are discarded otherwise.
func NewWithOutput(debug bool, stdout, stderr io.Writer) *DefaultLogger {
	zlog := zerolog.Nop()
	if debug {
		console := zerolog.ConsoleWriter{
			Out:        stderr,
			TimeFormat: time.RFC3339,
			NoColor:    color.NoColor,
		}
		zlog = zerolog.New(console).With().Timestamp().Str("component", "syncwrap").Logger().Level(zerolog.DebugLevel)
	}

	return &DefaultLogger{
		zlog:   zlog,
		debug:  debug,
		stdout: stdout,
		stderr: stderr,
	}
}

// Zerolog returns the underlying diagnostic logger.
func (l *DefaultLogger) Zerolog() zerolog.Logger {
	return l.zlog
}

// Info logs an informational message (diagnostics only)
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zlog.Info().Msg(fmt.Sprintf(format, args...))
}

// Warning logs a warning message (diagnostics only)
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.zlog.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs an error message and always shows it on stderr
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.zlog.Error().Msg(msg)

	_, _ = fmt.Fprintf(l.stderr, "%s %s\n", errorPrefix, msg)
}

// InfoToUser shows an informational message on stdout
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.zlog.Info().Msg(msg)

	_, _ = fmt.Fprintf(l.stdout, "%s %s\n", infoPrefix, msg)
}

// WarningToUser shows a warning message on stderr
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.zlog.Warn().Msg(msg)

	_, _ = fmt.Fprintf(l.stderr, "%s %s\n", warningPrefix, msg)
}

// Success shows a success message on stdout
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	l.zlog.Info().Msg(msg)

	_, _ = fmt.Fprintf(l.stdout, "%s %s\n", successPrefix, msg)
}

// StatusMessage prints a status message to stdout only (no logging)
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.stdout, fmt.Sprintf(format, args...))
}

// Close implements Logger. Diagnostics are unbuffered, so there is nothing
// to flush.
func (l *DefaultLogger) Close() error {
	return nil
}

// SetStdout sets a custom writer for user-facing stdout messages only.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr sets a custom writer for user-facing stderr messages only.
// Diagnostics keep going to the writer given at construction.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}
