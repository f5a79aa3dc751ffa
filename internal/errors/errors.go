package errors

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration
	ErrInvalidConfiguration = errors.Base("invalid configuration")

	// ErrMissingArguments indicates the source or destination positional is absent
	ErrMissingArguments = errors.Base("source and destination are required")

	// ErrLockHeld indicates another invocation holds the lock and we were told not to wait
	ErrLockHeld = errors.Base("lock is held by another invocation")

	// ErrLockAcquisitionFailure indicates the lock resource could not be used at all
	ErrLockAcquisitionFailure = errors.Base("failed to acquire lock")

	// ErrTransferFailed indicates the transfer command could not be run to completion
	ErrTransferFailed = errors.Base("transfer command failed")

	// ErrLogWriteFailure indicates the audit record could not be appended
	ErrLogWriteFailure = errors.Base("failed to write audit record")

	// ErrRecordNotFound indicates no audit record matched a lookup
	ErrRecordNotFound = errors.Base("audit record not found")
)

// New creates a new error with the given message and a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Errorf creates a new formatted error. %w verbs wrap as usual.
func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return errors.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether target is in err's chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join returns an error wrapping all non-nil errs, or nil when there are none.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// TransferError represents a transfer command that could not be started or
// was terminated before it could report its own exit status.
type TransferError struct {
	Command []string
	Status  int
	Err     error
}

// Error implements the error interface with the command line and normalized status.
func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %q exited with status %d: %v", strings.Join(e.Command, " "), e.Status, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// NewTransferError creates a new TransferError with the given parameters.
func NewTransferError(command []string, status int, err error) *TransferError {
	return &TransferError{
		Command: command,
		Status:  status,
		Err:     err,
	}
}

// LockError represents an error that occurred when interacting with a lock resource.
// It includes the lock path, the owning process ID if known, and the underlying error.
type LockError struct {
	LockFile string
	PID      int
	Err      error
}

// Error implements the error interface with details about the lock resource and process.
func (e *LockError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("lock error with %s (PID: %d): %v", e.LockFile, e.PID, e.Err)
	}
	return fmt.Sprintf("lock error with %s: %v", e.LockFile, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LockError) Unwrap() error {
	return e.Err
}

// NewLockError creates a new LockError with the given parameters.
func NewLockError(lockFile string, pid int, err error) *LockError {
	return &LockError{
		LockFile: lockFile,
		PID:      pid,
		Err:      err,
	}
}

// LogWriteError is returned when an audit record could not be persisted.
// The invocation ID is kept so the caller can still correlate the failure.
type LogWriteError struct {
	LogFile      string
	InvocationID string
	Err          error
}

func (e *LogWriteError) Error() string {
	return fmt.Sprintf("failed to write audit record for invocation %s to %s: %v", e.InvocationID, e.LogFile, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LogWriteError) Unwrap() error {
	return e.Err
}

// NewLogWriteError creates a LogWriteError that also matches ErrLogWriteFailure.
func NewLogWriteError(logFile, invocationID string, err error) *LogWriteError {
	return &LogWriteError{
		LogFile:      logFile,
		InvocationID: invocationID,
		Err:          errors.Errorf("%w: %w", ErrLogWriteFailure, err),
	}
}

// ConfigError represents an error in the application configuration.
// It includes the parameter name, its value if available, and the underlying error.
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface with details about the invalid configuration.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value interface{}, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}
