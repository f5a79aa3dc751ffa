// Package errors provides error handling utilities for the syncwrap application.
//
// It defines the sentinel errors every other package matches against, and the
// typed errors that carry the context a user needs to act on a failure (the
// lock path and owner, the transfer command and its status, the audit log path
// and the invocation ID). Wrapping is implemented on gitlab.com/tozd/go/errors
// so errors created here record a stack trace, while remaining compatible with
// errors.Is and errors.As from the standard library.
//
// # Usage
//
//	if err != nil {
//	    return errors.Wrap(err, "failed to open audit log")
//	}
//
//	if errors.Is(err, errors.ErrLockHeld) {
//	    // another invocation is running
//	}
//
// # Error Types
//
//   - LockError: lock resource problems, matches ErrLockHeld or ErrLockAcquisitionFailure
//   - TransferError: the transfer command could not run to completion
//   - LogWriteError: the audit record could not be appended, matches ErrLogWriteFailure
//   - ConfigError: invalid flags, environment values or config file entries
package errors
