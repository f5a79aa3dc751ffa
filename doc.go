// Package syncwrap serializes runs of an external sync command
//
// syncwrap wraps a directory synchronization command (by default
// "aws s3 sync") so that many concurrent invocations, started by cron jobs,
// CI pipelines or operators, can share one machine without corrupting a
// common audit log. Every invocation receives a unique invocation ID, runs
// the sync command with its arguments forwarded verbatim, and appends
// exactly one JSON line describing the result to the audit log.
//
// # Quick Start
//
//	# Sync a directory, forwarding --delete to the sync command
//	syncwrap /srv/data s3://bucket/data --delete
//
//	# Print the sync command's output on success as well
//	syncwrap -o /srv/data s3://bucket/data
//
//	# Look up the record of a failed run
//	syncwrap --find 1718020798500000-4242-9f86d081884c
//
// # Locking
//
// A single advisory lock guards the audit log. By default it is held only
// while the record is appended, so transfers run in parallel. With
// --lock-scope=invocation the lock is held for the whole run, which
// serializes the transfers themselves. Two lock strategies are available:
//
//   - flock: an OS advisory lock on a lock file, released by the kernel
//     when the process dies
//   - mkdir: an atomic lock directory carrying an owner file, with stale
//     owners reclaimed by pid
//
// # Exit Status
//
// syncwrap exits with the sync command's own status. A status of 1 is also
// used for usage, configuration and lock failures, and 128+N when the
// wrapper is stopped by signal N before the transfer produced a status.
//
// # Module Structure
//
//   - cmd/syncwrap: Command-line interface
//   - internal/wrapper: The lock, transfer and record workflow
//   - internal/transfer: Sync command execution
//   - internal/lock: flock and mkdir lock strategies
//   - internal/audit: Record encoding, the append-only journal and lookups
//   - internal/outcome: Exit status classification
//   - internal/invocation: Invocation IDs and timing
//   - internal/config: Defaults, config file, environment and flags
//   - internal/logger: Diagnostic and user-facing output
//   - internal/errors: Error handling utilities
//   - internal/constants: Fixed values
//
// # Platform Support
//
// syncwrap targets Linux and macOS. On other platforms the mkdir strategy
// probes lock owners with os.FindProcess, so a reused PID keeps a stale lock.
package syncwrap
