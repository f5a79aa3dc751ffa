// Package lock provides host-local mutual exclusion for the syncwrap application.
//
// Concurrent syncwrap processes share two resources, the audit log and the
// lock itself. This package guarantees that a critical section (appending
// one audit record, or an entire transfer plus its record) runs for at most
// one invocation at a time.
//
// # Core Components
//
//   - Lock: interface with blocking Acquire, non-blocking TryAcquire and Path
//   - Guard: returned by a successful acquire; Release is idempotent
//   - FileLock: exclusive advisory lock on a lock file (github.com/gofrs/flock)
//   - DirLock: atomic-create mutex built on renaming a populated directory
//
// # Usage
//
//	l, err := lock.New(lock.StrategyFlock, "/var/lock/aws_s3_sync.lock", lock.Options{Owner: id})
//	if err != nil {
//	    // invalid strategy or empty path
//	}
//
//	g, err := lock.Hold(ctx, l, wait)
//	if err != nil {
//	    // errors.ErrLockHeld: another invocation holds it (non-blocking only)
//	    // errors.ErrLockAcquisitionFailure: the resource is unusable
//	}
//	defer g.Release()
//
// or, for a single function:
//
//	err := lock.WithLock(ctx, l, true, func() error {
//	    return journal.Append(record)
//	})
//
// # Blocking and Non-blocking Modes
//
// Acquire retries every Options.RetryDelay (100ms by default) until it
// succeeds or its context is done. It retries every failure, including
// permission errors; there is no ceiling. TryAcquire makes one attempt and
// reports ErrLockHeld when another invocation holds the lock.
//
// # Crash Safety
//
// A FileLock is released by the kernel when its process exits. A DirLock
// left behind by a process that died is detected through the PID in its
// owner file and reclaimed by the next acquirer; an empty lock directory is
// taken over directly. A DirLock never deletes a directory that contains
// anything other than its owner file.
//
// # Thread Safety
//
// A Guard may be released from any goroutine. Lock values are cheap; create
// one per invocation.
package lock
