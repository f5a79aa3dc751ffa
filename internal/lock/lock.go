package lock

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
)

// DefaultRetryDelay is how long a blocking acquire sleeps between attempts.
const DefaultRetryDelay = 100 * time.Millisecond

// Strategy selects the filesystem primitive a Lock is built on.
type Strategy string

const (
	// StrategyFlock takes an exclusive advisory lock on a lock file.
	StrategyFlock Strategy = "flock"

	// StrategyMkdir atomically creates a lock directory.
	StrategyMkdir Strategy = "mkdir"
)

// Strategies lists the accepted strategy names.
var Strategies = []Strategy{StrategyFlock, StrategyMkdir}

// Guard is returned by a successful acquire. Release is safe to call more
// than once; only the first call releases the lock.
type Guard interface {
	Release() error
}

// Lock serializes a critical section between processes on one host.
type Lock interface {
	// Acquire blocks until the lock is held or ctx is done.
	Acquire(ctx context.Context) (Guard, error)

	// TryAcquire makes a single attempt and fails fast when the lock is held.
	TryAcquire(ctx context.Context) (Guard, error)

	// Path returns the lock resource location.
	Path() string
}

// Options tune a Lock.
type Options struct {
	// RetryDelay is the pause between blocking attempts (DefaultRetryDelay if zero).
	RetryDelay time.Duration

	// Owner identifies the holder in lock metadata, usually the invocation ID.
	Owner string

	// OnRetry, when set, is called after each failed blocking attempt.
	OnRetry func(attempt int, err error)
}

// New creates a Lock for path using the given strategy.
func New(strategy Strategy, path string, opts Options) (Lock, error) {
	if path == "" {
		return nil, syncwrapErrors.NewConfigError("lock", nil,
			syncwrapErrors.Wrap(syncwrapErrors.ErrInvalidConfiguration, "lock path is empty"))
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	switch strategy {
	case StrategyFlock:
		return NewFileLock(path, opts), nil
	case StrategyMkdir:
		return NewDirLock(path, opts), nil
	default:
		return nil, syncwrapErrors.NewConfigError("lock_strategy", string(strategy),
			syncwrapErrors.Wrapf(syncwrapErrors.ErrInvalidConfiguration, "must be one of %v", Strategies))
	}
}

// Hold acquires l, waiting when wait is true and failing fast otherwise.
func Hold(ctx context.Context, l Lock, wait bool) (Guard, error) {
	if wait {
		return l.Acquire(ctx)
	}
	return l.TryAcquire(ctx)
}

// WithLock runs fn while holding l. The lock is released on every return
// path, including a panic in fn.
func WithLock(ctx context.Context, l Lock, wait bool, fn func() error) (err error) {
	g, err := Hold(ctx, l, wait)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := g.Release(); releaseErr != nil {
			err = syncwrapErrors.Join(err, releaseErr)
		}
	}()

	return fn()
}

// guard releases through fn exactly once.
type guard struct {
	once    sync.Once
	release func() error
	err     error
}

func newGuard(release func() error) *guard {
	return &guard{release: release}
}

func (g *guard) Release() error {
	g.once.Do(func() {
		g.err = g.release()
	})
	return g.err
}

// retryUntilAcquired calls try until it succeeds or ctx is done.
// Every failure is retried, including permission errors: a blocking
// acquire never gives up on its own.
func retryUntilAcquired(ctx context.Context, path string, opts Options, try func(context.Context) (Guard, error)) (Guard, error) {
	for attempt := 1; ; attempt++ {
		g, err := try(ctx)
		if err == nil {
			return g, nil
		}

		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}

		timer := time.NewTimer(opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, unavailable(path, ctx.Err())
		case <-timer.C:
		}
	}
}

// unavailable wraps err so it matches ErrLockAcquisitionFailure.
func unavailable(path string, err error) error {
	return syncwrapErrors.NewLockError(path, 0,
		syncwrapErrors.Errorf("%w: %w", syncwrapErrors.ErrLockAcquisitionFailure, err))
}

// held reports that pid (0 if unknown) owns the lock.
func held(path string, pid int) error {
	return syncwrapErrors.NewLockError(path, pid, syncwrapErrors.ErrLockHeld)
}

// ensureParent creates the directory that will contain path.
func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return syncwrapErrors.Wrapf(err, "failed to create lock directory %s", dir)
	}
	return nil
}
