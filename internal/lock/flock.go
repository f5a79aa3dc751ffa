package lock

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// FileLock is an exclusive advisory lock on a fixed lock file.
//
// The kernel drops the lock when the holding process exits, however it exits,
// so a FileLock can never be left stale. The lock file itself is never
// removed: deleting it while another process waits on the same inode would
// let two holders in.
type FileLock struct {
	path string
	opts Options
	pid  int
}

// NewFileLock creates a FileLock for path.
func NewFileLock(path string, opts Options) *FileLock {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &FileLock{
		path: path,
		opts: opts,
		pid:  os.Getpid(),
	}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Acquire blocks until the advisory lock is held or ctx is done.
func (l *FileLock) Acquire(ctx context.Context) (Guard, error) {
	return retryUntilAcquired(ctx, l.path, l.opts, l.TryAcquire)
}

// TryAcquire attempts to take the lock once.
func (l *FileLock) TryAcquire(ctx context.Context) (Guard, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(l.path, err)
	}
	if err := ensureParent(l.path); err != nil {
		return nil, unavailable(l.path, err)
	}

	fl := flock.New(l.path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, unavailable(l.path, err)
	}
	if !locked {
		return nil, held(l.path, l.readHolderPid())
	}

	// Holder metadata is informational only; the flock is the lock.
	_ = os.WriteFile(l.path, []byte(fmt.Sprintf("%d\n%s\n", l.pid, l.opts.Owner)), 0644)

	return newGuard(fl.Unlock), nil
}

// readHolderPid returns the PID recorded by the current holder, or 0.
func (l *FileLock) readHolderPid() int {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0
	}
	first, _, _ := strings.Cut(string(data), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0
	}
	return pid
}
