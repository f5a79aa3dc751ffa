package lock

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
)

func TestFileLock_TryAcquireAndRelease(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "nested", "sync.lock")
	first := NewFileLock(lockPath, Options{Owner: "first"})
	second := NewFileLock(lockPath, Options{Owner: "second"})

	g, err := first.TryAcquire(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(lockPath)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Equal(t, strconv.Itoa(os.Getpid()), lines[0])
	assert.Equal(t, "first", lines[1])

	_, err = second.TryAcquire(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, syncwrapErrors.ErrLockHeld)

	var lockErr *syncwrapErrors.LockError
	require.ErrorAs(t, err, &lockErr)
	assert.Equal(t, os.Getpid(), lockErr.PID)
	assert.Equal(t, lockPath, lockErr.LockFile)

	require.NoError(t, g.Release())

	_, err = os.Stat(lockPath)
	assert.NoError(t, err, "lock file must survive release")

	g2, err := second.TryAcquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, g2.Release())
}

func TestFileLock_AcquireWaitsForRelease(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "sync.lock")
	holder := NewFileLock(lockPath, Options{})
	waiter := NewFileLock(lockPath, Options{RetryDelay: 5 * time.Millisecond})

	g, err := holder.TryAcquire(context.Background())
	require.NoError(t, err)

	const holdFor = 50 * time.Millisecond
	go func() {
		time.Sleep(holdFor)
		_ = g.Release()
	}()

	start := time.Now()
	g2, err := waiter.Acquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = g2.Release() }()

	assert.GreaterOrEqual(t, time.Since(start), holdFor-5*time.Millisecond)
}

func TestFileLock_AcquireHonorsContext(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "sync.lock")
	holder := NewFileLock(lockPath, Options{})
	g, err := holder.TryAcquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = g.Release() }()

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	retries := 0
	waiter := NewFileLock(lockPath, Options{
		RetryDelay: 5 * time.Millisecond,
		OnRetry:    func(int, error) { retries++ },
	})
	_, err = waiter.Acquire(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, syncwrapErrors.ErrLockAcquisitionFailure)
	assert.Greater(t, retries, 0)
}

func TestFileLock_UnusablePath(t *testing.T) {
	t.Parallel()

	// A regular file where the lock's parent directory should be.
	parent := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0644))

	l := NewFileLock(filepath.Join(parent, "sync.lock"), Options{})
	_, err := l.TryAcquire(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, syncwrapErrors.ErrLockAcquisitionFailure)
	assert.NotErrorIs(t, err, syncwrapErrors.ErrLockHeld)
}

func TestFileLock_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewFileLock(filepath.Join(t.TempDir(), "sync.lock"), Options{})
	_, err := l.TryAcquire(ctx)

	assert.ErrorIs(t, err, syncwrapErrors.ErrLockAcquisitionFailure)
	assert.ErrorIs(t, err, context.Canceled)
}
