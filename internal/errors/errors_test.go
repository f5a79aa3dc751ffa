package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	originalErr := New("original error")
	wrappedErr := Wrap(originalErr, "wrapped message")

	assert.True(t, Is(wrappedErr, originalErr))
	assert.Equal(t, "wrapped message: original error", wrappedErr.Error())
}

func TestWrapf(t *testing.T) {
	originalErr := New("original error")
	wrappedErr := Wrapf(originalErr, "wrapped message with %s", "format")

	assert.True(t, Is(wrappedErr, originalErr))
	assert.Equal(t, "wrapped message with format: original error", wrappedErr.Error())
}

func TestTransferError(t *testing.T) {
	err := errors.New("executable file not found in $PATH")
	transferErr := NewTransferError([]string{"aws", "s3", "sync"}, 127, err)

	assert.Equal(t, `transfer "aws s3 sync" exited with status 127: executable file not found in $PATH`, transferErr.Error())
	assert.ErrorIs(t, transferErr, err)
}

func TestLockError(t *testing.T) {
	err := errors.New("file not found")

	lockErr := NewLockError("/tmp/lock.file", 1234, err)
	assert.Equal(t, "lock error with /tmp/lock.file (PID: 1234): file not found", lockErr.Error())

	lockErr = NewLockError("/tmp/lock.file", 0, err)
	assert.Equal(t, "lock error with /tmp/lock.file: file not found", lockErr.Error())

	assert.ErrorIs(t, lockErr, err)
}

func TestLogWriteError(t *testing.T) {
	logErr := NewLogWriteError("/var/log/sync.log", "1700000000-42-abcdef", fs.ErrPermission)

	assert.ErrorIs(t, logErr, ErrLogWriteFailure)
	assert.ErrorIs(t, logErr, fs.ErrPermission)
	assert.Contains(t, logErr.Error(), "1700000000-42-abcdef")
	assert.Contains(t, logErr.Error(), "/var/log/sync.log")
}

func TestConfigError(t *testing.T) {
	err := errors.New("invalid value")

	configErr := NewConfigError("lock_scope", "everything", err)
	assert.Equal(t, "configuration error for lock_scope = everything: invalid value", configErr.Error())

	configErr = NewConfigError("command", nil, err)
	assert.Equal(t, "configuration error for command: invalid value", configErr.Error())

	assert.ErrorIs(t, configErr, err)
}

func TestErrorMatching(t *testing.T) {
	lockErr := NewLockError("/var/lock/sync.lock", 99, ErrLockHeld)

	assert.True(t, Is(lockErr, ErrLockHeld))
	assert.False(t, Is(lockErr, ErrLockAcquisitionFailure))

	var le *LockError
	require.True(t, As(lockErr, &le))
	assert.Equal(t, 99, le.PID)

	wrappedErr := Wrap(lockErr, "operation failed")
	assert.True(t, Is(wrappedErr, ErrLockHeld))
	assert.True(t, As(wrappedErr, &le))
}

func TestJoin(t *testing.T) {
	assert.NoError(t, Join(nil, nil))

	joined := Join(ErrLockHeld, nil, ErrLogWriteFailure)
	assert.ErrorIs(t, joined, ErrLockHeld)
	assert.ErrorIs(t, joined, ErrLogWriteFailure)
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidConfiguration,
		ErrMissingArguments,
		ErrLockHeld,
		ErrLockAcquisitionFailure,
		ErrTransferFailed,
		ErrLogWriteFailure,
		ErrRecordNotFound,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
