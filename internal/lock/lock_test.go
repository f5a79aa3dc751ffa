package lock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
)

// fakeLock records which acquire method was used.
type fakeLock struct {
	acquireCalled    bool
	tryAcquireCalled bool
	acquireErr       error
	releaseErr       error
	releases         int
}

func (f *fakeLock) Acquire(ctx context.Context) (Guard, error) {
	f.acquireCalled = true
	return f.guard()
}

func (f *fakeLock) TryAcquire(ctx context.Context) (Guard, error) {
	f.tryAcquireCalled = true
	return f.guard()
}

func (f *fakeLock) Path() string { return "/fake.lock" }

func (f *fakeLock) guard() (Guard, error) {
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	return newGuard(func() error {
		f.releases++
		return f.releaseErr
	}), nil
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]struct {
		strategy Strategy
		path     string
		wantType interface{}
		wantErr  bool
	}{
		"Flock": {
			strategy: StrategyFlock,
			path:     filepath.Join(dir, "sync.lock"),
			wantType: &FileLock{},
		},
		"Mkdir": {
			strategy: StrategyMkdir,
			path:     filepath.Join(dir, "sync.lock.d"),
			wantType: &DirLock{},
		},
		"UnknownStrategy": {
			strategy: Strategy("semaphore"),
			path:     filepath.Join(dir, "sync.lock"),
			wantErr:  true,
		},
		"EmptyPath": {
			strategy: StrategyFlock,
			path:     "",
			wantErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			l, err := New(test.strategy, test.path, Options{})
			if test.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, syncwrapErrors.ErrInvalidConfiguration)

				var configErr *syncwrapErrors.ConfigError
				assert.ErrorAs(t, err, &configErr)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, test.wantType, l)
			assert.Equal(t, test.path, l.Path())
		})
	}
}

func TestNew_DefaultRetryDelay(t *testing.T) {
	l, err := New(StrategyMkdir, filepath.Join(t.TempDir(), "x"), Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultRetryDelay, l.(*DirLock).opts.RetryDelay)
	assert.Equal(t, 100*time.Millisecond, DefaultRetryDelay)
}

func TestHold(t *testing.T) {
	t.Run("Wait", func(t *testing.T) {
		f := &fakeLock{}
		_, err := Hold(context.Background(), f, true)
		require.NoError(t, err)
		assert.True(t, f.acquireCalled)
		assert.False(t, f.tryAcquireCalled)
	})

	t.Run("NoWait", func(t *testing.T) {
		f := &fakeLock{}
		_, err := Hold(context.Background(), f, false)
		require.NoError(t, err)
		assert.False(t, f.acquireCalled)
		assert.True(t, f.tryAcquireCalled)
	})
}

func TestWithLock(t *testing.T) {
	t.Run("ReleasesAfterSuccess", func(t *testing.T) {
		f := &fakeLock{}
		ran := false

		err := WithLock(context.Background(), f, true, func() error {
			ran = true
			assert.Equal(t, 0, f.releases, "lock released before fn finished")
			return nil
		})

		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, 1, f.releases)
	})

	t.Run("ReleasesAfterError", func(t *testing.T) {
		f := &fakeLock{}
		fnErr := errors.New("append failed")

		err := WithLock(context.Background(), f, true, func() error { return fnErr })

		assert.ErrorIs(t, err, fnErr)
		assert.Equal(t, 1, f.releases)
	})

	t.Run("ReleasesAfterPanic", func(t *testing.T) {
		f := &fakeLock{}

		assert.Panics(t, func() {
			_ = WithLock(context.Background(), f, true, func() error { panic("boom") })
		})
		assert.Equal(t, 1, f.releases)
	})

	t.Run("JoinsReleaseError", func(t *testing.T) {
		releaseErr := errors.New("release failed")
		f := &fakeLock{releaseErr: releaseErr}

		err := WithLock(context.Background(), f, true, func() error { return nil })

		assert.ErrorIs(t, err, releaseErr)
	})

	t.Run("AcquireErrorSkipsFn", func(t *testing.T) {
		f := &fakeLock{acquireErr: syncwrapErrors.NewLockError("/fake.lock", 7, syncwrapErrors.ErrLockHeld)}
		ran := false

		err := WithLock(context.Background(), f, false, func() error {
			ran = true
			return nil
		})

		assert.ErrorIs(t, err, syncwrapErrors.ErrLockHeld)
		assert.False(t, ran)
		assert.Equal(t, 0, f.releases)
	})
}

func TestGuard_ReleasesOnce(t *testing.T) {
	calls := 0
	releaseErr := errors.New("first release failed")
	g := newGuard(func() error {
		calls++
		return releaseErr
	})

	assert.ErrorIs(t, g.Release(), releaseErr)
	assert.ErrorIs(t, g.Release(), releaseErr)
	assert.Equal(t, 1, calls)
}

func TestRetryUntilAcquired(t *testing.T) {
	t.Run("RetriesUntilSuccess", func(t *testing.T) {
		attempts := 0
		var retried []int

		opts := Options{
			RetryDelay: time.Millisecond,
			OnRetry:    func(attempt int, err error) { retried = append(retried, attempt) },
		}
		g, err := retryUntilAcquired(context.Background(), "/p", opts, func(context.Context) (Guard, error) {
			attempts++
			if attempts < 3 {
				return nil, held("/p", 1)
			}
			return newGuard(func() error { return nil }), nil
		})

		require.NoError(t, err)
		require.NotNil(t, g)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, []int{1, 2}, retried)
	})

	t.Run("RetriesPermanentFailures", func(t *testing.T) {
		attempts := 0
		_, err := retryUntilAcquired(context.Background(), "/p", Options{RetryDelay: time.Millisecond}, func(context.Context) (Guard, error) {
			attempts++
			if attempts < 5 {
				return nil, unavailable("/p", errors.New("permission denied"))
			}
			return newGuard(func() error { return nil }), nil
		})

		require.NoError(t, err)
		assert.Equal(t, 5, attempts)
	})

	t.Run("StopsOnContextDone", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := retryUntilAcquired(ctx, "/p", Options{RetryDelay: 5 * time.Millisecond}, func(context.Context) (Guard, error) {
			return nil, held("/p", 1)
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, syncwrapErrors.ErrLockAcquisitionFailure)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
