package transfer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
)

// shell returns a command that runs script with source, destination and
// options as its positional parameters.
func shell(script string) []string {
	return []string{"sh", "-c", script, "sh"}
}

func TestExecInvoker_ExitStatus(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		script         string
		expectedStatus int
		expectedOutput string
	}{
		"Success": {
			script:         "echo synced",
			expectedStatus: 0,
			expectedOutput: "synced\n",
		},
		"GeneralError": {
			script:         "echo 'upload failed' >&2; exit 1",
			expectedStatus: 1,
			expectedOutput: "upload failed\n",
		},
		"PermissionError": {
			script:         "echo 'access denied' >&2; exit 2",
			expectedStatus: 2,
			expectedOutput: "access denied\n",
		},
		"ArbitraryStatus": {
			script:         "exit 42",
			expectedStatus: 42,
			expectedOutput: "",
		},
		"KilledBySignal": {
			script:         "kill -TERM $$",
			expectedStatus: 143,
			expectedOutput: "",
		},
		"InterleavedStreams": {
			script:         "echo one; echo two >&2; echo three",
			expectedStatus: 0,
			expectedOutput: "one\ntwo\nthree\n",
		},
	}

	for name, test := range tests {
		name := name
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			invoker := NewExecInvoker(shell(test.script))
			result, err := invoker.Run(context.Background(), "src", "dst", nil)

			require.NoError(t, err)
			assert.Equal(t, test.expectedStatus, result.ExitStatus)
			assert.Equal(t, test.expectedOutput, result.Output)
		})
	}
}

func TestExecInvoker_ForwardsArgumentsVerbatim(t *testing.T) {
	t.Parallel()

	invoker := NewExecInvoker(shell(`printf '%s|' "$@"`))
	options := []string{"--delete", "--exclude", "*.tmp", "two words", ""}

	result, err := invoker.Run(context.Background(), "/data", "s3://bucket/prefix", options)

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitStatus)
	assert.Equal(t, "/data|s3://bucket/prefix|--delete|--exclude|*.tmp|two words||", result.Output)
}

func TestExecInvoker_CapturesLargeOutput(t *testing.T) {
	t.Parallel()

	const size = 1 << 20
	// Each stream carries far more than a pipe buffer.
	script := `head -c 1048576 /dev/zero | tr '\000' o; head -c 1048576 /dev/zero | tr '\000' e >&2`
	invoker := NewExecInvoker(shell(script))

	result, err := invoker.Run(context.Background(), "src", "dst", nil)

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitStatus)
	assert.Len(t, result.Output, 2*size)
	assert.Equal(t, size, strings.Count(result.Output, "o"))
	assert.Equal(t, size, strings.Count(result.Output, "e"))
}

func TestExecInvoker_Args(t *testing.T) {
	t.Parallel()

	invoker := NewExecInvoker(nil)
	assert.Equal(t, DefaultCommand, invoker.Command())
	assert.Equal(t,
		[]string{"aws", "s3", "sync", "a", "b", "--dryrun"},
		invoker.Args("a", "b", []string{"--dryrun"}))

	// Changing the returned slice must not affect the invoker.
	cmd := invoker.Command()
	cmd[0] = "rsync"
	assert.Equal(t, "aws", invoker.Command()[0])
}

func TestExecInvoker_Env(t *testing.T) {
	t.Parallel()

	invoker := NewExecInvoker(shell(`printf '%s' "$SYNCWRAP_TEST_VALUE"`), WithEnv("SYNCWRAP_TEST_VALUE=from-env"))
	result, err := invoker.Run(context.Background(), "src", "dst", nil)

	require.NoError(t, err)
	assert.Equal(t, "from-env", result.Output)
}

func TestExecInvoker_StartFailures(t *testing.T) {
	t.Parallel()

	notExecutable := filepath.Join(t.TempDir(), "not-executable")
	require.NoError(t, os.WriteFile(notExecutable, []byte("#!/bin/sh\nexit 0\n"), 0644))

	tests := map[string]struct {
		command        []string
		expectedStatus int
	}{
		"CommandNotFound": {
			command:        []string{"syncwrap-no-such-command-12345"},
			expectedStatus: StatusNotFound,
		},
		"MissingAbsolutePath": {
			command:        []string{filepath.Join(t.TempDir(), "missing")},
			expectedStatus: StatusNotFound,
		},
		"NotExecutable": {
			command:        []string{notExecutable},
			expectedStatus: StatusNotExecutable,
		},
	}

	for name, test := range tests {
		name := name
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			invoker := NewExecInvoker(test.command)
			result, err := invoker.Run(context.Background(), "src", "dst", []string{"--flag"})

			require.Error(t, err)
			assert.ErrorIs(t, err, syncwrapErrors.ErrTransferFailed)

			var transferErr *syncwrapErrors.TransferError
			require.ErrorAs(t, err, &transferErr)
			assert.Equal(t, test.expectedStatus, transferErr.Status)
			assert.Equal(t, append(append([]string{}, test.command...), "src", "dst", "--flag"), transferErr.Command)

			assert.Equal(t, test.expectedStatus, result.ExitStatus)
			assert.NotEmpty(t, result.Output, "start error should become the captured output")
		})
	}
}

func TestExecInvoker_LookPathIsInjectable(t *testing.T) {
	t.Parallel()

	var looked string
	invoker := NewExecInvoker([]string{"aws", "s3", "sync"}, WithLookPath(func(file string) (string, error) {
		looked = file
		return "/bin/sh", nil
	}))

	// /bin/sh receives "s3 sync src dst" and fails to open a script named s3.
	result, err := invoker.Run(context.Background(), "src", "dst", nil)

	require.NoError(t, err)
	assert.Equal(t, "aws", looked)
	assert.NotEqual(t, 0, result.ExitStatus)
}

func TestExecInvoker_Cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	invoker := NewExecInvoker(shell("echo started; sleep 10"), WithWaitDelay(time.Second))

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result, err := invoker.Run(ctx, "src", "dst", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, syncwrapErrors.ErrTransferFailed)
	assert.Equal(t, 143, result.ExitStatus, "SIGTERM maps to 128+15")
	assert.True(t, strings.HasPrefix(result.Output, "started"))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecInvoker_AlreadyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewExecInvoker(shell("echo never")).Run(ctx, "src", "dst", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, syncwrapErrors.ErrTransferFailed)
	assert.Equal(t, 143, result.ExitStatus)
	assert.NotContains(t, result.Output, "never")
}

func TestInvokerFunc(t *testing.T) {
	t.Parallel()

	var got []string
	var invoker Invoker = InvokerFunc(func(_ context.Context, source, destination string, options []string) (Result, error) {
		got = append([]string{source, destination}, options...)
		return Result{ExitStatus: 3, Output: "fake"}, nil
	})

	result, err := invoker.Run(context.Background(), "a", "b", []string{"c"})

	require.NoError(t, err)
	assert.Equal(t, Result{ExitStatus: 3, Output: "fake"}, result)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
