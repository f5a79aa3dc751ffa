package transfer

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"

	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
)

const (
	// StatusNotFound is reported when the transfer command cannot be found.
	StatusNotFound = 127

	// StatusNotExecutable is reported when the transfer command cannot be executed.
	StatusNotExecutable = 126

	// signalStatusBase is added to a signal number to form an exit status.
	signalStatusBase = 128

	// DefaultWaitDelay is how long a cancelled transfer gets between SIGTERM and SIGKILL.
	DefaultWaitDelay = 10 * time.Second
)

// DefaultCommand is the transfer tool syncwrap wraps when none is configured.
var DefaultCommand = []string{"aws", "s3", "sync"}

// Result is what a transfer reports back.
type Result struct {
	// ExitStatus is the transfer's exit status, normalized to 0-255.
	ExitStatus int

	// Output is everything the transfer wrote to stdout and stderr, interleaved.
	Output string
}

// Invoker runs the external transfer tool.
type Invoker interface {
	// Run transfers source to destination, forwarding options verbatim.
	// The returned Result is always usable. err is non-nil only when the
	// command could not be started or was stopped before it could exit on
	// its own; Result then carries a synthetic status.
	Run(ctx context.Context, source, destination string, options []string) (Result, error)
}

// ExecInvoker is the default implementation of Invoker that delegates to
// the os/exec package.
type ExecInvoker struct {
	command   []string
	env       []string
	waitDelay time.Duration
	lookPath  func(file string) (string, error)
}

// ExecOption configures an ExecInvoker.
type ExecOption func(*ExecInvoker)

// WithEnv appends variables to the transfer's environment.
func WithEnv(env ...string) ExecOption {
	return func(e *ExecInvoker) {
		e.env = append(e.env, env...)
	}
}

// WithWaitDelay sets the grace period between SIGTERM and SIGKILL on cancellation.
func WithWaitDelay(d time.Duration) ExecOption {
	return func(e *ExecInvoker) {
		e.waitDelay = d
	}
}

// WithLookPath replaces exec.LookPath.
func WithLookPath(lookPath func(string) (string, error)) ExecOption {
	return func(e *ExecInvoker) {
		e.lookPath = lookPath
	}
}

// NewExecInvoker creates an ExecInvoker running command (DefaultCommand if empty).
// command is the program followed by any fixed arguments, e.g. ["aws", "s3", "sync"].
func NewExecInvoker(command []string, opts ...ExecOption) *ExecInvoker {
	if len(command) == 0 {
		command = DefaultCommand
	}
	e := &ExecInvoker{
		command:   append([]string(nil), command...),
		waitDelay: DefaultWaitDelay,
		lookPath:  exec.LookPath,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Command returns the program and fixed arguments.
func (e *ExecInvoker) Command() []string {
	return append([]string(nil), e.command...)
}

// Args returns the full argument vector for a transfer.
func (e *ExecInvoker) Args(source, destination string, options []string) []string {
	args := make([]string, 0, len(e.command)+2+len(options))
	args = append(args, e.command...)
	args = append(args, source, destination)
	return append(args, options...)
}

// Run implements Invoker.Run
func (e *ExecInvoker) Run(ctx context.Context, source, destination string, options []string) (Result, error) {
	argv := e.Args(source, destination, options)

	path, err := e.lookPath(argv[0])
	if err != nil {
		status := StatusNotFound
		if syncwrapErrors.Is(err, os.ErrPermission) {
			status = StatusNotExecutable
		}
		return Result{ExitStatus: status, Output: err.Error()},
			syncwrapErrors.NewTransferError(argv, status, syncwrapErrors.Wrap(syncwrapErrors.ErrTransferFailed, err.Error()))
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = e.waitDelay
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}

	// One buffer for both streams keeps their relative order.
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	runErr := cmd.Run()
	if runErr == nil {
		return Result{ExitStatus: 0, Output: output.String()}, nil
	}

	var exitErr *exec.ExitError
	if syncwrapErrors.As(runErr, &exitErr) {
		status := exitStatus(exitErr)
		if ctx.Err() != nil {
			return Result{ExitStatus: status, Output: output.String()},
				syncwrapErrors.NewTransferError(argv, status, syncwrapErrors.Errorf("%w: %w", syncwrapErrors.ErrTransferFailed, ctx.Err()))
		}
		return Result{ExitStatus: status, Output: output.String()}, nil
	}

	// The process never started, or was cancelled before Start.
	status := StatusNotExecutable
	switch {
	case ctx.Err() != nil:
		status = signalStatusBase + int(syscall.SIGTERM)
	case syncwrapErrors.Is(runErr, os.ErrNotExist):
		status = StatusNotFound
	}
	text := output.String()
	if text != "" {
		text += "\n"
	}
	return Result{ExitStatus: status, Output: text + runErr.Error()},
		syncwrapErrors.NewTransferError(argv, status, syncwrapErrors.Wrap(syncwrapErrors.ErrTransferFailed, runErr.Error()))
}

// exitStatus maps a finished process to a shell-style status: its exit code,
// or 128+N when it was killed by signal N.
func exitStatus(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return signalStatusBase + int(ws.Signal())
	}
	return signalStatusBase
}
