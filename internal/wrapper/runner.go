package wrapper

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bashhack/syncwrap/internal/audit"
	"github.com/bashhack/syncwrap/internal/common"
	"github.com/bashhack/syncwrap/internal/config"
	"github.com/bashhack/syncwrap/internal/constants"
	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
	"github.com/bashhack/syncwrap/internal/invocation"
	"github.com/bashhack/syncwrap/internal/lock"
	"github.com/bashhack/syncwrap/internal/outcome"
	"github.com/bashhack/syncwrap/internal/transfer"
)

// Journal persists audit records.
type Journal interface {
	Write(r audit.Record) error
	Path() string
}

// Options control how a Runner serializes and reports an invocation.
type Options struct {
	// Scope selects what the lock protects.
	Scope config.LockScope

	// Wait makes lock acquisition block instead of failing fast.
	Wait bool

	// ShowOutput prints the captured output on success.
	ShowOutput bool
}

// Runner drives one invocation from lock acquisition to the final report.
type Runner struct {
	invoker transfer.Invoker
	lock    lock.Lock
	journal Journal
	logger  common.Logger
	stdout  io.Writer
	stderr  io.Writer
	clock   invocation.Clock
	opts    Options
}

// Report is the result of Run.
type Report struct {
	// ExitCode is the status the process should exit with.
	ExitCode int

	// Outcome is the classified transfer result. It is the zero value when
	// the transfer never ran.
	Outcome outcome.Outcome

	// Recorded reports whether the audit record was appended.
	Recorded bool

	// LogErr is the audit write failure, if any. It never changes ExitCode.
	LogErr error
}

// Dependencies are the collaborators a Runner is built from.
type Dependencies struct {
	Invoker transfer.Invoker
	Lock    lock.Lock
	Journal Journal
	Logger  common.Logger
	Stdout  io.Writer
	Stderr  io.Writer

	// Clock stamps records. time.Now when nil.
	Clock invocation.Clock
}

// NewRunner creates a Runner.
func NewRunner(deps Dependencies, opts Options) *Runner {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Runner{
		invoker: deps.Invoker,
		lock:    deps.Lock,
		journal: deps.Journal,
		logger:  deps.Logger,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
		clock:   clock,
		opts:    opts,
	}
}

// Run executes inv's transfer and records it.
//
// With ScopeInvocation the lock is held from before the transfer until the
// record is appended; with ScopeLog only the append is locked. The returned
// error is non-nil only when the transfer never ran because the lock could
// not be acquired; Report.ExitCode is then ExitFailure.
func (r *Runner) Run(ctx context.Context, inv *invocation.Invocation) (Report, error) {
	// Timing covers the lock wait too.
	inv.Begin()

	var held lock.Guard
	if r.opts.Scope == config.ScopeInvocation {
		r.logger.Info("Acquiring lock %s for invocation %s (wait=%t)", r.lock.Path(), inv.ID, r.opts.Wait)
		g, err := lock.Hold(ctx, r.lock, r.opts.Wait)
		if err != nil {
			r.reportLockFailure(inv, err)
			return Report{ExitCode: constants.ExitFailure}, err
		}
		held = g
		defer r.release(held)
	}

	r.transfer(ctx, inv)
	result := outcome.Classify(inv.ExitStatus)
	record := audit.Build(inv, result, r.clock())

	logErr := r.record(ctx, record, held != nil)
	if logErr != nil {
		logErr = syncwrapErrors.NewLogWriteError(r.journal.Path(), inv.ID, logErr)
	}

	if held != nil {
		r.release(held)
	}

	r.report(inv, result, logErr)

	return Report{
		ExitCode: result.ExitStatus,
		Outcome:  result,
		Recorded: logErr == nil,
		LogErr:   logErr,
	}, nil
}

func (r *Runner) transfer(ctx context.Context, inv *invocation.Invocation) {
	r.logger.Info("Invocation %s: running transfer %s -> %s %s", inv.ID, inv.Source, inv.Destination, inv.OptionString())

	res, err := r.invoker.Run(ctx, inv.Source, inv.Destination, inv.Options)
	if err != nil {
		r.logger.Warning("Invocation %s: %v", inv.ID, err)
	}
	inv.Complete(res.ExitStatus, res.Output)

	r.logger.Info("Invocation %s: transfer exited with status %d after %s", inv.ID, inv.ExitStatus, inv.Duration())
}

// record appends the record, taking the lock first unless it is already held.
// A pending cancellation does not stop the append.
func (r *Runner) record(ctx context.Context, rec audit.Record, locked bool) error {
	if locked {
		return r.journal.Write(rec)
	}

	r.logger.Info("Acquiring lock %s to append record for %s", r.lock.Path(), rec.InvocationID)
	return lock.WithLock(context.WithoutCancel(ctx), r.lock, true, func() error {
		return r.journal.Write(rec)
	})
}

func (r *Runner) release(g lock.Guard) {
	if err := g.Release(); err != nil {
		r.logger.Warning("Failed to release lock %s: %v", r.lock.Path(), err)
	}
}

func (r *Runner) report(inv *invocation.Invocation, result outcome.Outcome, logErr error) {
	if logErr != nil {
		r.logger.Error("Failed to write audit record to %s: %v (invocation %s)", r.journal.Path(), logErr, inv.ID)
	}

	if result.Success() {
		if r.opts.ShowOutput {
			_, _ = io.WriteString(r.stdout, inv.Output)
		}
		return
	}

	r.logger.Error("%s", result.Message)
	output := inv.Output
	if output != "" && !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	_, _ = io.WriteString(r.stderr, output)
	_, _ = fmt.Fprintf(r.stderr, "Invocation ID: %s\n", inv.ID)
}

func (r *Runner) reportLockFailure(inv *invocation.Invocation, err error) {
	switch {
	case syncwrapErrors.Is(err, syncwrapErrors.ErrLockHeld):
		r.logger.Error("Another sync is running (lock %s); not starting", r.lock.Path())
	default:
		r.logger.Error("Could not acquire lock %s: %v", r.lock.Path(), err)
	}
	_, _ = fmt.Fprintf(r.stderr, "Invocation ID: %s\n", inv.ID)
}
