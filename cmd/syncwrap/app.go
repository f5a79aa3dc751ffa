package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/bashhack/syncwrap/internal/audit"
	"github.com/bashhack/syncwrap/internal/config"
	"github.com/bashhack/syncwrap/internal/constants"
	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
	"github.com/bashhack/syncwrap/internal/invocation"
	"github.com/bashhack/syncwrap/internal/lock"
	"github.com/bashhack/syncwrap/internal/logger"
	"github.com/bashhack/syncwrap/internal/transfer"
	"github.com/bashhack/syncwrap/internal/wrapper"
)

// Runner executes one invocation
type Runner interface {
	Run(ctx context.Context, inv *invocation.Invocation) (wrapper.Report, error)
}

// AppOptions contains app configuration and dependencies
type AppOptions struct {
	// Build metadata
	VersionInfo config.VersionInfo

	// Optional components
	Logger  logger.Logger
	Lock    lock.Lock
	Invoker transfer.Invoker
	Runner  Runner

	// I/O dependencies
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	Exit      func(code int)
	LookupEnv config.LookupEnvFunc
	Clock     invocation.Clock
}

// App is the main syncwrap application
type App struct {
	Config     *config.Config
	Logger     logger.Logger
	Lock       lock.Lock
	Invoker    transfer.Invoker
	Runner     Runner
	Invocation *invocation.Invocation

	// I/O streams
	Stdout io.Writer
	Stderr io.Writer

	versionInfo config.VersionInfo
	held        *heldLocks

	// System dependencies
	exit      func(code int)
	lookupEnv config.LookupEnvFunc
	clock     invocation.Clock

	mu     sync.Mutex
	signal os.Signal
}

// NewDefaultApp creates an App with standard dependencies
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	return NewApp(AppOptions{
		VersionInfo: versionInfo,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Exit:        os.Exit,
		LookupEnv:   os.LookupEnv,
	})
}

// NewApp creates an App with custom dependencies
func NewApp(opts AppOptions) *App {
	app := &App{
		Logger:      opts.Logger,
		Lock:        opts.Lock,
		Invoker:     opts.Invoker,
		Runner:      opts.Runner,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
		versionInfo: opts.VersionInfo,
		exit:        opts.Exit,
		lookupEnv:   opts.LookupEnv,
		clock:       opts.Clock,
	}

	// Set defaults for nil dependencies
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.lookupEnv == nil {
		app.lookupEnv = os.LookupEnv
	}

	return app
}

// Initialize sets up components not provided during construction.
// Config and Invocation must be set.
func (a *App) Initialize() error {
	if a.Config == nil || a.Invocation == nil {
		return syncwrapErrors.New("app is not configured")
	}

	if a.Logger == nil {
		a.Logger = logger.NewWithOutput(a.Config.Debug, a.Stdout, a.Stderr)
	}

	if a.Lock == nil {
		l, err := lock.New(a.Config.LockStrategy, a.Config.LockPath, lock.Options{
			RetryDelay: a.Config.RetryDelay,
			Owner:      a.Invocation.ID,
			OnRetry: func(attempt int, err error) {
				a.Logger.Info("Lock %s busy (attempt %d): %v", a.Config.LockPath, attempt, err)
			},
		})
		if err != nil {
			return syncwrapErrors.Wrap(err, "failed to initialize lock")
		}
		a.Lock = l
	}
	if a.held == nil {
		a.held = &heldLocks{Lock: a.Lock}
	}

	if a.Invoker == nil {
		a.Invoker = transfer.NewExecInvoker(a.Config.CommandArgs())
	}

	if a.Runner == nil {
		a.Runner = wrapper.NewRunner(wrapper.Dependencies{
			Invoker: a.Invoker,
			Lock:    a.held,
			Journal: audit.NewJournal(a.Config.LogPath),
			Logger:  a.Logger,
			Stdout:  a.Stdout,
			Stderr:  a.Stderr,
			Clock:   a.clock,
		}, wrapper.Options{
			Scope:      a.Config.LockScope,
			Wait:       a.Config.Wait(),
			ShowOutput: a.Config.ShowOutput,
		})
	}

	return nil
}

// Run executes the application for the positional arguments
// <source> <destination> [transfer options...] and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) (int, error) {
	// Handle special flags first
	if a.Config.Version {
		a.ShowVersion()
		return constants.ExitSuccess, nil
	}

	if a.Config.Find != "" {
		return a.ShowRecord(a.Config.Find)
	}

	id := invocation.NewID()
	if len(args) < 2 {
		return constants.ExitFailure, syncwrapErrors.Wrapf(syncwrapErrors.ErrMissingArguments,
			"got %d argument(s) (invocation %s)", len(args), id)
	}

	inv := invocation.NewWithID(id, args[0], args[1], args[2:], a.clock)
	a.mu.Lock()
	a.Invocation = inv
	a.mu.Unlock()

	if err := a.Initialize(); err != nil {
		return constants.ExitFailure, err
	}

	// Ensure we always clean up logger / lock, even on early error paths
	defer func() {
		if err := a.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
		}
	}()

	a.Logger.Info("Invocation %s: scope=%s strategy=%s lock=%s log=%s",
		a.Invocation.ID, a.Config.LockScope, a.Config.LockStrategy, a.Config.LockPath, a.Config.LogPath)

	report, err := a.Runner.Run(ctx, a.Invocation)
	if err != nil {
		if sig := a.interruptedBy(); sig != nil {
			return signalExitCode(sig), err
		}
		return report.ExitCode, err
	}
	return report.ExitCode, nil
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "%s %s (%s) built on %s\n",
		constants.AppName,
		a.versionInfo.Version,
		a.versionInfo.Commit,
		a.versionInfo.Date)
}

// ShowRecord prints the audit record written by the given invocation.
func (a *App) ShowRecord(id string) (int, error) {
	entry, err := audit.Find(a.Config.LogPath, id)
	if err != nil {
		return constants.ExitFailure, err
	}
	_, _ = fmt.Fprintf(a.Stdout, "%s\n", entry.Raw)
	return constants.ExitSuccess, nil
}

// Interrupt records the signal that is stopping the application.
func (a *App) Interrupt(sig os.Signal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.signal == nil {
		a.signal = sig
	}
}

func (a *App) interruptedBy() os.Signal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signal
}

// Close releases resources held by the App
func (a *App) Close() error {
	var errs []error

	if a.held != nil {
		if err := a.held.ReleaseAll(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("Failed to release lock during cleanup: %v", err)
			} else {
				_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to release lock during cleanup: %v\n", err)
			}
			errs = append(errs, err)
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
			errs = append(errs, err)
		}
	}

	return syncwrapErrors.Join(errs...)
}

// CleanupOnSignal force-releases any lock still held when the run did not
// stop in time after a signal.
func (a *App) CleanupOnSignal() {
	if err := a.Close(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
	}
	a.mu.Lock()
	inv := a.Invocation
	a.mu.Unlock()
	if inv != nil {
		_, _ = fmt.Fprintf(a.Stderr, "Invocation ID: %s\n", inv.ID)
	}
}

// heldLocks remembers every guard handed out so they can be released from
// another goroutine when a signal arrives.
type heldLocks struct {
	lock.Lock

	mu     sync.Mutex
	guards []lock.Guard
}

func (h *heldLocks) Acquire(ctx context.Context) (lock.Guard, error) {
	return h.track(h.Lock.Acquire(ctx))
}

func (h *heldLocks) TryAcquire(ctx context.Context) (lock.Guard, error) {
	return h.track(h.Lock.TryAcquire(ctx))
}

func (h *heldLocks) track(g lock.Guard, err error) (lock.Guard, error) {
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.guards = append(h.guards, g)
	h.mu.Unlock()
	return g, nil
}

// ReleaseAll releases every tracked guard. Guards already released are no-ops.
func (h *heldLocks) ReleaseAll() error {
	h.mu.Lock()
	guards := h.guards
	h.guards = nil
	h.mu.Unlock()

	var errs []error
	for _, g := range guards {
		if err := g.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return syncwrapErrors.Join(errs...)
}

// signalExitCode returns the conventional 128+N status for a signal.
func signalExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return constants.ExitSignalBase + int(s)
	}
	return constants.ExitSignalBase
}
