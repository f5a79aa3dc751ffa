package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bashhack/syncwrap/internal/config"
	"github.com/bashhack/syncwrap/internal/constants"
	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
)

const rootLong = `syncwrap runs a sync command (aws s3 sync by default) as
"<command> <source> <destination> [transfer options...]" and appends one JSON
record per run to an audit log. Concurrent runs on one host are serialized
through a lock: either around the log append only (--lock-scope log) or
around the whole run (--lock-scope invocation).

Flags must come before <source>. Everything after <destination> is passed to
the sync command unchanged. The exit status is the sync command's own.`

// NewRootCommand creates the syncwrap command. RunE stores the exit code of
// the run in *code.
func NewRootCommand(app *App, code *int) *cobra.Command {
	flags := config.New()
	flags.VersionInfo = app.versionInfo

	cmd := &cobra.Command{
		Use:           constants.AppName + " [flags] <source> <destination> [transfer options...]",
		Short:         constants.Tagline,
		Long:          rootLong,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), flags, app.lookupEnv)
			if err != nil {
				*code = constants.ExitFailure
				return err
			}
			app.Config = cfg

			*code, err = app.Run(cmd.Context(), args)
			return err
		},
	}

	flags.SetupFlags(cmd.Flags())
	cmd.Flags().SetInterspersed(false)

	return cmd
}

// Execute parses args, runs the application and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	code := -1
	cmd := NewRootCommand(a, &code)
	cmd.SetArgs(args)
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		if code < 0 {
			// --help
			return constants.ExitSuccess
		}
		return code
	}

	switch {
	case code < 0, syncwrapErrors.Is(err, syncwrapErrors.ErrMissingArguments):
		// Flag parsing failed or positionals are missing.
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error: %v\n", err)
		_, _ = fmt.Fprint(a.Stderr, cmd.UsageString())
		return constants.ExitFailure
	case syncwrapErrors.Is(err, syncwrapErrors.ErrLockHeld),
		syncwrapErrors.Is(err, syncwrapErrors.ErrLockAcquisitionFailure):
		// Already reported with the invocation ID.
		return code
	default:
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error: %v\n", err)
		return code
	}
}
