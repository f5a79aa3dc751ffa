package constants

// AppName is the binary and command name.
const AppName = "syncwrap"

// Tagline is the one-line description shown in help output.
const Tagline = "Run a sync command with an exclusive lock and an audit trail"

// EnvPrefix is prepended to every environment variable syncwrap reads.
const EnvPrefix = "SYNCWRAP_"

// Exit codes produced by syncwrap itself. Any other code is the transfer's own.
const (
	ExitSuccess = 0
	ExitFailure = 1

	// ExitSignalBase is added to a signal number when syncwrap is interrupted.
	ExitSignalBase = 128
)
