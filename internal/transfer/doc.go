// Package transfer runs the external data-transfer tool for the syncwrap
// application.
//
// The tool is a black box: it receives a source, a destination and the
// caller's options verbatim, and reports back an exit status and whatever it
// printed. This package only normalizes that status so the rest of syncwrap
// can treat it as an ordinary shell exit code.
//
// # Core Components
//
//   - Invoker: interface for running one transfer
//   - ExecInvoker: default implementation built on os/exec
//   - InvokerFunc: adapter for plain functions, mostly for tests
//
// # Exit Status
//
//   - a normal exit is reported unchanged
//   - a process killed by signal N is reported as 128+N
//   - a command that cannot be found is reported as 127
//   - a command that cannot be executed is reported as 126
//
// When the command never started, the start error text becomes the captured
// output and a TransferError is returned alongside the Result.
//
// # Cancellation
//
// Cancelling the context sends SIGTERM to the transfer. If it has not exited
// after the wait delay it is killed.
package transfer
