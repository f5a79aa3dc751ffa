// Package wrapper runs one syncwrap invocation end to end.
//
// A Runner takes an Invocation whose ID has already been generated and:
//
//  1. acquires the lock, when the lock scope is the whole invocation
//  2. runs the transfer and stops the timer
//  3. classifies the exit status
//  4. builds the audit record and appends it, taking the lock for the
//     append alone when the scope is the log
//  5. releases the lock
//  6. reports to the caller and returns the exit code
//
// The exit code is always the transfer's status, except when the transfer
// never ran because the lock could not be acquired. A failed audit append is
// reported on stderr together with the invocation ID and leaves the exit
// code unchanged.
package wrapper
