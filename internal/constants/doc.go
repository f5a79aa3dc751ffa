// Package constants provides application-wide constant values for the syncwrap application.
//
// # Core Components
//
//   - AppName and Tagline: command name and description
//   - EnvPrefix: prefix of every environment variable syncwrap reads
//   - Exit codes: the statuses syncwrap produces on its own
//
// Every other exit status is the transfer command's, passed through
// unchanged.
package constants
