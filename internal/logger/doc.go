// Package logger provides diagnostic and user-facing output for the syncwrap application.
//
// Two channels are kept apart:
//
//   - Diagnostics (Info, Warning) are written through zerolog's console
//     writer to stderr, and only when debug output is enabled.
//   - User messages (InfoToUser, WarningToUser, Success, StatusMessage, Error)
//     are always printed, with colored emoji prefixes when the terminal
//     supports color.
//
// Error belongs to both: it is a diagnostic and is always shown on stderr.
//
// # Usage
//
//	log := logger.New(cfg.Debug)
//	defer func() { _ = log.Close() }()
//
//	log.Info("lock %s acquired", path)   // only with --debug
//	log.Error("Sync failed with exit code %d", 3)
//
// # Thread Safety
//
// DefaultLogger serializes all writes with a mutex.
package logger
