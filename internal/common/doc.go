// Package common provides shared interfaces used throughout the syncwrap application.
//
// It holds contracts that several packages depend on without depending on
// each other. The package has no dependencies on other internal packages.
//
// # Core Components
//
// - Logger: Interface defining standardized logging methods used throughout the application
//
// # Usage
//
// The Logger interface is injected into components that need logging:
//
//	type Runner struct {
//	    logger common.Logger
//	}
//
//	func (r *Runner) Run(ctx context.Context) {
//	    // Diagnostic information, visible with --debug
//	    r.logger.Info("acquiring lock %s", path)
//
//	    // Shown to the user on stderr
//	    r.logger.Error("Sync failed with exit code %d", status)
//	}
package common
