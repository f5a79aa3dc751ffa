// Package config provides configuration management for the syncwrap application.
//
// Settings come from four layers, each overriding the one before:
//
//  1. Defaults from New
//  2. A YAML file named by --config or SYNCWRAP_CONFIG
//  3. SYNCWRAP_* environment variables
//  4. Command-line flags the user set explicitly
//
// Load applies the layers and calls Finalize, which validates the result
// and resolves the lock and log paths to absolute paths. The environment is
// only read through the LookupEnvFunc passed in, so tests never touch the
// process environment.
//
// # Configuration File
//
//	lock: /var/lock/aws_s3_sync.lock
//	log: /var/log/aws_s3_sync.log
//	lock_scope: invocation
//	lock_strategy: flock
//	no_wait: true
//	retry_delay: 250ms
//	command: aws s3 sync
//	show_output: false
//	debug: false
//
// Unknown keys are rejected.
//
// # Validation
//
// Finalize returns a ConfigError wrapping ErrInvalidConfiguration when a
// lock scope or strategy is unknown, the retry delay is not positive, the
// command is empty, a path is empty, the lock and log paths coincide, or
// --no-wait is combined with the log lock scope.
package config
