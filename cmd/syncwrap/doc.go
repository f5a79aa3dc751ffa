// Command syncwrap runs a sync command under a host-local lock and records
// every run in an append-only audit log.
//
// Usage:
//
//	syncwrap [flags] <source> <destination> [transfer options...]
//
// Flags must precede <source>; everything after <destination> is forwarded
// to the sync command verbatim:
//
//	syncwrap --lock-scope invocation --no-wait /srv/data s3://bucket/data --delete
//
// Flags:
//
//	--lock PATH            lock file, or directory with --lock-strategy mkdir
//	                       (default /var/lock/aws_s3_sync.lock)
//	--log PATH             audit log (default /var/log/aws_s3_sync.log)
//	-o, --show-output      print the sync output on success
//	--lock-scope SCOPE     log (default) or invocation
//	--lock-strategy NAME   flock (default) or mkdir
//	--no-wait              fail instead of waiting for the lock (invocation scope)
//	--retry-delay DURATION pause between lock attempts (default 100ms)
//	--command CMD          sync command (default "aws s3 sync")
//	--config FILE          YAML configuration file
//	--debug                diagnostic logging on stderr
//	--find ID              print the audit record of an invocation and exit
//	--version              print version information and exit
//
// Every flag except --find and --version can also be set through a
// SYNCWRAP_* environment variable (SYNCWRAP_LOCK, SYNCWRAP_LOG,
// SYNCWRAP_LOCK_SCOPE, ...) or the configuration file.
//
// # Exit Status
//
// syncwrap exits with the sync command's status. It exits 1 on its own when
// the arguments or configuration are invalid, or when --no-wait finds the
// lock held; in those cases the sync command never runs. A signal that is
// not handled within 5 seconds ends the process with 128+N.
//
// On failure the summary, the sync output and the invocation ID are written
// to stderr. The ID can be passed to --find to retrieve the full record.
package main
