package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bashhack/syncwrap/internal/config"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// shutdownGrace is how long a signalled run gets to unwind before the lock
// is force-released.
const shutdownGrace = 5 * time.Second

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	app := NewDefaultApp(versionInfo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		select {
		case <-done:
			return
		case sig := <-c:
			_, _ = fmt.Fprintf(app.Stderr, "\nReceived signal %v, stopping syncwrap...\n", sig)

			// Cancel the context: the transfer is terminated and the record is still written
			app.Interrupt(sig)
			cancel()

			// If the run doesn't unwind within the grace period, force cleanup and exit
			select {
			case <-done:
			case <-time.After(shutdownGrace):
				app.CleanupOnSignal()
				app.exit(signalExitCode(sig))
			}
		}
	}()

	code := app.Execute(ctx, os.Args[1:])
	close(done)
	signal.Stop(c)
	app.exit(code)
}
