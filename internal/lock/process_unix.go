//go:build unix

package lock

import (
	"golang.org/x/sys/unix"
)

// processAlive checks if a process exists using signal 0. EPERM means the
// process exists but belongs to another user, which still counts as alive.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
