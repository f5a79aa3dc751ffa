//go:build !unix

package lock

import "os"

// processAlive reports whether pid can be opened. Without signal 0 this is
// the best available probe; a reused PID keeps a stale lock alive.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
