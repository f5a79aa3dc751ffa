//go:build unix

package lock

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exitedPID runs a short-lived child and returns its PID after it has been reaped.
func exitedPID(t *testing.T) int {
	t.Helper()

	cmd := exec.Command("true")
	require.NoError(t, cmd.Run())
	return cmd.Process.Pid
}

func TestProcessAlive_DetectsPIDState(t *testing.T) {
	tests := map[string]struct {
		pid      int
		expected bool
	}{
		"CurrentProcess": {os.Getpid(), true},
		"ParentProcess":  {os.Getppid(), true},
		"ExitedProcess":  {exitedPID(t), false},
		"NegativePID":    {-1, false},
		"ZeroPID":        {0, false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expected, processAlive(test.pid))
		})
	}
}
