package invocation

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// randomHexLen is the number of hex characters taken from a random UUID.
const randomHexLen = 12

// NewID returns a token that identifies one wrapper run. It is made of the
// current time in microseconds, the process ID and 48 random bits, e.g.
// 1718000000123456-4242-9f86d081884c.
func NewID() string {
	return formatID(time.Now(), os.Getpid(), uuid.New())
}

func formatID(now time.Time, pid int, entropy uuid.UUID) string {
	// The last 6 bytes of a v4 UUID are fully random.
	random := hex.EncodeToString(entropy[len(entropy)-randomHexLen/2:])
	return fmt.Sprintf("%d-%d-%s", now.UnixMicro(), pid, random)
}
