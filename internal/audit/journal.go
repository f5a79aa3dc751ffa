package audit

import (
	"io"
	"os"
	"path/filepath"

	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
)

// Journal is an append-only file of encoded records.
//
// Append is not synchronized across processes on its own; callers hold the
// log lock while appending.
type Journal struct {
	path string
}

// NewJournal returns a Journal writing to path.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	return j.path
}

// Append writes line to the end of the journal with a single write.
// The file and its parent directory are created when missing.
func (j *Journal) Append(line []byte) (err error) {
	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return syncwrapErrors.Wrapf(err, "failed to create log directory %s", dir)
		}
	}

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return syncwrapErrors.Wrapf(err, "failed to open log file %s", j.path)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = syncwrapErrors.Wrapf(closeErr, "failed to close log file %s", j.path)
		}
	}()

	n, err := f.Write(line)
	if err != nil {
		return syncwrapErrors.Wrapf(err, "failed to append to log file %s", j.path)
	}
	if n != len(line) {
		return syncwrapErrors.Wrapf(io.ErrShortWrite, "failed to append to log file %s", j.path)
	}
	return nil
}

// Write appends the encoded record.
func (j *Journal) Write(r Record) error {
	return j.Append(r.Encode())
}
