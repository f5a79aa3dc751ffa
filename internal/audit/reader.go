package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"

	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
)

// Entry is a record as it appears in the journal, with every field kept in
// its persisted text form.
type Entry struct {
	Timestamp    string      `json:"timestamp"`
	InvocationID string      `json:"invocation_id"`
	Status       string      `json:"status"`
	Message      string      `json:"message"`
	Detail       EntryDetail `json:"detail"`

	// Raw is the journal line without its trailing newline.
	Raw []byte `json:"-"`
}

// EntryDetail is the persisted form of Detail.
type EntryDetail struct {
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Options     string   `json:"options"`
	OptionArgs  []string `json:"option_args"`
	Output      string   `json:"output"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Duration    string   `json:"duration"`
}

// Scan calls fn for each record in r, in journal order. Lines that are not
// valid records are skipped. Scanning stops at the first error from fn.
func Scan(r io.Reader, fn func(Entry) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimRight(line, "\r\n")
			var entry Entry
			if jsonErr := json.Unmarshal(line, &entry); jsonErr == nil && entry.InvocationID != "" {
				entry.Raw = line
				if fnErr := fn(entry); fnErr != nil {
					return fnErr
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return syncwrapErrors.Wrap(err, "failed to read log")
		}
	}
}

// ReadAll returns every record in the journal file at path.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, syncwrapErrors.Wrapf(err, "failed to open log file %s", path)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	err = Scan(f, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

// Find returns the record written by the invocation with the given ID.
// It returns ErrRecordNotFound when the journal holds no such record.
func Find(path, invocationID string) (Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, syncwrapErrors.Wrapf(err, "failed to open log file %s", path)
	}
	defer func() { _ = f.Close() }()

	errFound := syncwrapErrors.New("found")
	var match Entry
	err = Scan(f, func(e Entry) error {
		if e.InvocationID == invocationID {
			match = e
			return errFound
		}
		return nil
	})
	switch {
	case syncwrapErrors.Is(err, errFound):
		return match, nil
	case err != nil:
		return Entry{}, err
	default:
		return Entry{}, syncwrapErrors.Wrapf(syncwrapErrors.ErrRecordNotFound, "invocation %s", invocationID)
	}
}
