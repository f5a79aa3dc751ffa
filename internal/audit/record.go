package audit

import (
	"bytes"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bashhack/syncwrap/internal/invocation"
	"github.com/bashhack/syncwrap/internal/outcome"
)

// TimestampFormat is the layout of a record's timestamp field.
const TimestampFormat = "2006-01-02T15:04:05Z"

// Status is the severity of a record.
type Status = outcome.Level

// Record is one audit log entry.
type Record struct {
	Timestamp    time.Time
	InvocationID string
	Status       Status
	Message      string
	Detail       Detail
}

// Detail is the transfer-specific payload of a Record.
type Detail struct {
	Source      string
	Destination string
	Options     []string
	Output      string
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}

// OptionString returns the options joined by spaces, as written to the
// record's options field.
func (d Detail) OptionString() string {
	return strings.Join(d.Options, " ")
}

// Build assembles the record for a completed invocation.
func Build(inv *invocation.Invocation, result outcome.Outcome, now time.Time) Record {
	return Record{
		Timestamp:    now,
		InvocationID: inv.ID,
		Status:       result.Level,
		Message:      result.Message,
		Detail: Detail{
			Source:      inv.Source,
			Destination: inv.Destination,
			Options:     append([]string(nil), inv.Options...),
			Output:      inv.Output,
			StartTime:   inv.StartTime(),
			EndTime:     inv.EndTime(),
			Duration:    inv.Duration(),
		},
	}
}

// Encode renders r as one JSON line terminated by a newline.
// Strings are escaped by the encoder; invalid UTF-8 becomes U+FFFD.
func (r Record) Encode() []byte {
	var buf bytes.Buffer

	options := r.Detail.Options
	if options == nil {
		options = []string{}
	}

	logger := zerolog.New(&buf)
	logger.Log().
		Str("timestamp", r.Timestamp.UTC().Format(TimestampFormat)).
		Str("invocation_id", r.InvocationID).
		Str("status", string(r.Status)).
		Dict("detail", zerolog.Dict().
			Str("source", r.Detail.Source).
			Str("destination", r.Detail.Destination).
			Str("options", r.Detail.OptionString()).
			Strs("option_args", options).
			Str("output", r.Detail.Output).
			Str("start_time", formatTime(r.Detail.StartTime)).
			Str("end_time", formatTime(r.Detail.EndTime)).
			Str("duration", r.Detail.Duration.String())).
		Msg(r.Message)

	return buf.Bytes()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
