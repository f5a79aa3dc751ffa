// Package invocation holds the per-run state of the wrapper: its unique ID,
// the transfer arguments, timing and the transfer result.
package invocation

import (
	"strings"
	"time"
)

// Invocation is one execution of the wrapper.
// It lives only for the duration of the process; its audit record is the
// only thing that is persisted.
type Invocation struct {
	ID          string
	Source      string
	Destination string
	Options     []string

	timer *Timer

	ExitStatus int
	Output     string
	done       bool
}

// New creates an Invocation with a fresh ID.
func New(source, destination string, options []string, clock Clock) *Invocation {
	return NewWithID(NewID(), source, destination, options, clock)
}

// NewWithID creates an Invocation with a caller-supplied ID.
func NewWithID(id, source, destination string, options []string, clock Clock) *Invocation {
	opts := make([]string, len(options))
	copy(opts, options)

	return &Invocation{
		ID:          id,
		Source:      source,
		Destination: destination,
		Options:     opts,
		timer:       NewTimer(clock),
	}
}

// Begin marks the start of the transfer.
func (i *Invocation) Begin() time.Time {
	return i.timer.Start()
}

// Complete stores the transfer result and stops the timer.
// Only the first call has an effect.
func (i *Invocation) Complete(status int, output string) {
	if i.done {
		return
	}
	i.timer.Stop()
	i.ExitStatus = status
	i.Output = output
	i.done = true
}

// Completed reports whether Complete has been called.
func (i *Invocation) Completed() bool {
	return i.done
}

// StartTime returns when the transfer started.
func (i *Invocation) StartTime() time.Time {
	return i.timer.Started()
}

// EndTime returns when the transfer finished.
func (i *Invocation) EndTime() time.Time {
	return i.timer.Stopped()
}

// Duration returns how long the transfer took.
func (i *Invocation) Duration() time.Duration {
	return i.timer.Duration()
}

// OptionString returns the forwarded options joined by spaces.
func (i *Invocation) OptionString() string {
	return strings.Join(i.Options, " ")
}
