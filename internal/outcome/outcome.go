// Package outcome maps a transfer's exit status to the result syncwrap
// records and reports.
package outcome

import "fmt"

// Kind names the class of a transfer result.
type Kind string

const (
	KindSuccess         Kind = "success"
	KindGeneralError    Kind = "general_error"
	KindPermissionError Kind = "permission_error"
	KindUnspecified     Kind = "unspecified"
)

// Level is the severity written to the audit record's status field.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Exit statuses the transfer tool gives a meaning to.
const (
	StatusSuccess         = 0
	StatusGeneralError    = 1
	StatusPermissionError = 2
)

// Outcome is the classification of one exit status.
type Outcome struct {
	Kind       Kind
	Level      Level
	Message    string
	ExitStatus int
}

// Success reports whether the transfer completed without error.
func (o Outcome) Success() bool {
	return o.Kind == KindSuccess
}

// Classify returns the outcome for a transfer exit status.
// Every status maps to exactly one outcome; the wrapper exits with status.
func Classify(status int) Outcome {
	switch status {
	case StatusSuccess:
		return Outcome{Kind: KindSuccess, Level: LevelInfo, Message: "Sync successful.", ExitStatus: status}
	case StatusGeneralError:
		return Outcome{
			Kind:       KindGeneralError,
			Level:      LevelError,
			Message:    fmt.Sprintf("Sync failed due to a general error, exit code %d", status),
			ExitStatus: status,
		}
	case StatusPermissionError:
		return Outcome{
			Kind:       KindPermissionError,
			Level:      LevelError,
			Message:    fmt.Sprintf("Sync failed due to a permission error, exit code %d", status),
			ExitStatus: status,
		}
	default:
		return Outcome{
			Kind:       KindUnspecified,
			Level:      LevelError,
			Message:    fmt.Sprintf("Sync failed with exit code %d", status),
			ExitStatus: status,
		}
	}
}
