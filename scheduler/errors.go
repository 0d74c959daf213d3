package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField is wrapped by a ParseError when a required label is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidQueue is returned for a queue record without a name.
	ErrInvalidQueue = errors.New("invalid queue record")
	// ErrInvalidRequest is returned when a SubmitRequest cannot be submitted as is.
	ErrInvalidRequest = errors.New("invalid submit request")
	// ErrQueueNotFound is returned when a queue name matches no known queue.
	ErrQueueNotFound = errors.New("queue not found")
)

// ExecError reports a scheduler command that could not be run or exited non-zero.
type ExecError struct {
	Command []string
	Output  string
	Err     error
}

func (e *ExecError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s: %s", strings.Join(e.Command, " "), e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", strings.Join(e.Command, " "), e.Err, out)
}

func (e *ExecError) Unwrap() error { return e.Err }

// ParseError reports scheduler output that could not be turned into an entity.
type ParseError struct {
	Field  string
	Record string
	Err    error
}

func (e *ParseError) Error() string {
	record := e.Record
	if len(record) > 80 {
		record = record[:80] + "..."
	}
	return fmt.Sprintf("failed to parse %s: %s (record %q)", e.Field, e.Err, record)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RefusalReason tells why a submission was refused locally.
type RefusalReason int

const (
	ReasonUserCapacity RefusalReason = iota + 1
	ReasonQueueCapacity
)

func (r RefusalReason) String() string {
	switch r {
	case ReasonUserCapacity:
		return "user-capacity-exceeded"
	case ReasonQueueCapacity:
		return "queue-capacity-exceeded"
	default:
		return "unknown"
	}
}

// SubmissionRefusedError is returned by Submit when the cached queue state
// says the job would exceed the user's or the queue's capacity. No command
// has been run when it is returned.
type SubmissionRefusedError struct {
	Queue  string
	Reason RefusalReason
}

func (e *SubmissionRefusedError) Error() string {
	switch e.Reason {
	case ReasonUserCapacity:
		return fmt.Sprintf("submission on %s cancelled due to user policy", e.Queue)
	case ReasonQueueCapacity:
		return fmt.Sprintf("submission on %s cancelled because queue is busy", e.Queue)
	default:
		return fmt.Sprintf("submission on %s cancelled", e.Queue)
	}
}
