package scheduler

import (
	"context"
	"time"
)

type Executor interface {
	// Exec runs name with args and returns its output.
	Exec(ctx context.Context, name string, args ...string) (string, error)
}

// SubmitRequest describes a job for Submit. Zero values mean "not set".
type SubmitRequest struct {
	// Command line run by the job script.
	Command string
	// NodeCount defaults to 1.
	NodeCount int
	// ProcCount defaults to 1.
	ProcCount int
	// Time is the wall time limit. Defaults to the queue MaxTime.
	Time         *time.Duration
	JobName      string
	Cwd          string
	Stderr       string
	Stdout       string
	OutputPrefix string
	// Users allowed to control the job. Defaults to the submitting user.
	Users   []string
	Project []string
	// Attrs must be fulfilled for the job to run.
	Attrs map[string]string
	// Dependencies are job IDs that must exit with status 0 first.
	Dependencies []int
	Geometry     []string
	Env          map[string]string
	// Hold submits the job in the user hold state.
	Hold      bool
	InputFile string
	// Email is notified at the start and stop of the job.
	Email string
	// Umask is an octal file creation mask, e.g. "022".
	Umask string
	// AllowOversubscribe disables the check against the queue's total nodes.
	AllowOversubscribe bool
}

// After adds the given jobs to the dependencies of the request.
func (r *SubmitRequest) After(jobs ...*Job) *SubmitRequest {
	for _, j := range jobs {
		r.Dependencies = append(r.Dependencies, j.ID)
	}
	return r
}
