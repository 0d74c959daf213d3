package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is a unit of work known to the scheduler.
type Job struct {
	// ID is the scheduler job identifier. Two jobs are equal iff their IDs are.
	ID int
	// QueueName is the queue the scheduler reported for the job.
	QueueName string
	// Queue is set once the job has been linked to a parsed Queue.
	Queue *Queue
	// User owns the job.
	User string
	// Users may control the job with scheduler commands.
	Users []string
	Name  string

	// Absent durations are nil.
	WallTime      *time.Duration
	RunTime       *time.Duration
	StartTime     *time.Duration
	QueuedTime    *time.Duration
	RemainingTime *time.Duration

	NodeCount int
	ProcCount int
	// Location lists the hosts the job runs on, ranges expanded.
	Location []string
	// State is reported by the scheduler and never validated.
	State        string
	UserHold     bool
	Envs         map[string]string
	Attrs        map[string]any
	Dependencies []int

	Project []string
	Notify  string
	// SubmitTime is only known for jobs submitted by this process.
	SubmitTime time.Time
	// ScriptPath is the submission script of a job submitted by this process.
	ScriptPath string
}

const StateUnknown = "unknown"

var knownStates = map[string]bool{
	"queued":     true,
	"running":    true,
	"starting":   true,
	"exiting":    true,
	"hold":       true,
	"user_hold":  true,
	"admin_hold": true,
	"dep_hold":   true,
	"killing":    true,
	"done":       true,
}

var locationIndexRe = regexp.MustCompile(`^[a-zA-Z]+(\d+)`)

// ParseJob builds a Job from one `qstat -f -l` record. JobID and Queue are
// required; other fields fall back to their zero value, or to "unknown" for
// the state.
func ParseJob(record string) (*Job, error) {
	v, ok := find(jobIDRe, record)
	if !ok {
		return nil, &ParseError{Field: "JobID", Record: record, Err: ErrMissingField}
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return nil, &ParseError{Field: "JobID", Record: record, Err: err}
	}
	queue, ok := find(jobQueueRe, record)
	if !ok {
		return nil, &ParseError{Field: "Queue", Record: record, Err: ErrMissingField}
	}

	j := &Job{
		ID:           id,
		QueueName:    queue,
		User:         findString(jobUserRe, record),
		Users:        findList(jobUsersRe, record),
		Name:         findString(jobNameRe, record),
		Location:     findLocation(record),
		State:        StateUnknown,
		Envs:         findEnvs(record),
		Attrs:        map[string]any{},
		Dependencies: findDependencies(record),
		Project:      findList(jobProjectRe, record),
	}

	j.WallTime = optionalDuration(jobWallTimeRe, "WallTime", record)
	j.RunTime = optionalDuration(jobRunTimeRe, "RunTime", record)
	j.StartTime = optionalDuration(jobStartTimeRe, "StartTime", record)
	j.QueuedTime = optionalDuration(jobQueuedTimeRe, "QueuedTime", record)
	j.RemainingTime = optionalDuration(jobRemainingRe, "TimeRemaining", record)
	j.NodeCount, _ = optionalInt(jobNodesRe, "Nodes", record)
	j.ProcCount, _ = optionalInt(jobProcsRe, "Procs", record)

	if state, ok := find(jobStateRe, record); ok {
		j.State = state
	}
	if hold, ok := find(jobUserHoldRe, record); ok {
		j.UserHold = hold == "True"
	}
	if notify, ok := find(jobNotifyRe, record); ok && notify != "None" {
		j.Notify = notify
	}
	if attrs, ok := find(jobAttrsRe, record); ok {
		parsed, err := ParseAttrs(attrs)
		if err != nil {
			logrus.WithError(err).WithField("job", id).Debug("ignoring malformed attrs")
		} else {
			j.Attrs = parsed
		}
	}
	return j, nil
}

func optionalDuration(re *regexp.Regexp, field, record string) *time.Duration {
	d, err := findDuration(re, record)
	if err != nil {
		logrus.WithError(err).WithField("field", field).Debug("ignoring malformed duration")
		return nil
	}
	return d
}

func optionalInt(re *regexp.Regexp, field, record string) (int, bool) {
	n, ok, err := findInt(re, record)
	if err != nil {
		logrus.WithError(err).WithField("field", field).Debug("ignoring malformed integer")
		return 0, false
	}
	return n, ok
}

// Equal reports whether other designates the same job. other may be a *Job,
// a Job, an int identifier or a numeric string.
func (j *Job) Equal(other any) bool {
	if j == nil {
		return false
	}
	switch o := other.(type) {
	case *Job:
		return o != nil && o.ID == j.ID
	case Job:
		return o.ID == j.ID
	case int:
		return o == j.ID
	case string:
		id, err := strconv.Atoi(strings.TrimSpace(o))
		return err == nil && id == j.ID
	default:
		return false
	}
}

// KnownState reports whether State is one of the states this client knows
// about. Unknown states are kept as is.
func (j *Job) KnownState() bool {
	return knownStates[j.State]
}

// Running reports whether the scheduler said the job is running.
func (j *Job) Running() bool {
	return j.State == "running"
}

// Where returns the queue name followed by the node indices the job runs on,
// e.g. "knl_7210[3,4]".
func (j *Job) Where() string {
	where := j.QueueName
	if j.Queue != nil {
		where = j.Queue.Name
	}
	if len(j.Location) > 1 {
		indices := make([]string, 0, len(j.Location))
		for _, l := range j.Location {
			if m := locationIndexRe.FindStringSubmatch(l); m != nil {
				indices = append(indices, m[1])
			} else {
				indices = append(indices, l)
			}
		}
		where += "[" + strings.Join(indices, ",") + "]"
	}
	return where
}

// Elapsed returns the run time of a running job and the queued time of any
// other job, or nil when the scheduler did not report it.
func (j *Job) Elapsed() *time.Duration {
	if j.Running() {
		return j.RunTime
	}
	return j.QueuedTime
}

func (j *Job) String() string {
	return fmt.Sprintf("%8d %-20s %-24s %-16s %-8s %-10s",
		j.ID, j.Name, j.Where(), j.User, j.State, FormatOptionalDuration(j.Elapsed()))
}

// FormatOptionalDuration prints d as H:MM:SS, or "unknown" when d is nil.
func FormatOptionalDuration(d *time.Duration) string {
	if d == nil {
		return "unknown"
	}
	return FormatDuration(*d)
}
