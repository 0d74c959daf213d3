package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMinTime = 10 * time.Minute
	defaultMaxTime = time.Hour
)

// Queue is a scheduling queue and the jobs observed in it.
type Queue struct {
	Name string
	// Jobs is filled by Link.
	Jobs       []*Job
	Users      []string
	Groups     []string
	MinTime    time.Duration
	MaxTime    time.Duration
	MaxRunning int
	MaxQueued  int
	// MaxUserNodes is the capacity left to the local user. It is decremented
	// for every job of the local user seen by Link and after every Submit,
	// and is never synchronized with the scheduler.
	MaxUserNodes int
	MaxNodeHours int
	TotalNodes   int
	State        string
}

// ParseQueue builds a Queue from one `qstat -Q -l` record. Capacity figures
// missing from the record are looked up in defaults.
func ParseQueue(record string, defaults QueueDefaults) (*Queue, error) {
	name, ok := find(queueNameRe, record)
	if !ok {
		return nil, &ParseError{Field: "Name", Record: record, Err: ErrInvalidQueue}
	}

	q := &Queue{
		Name:    name,
		Jobs:    []*Job{},
		Users:   findList(queueUsersRe, record),
		Groups:  findList(queueGroupsRe, record),
		MinTime: defaultMinTime,
		MaxTime: defaultMaxTime,
		State:   StateUnknown,
	}

	if d := optionalDuration(queueMinTimeRe, "MinTime", record); d != nil {
		q.MinTime = *d
	}
	if d := optionalDuration(queueMaxTimeRe, "MaxTime", record); d != nil {
		q.MaxTime = *d
	}
	q.MaxRunning, _ = optionalInt(queueMaxRunningRe, "MaxRunning", record)
	q.MaxQueued, _ = optionalInt(queueMaxQueuedRe, "MaxQueued", record)
	q.MaxNodeHours, _ = optionalInt(queueMaxNodeHoursRe, "MaxNodeHours", record)

	fallback, _ := defaults.Lookup(name)
	var found bool
	if q.MaxUserNodes, found = optionalInt(queueMaxUserNodesRe, "MaxUserNodes", record); !found {
		q.MaxUserNodes = fallback.MaxUserNodes
	}
	if q.TotalNodes, found = optionalInt(queueTotalNodesRe, "TotalNodes", record); !found {
		q.TotalNodes = fallback.TotalNodes
	}

	if state, ok := find(queueStateRe, record); ok {
		q.State = state
	}
	return q, nil
}

// Equal reports whether other designates the same queue: a *Queue, a Queue
// or a queue name.
func (q *Queue) Equal(other any) bool {
	if q == nil {
		return false
	}
	switch o := other.(type) {
	case *Queue:
		return o != nil && o.Name == q.Name
	case Queue:
		return o.Name == q.Name
	case string:
		return o == q.Name
	default:
		return false
	}
}

// UsedBy counts the jobs of user in the queue.
func (q *Queue) UsedBy(user string) int {
	n := 0
	for _, j := range q.Jobs {
		if j.User == user {
			n++
		}
	}
	return n
}

// CountState counts the jobs of the queue in the given state.
func (q *Queue) CountState(state string) int {
	n := 0
	for _, j := range q.Jobs {
		if j.State == state {
			n++
		}
	}
	return n
}

func (q *Queue) String() string {
	var b strings.Builder
	b.WriteString(q.Name + ":\n")
	fmt.Fprintf(&b, "\tqueued: %d\n", q.CountState("queued"))
	fmt.Fprintf(&b, "\trunning: %d\n", q.CountState("running"))
	fmt.Fprintf(&b, "\tusers: %s\n", strings.Join(q.Users, ", "))
	fmt.Fprintf(&b, "\tgroups: %s\n", strings.Join(q.Groups, ", "))
	fmt.Fprintf(&b, "\tmintime: %s\n", FormatDuration(q.MinTime))
	fmt.Fprintf(&b, "\tmaxtime: %s\n", FormatDuration(q.MaxTime))
	fmt.Fprintf(&b, "\tmaxrunning: %d\n", q.MaxRunning)
	fmt.Fprintf(&b, "\tmaxqueued: %d\n", q.MaxQueued)
	fmt.Fprintf(&b, "\tmaxusernodes: %d\n", q.MaxUserNodes)
	fmt.Fprintf(&b, "\ttotalnodes: %d\n", q.TotalNodes)
	fmt.Fprintf(&b, "\tstate: %s\n", q.State)
	return b.String()
}

// FindQueue returns the queue called name, or nil.
func FindQueue(queues []*Queue, name string) *Queue {
	for _, q := range queues {
		if q.Name == name {
			return q
		}
	}
	return nil
}

// FindJob returns the job designated by ref (see Job.Equal), or nil.
func FindJob(jobs []*Job, ref any) *Job {
	for _, j := range jobs {
		if j.Equal(ref) {
			return j
		}
	}
	return nil
}

// Link attaches every job to the parsed queue of the same name and charges
// one unit of MaxUserNodes for each job owned by user. Jobs whose queue was
// not parsed are left unlinked.
func Link(queues []*Queue, jobs []*Job, user string) {
	for _, j := range jobs {
		q := FindQueue(queues, j.QueueName)
		if q == nil {
			continue
		}
		j.Queue = q
		q.Jobs = append(q.Jobs, j)
		if j.User == user {
			q.MaxUserNodes--
		}
	}
}

// ParseJobID returns the identifier qsub printed. qsub may print warnings
// around the id, so the last line made of an integer alone wins.
func ParseJobID(out string) (int, error) {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if id, err := strconv.Atoi(strings.TrimSpace(lines[i])); err == nil && id > 0 {
			return id, nil
		}
	}
	return 0, &ParseError{Field: "jobid", Record: out, Err: ErrMissingField}
}
