package api

import (
	"fmt"
	"time"

	"github.com/squarefactory/cobalt-api/scheduler"
)

type Error struct {
	Error string `json:"error"`
	Data  string `json:"data,omitempty"`
}

type OK struct {
	Data string `json:"data"`
}

// Job is the JSON form of a scheduler job. Durations are printed as H:MM:SS
// and omitted when unknown.
type Job struct {
	ID            int               `json:"id"`
	Name          string            `json:"name"`
	Queue         string            `json:"queue"`
	User          string            `json:"user"`
	Users         []string          `json:"users"`
	State         string            `json:"state"`
	UserHold      bool              `json:"user_hold"`
	WallTime      string            `json:"walltime,omitempty"`
	RunTime       string            `json:"runtime,omitempty"`
	StartTime     string            `json:"start_time,omitempty"`
	QueuedTime    string            `json:"queued_time,omitempty"`
	RemainingTime string            `json:"remaining_time,omitempty"`
	NodeCount     int               `json:"nodecount"`
	ProcCount     int               `json:"proccount"`
	Location      []string          `json:"location"`
	Envs          map[string]string `json:"envs"`
	Attrs         map[string]any    `json:"attrs"`
	Dependencies  []int             `json:"dependencies"`
	Project       []string          `json:"project,omitempty"`
	Notify        string            `json:"notify,omitempty"`
	SubmitTime    *time.Time        `json:"submit_time,omitempty"`
	ScriptPath    string            `json:"script_path,omitempty"`
}

func optionalDuration(d *time.Duration) string {
	if d == nil {
		return ""
	}
	return scheduler.FormatDuration(*d)
}

func NewJob(j *scheduler.Job) Job {
	v := Job{
		ID:            j.ID,
		Name:          j.Name,
		Queue:         j.QueueName,
		User:          j.User,
		Users:         j.Users,
		State:         j.State,
		UserHold:      j.UserHold,
		WallTime:      optionalDuration(j.WallTime),
		RunTime:       optionalDuration(j.RunTime),
		StartTime:     optionalDuration(j.StartTime),
		QueuedTime:    optionalDuration(j.QueuedTime),
		RemainingTime: optionalDuration(j.RemainingTime),
		NodeCount:     j.NodeCount,
		ProcCount:     j.ProcCount,
		Location:      j.Location,
		Envs:          j.Envs,
		Attrs:         j.Attrs,
		Dependencies:  j.Dependencies,
		Project:       j.Project,
		Notify:        j.Notify,
		ScriptPath:    j.ScriptPath,
	}
	if !j.SubmitTime.IsZero() {
		t := j.SubmitTime
		v.SubmitTime = &t
	}
	return v
}

func NewJobs(jobs []*scheduler.Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewJob(j))
	}
	return out
}

type Queue struct {
	Name         string   `json:"name"`
	Users        []string `json:"users"`
	Groups       []string `json:"groups"`
	MinTime      string   `json:"mintime"`
	MaxTime      string   `json:"maxtime"`
	MaxRunning   int      `json:"maxrunning"`
	MaxQueued    int      `json:"maxqueued"`
	MaxUserNodes int      `json:"maxusernodes"`
	MaxNodeHours int      `json:"maxnodehours"`
	TotalNodes   int      `json:"totalnodes"`
	State        string   `json:"state"`
	Queued       int      `json:"queued"`
	Running      int      `json:"running"`
	// Jobs holds the IDs of the jobs seen in the queue.
	Jobs []int `json:"jobs"`
}

func NewQueue(q *scheduler.Queue) Queue {
	jobs := make([]int, 0, len(q.Jobs))
	for _, j := range q.Jobs {
		jobs = append(jobs, j.ID)
	}
	return Queue{
		Name:         q.Name,
		Users:        q.Users,
		Groups:       q.Groups,
		MinTime:      scheduler.FormatDuration(q.MinTime),
		MaxTime:      scheduler.FormatDuration(q.MaxTime),
		MaxRunning:   q.MaxRunning,
		MaxQueued:    q.MaxQueued,
		MaxUserNodes: q.MaxUserNodes,
		MaxNodeHours: q.MaxNodeHours,
		TotalNodes:   q.TotalNodes,
		State:        q.State,
		Queued:       q.CountState("queued"),
		Running:      q.CountState("running"),
		Jobs:         jobs,
	}
}

func NewQueues(queues []*scheduler.Queue) []Queue {
	out := make([]Queue, 0, len(queues))
	for _, q := range queues {
		out = append(out, NewQueue(q))
	}
	return out
}

// SubmitJob is the body of a submission. Time is H:MM:SS.
type SubmitJob struct {
	Command            string            `json:"command"`
	NodeCount          int               `json:"nodecount,omitempty"`
	ProcCount          int               `json:"proccount,omitempty"`
	Time               string            `json:"time,omitempty"`
	JobName            string            `json:"jobname,omitempty"`
	Cwd                string            `json:"cwd,omitempty"`
	Stderr             string            `json:"stderr,omitempty"`
	Stdout             string            `json:"stdout,omitempty"`
	OutputPrefix       string            `json:"output_prefix,omitempty"`
	Users              []string          `json:"users,omitempty"`
	Project            []string          `json:"project,omitempty"`
	Attrs              map[string]string `json:"attrs,omitempty"`
	Dependencies       []int             `json:"dependencies,omitempty"`
	Geometry           []string          `json:"geometry,omitempty"`
	Env                map[string]string `json:"env,omitempty"`
	Hold               bool              `json:"hold,omitempty"`
	InputFile          string            `json:"input_file,omitempty"`
	Email              string            `json:"email,omitempty"`
	Umask              string            `json:"umask,omitempty"`
	AllowOversubscribe bool              `json:"allow_oversubscribe,omitempty"`
}

func (s *SubmitJob) Request() (*scheduler.SubmitRequest, error) {
	req := &scheduler.SubmitRequest{
		Command:            s.Command,
		NodeCount:          s.NodeCount,
		ProcCount:          s.ProcCount,
		JobName:            s.JobName,
		Cwd:                s.Cwd,
		Stderr:             s.Stderr,
		Stdout:             s.Stdout,
		OutputPrefix:       s.OutputPrefix,
		Users:              s.Users,
		Project:            s.Project,
		Attrs:              s.Attrs,
		Dependencies:       s.Dependencies,
		Geometry:           s.Geometry,
		Env:                s.Env,
		Hold:               s.Hold,
		InputFile:          s.InputFile,
		Email:              s.Email,
		Umask:              s.Umask,
		AllowOversubscribe: s.AllowOversubscribe,
	}
	if s.Time != "" {
		d, err := scheduler.ParseDuration(s.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", scheduler.ErrInvalidRequest, err)
		}
		req.Time = &d
	}
	return req, nil
}
