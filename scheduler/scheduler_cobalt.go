package scheduler

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const scriptMode = 0o505

type Cobalt struct {
	executor  Executor
	user      string
	scriptDir string
	defaults  QueueDefaults
	now       func() time.Time
}

type Option func(*Cobalt)

// WithScriptDir sets where submission scripts are written. Empty means the
// OS temporary directory.
func WithScriptDir(dir string) Option {
	return func(c *Cobalt) { c.scriptDir = dir }
}

// WithQueueDefaults layers capacity defaults over the built-in table.
func WithQueueDefaults(defaults QueueDefaults) Option {
	return func(c *Cobalt) { c.defaults = defaults }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cobalt) { c.now = now }
}

func NewCobalt(
	executor Executor,
	user string,
	opts ...Option,
) *Cobalt {
	c := &Cobalt{
		executor: executor,
		user:     user,
		defaults: QueueDefaults{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// User is the local user whose jobs are charged against MaxUserNodes.
func (c *Cobalt) User() string {
	return c.user
}

func (c *Cobalt) run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := c.executor.Exec(ctx, name, args...)
	if err != nil {
		return out, &ExecError{
			Command: append([]string{name}, args...),
			Output:  out,
			Err:     err,
		}
	}
	return out, nil
}

// HealthCheck runs qstat to check if the scheduler answers.
func (c *Cobalt) HealthCheck(ctx context.Context) error {
	_, err := c.run(ctx, "qstat", "-Q", "-l")
	if err != nil {
		logrus.WithError(err).Error("healthcheck failed")
	}
	return err
}

// GetQueues lists the queues without their jobs.
func (c *Cobalt) GetQueues(ctx context.Context) ([]*Queue, error) {
	out, err := c.run(ctx, "qstat", "-Q", "-l")
	if err != nil {
		logrus.WithError(err).Error("GetQueues failed")
		return nil, err
	}
	queues := []*Queue{}
	for _, record := range SplitRecords(out) {
		if !queueNameRe.MatchString(record) {
			continue
		}
		q, err := ParseQueue(record, c.defaults)
		if err != nil {
			return nil, fmt.Errorf("failed to parse queue: %w", err)
		}
		queues = append(queues, q)
	}
	return queues, nil
}

// GetJobs lists every job known to the scheduler, unlinked.
func (c *Cobalt) GetJobs(ctx context.Context) ([]*Job, error) {
	out, err := c.run(ctx, "qstat", "-f", "-l")
	if err != nil {
		logrus.WithError(err).Error("GetJobs failed")
		return nil, err
	}
	jobs := []*Job{}
	for _, record := range SplitRecords(out) {
		if !jobIDRe.MatchString(record) {
			continue
		}
		j, err := ParseJob(record)
		if err != nil {
			return nil, fmt.Errorf("failed to parse job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// GetQueuesJobs fetches queues and jobs and links them together. The
// MaxUserNodes of each queue is charged for the local user's jobs.
func (c *Cobalt) GetQueuesJobs(ctx context.Context) ([]*Queue, []*Job, error) {
	queues, err := c.GetQueues(ctx)
	if err != nil {
		return nil, nil, err
	}
	jobs, err := c.GetJobs(ctx)
	if err != nil {
		return nil, nil, err
	}
	Link(queues, jobs, c.user)
	return queues, jobs, nil
}

// GetMyJobs returns the linked jobs owned by the local user.
func (c *Cobalt) GetMyJobs(ctx context.Context) ([]*Job, error) {
	_, jobs, err := c.GetQueuesJobs(ctx)
	if err != nil {
		return nil, err
	}
	mine := []*Job{}
	for _, j := range jobs {
		if j.User == c.user {
			mine = append(mine, j)
		}
	}
	return mine, nil
}

// CancelJob kills a job using qdel.
func (c *Cobalt) CancelJob(ctx context.Context, jobID int) (string, error) {
	return c.jobAction(ctx, "qdel", jobID)
}

// HoldJob places a job in the user hold state using qhold.
func (c *Cobalt) HoldJob(ctx context.Context, jobID int) (string, error) {
	return c.jobAction(ctx, "qhold", jobID)
}

// ReleaseJob releases a user hold using qrls.
func (c *Cobalt) ReleaseJob(ctx context.Context, jobID int) (string, error) {
	return c.jobAction(ctx, "qrls", jobID)
}

func (c *Cobalt) jobAction(ctx context.Context, cmd string, jobID int) (string, error) {
	out, err := c.run(ctx, cmd, strconv.Itoa(jobID))
	out = strings.TrimSpace(out)
	logrus.WithFields(logrus.Fields{
		"cmd":    cmd + " " + strconv.Itoa(jobID),
		"output": out,
	}).Info("job action")
	if err != nil {
		logrus.WithError(err).Errorf("%s failed", cmd)
	}
	return out, err
}

// Submit writes a submission script for req and hands it to qsub on queue q.
//
// The capacity checks run against the cached state of q, before anything is
// written or executed. On success q.MaxUserNodes is decremented; q.Jobs is
// left untouched until the next GetQueuesJobs. The script is kept, since
// Cobalt runs it by path, and its location is returned in Job.ScriptPath.
func (c *Cobalt) Submit(ctx context.Context, q *Queue, req *SubmitRequest) (*Job, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: no queue given", ErrInvalidRequest)
	}
	if req == nil || strings.TrimSpace(req.Command) == "" {
		return nil, fmt.Errorf("%w: empty command", ErrInvalidRequest)
	}
	if err := checkDirectives(req); err != nil {
		return nil, err
	}
	nodes := req.NodeCount
	if nodes == 0 {
		nodes = 1
	}
	procs := req.ProcCount
	if procs == 0 {
		procs = 1
	}
	if nodes < 0 || procs < 0 {
		return nil, fmt.Errorf("%w: negative node or process count", ErrInvalidRequest)
	}
	walltime := q.MaxTime
	if req.Time != nil {
		walltime = *req.Time
	}
	users := req.Users
	if len(users) == 0 {
		users = []string{c.user}
	}

	if q.UsedBy(c.user)+nodes > q.MaxUserNodes {
		return nil, &SubmissionRefusedError{Queue: q.Name, Reason: ReasonUserCapacity}
	}
	if !req.AllowOversubscribe && len(q.Jobs)+nodes > q.TotalNodes {
		return nil, &SubmissionRefusedError{Queue: q.Name, Reason: ReasonQueueCapacity}
	}

	resolved := *req
	resolved.NodeCount = nodes
	resolved.ProcCount = procs
	body, err := RenderScript(&resolved, users)
	if err != nil {
		return nil, err
	}

	path, err := c.writeScript(body)
	if err != nil {
		return nil, err
	}
	keep := false
	defer func() {
		if !keep {
			if err := os.Remove(path); err != nil {
				logrus.WithError(err).WithField("path", path).Warn("failed to remove script")
			}
		}
	}()

	args := []string{
		"--queue", q.Name,
		"-n", strconv.Itoa(nodes),
		"-t", FormatDuration(walltime),
	}
	if req.JobName != "" {
		args = append(args, "--jobname", req.JobName)
	}
	args = append(args, path)

	out, err := c.run(ctx, "qsub", args...)
	if err != nil {
		logrus.WithError(err).Error("submit failed")
		return nil, err
	}
	// Cobalt owns the script from now on.
	keep = true

	id, err := ParseJobID(out)
	if err != nil {
		logrus.WithError(err).WithField("output", out).Error("submit failed")
		return nil, err
	}
	q.MaxUserNodes--

	attrs := make(map[string]any, len(req.Attrs))
	for k, v := range req.Attrs {
		attrs[k] = v
	}
	envs := make(map[string]string, len(req.Env))
	for k, v := range req.Env {
		envs[k] = v
	}
	zero := time.Duration(0)
	queued := zero
	wall := walltime
	remaining := walltime

	logrus.WithFields(logrus.Fields{
		"jobid": id,
		"queue": q.Name,
		"path":  path,
	}).Info("job submitted")

	return &Job{
		ID:            id,
		QueueName:     q.Name,
		Queue:         q,
		User:          c.user,
		Users:         users,
		Name:          req.JobName,
		WallTime:      &wall,
		RunTime:       &zero,
		QueuedTime:    &queued,
		RemainingTime: &remaining,
		NodeCount:     nodes,
		ProcCount:     procs,
		Location:      []string{},
		State:         "queued",
		UserHold:      req.Hold,
		Envs:          envs,
		Attrs:         attrs,
		Dependencies:  append([]int{}, req.Dependencies...),
		Project:       append([]string{}, req.Project...),
		Notify:        req.Email,
		SubmitTime:    c.now(),
		ScriptPath:    path,
	}, nil
}

func (c *Cobalt) writeScript(body string) (string, error) {
	f, err := os.CreateTemp(c.scriptDir, "cobalt-*.sh")
	if err != nil {
		return "", fmt.Errorf("failed to create script: %w", err)
	}
	path := f.Name()
	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write script: %w", err)
	}
	if err := os.Chmod(path, scriptMode); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to chmod script: %w", err)
	}
	return path, nil
}

// checkDirectives rejects option values that would break out of their
// #COBALT line. Only the command may span several lines.
func checkDirectives(req *SubmitRequest) error {
	values := map[string][]string{
		"jobname":      {req.JobName},
		"cwd":          {req.Cwd},
		"error":        {req.Stderr},
		"output":       {req.Stdout},
		"outputprefix": {req.OutputPrefix},
		"user_list":    req.Users,
		"run_project":  req.Project,
		"geometry":     req.Geometry,
		"input_file":   {req.InputFile},
		"notify":       {req.Email},
		"umask":        {req.Umask},
	}
	for k, v := range req.Attrs {
		values["attrs"] = append(values["attrs"], k, v)
	}
	for k, v := range req.Env {
		values["env"] = append(values["env"], k, v)
	}
	for option, vs := range values {
		for _, v := range vs {
			if strings.ContainsAny(v, "\r\n") {
				return fmt.Errorf("%w: %s contains a line break", ErrInvalidRequest, option)
			}
		}
	}
	return nil
}
