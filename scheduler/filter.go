package scheduler

import "strings"

// Filter narrows down linked queues and jobs. Empty fields match everything.
type Filter struct {
	// All keeps the jobs of every user. Without it, and without User, only
	// the jobs of the local user are kept.
	All bool
	// User keeps the jobs whose owner contains User.
	User string
	// Queue keeps the queues, and the jobs of the queues, whose name
	// contains Queue.
	Queue string
	// Location keeps the queues whose name is part of Location and the jobs
	// running on the host Location.
	Location string
	// JobName keeps the jobs whose name contains JobName.
	JobName string
}

func (f Filter) Queues(queues []*Queue) []*Queue {
	out := []*Queue{}
	for _, q := range queues {
		if f.Queue != "" && !strings.Contains(q.Name, f.Queue) {
			continue
		}
		if f.Location != "" && !strings.Contains(f.Location, q.Name) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Jobs applies the filter to jobs; localUser is the owner kept by default.
func (f Filter) Jobs(jobs []*Job, localUser string) []*Job {
	out := []*Job{}
	for _, j := range jobs {
		if f.Queue != "" && !strings.Contains(j.QueueName, f.Queue) {
			continue
		}
		if f.Location != "" && !contains(j.Location, f.Location) {
			continue
		}
		if !f.All && f.User == "" && j.User != localUser {
			continue
		}
		if f.JobName != "" && !strings.Contains(j.Name, f.JobName) {
			continue
		}
		if f.User != "" && !strings.Contains(j.User, f.User) {
			continue
		}
		out = append(out, j)
	}
	return out
}

// InQueues keeps the jobs that belong to one of queues.
func InQueues(jobs []*Job, queues []*Queue) []*Job {
	out := []*Job{}
	for _, j := range jobs {
		if FindQueue(queues, j.QueueName) != nil {
			out = append(out, j)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
