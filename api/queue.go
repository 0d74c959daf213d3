package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/squarefactory/cobalt-api/scheduler"
)

// queues fetches the linked queues and jobs, with the user policy applied
// to the queues when restrict is set.
func (s *Server) queues(ctx context.Context, restrict bool) ([]*scheduler.Queue, []*scheduler.Job, error) {
	queues, jobs, err := s.cobalt.GetQueuesJobs(ctx)
	if err != nil {
		return nil, nil, err
	}
	if restrict {
		queues = s.policy.Apply(queues, s.cobalt.User(), s.policy.Now())
	}
	return queues, jobs, nil
}

// ListQueues answers GET /queues[?restrict=true].
func (s *Server) ListQueues(w http.ResponseWriter, r *http.Request) {
	restrict, err := boolParam(r, "restrict")
	if err != nil {
		renderError(w, r, err)
		return
	}
	queues, _, err := s.queues(r.Context(), restrict)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, NewQueues(queues))
}

// SubmitJob answers POST /queues/{name}/jobs.
func (s *Server) SubmitJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body SubmitJob
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		renderError(w, r, invalidRequest("invalid body: %s", err))
		return
	}
	req, err := body.Request()
	if err != nil {
		renderError(w, r, err)
		return
	}
	restrict, err := boolParam(r, "restrict")
	if err != nil {
		renderError(w, r, err)
		return
	}

	queues, _, err := s.queues(r.Context(), restrict)
	if err != nil {
		renderError(w, r, err)
		return
	}
	q := scheduler.FindQueue(queues, name)
	if q == nil {
		renderError(w, r, fmt.Errorf("%w: %s", scheduler.ErrQueueNotFound, name))
		return
	}

	job, err := s.cobalt.Submit(r.Context(), q, req)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, NewJob(job))
}
