package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/squarefactory/cobalt-api/scheduler"
)

// ListJobs answers GET /jobs. Without all or user, only the jobs of the
// local user are listed.
func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request) {
	all, err := boolParam(r, "all")
	if err != nil {
		renderError(w, r, err)
		return
	}
	restrict, err := boolParam(r, "restrict")
	if err != nil {
		renderError(w, r, err)
		return
	}
	query := r.URL.Query()
	filter := scheduler.Filter{
		All:      all,
		User:     query.Get("user"),
		Queue:    query.Get("queue"),
		Location: query.Get("location"),
		JobName:  query.Get("name"),
	}

	queues, jobs, err := s.queues(r.Context(), restrict)
	if err != nil {
		renderError(w, r, err)
		return
	}
	if restrict {
		jobs = scheduler.InQueues(jobs, queues)
	}
	render.JSON(w, r, NewJobs(filter.Jobs(jobs, s.cobalt.User())))
}

func (s *Server) CancelJob(w http.ResponseWriter, r *http.Request) {
	s.jobAction(w, r, s.cobalt.CancelJob)
}

func (s *Server) HoldJob(w http.ResponseWriter, r *http.Request) {
	s.jobAction(w, r, s.cobalt.HoldJob)
}

func (s *Server) ReleaseJob(w http.ResponseWriter, r *http.Request) {
	s.jobAction(w, r, s.cobalt.ReleaseJob)
}

func (s *Server) jobAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(context.Context, int) (string, error),
) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, invalidRequest("invalid job id %q", chi.URLParam(r, "id")))
		return
	}
	out, err := action(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, OK{out})
}
