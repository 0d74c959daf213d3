package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/squarefactory/cobalt-api/policy"
	"github.com/squarefactory/cobalt-api/scheduler"
)

// Server exposes a Cobalt client over HTTP.
type Server struct {
	cobalt *scheduler.Cobalt
	policy *policy.UserPolicy
}

func NewServer(cobalt *scheduler.Cobalt, p *policy.UserPolicy) *Server {
	return &Server{
		cobalt: cobalt,
		policy: p,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/queues", s.ListQueues)
	r.Post("/queues/{name}/jobs", s.SubmitJob)

	r.Get("/jobs", s.ListJobs)
	r.Delete("/jobs/{id}", s.CancelJob)
	r.Post("/jobs/{id}/hold", s.HoldJob)
	r.Post("/jobs/{id}/release", s.ReleaseJob)

	return r
}

// renderError replies with the status matching err.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var refused *scheduler.SubmissionRefusedError
	switch {
	case errors.As(err, &refused):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, Error{Error: err.Error(), Data: refused.Reason.String()})
		return
	case errors.Is(err, scheduler.ErrInvalidRequest):
		render.Status(r, http.StatusBadRequest)
	case errors.Is(err, scheduler.ErrQueueNotFound):
		render.Status(r, http.StatusNotFound)
	default:
		render.Status(r, http.StatusInternalServerError)
		logrus.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}

	var execErr *scheduler.ExecError
	if errors.As(err, &execErr) {
		render.JSON(w, r, Error{Error: err.Error(), Data: execErr.Output})
		return
	}
	render.JSON(w, r, Error{Error: err.Error()})
}

// boolParam reads an optional boolean query parameter.
func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, invalidRequest("invalid %s parameter %q", name, v)
	}
	return b, nil
}
