package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

const healthTimeout = 5 * time.Second

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.cobalt.HealthCheck(ctx); err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Error{Error: err.Error()})
		return
	}
	render.JSON(w, r, OK{"ok"})
}
