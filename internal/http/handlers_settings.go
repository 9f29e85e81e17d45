package http

import (
	stdhttp "net/http"

	"timesheet/internal/core"
)

func (s *Server) handleGetSettings(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	respondJSON(w, stdhttp.StatusOK, s.store.Settings())
}

func (s *Server) handleUpdateSettings(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var settings core.Settings
	if err := decodeBody(r, &settings); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := s.store.UpdateSettings(settings); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, stdhttp.StatusOK, settings)
}
