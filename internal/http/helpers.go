package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"regexp"
	"strings"

	"timesheet/internal/core"
	"timesheet/internal/importer"
	applog "timesheet/internal/log"
	"timesheet/internal/store"
)

var yearMonthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// monthParam reads the YYYY-MM month from the query string, defaulting to
// the current calendar month.
func monthParam(r *stdhttp.Request) string {
	m := strings.TrimSpace(r.URL.Query().Get("month"))
	if yearMonthRe.MatchString(m) {
		return m
	}
	return core.CurrentMonth()
}

func respondJSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps domain errors onto status codes: validation failures
// keep the form open (422), unknown ids are 404, import parse failures are
// 422, storage failures are 500. The body is always {"error": "..."} which
// the UI shows as a transient toast.
func (s *Server) respondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status := stdhttp.StatusInternalServerError
	var ie *importer.ImportError
	switch {
	case core.IsValidation(err):
		status = stdhttp.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnknownClient), errors.Is(err, store.ErrEntryNotFound):
		status = stdhttp.StatusNotFound
	case errors.As(err, &ie):
		status = stdhttp.StatusUnprocessableEntity
	case store.IsStorageError(err):
		status = stdhttp.StatusInternalServerError
	}

	if status >= 500 {
		s.log.ErrorContext(r.Context(), "request failed", applog.FieldError, err, applog.FieldPath, r.URL.Path)
	} else {
		s.log.WarnContext(r.Context(), "request rejected", applog.FieldError, err, applog.FieldPath, r.URL.Path)
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeBody parses a JSON request body into v.
func decodeBody(r *stdhttp.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func badRequest(w stdhttp.ResponseWriter, msg string) {
	respondJSON(w, stdhttp.StatusBadRequest, map[string]string{"error": msg})
}
