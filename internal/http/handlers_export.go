package http

import (
	stdhttp "net/http"
	"path/filepath"

	"timesheet/internal/core"
	"timesheet/internal/export"
	applog "timesheet/internal/log"
)

// handleExportCSV writes "<Client> - <Month>.csv" into the data directory
// and reports the file name back to the UI.
func (s *Server) handleExportCSV(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	client, ok := s.store.Client(r.URL.Query().Get("client"))
	if !ok {
		s.respondError(w, r, core.ErrUnknownClient)
		return
	}
	month := monthParam(r)

	data, err := export.MonthCSV(s.store.Entries(client.ID, month))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	name := export.Filename(client.Name, month, "csv")
	path, err := export.WriteFile(s.store.Dir(), name, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "csv exported",
		applog.FieldClientID, client.ID, applog.FieldMonth, month, applog.FieldFile, filepath.Base(path), applog.FieldOperation, applog.OpExport)
	respondJSON(w, stdhttp.StatusOK, map[string]string{"file": name})
}

// handleExportPDF renders the month summary as a PDF next to the data file.
func (s *Server) handleExportPDF(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	client, ok := s.store.Client(r.URL.Query().Get("client"))
	if !ok {
		s.respondError(w, r, core.ErrUnknownClient)
		return
	}
	month := monthParam(r)
	sum, _ := s.monthSummary(client, month)

	data, err := export.MonthPDF(client.Name, month, sum, client.Rate, s.store.Settings().MileageRate, s.currency)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	name := export.Filename(client.Name, month, "pdf")
	if _, err := export.WriteFile(s.store.Dir(), name, data); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "pdf exported",
		applog.FieldClientID, client.ID, applog.FieldMonth, month, applog.FieldFile, name, applog.FieldOperation, applog.OpExport)
	respondJSON(w, stdhttp.StatusOK, map[string]string{"file": name})
}
