package http

import (
	stdhttp "net/http"

	applog "timesheet/internal/log"
)

// handleImportFiles lists the importable workbooks in the data directory.
func (s *Server) handleImportFiles(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	files, err := s.importer.ListWorkbooks()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if files == nil {
		files = []string{}
	}
	respondJSON(w, stdhttp.StatusOK, map[string]any{"files": files})
}

// handleImport runs one workbook through the importer. The response carries
// only the imported count: zero means "nothing imported", whether rows were
// absent, duplicates or unparseable.
func (s *Server) handleImport(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var p struct {
		File string `json:"file"`
	}
	if err := decodeBody(r, &p); err != nil || p.File == "" {
		badRequest(w, "file is required")
		return
	}
	n, err := s.importer.ImportFile(p.File)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "workbook imported",
		applog.FieldFile, p.File, "imported", n, applog.FieldOperation, applog.OpImport)
	respondJSON(w, stdhttp.StatusOK, map[string]int{"imported": n})
}
