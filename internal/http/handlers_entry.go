package http

import (
	stdhttp "net/http"
	"sort"

	"timesheet/internal/core"
	applog "timesheet/internal/log"
)

// handleListEntries returns one client's entries for a month, newest date
// first (the order the timesheet list renders in).
func (s *Server) handleListEntries(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	clientID := r.URL.Query().Get("client")
	if clientID == "" {
		badRequest(w, "client query parameter is required")
		return
	}
	month := monthParam(r)

	entries := s.store.Entries(clientID, month)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
	if entries == nil {
		entries = []core.Entry{}
	}
	respondJSON(w, stdhttp.StatusOK, map[string]any{
		"month":   month,
		"label":   core.MonthLabel(month),
		"entries": entries,
	})
}

type entryPayload struct {
	ClientID     string  `json:"clientId"`
	Date         string  `json:"date"`
	Hours        float64 `json:"hours"`
	Activity     string  `json:"activity"`
	Notes        string  `json:"notes"`
	TravelHours  float64 `json:"travelHours"`
	Miles        int     `json:"miles"`
	ExpenseValue float64 `json:"expenseValue"`
}

func (p entryPayload) toEntry(id string) core.Entry {
	return core.Entry{
		ID:           id,
		ClientID:     p.ClientID,
		Date:         p.Date,
		Hours:        p.Hours,
		Activity:     p.Activity,
		Notes:        p.Notes,
		TravelHours:  p.TravelHours,
		Miles:        p.Miles,
		ExpenseValue: p.ExpenseValue,
	}
}

func (s *Server) handleCreateEntry(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var p entryPayload
	if err := decodeBody(r, &p); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	created, err := s.store.CreateEntry(p.toEntry(""))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "entry created",
		applog.FieldEntryID, created.ID, applog.FieldClientID, created.ClientID, applog.FieldOperation, applog.OpCreate)
	respondJSON(w, stdhttp.StatusCreated, created)
}

func (s *Server) handleUpdateEntry(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var p entryPayload
	if err := decodeBody(r, &p); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	updated, err := s.store.UpdateEntry(p.toEntry(r.PathValue("id")))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, stdhttp.StatusOK, updated)
}

// handleDeleteEntry removes an entry permanently. The UI asks the user to
// confirm first; there is no undo.
func (s *Server) handleDeleteEntry(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if err := s.store.DeleteEntry(r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(stdhttp.StatusNoContent)
}
