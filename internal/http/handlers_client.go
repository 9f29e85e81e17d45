package http

import (
	stdhttp "net/http"

	"github.com/shopspring/decimal"

	"timesheet/internal/core"
	applog "timesheet/internal/log"
)

// clientView is a client decorated with its hour/value badge for the month
// being displayed.
type clientView struct {
	core.Client
	MonthHours float64 `json:"monthHours"`
	MonthValue float64 `json:"monthValue"`
}

// handleListClients returns visible clients (all of them with ?all=1),
// each carrying total hours and billed value for the requested month.
func (s *Server) handleListClients(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	month := monthParam(r)
	includeHidden := r.URL.Query().Get("all") == "1"

	doc := s.store.Document()
	views := make([]clientView, 0, len(doc.Clients))
	for _, c := range doc.Clients {
		if c.Hidden && !includeHidden {
			continue
		}
		hours := core.MonthHours(doc.Entries, c.ID, month)
		views = append(views, clientView{
			Client:     c,
			MonthHours: hours.InexactFloat64(),
			MonthValue: hours.Mul(decimal.NewFromFloat(c.Rate)).InexactFloat64(),
		})
	}
	respondJSON(w, stdhttp.StatusOK, map[string]any{
		"month":   month,
		"label":   core.MonthLabel(month),
		"clients": views,
	})
}

type clientPayload struct {
	Name          string   `json:"name"`
	Rate          float64  `json:"rate"`
	VATApplicable bool     `json:"vatApplicable"`
	Activities    []string `json:"activities"`
	Hidden        bool     `json:"hidden"`
}

func (s *Server) handleCreateClient(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var p clientPayload
	if err := decodeBody(r, &p); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	created, err := s.store.CreateClient(core.Client{
		Name:          p.Name,
		Rate:          p.Rate,
		VATApplicable: p.VATApplicable,
		Activities:    p.Activities,
		Hidden:        p.Hidden,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "client created", applog.FieldClientID, created.ID, applog.FieldOperation, applog.OpCreate)
	respondJSON(w, stdhttp.StatusCreated, created)
}

func (s *Server) handleUpdateClient(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var p clientPayload
	if err := decodeBody(r, &p); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	updated, err := s.store.UpdateClient(core.Client{
		ID:            r.PathValue("id"),
		Name:          p.Name,
		Rate:          p.Rate,
		VATApplicable: p.VATApplicable,
		Activities:    p.Activities,
		Hidden:        p.Hidden,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, stdhttp.StatusOK, updated)
}

// handleDeleteClient hides the client rather than removing it: historical
// entries keep a resolvable clientId.
func (s *Server) handleDeleteClient(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if err := s.store.HideClient(r.PathValue("id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(stdhttp.StatusNoContent)
}

func (s *Server) handleInvoiceText(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var p struct {
		InvoiceText string `json:"invoiceText"`
	}
	if err := decodeBody(r, &p); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if err := s.store.SetInvoiceText(r.PathValue("id"), p.InvoiceText); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(stdhttp.StatusNoContent)
}
