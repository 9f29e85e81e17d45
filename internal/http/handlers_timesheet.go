package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"
	"time"

	"timesheet/internal/core"
)

// summaryView is the JSON shape of a month summary; decimals are emitted as
// plain numbers for the UI.
type summaryView struct {
	Month         string  `json:"month"`
	Label         string  `json:"label"`
	Rate          float64 `json:"rate"`
	MileageRate   float64 `json:"mileageRate"`
	WorkingHours  float64 `json:"workingHours"`
	TravelHours   float64 `json:"travelHours"`
	Miles         int     `json:"miles"`
	Expenses      float64 `json:"expenses"`
	WorkingValue  float64 `json:"workingValue"`
	TravelValue   float64 `json:"travelValue"`
	MileageValue  float64 `json:"mileageValue"`
	Subtotal      float64 `json:"subtotal"`
	VATApplicable bool    `json:"vatApplicable"`
	VAT           float64 `json:"vat"`
	Total         float64 `json:"total"`
	EntryCount    int     `json:"entryCount"`
}

// monthSummary computes (or serves from cache) the summary for one
// client/month.
func (s *Server) monthSummary(client core.Client, month string) (core.Summary, int) {
	entries := s.store.Entries(client.ID, month)
	key := client.ID + "|" + month
	if cached, ok := s.summaryCache.Get(key); ok {
		return cached, len(entries)
	}
	sum := core.Summarize(entries, client.Rate, s.store.Settings().MileageRate, client.VATApplicable)
	s.summaryCache.Set(key, sum)
	return sum, len(entries)
}

func (s *Server) handleSummary(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	client, ok := s.store.Client(r.URL.Query().Get("client"))
	if !ok {
		s.respondError(w, r, core.ErrUnknownClient)
		return
	}
	month := monthParam(r)
	sum, count := s.monthSummary(client, month)
	mileageRate := s.store.Settings().MileageRate

	respondJSON(w, stdhttp.StatusOK, summaryView{
		Month:         month,
		Label:         core.MonthLabel(month),
		Rate:          client.Rate,
		MileageRate:   mileageRate,
		WorkingHours:  sum.WorkingHours.InexactFloat64(),
		TravelHours:   sum.TravelHours.InexactFloat64(),
		Miles:         sum.Miles,
		Expenses:      sum.Expenses.InexactFloat64(),
		WorkingValue:  sum.WorkingValue.InexactFloat64(),
		TravelValue:   sum.TravelValue.InexactFloat64(),
		MileageValue:  sum.MileageValue.InexactFloat64(),
		Subtotal:      sum.Subtotal.InexactFloat64(),
		VATApplicable: sum.VATApplicable,
		VAT:           sum.VAT.InexactFloat64(),
		Total:         sum.Total.InexactFloat64(),
		EntryCount:    count,
	})
}

type breakdownView struct {
	Activity    string  `json:"activity"`
	Hours       float64 `json:"hours"`
	TravelHours float64 `json:"travelHours"`
	Miles       int     `json:"miles"`
	Expenses    float64 `json:"expenses"`
	Percent     float64 `json:"percent"`
}

func (s *Server) handleBreakdown(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	client, ok := s.store.Client(r.URL.Query().Get("client"))
	if !ok {
		s.respondError(w, r, core.ErrUnknownClient)
		return
	}
	month := monthParam(r)

	key := client.ID + "|" + month
	groups, ok := s.breakdownCache.Get(key)
	if !ok {
		groups = core.Breakdown(s.store.Entries(client.ID, month))
		s.breakdownCache.Set(key, groups)
	}

	views := make([]breakdownView, 0, len(groups))
	for _, g := range groups {
		views = append(views, breakdownView{
			Activity:    g.Activity,
			Hours:       g.Hours.InexactFloat64(),
			TravelHours: g.TravelHours.InexactFloat64(),
			Miles:       g.Miles,
			Expenses:    g.Expenses.InexactFloat64(),
			Percent:     g.Percent.InexactFloat64(),
		})
	}
	respondJSON(w, stdhttp.StatusOK, map[string]any{
		"month":      month,
		"label":      core.MonthLabel(month),
		"activities": views,
	})
}

// handleCalendar returns the month grid for one client, each cell carrying
// the hours logged on that date.
func (s *Server) handleCalendar(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	client, ok := s.store.Client(r.URL.Query().Get("client"))
	if !ok {
		s.respondError(w, r, core.ErrUnknownClient)
		return
	}
	month := monthParam(r)
	parts := strings.SplitN(month, "-", 2)
	year, _ := strconv.Atoi(parts[0])
	mon, _ := strconv.Atoi(parts[1])

	entries := s.store.Entries(client.ID, month)
	cells := core.MonthGrid(year, mon, core.HoursByDate(entries), time.Now())
	respondJSON(w, stdhttp.StatusOK, map[string]any{
		"month": month,
		"label": core.MonthLabel(month),
		"cells": cells,
	})
}
