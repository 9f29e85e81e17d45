package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DayCell is one cell of the month grid shown on the timesheet screen.
// Spillover cells from the adjacent months carry InMonth=false.
type DayCell struct {
	Day     int     `json:"day"`
	Date    string  `json:"date"`
	InMonth bool    `json:"inMonth"`
	Hours   float64 `json:"hours"`
	Today   bool    `json:"today"`
}

// MonthGrid lays out the given month as full Monday-first weeks: the tail
// of the previous month down to the Monday on or before day 1, every day of
// the month, and the head of the next month up to the following Sunday.
// hoursByDate carries total logged hours (working + travel) per date
// string; today marks at most one cell as the current date. The result is
// always a multiple of seven cells.
func MonthGrid(year, month int, hoursByDate map[string]decimal.Decimal, today time.Time) []DayCell {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// Convert Go's Sunday-first weekday index into a Monday-first offset.
	offset := (int(first.Weekday()) + 6) % 7
	start := first.AddDate(0, 0, -offset)
	end := first.AddDate(0, 1, 0)

	todayStr := today.Format(DateFormat)
	var cells []DayCell
	for d := start; d.Before(end) || len(cells)%7 != 0; d = d.AddDate(0, 0, 1) {
		date := d.Format(DateFormat)
		hours := 0.0
		if h, ok := hoursByDate[date]; ok {
			hours = h.InexactFloat64()
		}
		cells = append(cells, DayCell{
			Day:     d.Day(),
			Date:    date,
			InMonth: d.Month() == time.Month(month) && d.Year() == year,
			Hours:   hours,
			Today:   date == todayStr,
		})
	}
	return cells
}

// HoursByDate folds a month of entries into the per-day totals the grid
// annotates (working + travel hours).
func HoursByDate(entries []Entry) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		sum, ok := out[e.Date]
		if !ok {
			sum = decimal.Zero
		}
		out[e.Date] = sum.Add(decimal.NewFromFloat(e.Hours)).Add(decimal.NewFromFloat(e.TravelHours))
	}
	return out
}

// MonthLabel renders a YYYY-MM month as its display form, e.g. "March
// 2025". Invalid input is returned unchanged rather than guessed at.
func MonthLabel(yearMonth string) string {
	t, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return yearMonth
	}
	return t.Format("January 2006")
}

// CurrentMonth returns the YYYY-MM key for the current calendar month.
func CurrentMonth() string {
	now := time.Now()
	return fmt.Sprintf("%04d-%02d", now.Year(), int(now.Month()))
}
