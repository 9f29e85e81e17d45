package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// VATRate is the fixed 20% surcharge applied to the subtotal of
// VAT-applicable clients at summary and export time.
var VATRate = decimal.NewFromInt(20).Div(decimal.NewFromInt(100))

// UnspecifiedActivity is the breakdown bucket for entries logged without an
// activity label.
const UnspecifiedActivity = "Unspecified"

// InMonth reports whether an entry date belongs to the given YYYY-MM month.
// Membership is a string-prefix match, equivalent to matching calendar year
// and month for well-formed dates.
func InMonth(date, yearMonth string) bool {
	return strings.HasPrefix(date, yearMonth)
}

// FilterMonth returns the entries of one client within one month.
func FilterMonth(entries []Entry, clientID, yearMonth string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.ClientID == clientID && InMonth(e.Date, yearMonth) {
			out = append(out, e)
		}
	}
	return out
}

// SortByDate orders entries ascending by date (lexicographic equals
// chronological). Entries on the same day keep their relative order.
func SortByDate(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
}

// MonthHours sums working plus travel hours for one client in one month,
// the figure shown on the client-list badge.
func MonthHours(entries []Entry, clientID, yearMonth string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range FilterMonth(entries, clientID, yearMonth) {
		total = total.Add(decimal.NewFromFloat(e.Hours)).Add(decimal.NewFromFloat(e.TravelHours))
	}
	return total
}

// Summary is the month invoice arithmetic for one client. Zero-valued rows
// (no travel, no expenses, no mileage) are omitted from rendered views but
// always part of the totals.
type Summary struct {
	WorkingHours  decimal.Decimal
	TravelHours   decimal.Decimal
	Miles         int
	Expenses      decimal.Decimal
	WorkingValue  decimal.Decimal
	TravelValue   decimal.Decimal
	MileageValue  decimal.Decimal
	Subtotal      decimal.Decimal
	VATApplicable bool
	VAT           decimal.Decimal
	Total         decimal.Decimal
}

// Summarize computes the invoice figures for a pre-filtered month of
// entries. Working and travel hours bill at the client rate, miles at the
// uniform mileage rate, expenses at face value; VAT is 20% of the subtotal
// iff the client is VAT-applicable.
func Summarize(entries []Entry, rate, mileageRate float64, vatApplicable bool) Summary {
	s := Summary{
		WorkingHours:  decimal.Zero,
		TravelHours:   decimal.Zero,
		Expenses:      decimal.Zero,
		VATApplicable: vatApplicable,
	}
	for _, e := range entries {
		s.WorkingHours = s.WorkingHours.Add(decimal.NewFromFloat(e.Hours))
		s.TravelHours = s.TravelHours.Add(decimal.NewFromFloat(e.TravelHours))
		s.Expenses = s.Expenses.Add(decimal.NewFromFloat(e.ExpenseValue))
		s.Miles += e.Miles
	}

	r := decimal.NewFromFloat(rate)
	s.WorkingValue = s.WorkingHours.Mul(r)
	s.TravelValue = s.TravelHours.Mul(r)
	s.MileageValue = decimal.NewFromInt(int64(s.Miles)).Mul(decimal.NewFromFloat(mileageRate))
	s.Subtotal = s.WorkingValue.Add(s.TravelValue).Add(s.Expenses).Add(s.MileageValue)
	if vatApplicable {
		s.VAT = s.Subtotal.Mul(VATRate)
	} else {
		s.VAT = decimal.Zero
	}
	s.Total = s.Subtotal.Add(s.VAT)
	return s
}

// ActivityBreakdown aggregates one activity label across a month of
// entries. Percent is the group's share of total working hours, rounded to
// one decimal place; 0.0 when the month has no working hours at all.
type ActivityBreakdown struct {
	Activity    string
	Hours       decimal.Decimal
	TravelHours decimal.Decimal
	Miles       int
	Expenses    decimal.Decimal
	Percent     decimal.Decimal
}

// Breakdown groups a month's entries by activity label, entries without a
// label falling under the "Unspecified" bucket, sorted by descending
// working hours (name as tie-break for stable output).
func Breakdown(entries []Entry) []ActivityBreakdown {
	groups := make(map[string]*ActivityBreakdown)
	order := make([]string, 0)
	total := decimal.Zero

	for _, e := range entries {
		label := strings.TrimSpace(e.Activity)
		if label == "" {
			label = UnspecifiedActivity
		}
		g, ok := groups[label]
		if !ok {
			g = &ActivityBreakdown{
				Activity:    label,
				Hours:       decimal.Zero,
				TravelHours: decimal.Zero,
				Expenses:    decimal.Zero,
				Percent:     decimal.Zero,
			}
			groups[label] = g
			order = append(order, label)
		}
		g.Hours = g.Hours.Add(decimal.NewFromFloat(e.Hours))
		g.TravelHours = g.TravelHours.Add(decimal.NewFromFloat(e.TravelHours))
		g.Expenses = g.Expenses.Add(decimal.NewFromFloat(e.ExpenseValue))
		g.Miles += e.Miles
		total = total.Add(decimal.NewFromFloat(e.Hours))
	}

	hundred := decimal.NewFromInt(100)
	out := make([]ActivityBreakdown, 0, len(order))
	for _, label := range order {
		g := groups[label]
		if total.IsPositive() {
			g.Percent = g.Hours.Mul(hundred).Div(total).Round(1)
		}
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Hours.Equal(out[j].Hours) {
			return out[i].Hours.GreaterThan(out[j].Hours)
		}
		return out[i].Activity < out[j].Activity
	})
	return out
}
