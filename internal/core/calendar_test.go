package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthGridMarch2025(t *testing.T) {
	// March 2025 starts on a Saturday: five spillover days from February,
	// 31 days of March, six spillover days of April = 42 cells.
	cells := MonthGrid(2025, 3, nil, time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	require.Len(t, cells, 42)
	assert.Zero(t, len(cells)%7)

	assert.Equal(t, "2025-02-24", cells[0].Date, "grid opens on the Monday before day 1")
	assert.False(t, cells[0].InMonth)
	assert.Equal(t, 24, cells[0].Day)

	assert.Equal(t, "2025-03-01", cells[5].Date)
	assert.True(t, cells[5].InMonth)

	assert.Equal(t, "2025-04-06", cells[41].Date, "grid closes on the following Sunday")
	assert.False(t, cells[41].InMonth)

	var todays int
	for _, c := range cells {
		if c.Today {
			todays++
			assert.Equal(t, "2025-03-14", c.Date)
		}
	}
	assert.Equal(t, 1, todays)
}

func TestMonthGridStartsOnMonday(t *testing.T) {
	// September 2025 begins on a Monday: no leading spillover.
	cells := MonthGrid(2025, 9, nil, time.Time{})
	require.NotEmpty(t, cells)
	assert.Equal(t, "2025-09-01", cells[0].Date)
	assert.True(t, cells[0].InMonth)
	assert.Zero(t, len(cells)%7)
}

func TestMonthGridFebruaryExactWeeks(t *testing.T) {
	// February 2027 is 28 days starting on a Monday: exactly four weeks,
	// no spillover at either end.
	cells := MonthGrid(2027, 2, nil, time.Time{})
	require.Len(t, cells, 28)
	assert.True(t, cells[0].InMonth)
	assert.True(t, cells[27].InMonth)
}

func TestMonthGridHours(t *testing.T) {
	hours := map[string]decimal.Decimal{
		"2025-03-14": decimal.NewFromFloat(8.5),
	}
	cells := MonthGrid(2025, 3, hours, time.Time{})
	var found bool
	for _, c := range cells {
		if c.Date == "2025-03-14" {
			found = true
			assert.Equal(t, 8.5, c.Hours)
		} else {
			assert.Zero(t, c.Hours)
		}
	}
	assert.True(t, found)
}

func TestHoursByDate(t *testing.T) {
	entries := []Entry{
		{Date: "2025-03-14", Hours: 4, TravelHours: 1},
		{Date: "2025-03-14", Hours: 2.5},
		{Date: "2025-03-15", Hours: 8},
	}
	got := HoursByDate(entries)
	require.Len(t, got, 2)
	assert.True(t, got["2025-03-14"].Equal(decimal.NewFromFloat(7.5)), "got %s", got["2025-03-14"])
	assert.True(t, got["2025-03-15"].Equal(decimal.NewFromInt(8)))
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "March 2025", MonthLabel("2025-03"))
	assert.Equal(t, "December 2024", MonthLabel("2024-12"))
	assert.Equal(t, "not-a-month", MonthLabel("not-a-month"))
}

func TestCurrentMonth(t *testing.T) {
	now := time.Now()
	assert.Equal(t, now.Format("2006-01"), CurrentMonth())
}
