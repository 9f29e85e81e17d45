// Package export renders a client's month as CSV and PDF reports and
// delivers them into the data directory.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"timesheet/internal/core"
	"timesheet/internal/store"
)

// Filename builds the report file name, e.g. "Safran - March 2025.csv".
func Filename(clientName, yearMonth, ext string) string {
	return fmt.Sprintf("%s - %s.%s", clientName, core.MonthLabel(yearMonth), ext)
}

// MonthCSV renders a month of entries as CSV: one header row, then one row
// per entry in ascending date order. Text fields are quoted per standard
// CSV escaping; absent numeric fields render as 0.
func MonthCSV(entries []core.Entry) ([]byte, error) {
	ordered := make([]core.Entry, len(entries))
	copy(ordered, entries)
	core.SortByDate(ordered)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Date", "Activity", "Hours", "Travel Hours", "Notes", "Expense", "Miles"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range ordered {
		row := []string{
			e.Date,
			e.Activity,
			formatNumber(e.Hours),
			formatNumber(e.TravelHours),
			e.Notes,
			formatNumber(e.ExpenseValue),
			strconv.Itoa(e.Miles),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv writer: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile delivers a rendered report into the data directory and returns
// the full path. Failures surface as StorageError like any other write.
func WriteFile(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &store.StorageError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// formatNumber renders a float without trailing zeros, matching the way
// hours are entered ("3", "2.5").
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
