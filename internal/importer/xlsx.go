// Package importer bulk-loads timesheet entries from spreadsheet workbooks
// dropped into the data directory. The importer is best-effort by design:
// it reads fixed column positions from "week" sheets and silently skips
// anything that does not match.
package importer

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"timesheet/internal/core"
	applog "timesheet/internal/log"
	"timesheet/internal/store"
)

// Fixed column layout of the weekly sheets. Header reordering is not
// detected; rows that don't fit simply fail to parse and are skipped.
const (
	colDate = iota
	colClient
	colActivity
	colTravelHours
	colHours
	_ // unused
	colExpense
	colMiles
	colNotes
)

// serialEpoch is the Excel day-serial epoch: serial n = 1899-12-30 + n days.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ImportError wraps a workbook the external parser could not open.
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Importer reads workbooks from the store's data directory and appends the
// rows it can resolve as new entries.
type Importer struct {
	store *store.Store
	log   *applog.Logger
}

func New(st *store.Store, logger *applog.Logger) *Importer {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Importer{store: st, log: logger.WithComponent(applog.ComponentImporter)}
}

// ListWorkbooks returns the importable spreadsheet files (.xlsx/.xls) in
// the data directory, sorted by name.
func (im *Importer) ListWorkbooks() ([]string, error) {
	entries, err := os.ReadDir(im.store.Dir())
	if err != nil {
		return nil, &store.StorageError{Op: "read", Path: im.store.Dir(), Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".xlsx" || ext == ".xls" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ImportFile parses one workbook from the data directory and appends every
// resolvable, non-duplicate row as a new entry. Returns the number of
// entries created; zero covers "no matching rows" and "all duplicates"
// alike.
func (im *Importer) ImportFile(name string) (int, error) {
	path := filepath.Join(im.store.Dir(), filepath.Base(name))
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, &ImportError{Path: path, Err: err}
	}
	defer f.Close()

	doc := im.store.Document()
	seen := dedupIndex(doc.Entries)

	var added []core.Entry
	for _, sheet := range f.GetSheetList() {
		if !strings.Contains(strings.ToLower(sheet), "week") {
			continue
		}
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return 0, &ImportError{Path: path, Err: err}
		}
		im.log.Debug("scanning sheet", applog.FieldFile, name, applog.FieldSheet, sheet, "rows", len(rows))

		for i, row := range rows {
			if i == 0 {
				continue // header
			}
			entry, ok := im.parseRow(row, doc, sheet, i)
			if !ok {
				continue
			}
			key := dedupKey(entry)
			if seen[key] {
				im.log.Debug("duplicate row skipped", applog.FieldSheet, sheet, applog.FieldRow, i)
				continue
			}
			seen[key] = true
			entry.ID = core.NewID()
			added = append(added, entry)
		}
	}

	n, err := im.store.AddEntries(added)
	if err != nil {
		return 0, err
	}
	im.log.Info("import finished", applog.FieldFile, name, "imported", n)
	return n, nil
}

// parseRow maps one data row onto an entry, or reports false when the row
// is unusable: no date, no hours, unknown client, unparseable date.
func (im *Importer) parseRow(row []string, doc core.Document, sheet string, idx int) (core.Entry, bool) {
	dateCell := strings.TrimSpace(cell(row, colDate))
	if dateCell == "" {
		return core.Entry{}, false
	}

	hours := parseFloat(cell(row, colHours))
	travel := parseFloat(cell(row, colTravelHours))
	if hours == 0 && travel == 0 {
		return core.Entry{}, false
	}

	client, ok := doc.FindClientByName(cell(row, colClient))
	if !ok {
		im.log.Debug("row skipped, unknown client", applog.FieldSheet, sheet, applog.FieldRow, idx, "name", cell(row, colClient))
		return core.Entry{}, false
	}

	date, ok := parseDate(dateCell)
	if !ok {
		im.log.Debug("row skipped, unparseable date", applog.FieldSheet, sheet, applog.FieldRow, idx, "value", dateCell)
		return core.Entry{}, false
	}

	activity := strings.TrimSpace(cell(row, colActivity))
	if activity == "" {
		activity = client.Activities[0]
	}

	return core.Entry{
		ClientID:     client.ID,
		Date:         date,
		Hours:        hours,
		Activity:     activity,
		Notes:        strings.TrimSpace(cell(row, colNotes)),
		TravelHours:  travel,
		Miles:        int(parseFloat(cell(row, colMiles))),
		ExpenseValue: parseFloat(cell(row, colExpense)),
	}, true
}

// parseDate accepts an ISO date string or an Excel day-serial counted from
// 1899-12-30 (which is also how native date cells arrive in raw mode).
func parseDate(s string) (string, bool) {
	if t, err := time.Parse(core.DateFormat, s); err == nil {
		return t.Format(core.DateFormat), true
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		days := int(math.Floor(serial))
		return serialEpoch.AddDate(0, 0, days).Format(core.DateFormat), true
	}
	return "", false
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// dedupIndex keys existing entries so re-importing the same workbook is a
// no-op: same client, date, activity and hours means the same entry.
func dedupIndex(entries []core.Entry) map[string]bool {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[dedupKey(e)] = true
	}
	return seen
}

func dedupKey(e core.Entry) string {
	return fmt.Sprintf("%s|%s|%s|%s", e.ClientID, e.Date, e.Activity, strconv.FormatFloat(e.Hours, 'f', -1, 64))
}
