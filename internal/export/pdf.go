package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"timesheet/internal/core"
)

// MonthPDF renders a single-page invoice summary: title, client/month
// header, the billable line items (zero lines omitted), subtotal and, for
// VAT-applicable clients, the VAT line and grand total.
func MonthPDF(clientName, yearMonth string, s core.Summary, rate, mileageRate float64, currency string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	// Core fonts are cp1252; translate so the currency symbol survives.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(0, 102, 204)
	pdf.Text(20, 20, "Timesheet")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(51, 51, 51)
	pdf.Text(20, 30, tr(fmt.Sprintf("%s - %s", clientName, core.MonthLabel(yearMonth))))

	money := func(d decimal.Decimal) string { return currency + d.StringFixed(2) }
	rateStr := money(decimal.NewFromFloat(rate))

	y := 45.0
	line := func(size float64, text string) {
		pdf.SetFont("Helvetica", "", size)
		pdf.Text(20, y, tr(text))
		y += 8
	}

	line(12, fmt.Sprintf("Working Hours: %sh × %s = %s", s.WorkingHours.String(), rateStr, money(s.WorkingValue)))
	if s.TravelHours.IsPositive() {
		line(12, fmt.Sprintf("Travel Hours: %sh × %s = %s", s.TravelHours.String(), rateStr, money(s.TravelValue)))
	}
	if s.Expenses.IsPositive() {
		line(12, fmt.Sprintf("Expenses: %s", money(s.Expenses)))
	}
	if s.Miles > 0 {
		line(12, fmt.Sprintf("Mileage: %d miles × %s = %s", s.Miles, money(decimal.NewFromFloat(mileageRate)), money(s.MileageValue)))
	}

	y += 4
	line(14, fmt.Sprintf("Subtotal: %s", money(s.Subtotal)))
	if s.VATApplicable {
		line(14, fmt.Sprintf("VAT (20%%): %s", money(s.VAT)))
		line(16, fmt.Sprintf("Total: %s", money(s.Total)))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
