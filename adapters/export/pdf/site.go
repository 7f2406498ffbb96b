package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"sitemate/core/site"
	"sitemate/internal/errors"
)

var (
	expenseHeaders  = []string{"Date", "Item", "Category", "Amount"}
	expenseWidths   = []float64{30, 80, 40, 40}
	stockHeaders    = []string{"Item", "Balance", "Unit", "Last Updated"}
	stockWidths     = []float64{80, 35, 35, 40}
	movementHeaders = []string{"Date", "Item", "Action", "Change"}
	movementWidths  = []float64{40, 75, 35, 40}
)

// ExpenseLog returns the PDF logbook of a project's spending against its
// budget
func ExpenseLog(project string, health site.Health, expenses []site.Expense) ([]byte, error) {
	if len(expenses) == 0 {
		return nil, errors.New(errors.TypeInput, "no expenses logged").WithContext("project", project)
	}

	pdf, tr := newDocument(fmt.Sprintf("Site Expense Log: %s", project))
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, "Planned Budget: "+formatAmount(health.Planned), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Actual Spent: "+formatAmount(health.Spent), "", 1, "L", false, 0, "")
	if health.OverBudget {
		pdf.SetTextColor(200, 0, 0)
	}
	pdf.CellFormat(0, 6, "Remaining: "+formatAmount(health.Remaining), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	drawTableRow(pdf, expenseWidths, expenseHeaders, true, 3)
	for _, e := range expenses {
		drawTableRow(pdf, expenseWidths, []string{
			formatDate(e.Date),
			tr(truncate(e.Item, 45)),
			string(e.Category),
			formatAmount(e.Amount),
		}, false, 3)
	}
	return output(pdf)
}

// StockReport returns the PDF inventory audit: balances then the movement log
func StockReport(project string, stock []site.StockItem, log []site.StockMovement) ([]byte, error) {
	if len(stock) == 0 {
		return nil, errors.New(errors.TypeInput, "inventory is empty").WithContext("project", project)
	}

	pdf, tr := newDocument(fmt.Sprintf("Inventory Audit: %s", project))
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, "Current Stock", "", 1, "L", false, 0, "")
	drawTableRow(pdf, stockWidths, stockHeaders, true, 1)
	for _, s := range stock {
		drawTableRow(pdf, stockWidths, []string{
			tr(truncate(s.Item, 45)),
			fmt.Sprintf("%g", s.Quantity),
			s.Unit,
			formatDate(s.UpdatedAt),
		}, false, 1)
	}

	if len(log) > 0 {
		pdf.Ln(4)
		pdf.SetFont(fontName, "B", 12)
		pdf.CellFormat(0, 8, "Transaction History", "", 1, "L", false, 0, "")
		drawTableRow(pdf, movementWidths, movementHeaders, true, 3)
		for _, m := range log {
			drawTableRow(pdf, movementWidths, []string{
				m.At.Format("02 Jan 2006 15:04"),
				tr(truncate(m.Item, 40)),
				m.Operation.Label(),
				fmt.Sprintf("%+g %s", m.Change, m.Unit),
			}, false, 3)
		}
	}
	return output(pdf)
}

func newDocument(title string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont(fontName, "", 9)
	pdf.CellFormat(0, 6, "Generated: "+time.Now().Format("02 Jan 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	return pdf, tr
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Internal("failed to render report", err)
	}
	return buf.Bytes(), nil
}
