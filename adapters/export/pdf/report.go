// Package pdf renders saved projects and their site ledgers as PDF reports
package pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"sitemate/adapters/storage"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

const fontName = "Helvetica"

var (
	headers   = []string{"Item", "Description", "Qty", "Unit Price", "Total"}
	colWidths = []float64{35, 75, 20, 30, 30}
)

// Report returns the PDF bytes for p. narrative replaces the saved
// narrative when not empty.
func Report(p *storage.Project, narrative string) ([]byte, error) {
	if p == nil || p.BOQ.IsEmpty() {
		return nil, errors.New(errors.TypeInput, "cannot export an empty BOQ")
	}
	if narrative == "" {
		narrative = p.Narrative
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 10, "SiteMate Estimation Report", "", 1, "C", false, 0, "")

	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Project: %s", p.Name)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Location: %s", p.Location)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Soil: %s", safeValue(string(p.Soil)))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", formatDate(p.UpdatedAt)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if strings.TrimSpace(narrative) != "" {
		pdf.SetFont(fontName, "B", 12)
		pdf.CellFormat(0, 8, "Engineering Notes", "", 1, "L", false, 0, "")
		pdf.SetFont(fontName, "", 10)
		pdf.MultiCell(0, 5, tr(plainText(narrative)), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, "Bill of Quantities", "", 1, "L", false, 0, "")
	drawTableRow(pdf, colWidths, headers, true, 2)
	for _, line := range p.BOQ.Lines {
		drawTableRow(pdf, colWidths, []string{
			tr(line.Item),
			tr(truncate(line.Description, 48)),
			fmt.Sprintf("%g %s", line.Quantity, line.Unit),
			formatAmount(line.UnitPrice),
			formatAmount(line.Total),
		}, false, 2)
	}

	pdf.Ln(2)
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 7, "Grand Total: "+formatAmount(p.BOQ.Total()), "", 1, "R", false, 0, "")

	if len(p.BOQ.Warnings) > 0 {
		pdf.Ln(2)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetFont(fontName, "", 9)
		for _, w := range p.BOQ.Warnings {
			pdf.MultiCell(0, 5, tr("Warning: "+w.Message), "", "L", false)
		}
		pdf.SetTextColor(0, 0, 0)
	}

	return output(pdf)
}

// drawTableRow draws one bordered row; columns from rightFrom on are
// right aligned
func drawTableRow(pdf *gofpdf.Fpdf, widths []float64, cols []string, header bool, rightFrom int) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i >= rightFrom {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

// The core fonts have no naira sign.
func formatAmount(d decimal.Decimal) string {
	return "NGN " + strings.TrimPrefix(types.FormatNaira(d), "₦")
}

func plainText(s string) string {
	return strings.NewReplacer("**", "", "##", "", "`", "").Replace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}
