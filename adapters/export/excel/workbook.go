// Package excel renders a saved project's BOQ as an xlsx workbook
package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"sitemate/adapters/storage"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

const (
	boqSheet      = "BOQ"
	warningsSheet = "Warnings"
	tableRow      = 7
)

var headers = []string{"Item", "Description", "Qty", "Unit", "Unit Price (NGN)", "Total (NGN)"}

// BOQWorkbook returns the workbook bytes for p
func BOQWorkbook(p *storage.Project) ([]byte, error) {
	if p == nil || p.BOQ.IsEmpty() {
		return nil, errors.New(errors.TypeInput, "cannot export an empty BOQ")
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", boqSheet); err != nil {
		return nil, errors.Internal("failed to name sheet", err)
	}
	if err := writeBOQ(file, p); err != nil {
		return nil, err
	}
	if len(p.BOQ.Warnings) > 0 {
		if _, err := file.NewSheet(warningsSheet); err != nil {
			return nil, errors.Internal("failed to add warnings sheet", err)
		}
		writeWarnings(file, p.BOQ.Warnings)
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, errors.Internal("failed to write workbook", err)
	}
	return buf.Bytes(), nil
}

func writeBOQ(file *excelize.File, p *storage.Project) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(boqSheet, cell, value)
	}

	set("A1", "Project")
	set("B1", p.Name)
	set("A2", "Location")
	set("B2", string(p.Location))
	set("A3", "Soil")
	set("B3", string(p.Soil))
	set("A4", "Updated")
	set("B4", formatDate(p.UpdatedAt))
	set("A5", "Currency")
	set("B5", string(types.NGN))

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, h)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Internal("failed to create style", err)
	}
	money, err := file.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return errors.Internal("failed to create style", err)
	}
	_ = file.SetCellStyle(boqSheet, fmt.Sprintf("A%d", tableRow), fmt.Sprintf("F%d", tableRow), bold)

	for i, line := range p.BOQ.Lines {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), line.Item)
		set(fmt.Sprintf("B%d", row), line.Description)
		set(fmt.Sprintf("C%d", row), line.Quantity)
		set(fmt.Sprintf("D%d", row), string(line.Unit))
		set(fmt.Sprintf("E%d", row), line.UnitPrice.InexactFloat64())
		set(fmt.Sprintf("F%d", row), line.Total.InexactFloat64())
	}

	last := tableRow + len(p.BOQ.Lines)
	totalRow := last + 1
	set(fmt.Sprintf("E%d", totalRow), "Total")
	set(fmt.Sprintf("F%d", totalRow), p.BOQ.Total().InexactFloat64())
	_ = file.SetCellStyle(boqSheet, fmt.Sprintf("E%d", tableRow+1), fmt.Sprintf("F%d", totalRow), money)
	_ = file.SetCellStyle(boqSheet, fmt.Sprintf("E%d", totalRow), fmt.Sprintf("E%d", totalRow), bold)

	_ = file.SetColWidth(boqSheet, "A", "A", 28)
	_ = file.SetColWidth(boqSheet, "B", "B", 44)
	_ = file.SetColWidth(boqSheet, "C", "D", 10)
	_ = file.SetColWidth(boqSheet, "E", "F", 18)
	return nil
}

func writeWarnings(file *excelize.File, warnings []types.Warning) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(warningsSheet, cell, value)
	}
	set("A1", "Code")
	set("B1", "Material")
	set("C1", "Message")
	for i, w := range warnings {
		row := 2 + i
		set(fmt.Sprintf("A%d", row), string(w.Code))
		set(fmt.Sprintf("B%d", row), w.Material)
		set(fmt.Sprintf("C%d", row), w.Message)
	}
	_ = file.SetColWidth(warningsSheet, "A", "B", 24)
	_ = file.SetColWidth(warningsSheet, "C", "C", 60)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006 15:04")
}
