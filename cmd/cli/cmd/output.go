// Package cmd - terminal output helpers
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sitemate/core/timeline"
	"sitemate/core/types"
	"sitemate/internal/config"
	"sitemate/internal/errors"
)

const rule = "├─────────────────────────────────────────────────────────────────────────┤"

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonOutput() bool {
	return strings.EqualFold(format, "json")
}

// siteLocation returns the --location flag or the configured site
func siteLocation() types.Location {
	if strings.TrimSpace(location) != "" {
		return types.Location(location)
	}
	return config.Get().Site.Location
}

// siteSoil returns the --soil flag or the configured site soil
func siteSoil() (types.SoilType, error) {
	if strings.TrimSpace(soil) == "" {
		return config.Get().Site.Soil, nil
	}
	s, ok := types.ParseSoil(soil)
	if !ok {
		return "", errors.InvalidInput("soil", soil)
	}
	return s, nil
}

func header(w io.Writer, title string) {
	fmt.Fprintln(w, "┌─────────────────────────────────────────────────────────────────────────┐")
	fmt.Fprintf(w, "│ %-71s │\n", title)
	fmt.Fprintln(w, rule)
}

func footer(w io.Writer) {
	fmt.Fprintln(w, "└─────────────────────────────────────────────────────────────────────────┘")
}

func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "│ %-50s %20s │\n", truncate(label, 50), value)
}

func printBOQ(w io.Writer, table *types.BOQTable) {
	header(w, fmt.Sprintf("BILL OF QUANTITIES - %s", table.Location))
	for _, l := range table.Lines {
		label := fmt.Sprintf("%s (%s %s)", l.Item, formatQty(l.Quantity), l.Unit)
		if l.Unresolved {
			label += " *"
		}
		row(w, label, types.FormatNaira(l.Total))
		if l.Description != "" {
			fmt.Fprintf(w, "│   └─ %-46s %20s │\n", truncate(l.Description, 46), "@ "+types.FormatNaira(l.UnitPrice))
		}
	}
	fmt.Fprintln(w, rule)
	row(w, "GRAND TOTAL", types.FormatNaira(table.Total()))
	footer(w)
	printWarnings(w, table.Warnings)
}

func printLabor(w io.Writer, items []types.LaborLineItem) {
	if len(items) == 0 {
		return
	}
	header(w, "LABOUR")
	for _, it := range items {
		row(w, fmt.Sprintf("%s (%s %s)", it.Role, formatQty(it.UnitCount), it.UnitLabel), types.FormatNaira(it.Amount))
	}
	fmt.Fprintln(w, rule)
	row(w, "LABOUR TOTAL", types.FormatNaira(types.LaborTotal(items)))
	footer(w)
}

func printTimeline(w io.Writer, phases []types.TimelinePhase) {
	if len(phases) == 0 {
		return
	}
	header(w, "TIMELINE")
	for _, p := range phases {
		row(w, p.Name, fmt.Sprintf("%s - %s", p.StartDate.Format("02 Jan"), p.EndDate.Format("02 Jan")))
	}
	fmt.Fprintln(w, rule)
	row(w, "TOTAL DURATION", fmt.Sprintf("%d days", timeline.TotalDays(phases)))
	footer(w)
}

func printWarnings(w io.Writer, warnings []types.Warning) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "Warning [%s]: %s\n", warn.Code, warn.Message)
	}
}

func formatQty(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.1f", q)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
