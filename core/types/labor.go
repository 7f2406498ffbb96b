// Package types - Labor and schedule types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// LaborLineItem is one labor cost line derived from a BOQ
type LaborLineItem struct {
	// Role is the trade or task (e.g. "Mason (Block Laying)")
	Role string `json:"role"`

	// UnitCount is the number of billed units
	UnitCount float64 `json:"unit_count"`

	// UnitLabel names the billed unit (days, gang-days, tons, lump sum)
	UnitLabel string `json:"unit_label"`

	// Rate is the price per unit
	Rate decimal.Decimal `json:"rate"`

	// Amount is UnitCount x Rate
	Amount decimal.Decimal `json:"amount"`
}

// LaborTotal sums the amounts of a set of labor lines
func LaborTotal(items []LaborLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

// TimelinePhase is one stage in a project schedule
type TimelinePhase struct {
	Name         string    `json:"name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	DurationDays int       `json:"duration_days"`
}

// ScheduleEnd returns the end date of the final phase, or the zero time
func ScheduleEnd(phases []TimelinePhase) time.Time {
	if len(phases) == 0 {
		return time.Time{}
	}
	return phases[len(phases)-1].EndDate
}
