// Package timeline derives a phased construction schedule from the
// composition of a bill of quantities.
package timeline

import (
	"math"
	"time"

	"sitemate/core/types"
)

// Phase names in schedule order
const (
	PhasePrep           = "1. Site Preparation"
	PhaseFoundation     = "2. Foundation & Substructure"
	PhaseSuperstructure = "3. Superstructure (Block Work)"
	PhaseRoofing        = "4. Lintel & Roofing"
)

// Durations and productivity
const (
	PrepDays       = 2
	FoundationDays = 7
	RoofingDays    = 7

	// BlocksPerDay is what two masons lay per day combined
	BlocksPerDay = 800

	// DelayBuffer allows for curing and weather delays on block work
	DelayBuffer = 1.2

	// MinBlockWorkDays is the shortest block work phase
	MinBlockWorkDays = 3
)

// Schedule lays out the phases back to back from start. Site preparation
// is always present; foundation needs cement, sand or granite; block work
// needs blocks; roofing follows block work.
func Schedule(ms types.Materials, start time.Time) []types.TimelinePhase {
	var phases []types.TimelinePhase
	cursor := start

	add := func(name string, days int) {
		end := cursor.AddDate(0, 0, days)
		phases = append(phases, types.TimelinePhase{
			Name:         name,
			StartDate:    cursor,
			EndDate:      end,
			DurationDays: days,
		})
		cursor = end
	}

	add(PhasePrep, PrepDays)

	if ms.HasAny(types.CategoryCement, types.CategorySand, types.CategoryGranite) {
		add(PhaseFoundation, FoundationDays)
	}

	if blocks := ms.TotalProcurement(types.CategoryBlock); blocks > 0 {
		add(PhaseSuperstructure, BlockWorkDays(blocks))
		add(PhaseRoofing, RoofingDays)
	}

	return phases
}

// BlockWorkDays returns the block work duration for a block count
func BlockWorkDays(blocks int) int {
	days := int(math.Ceil(float64(blocks) / BlocksPerDay * DelayBuffer))
	if days < MinBlockWorkDays {
		return MinBlockWorkDays
	}
	return days
}

// TotalDays returns the calendar length of a schedule
func TotalDays(phases []types.TimelinePhase) int {
	total := 0
	for _, p := range phases {
		total += p.DurationDays
	}
	return total
}
