// Package scenario applies what-if adjustments to a priced bill of
// quantities without re-deriving the physical design.
package scenario

import (
	"math"

	"github.com/shopspring/decimal"

	"sitemate/core/materials"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

// Steel variance bounds in percent
const (
	MinSteelVariance = -10.0
	MaxSteelVariance = 20.0
)

// Validate checks an adjustment is within range
func Validate(adj types.ScenarioAdjustment) error {
	v := adj.SteelVariancePct
	if math.IsNaN(v) || v < MinSteelVariance || v > MaxSteelVariance {
		return errors.InvalidInput("steel_variance_pct", v)
	}
	if adj.ConcreteGrade != "" && !adj.ConcreteGrade.IsValid() {
		return errors.InvalidInput("concrete_grade", adj.ConcreteGrade)
	}
	return nil
}

// Apply returns a new table with the adjustment applied. Steel unit prices
// move by the variance; an M25 mix raises cement quantities. The input
// table is left untouched, and lines the adjustment does not reach keep
// their totals exactly.
func Apply(table *types.BOQTable, adj types.ScenarioAdjustment) (*types.BOQTable, error) {
	if err := Validate(adj); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, errors.InvalidInput("boq", "empty")
	}

	out := table.Clone()
	steelFactor := decimal.NewFromFloat(1 + adj.SteelVariancePct/100)

	for i := range out.Lines {
		line := &out.Lines[i]
		switch {
		case line.Category == types.CategorySteel && adj.SteelVariancePct != 0:
			line.UnitPrice = line.UnitPrice.Mul(steelFactor).Round(2)
			line.Total = line.UnitPrice.Mul(decimal.NewFromFloat(line.Quantity))
		case line.Category == types.CategoryCement && adj.ConcreteGrade == types.GradeM25:
			line.Quantity = math.Round(line.Quantity*materials.M25CementFactor*10) / 10
			line.Total = line.UnitPrice.Mul(decimal.NewFromFloat(line.Quantity))
		}
	}
	return out, nil
}

// Delta is the cost change between a base and an adjusted table
func Delta(base, adjusted *types.BOQTable) decimal.Decimal {
	return adjusted.Total().Sub(base.Total())
}
