// Package labor derives workmanship costs from a material list using
// site productivity heuristics.
package labor

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"sitemate/core/materials"
	"sitemate/core/types"
)

// Rates are the labor prices in naira
type Rates struct {
	MasonDay      decimal.Decimal `json:"mason_day"`
	LaborerDay    decimal.Decimal `json:"laborer_day"`
	IronBenderTon decimal.Decimal `json:"iron_bender_ton"`
	CarpenterDay  decimal.Decimal `json:"carpenter_day"`

	// ExcavationSmall and ExcavationLarge are the digging lump sums
	ExcavationSmall decimal.Decimal `json:"excavation_small"`
	ExcavationLarge decimal.Decimal `json:"excavation_large"`
}

// DefaultRates returns current Lagos/Nigeria market rates
func DefaultRates() Rates {
	return Rates{
		MasonDay:        decimal.NewFromInt(9000),
		LaborerDay:      decimal.NewFromInt(5000),
		IronBenderTon:   decimal.NewFromInt(45000),
		CarpenterDay:    decimal.NewFromInt(8500),
		ExcavationSmall: decimal.NewFromInt(10000),
		ExcavationLarge: decimal.NewFromInt(25000),
	}
}

// Productivity heuristics
const (
	// BlocksPerDay is what one mason and one laborer lay in a day
	BlocksPerDay = 400

	// CastingShare is the share of cement that goes into cast concrete
	CastingShare = 0.6

	// BagsPerGangDay is the cement one concrete gang places per day
	BagsPerGangDay = 20

	// GangLaborers is the laborer count in a concrete gang with one mason
	GangLaborers = 4

	// MinBendingTons is the minimum iron bending contract
	MinBendingTons = 0.5

	// LargeProjectCementBags is the cement count above which excavation is
	// priced as a large project
	LargeProjectCementBags = 100
)

// Estimator prices labor at a fixed set of rates
type Estimator struct {
	rates Rates
}

// NewEstimator creates an estimator with the given rates
func NewEstimator(rates Rates) *Estimator {
	return &Estimator{rates: rates}
}

// Estimate is shorthand for NewEstimator(DefaultRates()).Estimate
func Estimate(ms types.Materials) []types.LaborLineItem {
	return NewEstimator(DefaultRates()).Estimate(ms)
}

// Estimate returns the labor lines for a material list. Every call starts
// from scratch.
func (e *Estimator) Estimate(ms types.Materials) []types.LaborLineItem {
	var items []types.LaborLineItem

	if blocks := ms.TotalProcurement(types.CategoryBlock); blocks > 0 {
		days := float64(ceilDiv(blocks, BlocksPerDay))
		items = append(items,
			line("Masons (Block Laying)", days, "Man-Days", e.rates.MasonDay),
			line("Laborers (Serving Blocks)", days, "Man-Days", e.rates.LaborerDay),
		)
	}

	cement := ms.TotalProcurement(types.CategoryCement)
	if cement > 0 {
		casting := float64(cement) * CastingShare
		gangDays := math.Ceil(casting / BagsPerGangDay)
		gangRate := e.rates.MasonDay.Add(e.rates.LaborerDay.Mul(decimal.NewFromInt(GangLaborers)))
		items = append(items, line("Concrete Gang (Casting)", gangDays, "Gang-Days", gangRate))
	}

	if lengths := ms.TotalProcurement(types.CategorySteel); lengths > 0 {
		tons := float64(lengths) * materials.BarLengthKg / 1000
		billable := math.Max(MinBendingTons, tons)
		items = append(items, types.LaborLineItem{
			Role:      "Iron Bending Contract",
			UnitCount: billable,
			UnitLabel: fmt.Sprintf("Tons (%.2f actual)", tons),
			Rate:      e.rates.IronBenderTon,
			Amount:    e.rates.IronBenderTon.Mul(decimal.NewFromFloat(billable)),
		})
	}

	if cement > 0 {
		lump := e.rates.ExcavationSmall
		if cement > LargeProjectCementBags {
			lump = e.rates.ExcavationLarge
		}
		items = append(items, line("Excavation (Digging)", 1, "Lump Sum", lump))
	}

	return items
}

func line(role string, count float64, label string, rate decimal.Decimal) types.LaborLineItem {
	return types.LaborLineItem{
		Role:      role,
		UnitCount: count,
		UnitLabel: label,
		Rate:      rate,
		Amount:    rate.Mul(decimal.NewFromFloat(count)),
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
