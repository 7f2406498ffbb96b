// Package materials holds the fixed conversion factors used by every
// quantity calculation, and resolves free-text material names to their
// category exactly once.
package materials

import (
	"math"
	"regexp"
	"strings"

	"sitemate/core/types"
)

// Procurement unit capacities
const (
	// SandTruckTonnes is the load of one sand tipper
	SandTruckTonnes = 20.0

	// GraniteTruckTonnes is the load of one granite tipper
	GraniteTruckTonnes = 30.0

	// BarLengthKg is the mass of one 12 m Y12 bar
	BarLengthKg = 10.5

	// BarLengthM is the stock length of a reinforcement bar
	BarLengthM = 12.0

	// CementBagKg is the mass of one cement bag
	CementBagKg = 50.0
)

// Masonry factors
const (
	// BlocksPerSqm is the number of 9-inch blocks per m2 of wall face
	BlocksPerSqm = 10

	// BlocksPerMortarBag is the number of blocks laid per bag of cement
	BlocksPerMortarBag = 50
)

// Mix is the per-m3 material demand of a concrete grade
type Mix struct {
	Grade              types.ConcreteGrade
	CementBagsPerM3    float64
	SandTonnesPerM3    float64
	GraniteTonnesPerM3 float64
}

var mixes = map[types.ConcreteGrade]Mix{
	types.GradeM20: {Grade: types.GradeM20, CementBagsPerM3: 8, SandTonnesPerM3: 0.72, GraniteTonnesPerM3: 1.35},
	types.GradeM25: {Grade: types.GradeM25, CementBagsPerM3: 10, SandTonnesPerM3: 0.72, GraniteTonnesPerM3: 1.35},
}

// MixFor returns the mix for a grade, defaulting to M20
func MixFor(grade types.ConcreteGrade) Mix {
	if m, ok := mixes[grade]; ok {
		return m
	}
	return mixes[types.GradeM20]
}

// M25CementFactor is the cement uplift of M25 over M20
const M25CementFactor = 1.25

// Takeoff is the raw material demand of a concrete pour
type Takeoff struct {
	CementBags    float64 `json:"cement_bags"`
	SandTonnes    float64 `json:"sand_tonnes"`
	GraniteTonnes float64 `json:"granite_tonnes"`
}

// ConcreteTakeoff returns the materials needed for volumeM3 of concrete
func ConcreteTakeoff(volumeM3 float64, grade types.ConcreteGrade) Takeoff {
	if volumeM3 <= 0 {
		return Takeoff{}
	}
	m := MixFor(grade)
	return Takeoff{
		CementBags:    math.Ceil(volumeM3 * m.CementBagsPerM3),
		SandTonnes:    volumeM3 * m.SandTonnesPerM3,
		GraniteTonnes: volumeM3 * m.GraniteTonnesPerM3,
	}
}

// WallBlocks returns the blocks for a wall of the given face dimensions
func WallBlocks(lengthM, heightM float64) int {
	if lengthM <= 0 || heightM <= 0 {
		return 0
	}
	return int(math.Ceil(lengthM * heightM * BlocksPerSqm))
}

// MortarBags returns the cement bags needed to lay a number of blocks
func MortarBags(blocks int) int {
	if blocks <= 0 {
		return 0
	}
	return int(math.Ceil(float64(blocks) / BlocksPerMortarBag))
}

var (
	steelPattern   = regexp.MustCompile(`\b(iron|steel|rod|rods|rebar|y\d{1,2}|\d{1,2}\s?mm)\b`)
	blockPattern   = regexp.MustCompile(`\bblocks?\b`)
	sandPattern    = regexp.MustCompile(`\bsand\b`)
	granitePattern = regexp.MustCompile(`\b(granite|chippings|gravel|aggregate)\b`)
	cementPattern  = regexp.MustCompile(`\bcement\b`)
)

// Classify resolves a material name to its category. Matching is on whole
// words so that names like "Iron Rod" never leak into unrelated categories.
func Classify(name string) types.MaterialCategory {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "":
		return types.CategoryOther
	case cementPattern.MatchString(n):
		return types.CategoryCement
	case blockPattern.MatchString(n):
		return types.CategoryBlock
	case sandPattern.MatchString(n):
		return types.CategorySand
	case granitePattern.MatchString(n):
		return types.CategoryGranite
	case steelPattern.MatchString(n):
		return types.CategorySteel
	default:
		return types.CategoryOther
	}
}

// EngineeringUnitFor returns the unit quantities of a category are computed in
func EngineeringUnitFor(c types.MaterialCategory) types.EngineeringUnit {
	switch c {
	case types.CategorySand, types.CategoryGranite:
		return types.UnitTonne
	case types.CategorySteel:
		return types.UnitKilogram
	default:
		return types.UnitCount
	}
}

// ProcurementUnitFor returns the market unit of a category
func ProcurementUnitFor(c types.MaterialCategory) types.ProcurementUnit {
	switch c {
	case types.CategoryCement:
		return types.ProcureBag
	case types.CategorySand, types.CategoryGranite:
		return types.ProcureTruck
	case types.CategorySteel:
		return types.ProcureLength
	case types.CategoryBlock:
		return types.ProcurePiece
	default:
		return types.ProcureNotInDB
	}
}

// UnitCapacity returns the engineering quantity held by one procurement unit
func UnitCapacity(c types.MaterialCategory) float64 {
	switch c {
	case types.CategorySand:
		return SandTruckTonnes
	case types.CategoryGranite:
		return GraniteTruckTonnes
	case types.CategorySteel:
		return BarLengthKg
	default:
		return 1
	}
}
