// Package feasibility gives a ballpark cost range for a building on a plot
// without running a full quantity takeoff.
package feasibility

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

// BuildingType is one of the catalogue building types
type BuildingType string

const (
	Bungalow3Bed   BuildingType = "3-Bedroom Bungalow"
	Duplex4Bed     BuildingType = "4-Bedroom Duplex"
	BoysQuarters   BuildingType = "BQ / Boys Quarters"
	PerimeterFence BuildingType = "Perimeter Fence (Plot)"
)

// BuildingTypes lists the catalogue in display order
var BuildingTypes = []BuildingType{Bungalow3Bed, Duplex4Bed, BoysQuarters, PerimeterFence}

// IsDuplex reports whether the type is a two-storey duplex
func (b BuildingType) IsDuplex() bool {
	return b == Duplex4Bed
}

var (
	ratePerSqm = map[types.Location]int64{
		types.LocationLekki:  450000,
		types.LocationIbadan: 250000,
		types.LocationAbuja:  380000,
	}
	prepRatePerSqm = map[types.Location]int64{
		types.LocationLekki:  5000,
		types.LocationIbadan: 2000,
		types.LocationAbuja:  3500,
	}
	floorArea = map[BuildingType]float64{
		Bungalow3Bed: 150,
		Duplex4Bed:   300,
		BoysQuarters: 60,
	}
)

const (
	defaultRatePerSqm     = 300000
	defaultPrepRatePerSqm = 2500
	defaultFloorArea      = 100

	// FloorSurcharge is added per floor on multi-floor non-duplex buildings
	FloorSurcharge = 0.2

	// FenceRatePerM covers blocks, footing and plaster per metre of fence
	FenceRatePerM = 35000

	// LekkiFenceFactor accounts for raft footings under Lekki fences
	LekkiFenceFactor = 1.4
)

var (
	lowBuilding  = decimal.RequireFromString("0.85")
	lowFence     = decimal.RequireFromString("0.90")
	highEstimate = decimal.RequireFromString("1.15")
)

// Request is the input to one estimate
type Request struct {
	Location    types.Location `json:"location"`
	Building    BuildingType   `json:"building_type"`
	Floors      int            `json:"floors"`
	LandSizeSqm float64        `json:"land_size_sqm"`
}

// Result is a cost range with the basis used to compute it
type Result struct {
	Low     decimal.Decimal `json:"low"`
	High    decimal.Decimal `json:"high"`
	Details string          `json:"details"`

	// FloorAreaSqm is the assumed gross floor area
	FloorAreaSqm float64 `json:"floor_area_sqm,omitempty"`

	// PerimeterM is the derived fence length
	PerimeterM float64 `json:"perimeter_m,omitempty"`

	// SitePrep is the clearing cost included in the range
	SitePrep decimal.Decimal `json:"site_prep"`

	// LandTooSmall is set when the plot cannot hold the building; the
	// range is then empty
	LandTooSmall bool `json:"land_too_small,omitempty"`

	Warnings []types.Warning `json:"warnings,omitempty"`
}

// RatePerSqm returns the average build cost per m2 at a location
func RatePerSqm(location types.Location) decimal.Decimal {
	if r, ok := ratePerSqm[location]; ok {
		return decimal.NewFromInt(r)
	}
	return decimal.NewFromInt(defaultRatePerSqm)
}

// PrepRatePerSqm returns the site clearing cost per m2 of land
func PrepRatePerSqm(location types.Location) decimal.Decimal {
	if r, ok := prepRatePerSqm[location]; ok {
		return decimal.NewFromInt(r)
	}
	return decimal.NewFromInt(defaultPrepRatePerSqm)
}

// StandardFloorArea returns the gross floor area of a building type
func StandardFloorArea(b BuildingType) float64 {
	if a, ok := floorArea[b]; ok {
		return a
	}
	return defaultFloorArea
}

// Footprint returns the ground area the building occupies
func Footprint(b BuildingType) float64 {
	if b.IsDuplex() {
		return StandardFloorArea(b) / 2
	}
	return StandardFloorArea(b)
}

// Estimate returns the cost range for a request. A plot smaller than the
// building footprint is reported through Result.LandTooSmall, not an error.
// A land size of zero means unknown and skips site preparation.
func Estimate(req Request) (Result, error) {
	if req.LandSizeSqm < 0 || math.IsNaN(req.LandSizeSqm) {
		return Result{}, errors.InvalidInput("land_size_sqm", req.LandSizeSqm)
	}
	if req.Floors < 0 {
		return Result{}, errors.InvalidInput("floors", req.Floors)
	}
	if req.Building == PerimeterFence {
		return estimateFence(req)
	}
	return estimateBuilding(req), nil
}

func estimateBuilding(req Request) Result {
	area := StandardFloorArea(req.Building)
	if req.LandSizeSqm > 0 && req.LandSizeSqm < Footprint(req.Building) {
		return landTooSmall(req, Footprint(req.Building))
	}

	rate := RatePerSqm(req.Location)
	cost := rate.Mul(decimal.NewFromFloat(area))
	if req.Floors > 1 && !req.Building.IsDuplex() {
		surcharge := decimal.NewFromFloat(1 + float64(req.Floors)*FloorSurcharge)
		cost = cost.Mul(surcharge)
	}

	prep := PrepRatePerSqm(req.Location).Mul(decimal.NewFromFloat(req.LandSizeSqm))
	cost = cost.Add(prep)

	return Result{
		Low:          cost.Mul(lowBuilding).Round(0),
		High:         cost.Mul(highEstimate).Round(0),
		Details:      fmt.Sprintf("Based on avg cost of %s/sqm in %s.", types.FormatNaira(rate), req.Location),
		FloorAreaSqm: area,
		SitePrep:     prep,
	}
}

// A rectangular plot twice as long as it is wide has a perimeter of six widths
func estimateFence(req Request) (Result, error) {
	if req.LandSizeSqm <= 0 {
		return Result{}, errors.InvalidInput("land_size_sqm", req.LandSizeSqm)
	}
	width := math.Sqrt(req.LandSizeSqm / 2)
	perimeter := math.Round(6*width*100) / 100

	rate := decimal.NewFromInt(FenceRatePerM)
	if req.Location.IsLekki() {
		rate = rate.Mul(decimal.NewFromFloat(LekkiFenceFactor))
	}
	cost := rate.Mul(decimal.NewFromFloat(perimeter))

	return Result{
		Low:        cost.Mul(lowFence).Round(0),
		High:       cost.Mul(highEstimate).Round(0),
		Details:    fmt.Sprintf("Based on %.0fm of fencing at %s/m in %s.", perimeter, types.FormatNaira(rate), req.Location),
		PerimeterM: perimeter,
		SitePrep:   decimal.Zero,
	}, nil
}

func landTooSmall(req Request, required float64) Result {
	err := errors.LandTooSmall(req.LandSizeSqm, required)
	return Result{
		Low:          decimal.Zero,
		High:         decimal.Zero,
		Details:      fmt.Sprintf("A %s needs at least %.0f sqm of land.", req.Building, required),
		FloorAreaSqm: StandardFloorArea(req.Building),
		SitePrep:     decimal.Zero,
		LandTooSmall: true,
		Warnings: []types.Warning{{
			Code:    errors.TypeLandTooSmall,
			Message: err.Message,
		}},
	}
}
