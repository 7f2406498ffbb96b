// Package structural sizes residential foundations from a design load and
// the soil bearing capacity. Sizes come from empirical design tables rather
// than a full limit-state analysis: the service load is taken as the
// ultimate load divided by 1.4, and depth and reinforcement are looked up
// from fixed load bands.
package structural

import (
	"math"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

// LoadFactor converts an ultimate load to the service load used for sizing
const LoadFactor = 1.4

// StandardStripWidths are the strip widths in metres, smallest first
var StandardStripWidths = []float64{0.45, 0.60, 0.675, 0.90, 1.20}

const (
	// MinStripWidth is the narrowest strip used for residential walls
	MinStripWidth = 0.675

	// StripDepthMm is the standard residential strip thickness
	StripDepthMm = 225

	// StripReinforcement is the standard strip bar schedule
	StripReinforcement = "3 No. Y12 (Runners) + Y10 Links @ 300mm c/c"

	// MinPadSide is the smallest pad side length in metres
	MinPadSide = 1.0

	padReinforcement      = "Y12 @ 150mm c/c (Both Ways)"
	padReinforcementLarge = "Y12 @ 125mm c/c (Both Ways)"
)

// DesignStrip sizes a strip footing under a 225mm wall.
// The returned concrete volume is per metre run.
func DesignStrip(loadKnPerM, sbcKPa float64) (types.FoundationDesign, error) {
	if err := validateLoad("load_kn_per_m", loadKnPerM, sbcKPa); err != nil {
		return types.FoundationDesign{}, err
	}

	service := loadKnPerM / LoadFactor
	required := service / sbcKPa

	width := 0.0
	for _, w := range StandardStripWidths {
		if w >= required {
			width = w
			break
		}
	}
	if width == 0 {
		return types.FoundationDesign{}, errors.Newf(errors.TypeInput,
			"required strip width %.3fm exceeds the largest standard width %.2fm", required,
			StandardStripWidths[len(StandardStripWidths)-1]).
			WithContext("field", "load_kn_per_m")
	}
	if width < MinStripWidth {
		width = MinStripWidth
	}

	return types.FoundationDesign{
		Type:              types.FoundationStrip,
		Plan:              types.PlanDimensions{WidthMm: toMm(width)},
		DepthMm:           StripDepthMm,
		ReinforcementSpec: StripReinforcement,
		ConcreteVolumeM3:  round3(width * StripDepthMm / 1000),
		VolumeBasis:       "per metre run",
		ServiceLoadKn:     service,
	}, nil
}

// DesignPad sizes a square pad under a column
func DesignPad(loadKn, sbcKPa float64) (types.FoundationDesign, error) {
	if err := validateLoad("load_kn", loadKn, sbcKPa); err != nil {
		return types.FoundationDesign{}, err
	}

	service := loadKn / LoadFactor
	side := PadSide(service / sbcKPa)
	depth := PadDepthMm(loadKn)

	spec := padReinforcement
	if side > 1.5 {
		spec = padReinforcementLarge
	}

	mm := toMm(side)
	return types.FoundationDesign{
		Type:              types.FoundationPad,
		Plan:              types.PlanDimensions{WidthMm: mm, LengthMm: mm},
		DepthMm:           depth,
		ReinforcementSpec: spec,
		ConcreteVolumeM3:  round3(side * side * float64(depth) / 1000),
		VolumeBasis:       "per pad",
		ServiceLoadKn:     service,
	}, nil
}

// PadSide returns the side of a square pad covering areaM2, rounded up to
// the next 0.1 m and never below MinPadSide
func PadSide(areaM2 float64) float64 {
	side := math.Ceil(math.Sqrt(areaM2)*10) / 10
	if side < MinPadSide {
		side = MinPadSide
	}
	return side
}

// PadDepthMm returns the pad thickness for a column load.
// Band edges belong to the lower band.
func PadDepthMm(loadKn float64) int {
	switch {
	case loadKn > 800:
		return 500
	case loadKn > 500:
		return 400
	default:
		return 300
	}
}

func validateLoad(field string, load, sbc float64) error {
	if load <= 0 || math.IsNaN(load) || math.IsInf(load, 0) {
		return errors.InvalidInput(field, load)
	}
	if sbc <= 0 || math.IsNaN(sbc) || math.IsInf(sbc, 0) {
		return errors.InvalidInput("soil_bearing_kpa", sbc)
	}
	return nil
}

func toMm(m float64) int {
	return int(math.Round(m * 1000))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
