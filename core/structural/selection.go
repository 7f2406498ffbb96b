package structural

import (
	"fmt"
	"math"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

// Default safe bearing capacities in kPa
const (
	BearingFirmSandy = 150.0
	BearingClay      = 75.0
	BearingSwampy    = 40.0
)

// Raft slab thickness factors in metres
const (
	RaftThicknessBungalow = 0.25
	RaftThicknessDuplex   = 0.35

	raftReinforcement = "Y12 @ 150mm c/c top and bottom (Both Ways)"
)

// Reference loads used when a request names a foundation type but no load
const (
	ReferenceStripLoadKnPerM = 100.0
	ReferencePadLoadKn       = 600.0
)

// DefaultBearingCapacity returns the assumed SBC for a soil type
func DefaultBearingCapacity(soil types.SoilType) float64 {
	switch soil {
	case types.SoilClay:
		return BearingClay
	case types.SoilSwampy:
		return BearingSwampy
	default:
		return BearingFirmSandy
	}
}

// SoilFor builds a soil context with the default bearing capacity
func SoilFor(soil types.SoilType) types.SoilContext {
	return types.SoilContext{DeclaredType: soil, BearingCapacityKPa: DefaultBearingCapacity(soil)}
}

// CheckSoil rejects a strip or pad footing on ground that only takes a raft
func CheckSoil(soil types.SoilType, t types.FoundationType) error {
	if soil.RequiresRaft() && (t == types.FoundationStrip || t == types.FoundationPad) {
		return errors.Newf(errors.TypeInput, "%s soil: only a raft foundation is acceptable, not %s", soil, t).
			WithContext("field", "soil")
	}
	return nil
}

// SelectionRequest is the input to one foundation selection
type SelectionRequest struct {
	// Requested is the type asked for; Unevaluated lets the engine choose
	Requested types.FoundationType `json:"requested"`

	// Soil is the effective soil for this request
	Soil types.SoilContext `json:"soil"`

	// Building picks the raft thickness
	Building types.BuildingClass `json:"building"`

	// PlanAreaM2 is the building plan area, required for rafts
	PlanAreaM2 float64 `json:"plan_area_m2"`

	// LoadKn is the wall load per metre (strip) or column load (pad).
	// Zero selects the reference load for the type.
	LoadKn float64 `json:"load_kn"`
}

// Selection is the terminal state of one selection
type Selection struct {
	Design types.FoundationDesign `json:"design"`

	// Requested echoes the type that was asked for
	Requested types.FoundationType `json:"requested"`

	// Overridden is set when the soil forced a raft over the request
	Overridden bool `json:"overridden"`

	// Reason explains the outcome
	Reason string `json:"reason"`
}

// SelectFoundation moves a request from Unevaluated to exactly one of Strip,
// Pad or Raft. Clay and swampy ground always end in Raft whatever was
// requested; only firm/sandy ground honours a Strip or Pad request.
func SelectFoundation(req SelectionRequest) (Selection, error) {
	sbc := req.Soil.BearingCapacityKPa
	if sbc == 0 {
		sbc = DefaultBearingCapacity(req.Soil.DeclaredType)
	}

	if req.Soil.DeclaredType.RequiresRaft() || req.Requested == types.FoundationRaft {
		design, err := DesignRaft(req.PlanAreaM2, req.Building)
		if err != nil {
			return Selection{}, err
		}
		overridden := req.Requested == types.FoundationStrip || req.Requested == types.FoundationPad
		reason := "raft requested"
		if req.Soil.DeclaredType.RequiresRaft() {
			reason = fmt.Sprintf("%s soil: only a raft foundation is acceptable", req.Soil.DeclaredType)
		}
		return Selection{Design: design, Requested: req.Requested, Overridden: overridden, Reason: reason}, nil
	}

	var (
		design types.FoundationDesign
		err    error
	)
	switch req.Requested {
	case types.FoundationPad:
		design, err = DesignPad(orDefault(req.LoadKn, ReferencePadLoadKn), sbc)
	case types.FoundationStrip, types.FoundationUnevaluated:
		design, err = DesignStrip(orDefault(req.LoadKn, ReferenceStripLoadKnPerM), sbc)
	default:
		return Selection{}, errors.InvalidInput("requested", req.Requested)
	}
	if err != nil {
		return Selection{}, err
	}
	return Selection{
		Design:    design,
		Requested: req.Requested,
		Reason:    fmt.Sprintf("%s soil at %.0f kPa supports a %s foundation", req.Soil.DeclaredType, sbc, design.Type),
	}, nil
}

// DesignRaft sizes a raft slab over the whole plan area
func DesignRaft(planAreaM2 float64, building types.BuildingClass) (types.FoundationDesign, error) {
	if planAreaM2 <= 0 || math.IsNaN(planAreaM2) || math.IsInf(planAreaM2, 0) {
		return types.FoundationDesign{}, errors.InvalidInput("plan_area_m2", planAreaM2)
	}
	thickness := RaftThicknessBungalow
	if building == types.BuildingDuplex {
		thickness = RaftThicknessDuplex
	}
	return types.FoundationDesign{
		Type:              types.FoundationRaft,
		Plan:              types.PlanDimensions{AreaM2: planAreaM2},
		DepthMm:           toMm(thickness),
		ReinforcementSpec: raftReinforcement,
		ConcreteVolumeM3:  round3(planAreaM2 * thickness),
		VolumeBasis:       "whole slab",
	}, nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
