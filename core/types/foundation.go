// Package types - Structural design types
package types

import "fmt"

// FoundationType is the substructure selected for a design
type FoundationType string

const (
	FoundationUnevaluated FoundationType = ""
	FoundationStrip       FoundationType = "Strip"
	FoundationPad         FoundationType = "Pad"
	FoundationRaft        FoundationType = "Raft"
)

// String returns the string representation
func (f FoundationType) String() string {
	if f == FoundationUnevaluated {
		return "Unevaluated"
	}
	return string(f)
}

// PlanDimensions holds the plan size of a foundation.
// Strips only carry a width; pads are square; rafts carry the plan area.
type PlanDimensions struct {
	WidthMm  int     `json:"width_mm,omitempty"`
	LengthMm int     `json:"length_mm,omitempty"`
	AreaM2   float64 `json:"area_m2,omitempty"`
}

// String renders the dimensions for reports
func (p PlanDimensions) String() string {
	switch {
	case p.WidthMm > 0 && p.LengthMm > 0:
		return fmt.Sprintf("%dmm x %dmm", p.WidthMm, p.LengthMm)
	case p.WidthMm > 0:
		return fmt.Sprintf("%dmm wide", p.WidthMm)
	case p.AreaM2 > 0:
		return fmt.Sprintf("%.1f m2", p.AreaM2)
	default:
		return "-"
	}
}

// FoundationDesign is the output of the structural sizing engine.
// A design is created once per request and never mutated.
type FoundationDesign struct {
	// Type is the selected foundation type
	Type FoundationType `json:"type"`

	// Plan holds width (strip), side (pad) or area (raft)
	Plan PlanDimensions `json:"plan"`

	// DepthMm is the foundation thickness
	DepthMm int `json:"depth_mm"`

	// ReinforcementSpec is the bar schedule text
	ReinforcementSpec string `json:"reinforcement_spec"`

	// ConcreteVolumeM3 is the concrete volume; per metre run for strips
	ConcreteVolumeM3 float64 `json:"concrete_volume_m3"`

	// VolumeBasis describes what ConcreteVolumeM3 is measured against
	VolumeBasis string `json:"volume_basis,omitempty"`

	// ServiceLoadKn is the derived service load used for sizing
	ServiceLoadKn float64 `json:"service_load_kn,omitempty"`
}

// Summary renders the design as a one-line description
func (d FoundationDesign) Summary() string {
	return fmt.Sprintf("%s foundation, %s, %dmm deep, %s", d.Type, d.Plan, d.DepthMm, d.ReinforcementSpec)
}
