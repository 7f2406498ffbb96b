// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions and
// small accessors over them.
package types

import "strings"

// Location is a project site as chosen by the user (e.g. "Lekki, Lagos")
type Location string

const (
	LocationLekki  Location = "Lekki, Lagos"
	LocationIbadan Location = "Ibadan, Oyo"
	LocationAbuja  Location = "Abuja, FCT"
)

// KnownLocations lists the sites with calibrated rate tables
var KnownLocations = []Location{LocationLekki, LocationIbadan, LocationAbuja}

// String returns the string representation
func (l Location) String() string {
	return string(l)
}

// IsLagos reports whether the site is in the Lagos logistics zone
func (l Location) IsLagos() bool {
	s := string(l)
	return strings.Contains(s, "Lekki") || strings.Contains(s, "Lagos")
}

// IsAbuja reports whether the site is in the Abuja logistics zone
func (l Location) IsAbuja() bool {
	return strings.Contains(string(l), "Abuja")
}

// IsLekki reports whether the site is in Lekki specifically
func (l Location) IsLekki() bool {
	return strings.Contains(string(l), "Lekki")
}

// SoilType is the declared ground condition at the site
type SoilType string

const (
	SoilFirmSandy SoilType = "Firm/Sandy"
	SoilClay      SoilType = "Clay"
	SoilSwampy    SoilType = "Swampy"
)

// String returns the string representation
func (s SoilType) String() string {
	return string(s)
}

// IsValid checks if the soil type is one of the known conditions
func (s SoilType) IsValid() bool {
	switch s {
	case SoilFirmSandy, SoilClay, SoilSwampy:
		return true
	default:
		return false
	}
}

// RequiresRaft reports whether only a raft foundation is acceptable on this soil
func (s SoilType) RequiresRaft() bool {
	return s == SoilClay || s == SoilSwampy
}

// ParseSoil accepts the canonical names plus a few common spellings
func ParseSoil(raw string) (SoilType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "firm/sandy", "firm", "sandy", "firm_sandy", "firmsandy":
		return SoilFirmSandy, true
	case "clay":
		return SoilClay, true
	case "swampy", "swamp":
		return SoilSwampy, true
	default:
		return "", false
	}
}

// SoilContext is the soil condition used for one computation
type SoilContext struct {
	// DeclaredType is the effective soil type
	DeclaredType SoilType `json:"declared_type"`

	// BearingCapacityKPa is the safe bearing capacity in kN/m2
	BearingCapacityKPa float64 `json:"bearing_capacity_kpa"`

	// Overridden is true when free text replaced the stored site default
	Overridden bool `json:"overridden,omitempty"`
}

// Label renders the soil the way it is shown to users and the completion service
func (c SoilContext) Label() string {
	if c.Overridden {
		return string(c.DeclaredType) + " (User Override)"
	}
	return string(c.DeclaredType)
}

// BuildingClass distinguishes single-storey from two-storey residential work
type BuildingClass string

const (
	BuildingBungalow BuildingClass = "bungalow"
	BuildingDuplex   BuildingClass = "duplex"
)

// ConcreteGrade is the specified concrete mix grade
type ConcreteGrade string

const (
	GradeM20 ConcreteGrade = "M20"
	GradeM25 ConcreteGrade = "M25"
)

// IsValid checks the grade
func (g ConcreteGrade) IsValid() bool {
	return g == GradeM20 || g == GradeM25
}

// ScenarioAdjustment is a what-if overlay on a priced BOQ
type ScenarioAdjustment struct {
	// SteelVariancePct shifts steel unit prices, range [-10, 20]
	SteelVariancePct float64 `json:"steel_variance_pct"`

	// ConcreteGrade selects the mix; M25 uses more cement than M20
	ConcreteGrade ConcreteGrade `json:"concrete_grade"`
}

// IsNeutral reports whether the adjustment changes nothing
func (a ScenarioAdjustment) IsNeutral() bool {
	return a.SteelVariancePct == 0 && (a.ConcreteGrade == GradeM20 || a.ConcreteGrade == "")
}
