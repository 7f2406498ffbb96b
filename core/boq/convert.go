// Package boq converts engineering quantities into market procurement units
// and prices the result into a bill of quantities.
package boq

import (
	"math"
	"sort"

	"sitemate/core/materials"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

// Takeoff is the converted material list for one site
type Takeoff struct {
	Location  types.Location  `json:"location"`
	Materials types.Materials `json:"materials"`
	Warnings  []types.Warning `json:"warnings,omitempty"`
}

// Convert turns raw engineering quantities into procurement quantities.
// Sand and granite are in tonnes, steel in kg, cement in bags and blocks in
// pieces. Entries at or below zero are dropped. Names that resolve to no
// known category pass through with the "Not in DB" unit and a warning.
func Convert(raw map[string]float64, location types.Location) Takeoff {
	out := Takeoff{Location: location}
	for _, name := range sortedNames(raw) {
		qty := raw[name]
		if !(qty > 0) || math.IsInf(qty, 0) {
			continue
		}
		m := convertOne(name, qty)
		if !m.Known() {
			out.Warnings = append(out.Warnings, unresolvedWarning(name))
		}
		out.Materials = append(out.Materials, m)
	}
	sortMaterials(out.Materials)
	return out
}

// FromProcurement builds material quantities from values already expressed
// in market units, as returned in a completion BOQ block. Engineering
// quantities are derived back from the unit capacities.
func FromProcurement(raw map[string]float64) types.Materials {
	var out types.Materials
	for _, name := range sortedNames(raw) {
		qty := raw[name]
		if !(qty > 0) || math.IsInf(qty, 0) {
			continue
		}
		cat := materials.Classify(name)
		units := int(math.Ceil(qty))
		out = append(out, types.MaterialQuantity{
			Name:            name,
			Category:        cat,
			EngineeringQty:  float64(units) * materials.UnitCapacity(cat),
			EngineeringUnit: materials.EngineeringUnitFor(cat),
			ProcurementQty:  units,
			ProcurementUnit: materials.ProcurementUnitFor(cat),
		})
	}
	sortMaterials(out)
	return out
}

// ProcurementCount returns the market units needed for an engineering quantity
func ProcurementCount(c types.MaterialCategory, engineeringQty float64) int {
	if engineeringQty <= 0 {
		return 0
	}
	return int(math.Ceil(engineeringQty / materials.UnitCapacity(c)))
}

// SandTrucks returns the 20 t trucks for a sand tonnage
func SandTrucks(tonnes float64) int {
	return ProcurementCount(types.CategorySand, tonnes)
}

// GraniteTrucks returns the 30 t trucks for a granite tonnage
func GraniteTrucks(tonnes float64) int {
	return ProcurementCount(types.CategoryGranite, tonnes)
}

// BarLengths returns the 12 m bar lengths for a steel mass
func BarLengths(kg float64) int {
	return ProcurementCount(types.CategorySteel, kg)
}

func convertOne(name string, qty float64) types.MaterialQuantity {
	cat := materials.Classify(name)
	return types.MaterialQuantity{
		Name:            name,
		Category:        cat,
		EngineeringQty:  qty,
		EngineeringUnit: materials.EngineeringUnitFor(cat),
		ProcurementQty:  ProcurementCount(cat, qty),
		ProcurementUnit: materials.ProcurementUnitFor(cat),
	}
}

func unresolvedWarning(name string) types.Warning {
	return types.Warning{
		Code:     errors.TypeUnresolvedMaterial,
		Material: name,
		Message:  name + " is not in the material database",
	}
}

func sortedNames(raw map[string]float64) []string {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortMaterials(ms types.Materials) {
	sort.SliceStable(ms, func(i, j int) bool {
		oi, oj := ms[i].Category.Order(), ms[j].Category.Order()
		if oi != oj {
			return oi < oj
		}
		return ms[i].Name < ms[j].Name
	})
}
