// Package types - Material and quantity types
package types

// MaterialCategory is the closed set of material kinds the engine reasons about.
// Names are resolved to a category once, at ingestion.
type MaterialCategory string

const (
	CategoryCement  MaterialCategory = "cement"
	CategorySand    MaterialCategory = "sand"
	CategoryGranite MaterialCategory = "granite"
	CategorySteel   MaterialCategory = "steel"
	CategoryBlock   MaterialCategory = "block"
	CategoryOther   MaterialCategory = "other"
)

// String returns the string representation
func (c MaterialCategory) String() string {
	return string(c)
}

// Order gives the fixed presentation order of categories in a BOQ
func (c MaterialCategory) Order() int {
	switch c {
	case CategoryCement:
		return 0
	case CategorySand:
		return 1
	case CategoryGranite:
		return 2
	case CategorySteel:
		return 3
	case CategoryBlock:
		return 4
	default:
		return 5
	}
}

// IsConcrete reports whether the category is a concrete ingredient
func (c MaterialCategory) IsConcrete() bool {
	return c == CategoryCement || c == CategorySand || c == CategoryGranite
}

// EngineeringUnit is the unit a quantity is computed in
type EngineeringUnit string

const (
	UnitCubicMetre EngineeringUnit = "m3"
	UnitKilogram   EngineeringUnit = "kg"
	UnitCount      EngineeringUnit = "count"
	UnitTonne      EngineeringUnit = "t"
)

// ProcurementUnit is the unit a material is bought in
type ProcurementUnit string

const (
	ProcureBag     ProcurementUnit = "bag"
	ProcureTruck   ProcurementUnit = "truck"
	ProcureLength  ProcurementUnit = "length"
	ProcurePiece   ProcurementUnit = "piece"
	ProcureNotInDB ProcurementUnit = "Not in DB"
)

// MaterialQuantity is one BOQ material in both engineering and market units.
// Values are produced by the BOQ converter and never mutated afterwards.
type MaterialQuantity struct {
	// Name is the material name as requested
	Name string `json:"name"`

	// Category is the resolved material tag
	Category MaterialCategory `json:"category"`

	// EngineeringQty is the computed quantity
	EngineeringQty float64 `json:"engineering_qty"`

	// EngineeringUnit is the unit of EngineeringQty
	EngineeringUnit EngineeringUnit `json:"engineering_unit"`

	// ProcurementQty is the number of market units to buy
	ProcurementQty int `json:"procurement_qty"`

	// ProcurementUnit is the market unit
	ProcurementUnit ProcurementUnit `json:"procurement_unit"`
}

// Known reports whether the material resolved to a procurement unit
func (m MaterialQuantity) Known() bool {
	return m.ProcurementUnit != ProcureNotInDB
}

// Materials is an ordered collection of material quantities
type Materials []MaterialQuantity

// TotalProcurement sums procurement quantities for one category
func (ms Materials) TotalProcurement(c MaterialCategory) int {
	total := 0
	for _, m := range ms {
		if m.Category == c {
			total += m.ProcurementQty
		}
	}
	return total
}

// Has reports whether any material of the category has a positive quantity
func (ms Materials) Has(c MaterialCategory) bool {
	return ms.TotalProcurement(c) > 0
}

// HasAny reports whether any of the categories is present
func (ms Materials) HasAny(cs ...MaterialCategory) bool {
	for _, c := range cs {
		if ms.Has(c) {
			return true
		}
	}
	return false
}
