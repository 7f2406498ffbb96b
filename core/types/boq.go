// Package types - Priced bill of quantities
package types

import (
	"github.com/shopspring/decimal"

	"sitemate/internal/errors"
)

// Currency is an ISO currency code
type Currency string

const (
	// NGN is the Nigerian naira
	NGN Currency = "NGN"
)

// PricedLine is one row of a priced BOQ
type PricedLine struct {
	// Item is the material name
	Item string `json:"item"`

	// Category is the resolved material tag
	Category MaterialCategory `json:"category"`

	// Description is the resolved catalogue name from the price source
	Description string `json:"description,omitempty"`

	// Unit is the procurement unit
	Unit ProcurementUnit `json:"unit"`

	// Quantity is the procurement quantity
	Quantity float64 `json:"quantity"`

	// UnitPrice includes the location logistics multiplier
	UnitPrice decimal.Decimal `json:"unit_price"`

	// Total is Quantity x UnitPrice
	Total decimal.Decimal `json:"total"`

	// Unresolved is set when no price was found; the line is priced at 0
	Unresolved bool `json:"unresolved,omitempty"`
}

// Warning is a soft condition surfaced inline with a partial result
type Warning struct {
	Code     errors.Type `json:"code"`
	Material string      `json:"material,omitempty"`
	Message  string      `json:"message"`
}

// BOQTable is the persisted representation of a completed estimation
type BOQTable struct {
	Location Location     `json:"location"`
	Currency Currency     `json:"currency"`
	Lines    []PricedLine `json:"lines"`
	Warnings []Warning    `json:"warnings,omitempty"`
}

// Total sums every line total
func (t *BOQTable) Total() decimal.Decimal {
	total := decimal.Zero
	if t == nil {
		return total
	}
	for _, l := range t.Lines {
		total = total.Add(l.Total)
	}
	return total
}

// Line returns the line for a material name
func (t *BOQTable) Line(item string) (PricedLine, bool) {
	if t == nil {
		return PricedLine{}, false
	}
	for _, l := range t.Lines {
		if l.Item == item {
			return l, true
		}
	}
	return PricedLine{}, false
}

// IsEmpty reports whether the table has no lines
func (t *BOQTable) IsEmpty() bool {
	return t == nil || len(t.Lines) == 0
}

// Materials rebuilds the material quantities a table was priced from
func (t *BOQTable) Materials() Materials {
	if t == nil {
		return nil
	}
	out := make(Materials, 0, len(t.Lines))
	for _, l := range t.Lines {
		out = append(out, MaterialQuantity{
			Name:            l.Item,
			Category:        l.Category,
			ProcurementQty:  int(l.Quantity + 0.5),
			ProcurementUnit: l.Unit,
		})
	}
	return out
}

// Clone returns a deep copy of the table
func (t *BOQTable) Clone() *BOQTable {
	if t == nil {
		return nil
	}
	c := *t
	c.Lines = append([]PricedLine(nil), t.Lines...)
	c.Warnings = append([]Warning(nil), t.Warnings...)
	return &c
}
