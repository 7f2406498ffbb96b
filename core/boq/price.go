package boq

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

// Quote is the answer of a price lookup. A zero BasePrice means the
// material could not be priced; it is never read as free.
type Quote struct {
	// BasePrice is the pre-logistics price per procurement unit
	BasePrice decimal.Decimal `json:"base_price"`

	// Name is the catalogue name the query resolved to
	Name string `json:"name"`

	// Supplier is the listing supplier when known
	Supplier string `json:"supplier,omitempty"`

	// Source identifies the resolver that answered
	Source string `json:"source,omitempty"`
}

// Found reports whether the quote carries a usable price
func (q Quote) Found() bool {
	return q.BasePrice.IsPositive()
}

// PriceResolver looks up the base price of a material
type PriceResolver interface {
	Resolve(ctx context.Context, query string, location types.Location) (Quote, error)
}

// MaxConcurrentLookups bounds the price lookups in flight for one BOQ
const MaxConcurrentLookups = 4

// PriceRounding is the naira step unit prices are rounded to
const PriceRounding = 100

// LogisticsMultiplier returns the transport uplift applied to unit prices.
// Base prices are quoted ex-Ibadan.
func LogisticsMultiplier(location types.Location) decimal.Decimal {
	switch {
	case location.IsLagos():
		return decimal.RequireFromString("1.15")
	case location.IsAbuja():
		return decimal.RequireFromString("1.25")
	default:
		return decimal.NewFromInt(1)
	}
}

// LogisticsNote describes the uplift for display next to a price
func LogisticsNote(location types.Location) string {
	switch {
	case location.IsLagos():
		return " (Inc. 15% Transport)"
	case location.IsAbuja():
		return " (Inc. 25% Logistics)"
	default:
		return ""
	}
}

// UnitPrice applies the location multiplier and rounds to the nearest ₦100
func UnitPrice(base decimal.Decimal, location types.Location) decimal.Decimal {
	return types.RoundToNearest(base.Mul(LogisticsMultiplier(location)), PriceRounding)
}

// Price prices every material at the site location. A failed or empty
// lookup for one material flags that line and never stops the others.
// A nil resolver leaves every line unresolved.
func Price(ctx context.Context, ms types.Materials, location types.Location, resolver PriceResolver) (*types.BOQTable, error) {
	lines := make([]types.PricedLine, len(ms))
	warns := make([]*types.Warning, len(ms))

	if resolver == nil {
		for i, m := range ms {
			lines[i], warns[i] = priceLine(m, Quote{}, nil, location)
		}
		return newTable(location, lines, warns), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentLookups)
	for i, m := range ms {
		g.Go(func() error {
			q, err := resolver.Resolve(gctx, m.Name, location)
			lines[i], warns[i] = priceLine(m, q, err, location)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Timeout("price lookup", err)
	}

	return newTable(location, lines, warns), nil
}

func newTable(location types.Location, lines []types.PricedLine, warns []*types.Warning) *types.BOQTable {
	table := &types.BOQTable{Location: location, Currency: types.NGN, Lines: lines}
	for _, w := range warns {
		if w != nil {
			table.Warnings = append(table.Warnings, *w)
		}
	}
	return table
}

func priceLine(m types.MaterialQuantity, q Quote, err error, location types.Location) (types.PricedLine, *types.Warning) {
	line := types.PricedLine{
		Item:     m.Name,
		Category: m.Category,
		Unit:     m.ProcurementUnit,
		Quantity: float64(m.ProcurementQty),
	}
	if err != nil || !q.Found() {
		line.Description = m.Name + " (Not in DB)"
		line.UnitPrice = decimal.Zero
		line.Total = decimal.Zero
		line.Unresolved = true
		w := unresolvedWarning(m.Name)
		if err != nil {
			w.Message = "price lookup failed for " + m.Name + ": " + err.Error()
		}
		return line, &w
	}
	line.Description = q.Name + LogisticsNote(location)
	line.UnitPrice = UnitPrice(q.BasePrice, location)
	line.Total = line.UnitPrice.Mul(decimal.NewFromFloat(line.Quantity))
	return line, nil
}
