package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSoilRequiresRaft(t *testing.T) {
	tests := []struct {
		soil SoilType
		want bool
	}{
		{SoilFirmSandy, false},
		{SoilClay, true},
		{SoilSwampy, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.soil), func(t *testing.T) {
			if got := tt.soil.RequiresRaft(); got != tt.want {
				t.Errorf("RequiresRaft() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSoil(t *testing.T) {
	if s, ok := ParseSoil(" Swamp "); !ok || s != SoilSwampy {
		t.Errorf("expected Swampy, got %q (%v)", s, ok)
	}
	if _, ok := ParseSoil("rock"); ok {
		t.Error("rock should not parse")
	}
}

func TestLocationZones(t *testing.T) {
	if !LocationLekki.IsLagos() || LocationLekki.IsAbuja() {
		t.Error("Lekki must be in the Lagos zone only")
	}
	if !LocationAbuja.IsAbuja() {
		t.Error("Abuja must be in the Abuja zone")
	}
	if LocationIbadan.IsLagos() || LocationIbadan.IsAbuja() {
		t.Error("Ibadan has no logistics zone")
	}
}

func TestFormatNaira(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.NewFromInt(0), "₦0"},
		{decimal.NewFromInt(1234567), "₦1,234,567"},
		{decimal.RequireFromString("999.6"), "₦1,000"},
	}
	for _, tt := range tests {
		if got := FormatNaira(tt.in); got != tt.want {
			t.Errorf("FormatNaira(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundToNearest(t *testing.T) {
	got := RoundToNearest(decimal.NewFromInt(10925), 100)
	if !got.Equal(decimal.NewFromInt(10900)) {
		t.Errorf("expected 10900, got %s", got)
	}
	got = RoundToNearest(decimal.NewFromInt(10950), 100)
	if !got.Equal(decimal.NewFromInt(11000)) {
		t.Errorf("expected 11000, got %s", got)
	}
}

func TestBOQTableTotalAndClone(t *testing.T) {
	table := &BOQTable{
		Location: LocationIbadan,
		Currency: NGN,
		Lines: []PricedLine{
			{Item: "Cement", Quantity: 10, UnitPrice: decimal.NewFromInt(9500), Total: decimal.NewFromInt(95000)},
			{Item: "Paint", Quantity: 2, Total: decimal.Zero, Unresolved: true},
		},
	}
	if !table.Total().Equal(decimal.NewFromInt(95000)) {
		t.Fatalf("expected 95000, got %s", table.Total())
	}

	clone := table.Clone()
	clone.Lines[0].Total = decimal.Zero
	if !table.Total().Equal(decimal.NewFromInt(95000)) {
		t.Error("clone must not share lines with the original")
	}

	if _, ok := table.Line("Paint"); !ok {
		t.Error("expected Paint line")
	}
	var nilTable *BOQTable
	if !nilTable.IsEmpty() || !nilTable.Total().IsZero() {
		t.Error("nil table should be empty with zero total")
	}
}

func TestMaterialsHas(t *testing.T) {
	ms := Materials{
		{Name: "Cement", Category: CategoryCement, ProcurementQty: 20},
		{Name: "Blocks", Category: CategoryBlock, ProcurementQty: 0},
	}
	if !ms.Has(CategoryCement) {
		t.Error("expected cement present")
	}
	if ms.Has(CategoryBlock) {
		t.Error("zero quantity blocks are absent")
	}
	if !ms.HasAny(CategorySand, CategoryCement) {
		t.Error("expected HasAny to find cement")
	}
}
