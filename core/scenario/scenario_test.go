package scenario

import (
	"testing"

	"github.com/shopspring/decimal"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

func sampleTable() *types.BOQTable {
	return &types.BOQTable{
		Location: types.LocationIbadan,
		Currency: types.NGN,
		Lines: []types.PricedLine{
			{Item: "Cement", Category: types.CategoryCement, Quantity: 100, UnitPrice: decimal.NewFromInt(10000), Total: decimal.NewFromInt(1000000)},
			{Item: "12mm Iron Rod", Category: types.CategorySteel, Quantity: 50, UnitPrice: decimal.NewFromInt(11700), Total: decimal.NewFromInt(585000)},
			{Item: "Sharp Sand", Category: types.CategorySand, Quantity: 2, UnitPrice: decimal.NewFromInt(130000), Total: decimal.NewFromInt(260000)},
		},
	}
}

func TestApplyNeutralIsIdentity(t *testing.T) {
	base := sampleTable()
	out, err := Apply(base, types.ScenarioAdjustment{SteelVariancePct: 0, ConcreteGrade: types.GradeM20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Total().Equal(base.Total()) {
		t.Fatalf("neutral adjustment changed total: %s -> %s", base.Total(), out.Total())
	}
	for i := range base.Lines {
		if !out.Lines[i].Total.Equal(base.Lines[i].Total) {
			t.Errorf("line %s changed", base.Lines[i].Item)
		}
	}
}

func TestApplySteelVariance(t *testing.T) {
	base := sampleTable()
	out, err := Apply(base, types.ScenarioAdjustment{SteelVariancePct: 20, ConcreteGrade: types.GradeM20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	steel, _ := out.Line("12mm Iron Rod")
	if !steel.UnitPrice.Equal(decimal.NewFromInt(14040)) {
		t.Errorf("steel unit price = %s, want 14040", steel.UnitPrice)
	}
	if !steel.Total.Equal(decimal.NewFromInt(702000)) {
		t.Errorf("steel total = %s, want 702000", steel.Total)
	}
	if !Delta(base, out).Equal(decimal.NewFromInt(117000)) {
		t.Errorf("delta = %s, want 117000", Delta(base, out))
	}

	orig, _ := base.Line("12mm Iron Rod")
	if !orig.UnitPrice.Equal(decimal.NewFromInt(11700)) {
		t.Error("Apply must not mutate the input table")
	}
}

func TestApplyM25(t *testing.T) {
	out, err := Apply(sampleTable(), types.ScenarioAdjustment{ConcreteGrade: types.GradeM25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cement, _ := out.Line("Cement")
	if cement.Quantity != 125 {
		t.Errorf("cement quantity = %v, want 125", cement.Quantity)
	}
	if !cement.Total.Equal(decimal.NewFromInt(1250000)) {
		t.Errorf("cement total = %s, want 1250000", cement.Total)
	}
	sand, _ := out.Line("Sharp Sand")
	if sand.Quantity != 2 {
		t.Error("M25 must only change cement")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		adj  types.ScenarioAdjustment
		ok   bool
	}{
		{"lower bound", types.ScenarioAdjustment{SteelVariancePct: -10}, true},
		{"upper bound", types.ScenarioAdjustment{SteelVariancePct: 20, ConcreteGrade: types.GradeM25}, true},
		{"below range", types.ScenarioAdjustment{SteelVariancePct: -10.5}, false},
		{"above range", types.ScenarioAdjustment{SteelVariancePct: 21}, false},
		{"unknown grade", types.ScenarioAdjustment{ConcreteGrade: "M30"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.adj)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.IsType(err, errors.TypeInput) {
				t.Errorf("expected input error, got %v", err)
			}
		})
	}
}
