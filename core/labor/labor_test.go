package labor

import (
	"testing"

	"github.com/shopspring/decimal"

	"sitemate/core/types"
)

func materialsOf(pairs ...interface{}) types.Materials {
	var ms types.Materials
	for i := 0; i < len(pairs); i += 2 {
		ms = append(ms, types.MaterialQuantity{
			Category:       pairs[i].(types.MaterialCategory),
			ProcurementQty: pairs[i+1].(int),
		})
	}
	return ms
}

func find(items []types.LaborLineItem, role string) (types.LaborLineItem, bool) {
	for _, it := range items {
		if it.Role == role {
			return it, true
		}
	}
	return types.LaborLineItem{}, false
}

func TestBlockLaying(t *testing.T) {
	items := Estimate(materialsOf(types.CategoryBlock, 1600))
	if len(items) != 2 {
		t.Fatalf("expected mason and laborer lines only, got %+v", items)
	}
	mason, ok := find(items, "Masons (Block Laying)")
	if !ok || mason.UnitCount != 4 || !mason.Amount.Equal(decimal.NewFromInt(36000)) {
		t.Errorf("unexpected mason line %+v", mason)
	}
	laborer, ok := find(items, "Laborers (Serving Blocks)")
	if !ok || laborer.UnitCount != 4 || !laborer.Amount.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("unexpected laborer line %+v", laborer)
	}

	items = Estimate(materialsOf(types.CategoryBlock, 1601))
	if mason, _ := find(items, "Masons (Block Laying)"); mason.UnitCount != 5 {
		t.Errorf("1601 blocks need 5 days, got %v", mason.UnitCount)
	}
}

func TestConcreteGangAndExcavation(t *testing.T) {
	tests := []struct {
		name     string
		cement   int
		gangDays float64
		digging  int64
	}{
		{"small project", 50, 2, 10000},
		{"boundary stays small", 100, 3, 10000},
		{"large project", 120, 4, 25000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Estimate(materialsOf(types.CategoryCement, tt.cement))
			gang, ok := find(items, "Concrete Gang (Casting)")
			if !ok {
				t.Fatal("expected a concrete gang line")
			}
			if gang.UnitCount != tt.gangDays {
				t.Errorf("gang days = %v, want %v", gang.UnitCount, tt.gangDays)
			}
			if !gang.Rate.Equal(decimal.NewFromInt(29000)) {
				t.Errorf("gang rate = %s, want 29000", gang.Rate)
			}
			dig, ok := find(items, "Excavation (Digging)")
			if !ok || !dig.Amount.Equal(decimal.NewFromInt(tt.digging)) {
				t.Errorf("excavation = %+v, want %d", dig, tt.digging)
			}
		})
	}
}

func TestIronBendingMinimumCharge(t *testing.T) {
	items := Estimate(materialsOf(types.CategorySteel, 10))
	bend, ok := find(items, "Iron Bending Contract")
	if !ok {
		t.Fatal("expected iron bending line")
	}
	if bend.UnitCount != 0.5 || !bend.Amount.Equal(decimal.NewFromInt(22500)) {
		t.Errorf("expected 0.5 t minimum charge, got %+v", bend)
	}

	items = Estimate(materialsOf(types.CategorySteel, 200))
	bend, _ = find(items, "Iron Bending Contract")
	if !bend.Amount.Equal(decimal.NewFromInt(94500)) {
		t.Errorf("expected 2.1 t at 45000, got %s", bend.Amount)
	}
}

func TestEstimateEmpty(t *testing.T) {
	if items := Estimate(nil); len(items) != 0 {
		t.Errorf("expected no labor for an empty BOQ, got %+v", items)
	}
}

func TestEstimatorCustomRates(t *testing.T) {
	rates := DefaultRates()
	rates.MasonDay = decimal.NewFromInt(12000)
	items := NewEstimator(rates).Estimate(materialsOf(types.CategoryBlock, 400))
	mason, _ := find(items, "Masons (Block Laying)")
	if !mason.Amount.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("expected custom mason rate, got %s", mason.Amount)
	}
}
