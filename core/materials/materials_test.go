package materials

import (
	"testing"

	"sitemate/core/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want types.MaterialCategory
	}{
		{"Cement", types.CategoryCement},
		{"Dangote Cement 42.5R", types.CategoryCement},
		{"Sharp Sand", types.CategorySand},
		{"Plaster Sand", types.CategorySand},
		{"Granite", types.CategoryGranite},
		{"Granite 3/4 inch", types.CategoryGranite},
		{"12mm Iron Rod", types.CategorySteel},
		{"Y12 bars", types.CategorySteel},
		{"Steel", types.CategorySteel},
		{"9-inch Vibrated Block", types.CategoryBlock},
		{"Blocks", types.CategoryBlock},
		{"Ironing Board", types.CategoryOther},
		{"Sandcrete Paint", types.CategoryOther},
		{"Roofing Sheet", types.CategoryOther},
		{"", types.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestConcreteTakeoff(t *testing.T) {
	m20 := ConcreteTakeoff(2.5, types.GradeM20)
	if m20.CementBags != 20 {
		t.Errorf("expected 20 bags for 2.5 m3 of M20, got %v", m20.CementBags)
	}
	m25 := ConcreteTakeoff(2.5, types.GradeM25)
	if m25.CementBags != 25 {
		t.Errorf("expected 25 bags for 2.5 m3 of M25, got %v", m25.CementBags)
	}
	if m20.SandTonnes != m25.SandTonnes {
		t.Error("sand demand must not depend on grade")
	}
	if got := ConcreteTakeoff(0, types.GradeM20); got != (Takeoff{}) {
		t.Errorf("expected empty takeoff, got %+v", got)
	}
}

func TestWallBlocksAndMortar(t *testing.T) {
	blocks := WallBlocks(120, 3)
	if blocks != 3600 {
		t.Fatalf("expected 3600 blocks, got %d", blocks)
	}
	if got := MortarBags(blocks); got != 72 {
		t.Errorf("expected 72 bags, got %d", got)
	}
	if got := MortarBags(51); got != 2 {
		t.Errorf("expected 2 bags for 51 blocks, got %d", got)
	}
}

func TestUnitsPerCategory(t *testing.T) {
	if ProcurementUnitFor(types.CategoryOther) != types.ProcureNotInDB {
		t.Error("unknown materials must have no procurement unit")
	}
	if UnitCapacity(types.CategorySteel) != 10.5 {
		t.Error("steel capacity is one 12 m bar")
	}
	if EngineeringUnitFor(types.CategoryGranite) != types.UnitTonne {
		t.Error("granite is computed in tonnes")
	}
}
