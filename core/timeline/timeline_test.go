package timeline

import (
	"testing"
	"time"

	"sitemate/core/types"
)

var start = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func TestScheduleConcreteOnly(t *testing.T) {
	ms := types.Materials{
		{Name: "Cement", Category: types.CategoryCement, ProcurementQty: 40},
		{Name: "Sharp Sand", Category: types.CategorySand, ProcurementQty: 2},
	}
	phases := Schedule(ms, start)
	if len(phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(phases))
	}
	if phases[0].Name != PhasePrep || phases[1].Name != PhaseFoundation {
		t.Errorf("unexpected phases %s, %s", phases[0].Name, phases[1].Name)
	}
	if !phases[1].EndDate.Equal(start.AddDate(0, 0, 9)) {
		t.Errorf("foundation should end 9 days after start, got %s", phases[1].EndDate)
	}
}

func TestScheduleWithBlocksIsChained(t *testing.T) {
	ms := types.Materials{
		{Name: "Cement", Category: types.CategoryCement, ProcurementQty: 100},
		{Name: "Blocks", Category: types.CategoryBlock, ProcurementQty: 3000},
	}
	phases := Schedule(ms, start)
	want := []struct {
		name string
		days int
	}{
		{PhasePrep, 2},
		{PhaseFoundation, 7},
		{PhaseSuperstructure, 5},
		{PhaseRoofing, 7},
	}
	if len(phases) != len(want) {
		t.Fatalf("expected %d phases, got %d", len(want), len(phases))
	}
	if !phases[0].StartDate.Equal(start) {
		t.Errorf("first phase must start at the given date")
	}
	for i, w := range want {
		if phases[i].Name != w.name || phases[i].DurationDays != w.days {
			t.Errorf("phase %d = %s/%d, want %s/%d", i, phases[i].Name, phases[i].DurationDays, w.name, w.days)
		}
		if i > 0 && !phases[i].StartDate.Equal(phases[i-1].EndDate) {
			t.Errorf("phase %d does not start when phase %d ends", i, i-1)
		}
	}
	if TotalDays(phases) != 21 {
		t.Errorf("expected 21 days in total, got %d", TotalDays(phases))
	}
}

func TestScheduleBlocksOnly(t *testing.T) {
	ms := types.Materials{{Name: "Blocks", Category: types.CategoryBlock, ProcurementQty: 100}}
	phases := Schedule(ms, start)
	if len(phases) != 3 {
		t.Fatalf("expected prep, block work and roofing, got %d phases", len(phases))
	}
	if phases[1].Name != PhaseSuperstructure {
		t.Errorf("expected block work second, got %s", phases[1].Name)
	}
}

func TestScheduleEmpty(t *testing.T) {
	phases := Schedule(nil, start)
	if len(phases) != 1 || phases[0].Name != PhasePrep {
		t.Fatalf("expected site preparation only, got %+v", phases)
	}
}

func TestBlockWorkDays(t *testing.T) {
	tests := []struct {
		blocks, want int
	}{
		{100, 3},
		{2000, 3},
		{2001, 4},
		{3000, 5},
		{8000, 12},
	}
	for _, tt := range tests {
		if got := BlockWorkDays(tt.blocks); got != tt.want {
			t.Errorf("BlockWorkDays(%d) = %d, want %d", tt.blocks, got, tt.want)
		}
	}
}
