package boq

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

func TestProcurementRounding(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) int
		in   float64
		want int
	}{
		{"sand 41t", SandTrucks, 41, 3},
		{"sand 40t", SandTrucks, 40, 2},
		{"sand 0t", SandTrucks, 0, 0},
		{"granite 31t", GraniteTrucks, 31, 2},
		{"granite 30t", GraniteTrucks, 30, 1},
		{"steel 3780kg", BarLengths, 3780, 360},
		{"steel 3781kg", BarLengths, 3781, 361},
		{"steel 1kg", BarLengths, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSandTrucksProperty(t *testing.T) {
	for tonnes := 0; tonnes <= 200; tonnes++ {
		want := (tonnes + 19) / 20
		if got := SandTrucks(float64(tonnes)); got != want {
			t.Fatalf("SandTrucks(%d) = %d, want %d", tonnes, got, want)
		}
	}
}

func TestConvert(t *testing.T) {
	takeoff := Convert(map[string]float64{
		"Sharp Sand":            41,
		"Granite":               45,
		"12mm Iron Rod":         3781,
		"Cement":                120,
		"9-inch Vibrated Block": 1600,
		"Roofing Sheet":         12,
		"Water":                 0,
		"Nails":                 -3,
	}, types.LocationLekki)

	if takeoff.Location != types.LocationLekki {
		t.Errorf("expected location to be carried, got %s", takeoff.Location)
	}
	if len(takeoff.Materials) != 6 {
		t.Fatalf("expected 6 materials (non-positive dropped), got %d: %+v", len(takeoff.Materials), takeoff.Materials)
	}

	want := []struct {
		name string
		qty  int
		unit types.ProcurementUnit
	}{
		{"Cement", 120, types.ProcureBag},
		{"Sharp Sand", 3, types.ProcureTruck},
		{"Granite", 2, types.ProcureTruck},
		{"12mm Iron Rod", 361, types.ProcureLength},
		{"9-inch Vibrated Block", 1600, types.ProcurePiece},
		{"Roofing Sheet", 12, types.ProcureNotInDB},
	}
	for i, w := range want {
		m := takeoff.Materials[i]
		if m.Name != w.name || m.ProcurementQty != w.qty || m.ProcurementUnit != w.unit {
			t.Errorf("material %d = %s %d %s, want %s %d %s", i, m.Name, m.ProcurementQty, m.ProcurementUnit, w.name, w.qty, w.unit)
		}
	}

	if len(takeoff.Warnings) != 1 || takeoff.Warnings[0].Material != "Roofing Sheet" {
		t.Errorf("expected one warning for Roofing Sheet, got %+v", takeoff.Warnings)
	}
}

func TestFromProcurement(t *testing.T) {
	ms := FromProcurement(map[string]float64{
		"Cement":        100,
		"Sharp Sand":    2,
		"12mm Iron Rod": 50,
		"Granite":       0,
	})
	if len(ms) != 3 {
		t.Fatalf("expected 3 materials, got %d", len(ms))
	}
	sand := ms[1]
	if sand.Category != types.CategorySand || sand.EngineeringQty != 40 || sand.EngineeringUnit != types.UnitTonne {
		t.Errorf("unexpected sand quantity %+v", sand)
	}
	steel := ms[2]
	if steel.EngineeringQty != 525 || steel.ProcurementQty != 50 {
		t.Errorf("unexpected steel quantity %+v", steel)
	}
}

func TestLogisticsMultiplier(t *testing.T) {
	tests := []struct {
		loc  types.Location
		want string
	}{
		{types.LocationLekki, "1.15"},
		{"Ikeja, Lagos", "1.15"},
		{types.LocationAbuja, "1.25"},
		{types.LocationIbadan, "1"},
		{"Enugu", "1"},
	}
	for _, tt := range tests {
		t.Run(string(tt.loc), func(t *testing.T) {
			if got := LogisticsMultiplier(tt.loc); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnitPriceRounding(t *testing.T) {
	got := UnitPrice(decimal.NewFromInt(9500), types.LocationLekki)
	if !got.Equal(decimal.NewFromInt(10900)) {
		t.Errorf("expected 10900, got %s", got)
	}
	got = UnitPrice(decimal.NewFromInt(130000), types.LocationAbuja)
	if !got.Equal(decimal.NewFromInt(162500)) {
		t.Errorf("expected 162500, got %s", got)
	}
}

type stubResolver map[string]int64

func (s stubResolver) Resolve(_ context.Context, query string, _ types.Location) (Quote, error) {
	if query == "Broken" {
		return Quote{}, fmt.Errorf("index unavailable")
	}
	p, ok := s[query]
	if !ok {
		return Quote{Name: "Not Found"}, nil
	}
	return Quote{BasePrice: decimal.NewFromInt(p), Name: query + " (catalogue)"}, nil
}

func TestPriceDegradesPerMaterial(t *testing.T) {
	ms := FromProcurement(map[string]float64{
		"Cement": 10,
		"Paint":  4,
		"Broken": 2,
	})
	resolver := stubResolver{"Cement": 10000}

	table, err := Price(context.Background(), ms, types.LocationIbadan, resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(table.Lines))
	}

	cement, ok := table.Line("Cement")
	if !ok || !cement.Total.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected cement total 100000, got %+v", cement)
	}
	for _, name := range []string{"Paint", "Broken"} {
		line, _ := table.Line(name)
		if !line.Unresolved || !line.Total.IsZero() {
			t.Errorf("%s should be unresolved and priced at zero, got %+v", name, line)
		}
	}
	if len(table.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %+v", table.Warnings)
	}
	for _, w := range table.Warnings {
		if w.Code != errors.TypeUnresolvedMaterial {
			t.Errorf("unexpected warning code %s", w.Code)
		}
	}
	if !table.Total().Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected total 100000, got %s", table.Total())
	}
}

func TestPriceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Price(ctx, FromProcurement(map[string]float64{"Cement": 1}), types.LocationIbadan, stubResolver{})
	if !errors.IsType(err, errors.TypeTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestPriceWithoutResolver(t *testing.T) {
	ms := FromProcurement(map[string]float64{"Cement": 10, "Sharp Sand": 2})

	table, err := Price(context.Background(), ms, types.LocationLekki, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Lines) != 2 || len(table.Warnings) != 2 {
		t.Fatalf("expected 2 unresolved lines, got %+v", table)
	}
	for _, l := range table.Lines {
		if !l.Unresolved {
			t.Errorf("%s should be unresolved", l.Item)
		}
	}
	if !table.Total().IsZero() {
		t.Errorf("expected zero total, got %s", table.Total())
	}
}

type slowResolver struct{}

// Resolve answers later for earlier items so lookups finish out of order
func (slowResolver) Resolve(_ context.Context, query string, _ types.Location) (Quote, error) {
	var n int
	fmt.Sscanf(query, "Item %d", &n)
	time.Sleep(time.Duration(12-n) * time.Millisecond)
	return Quote{BasePrice: decimal.NewFromInt(int64(1000 * (n + 1))), Name: query}, nil
}

func TestPriceKeepsOrder(t *testing.T) {
	var ms types.Materials
	for i := 0; i < 12; i++ {
		ms = append(ms, types.MaterialQuantity{Name: fmt.Sprintf("Item %02d", i), ProcurementQty: 1})
	}

	table, err := Price(context.Background(), ms, types.LocationIbadan, slowResolver{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Lines) != len(ms) {
		t.Fatalf("expected %d lines, got %d", len(ms), len(table.Lines))
	}
	for i, l := range table.Lines {
		if l.Item != ms[i].Name {
			t.Errorf("line %d: expected %s, got %s", i, ms[i].Name, l.Item)
		}
		if want := decimal.NewFromInt(int64(1000 * (i + 1))); !l.UnitPrice.Equal(want) {
			t.Errorf("%s: expected unit price %s, got %s", l.Item, want, l.UnitPrice)
		}
	}
}
