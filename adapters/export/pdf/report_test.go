package pdf

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"sitemate/adapters/storage"
	"sitemate/core/types"
	"sitemate/internal/errors"
)

func TestReport(t *testing.T) {
	p := &storage.Project{
		Name:      "Ibadan Fence",
		Location:  types.LocationIbadan,
		Soil:      types.SoilClay,
		Narrative: "**Raft** foundation required on clay.",
		BOQ: types.BOQTable{
			Location: types.LocationIbadan,
			Currency: types.NGN,
			Lines: []types.PricedLine{
				{Item: "Cement", Description: "Cement - Dangote 3X 42.5R (50kg)", Unit: types.ProcureBag, Quantity: 120, UnitPrice: decimal.NewFromInt(10000), Total: decimal.NewFromInt(1200000)},
			},
		},
	}

	data, err := Report(p, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("expected PDF header, got %q", data[:8])
	}
	if len(data) < 500 {
		t.Errorf("report suspiciously small: %d bytes", len(data))
	}
}

func TestReportRejectsEmpty(t *testing.T) {
	if _, err := Report(&storage.Project{Name: "x"}, "notes"); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error, got %v", err)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := formatAmount(decimal.NewFromInt(1762775)); got != "NGN 1,762,775" {
		t.Errorf("expected NGN 1,762,775, got %q", got)
	}
	if got := truncate("Granite 3/4 inch (30 tons) (Inc. 25% Logistics)", 20); got != "Granite 3/4 inch ..." {
		t.Errorf("unexpected truncation %q", got)
	}
}
