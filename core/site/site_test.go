package site

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sitemate/core/types"
	"sitemate/internal/errors"
)

var day = time.Date(2026, 6, 8, 14, 30, 0, 0, time.UTC)

func TestExpenseValidate(t *testing.T) {
	tests := []struct {
		name     string
		expense  Expense
		wantErr  bool
		category ExpenseCategory
	}{
		{"valid", Expense{Project: "Lekki", Item: "Labour payment", Amount: decimal.NewFromInt(50000), Category: "labor"}, false, ExpenseLabor},
		{"default category", Expense{Project: "Lekki", Item: "Tips", Amount: decimal.NewFromInt(1000)}, false, ExpenseMisc},
		{"zero amount", Expense{Project: "Lekki", Item: "Sand", Amount: decimal.Zero}, true, ""},
		{"negative amount", Expense{Project: "Lekki", Item: "Sand", Amount: decimal.NewFromInt(-5)}, true, ""},
		{"missing item", Expense{Project: "Lekki", Amount: decimal.NewFromInt(5)}, true, ""},
		{"unknown category", Expense{Project: "Lekki", Item: "Sand", Amount: decimal.NewFromInt(5), Category: "Bribes"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.expense
			err := e.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.IsType(err, errors.TypeInput) {
					t.Errorf("expected input error, got %v", err)
				}
				return
			}
			if e.Category != tt.category {
				t.Errorf("category = %s, want %s", e.Category, tt.category)
			}
		})
	}
}

func TestFinancialHealth(t *testing.T) {
	expenses := []Expense{
		{Item: "Cement", Amount: decimal.NewFromInt(300000), Category: ExpenseMaterials},
		{Item: "Mason", Amount: decimal.NewFromInt(150000), Category: ExpenseLabor},
		{Item: "Sand", Amount: decimal.NewFromInt(50000), Category: ExpenseMaterials},
	}

	h := FinancialHealth(decimal.NewFromInt(2000000), expenses)
	if !h.Spent.Equal(decimal.NewFromInt(500000)) || !h.Remaining.Equal(decimal.NewFromInt(1500000)) {
		t.Errorf("unexpected totals %+v", h)
	}
	if h.UsedPct != 25 || h.OverBudget {
		t.Errorf("expected 25%% used and within budget, got %+v", h)
	}
	if !h.ByCategory[ExpenseMaterials].Equal(decimal.NewFromInt(350000)) {
		t.Errorf("materials = %s, want 350000", h.ByCategory[ExpenseMaterials])
	}

	over := FinancialHealth(decimal.NewFromInt(400000), expenses)
	if !over.OverBudget || !over.Remaining.Equal(decimal.NewFromInt(-100000)) {
		t.Errorf("expected over budget by 100000, got %+v", over)
	}

	none := FinancialHealth(decimal.Zero, expenses)
	if none.UsedPct != 0 {
		t.Errorf("no budget should report 0%%, got %v", none.UsedPct)
	}
}

func TestApplyStock(t *testing.T) {
	in, log, err := ApplyStock("Lekki", nil, StockRequest{Item: "Cement", Quantity: 100, Operation: StockIn}, day)
	if err != nil {
		t.Fatalf("stock in failed: %v", err)
	}
	if in.Quantity != 100 || in.Unit != "bags" || log.Change != 100 || log.Operation.Label() != "Stock IN" {
		t.Errorf("unexpected delivery %+v %+v", in, log)
	}

	out, log, err := ApplyStock("Lekki", &in, StockRequest{Item: "Cement", Quantity: 40, Operation: StockOut}, day)
	if err != nil {
		t.Fatalf("stock out failed: %v", err)
	}
	if out.Quantity != 60 || log.Change != -40 || log.Operation.Label() != "Stock OUT" {
		t.Errorf("unexpected usage %+v %+v", out, log)
	}

	if _, _, err := ApplyStock("Lekki", &out, StockRequest{Item: "Cement", Quantity: 60.5, Operation: StockOut}, day); !errors.IsType(err, errors.TypeConflict) {
		t.Errorf("drawing below zero should conflict, got %v", err)
	}
	if _, _, err := ApplyStock("Lekki", nil, StockRequest{Item: "Granite", Quantity: 1, Operation: StockOut}, day); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("drawing unstocked material should be not found, got %v", err)
	}
	if _, _, err := ApplyStock("Lekki", nil, StockRequest{Item: "Cement", Quantity: 0, Operation: StockIn}, day); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("zero quantity should be rejected, got %v", err)
	}
	if _, _, err := ApplyStock("Lekki", nil, StockRequest{Item: "Cement", Quantity: 1}, day); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("missing operation should be rejected, got %v", err)
	}
}

func TestApplyStockDrawsToZero(t *testing.T) {
	cur := StockItem{Item: "Sharp Sand", Quantity: 0.3, Unit: "tonnes"}
	next, _, err := ApplyStock("Ibadan", &cur, StockRequest{Item: "Sharp Sand", Quantity: 0.1, Operation: StockOut}, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next, _, err = ApplyStock("Ibadan", &next, StockRequest{Item: "Sharp Sand", Quantity: 0.2, Operation: StockOut}, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Quantity != 0 {
		t.Errorf("expected empty stock, got %v", next.Quantity)
	}
}

func TestDefaultStockUnit(t *testing.T) {
	tests := map[string]string{
		"Dangote Cement": "bags",
		"9-inch Block":   "pcs",
		"Sharp Sand":     "tonnes",
		"Granite 3/4":    "tonnes",
		"12mm Iron Rod":  "lengths",
		"Emulsion Paint": "units",
	}
	for item, want := range tests {
		if got := DefaultStockUnit(item); got != want {
			t.Errorf("DefaultStockUnit(%q) = %q, want %q", item, got, want)
		}
	}
}

func TestDiaryEntry(t *testing.T) {
	d := DiaryEntry{
		Project:  " Lekki Duplex ",
		Weather:  "Light rain",
		Labor:    map[string]int{"Mason": 4, "Labourer": 6, "Carpenter": 0},
		WorkDone: "Blockwork to lintel level",
	}
	if err := d.Validate(day); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Date != "2026-06-08" || d.Project != "Lekki Duplex" {
		t.Errorf("unexpected entry %+v", d)
	}
	if d.Headcount() != 10 {
		t.Errorf("headcount = %d, want 10", d.Headcount())
	}
	if got := d.LaborSummary(); got != "Labourer: 6, Mason: 4" {
		t.Errorf("unexpected labor summary %q", got)
	}

	for _, bad := range []DiaryEntry{
		{Project: "Lekki"},
		{Project: "Lekki", WorkDone: "x", Labor: map[string]int{"Mason": -1}},
		{Project: "Lekki", WorkDone: "x", Date: "08/06/2026"},
	} {
		if err := bad.Validate(day); !errors.IsType(err, errors.TypeInput) {
			t.Errorf("%+v: expected input error, got %v", bad, err)
		}
	}

	if !errors.IsType(DiaryExists("Lekki", "2026-06-08"), errors.TypeConflict) {
		t.Error("a repeated diary day should be a conflict")
	}
}

func TestSupplierValidate(t *testing.T) {
	s := Supplier{Company: "Dangote Depot Lekki", Location: types.LocationLekki, Phone: "08031234567", Materials: []string{"Cement", "Sharp Sand"}}
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Rating != DefaultRating {
		t.Errorf("rating = %v, want %v", s.Rating, DefaultRating)
	}

	for _, bad := range []Supplier{
		{Location: types.LocationLekki, Phone: "080"},
		{Company: "X", Location: types.LocationLekki},
		{Company: "X", Phone: "080"},
		{Company: "X", Location: types.LocationLekki, Phone: "080", Email: "not-an-email"},
	} {
		if err := bad.Validate(); !errors.IsType(err, errors.TypeInput) {
			t.Errorf("%+v: expected input error, got %v", bad, err)
		}
	}
}

func TestSupplierMatches(t *testing.T) {
	s := Supplier{Company: "Mubarak Cement", Location: types.LocationIbadan, Materials: []string{"Cement", "Granite"}}
	for _, q := range []string{"", "ibadan", "mubarak", "granite"} {
		if !s.Matches(q) {
			t.Errorf("%q should match", q)
		}
	}
	if s.Matches("lekki") {
		t.Error("lekki should not match an Ibadan supplier")
	}
}

func TestDecide(t *testing.T) {
	pending := Bid{ID: "b1", Status: BidPending}
	if err := Decide(pending, BidAccepted); err != nil {
		t.Errorf("pending bid should be accepted: %v", err)
	}
	if err := Decide(pending, BidPending); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("pending is not a decision, got %v", err)
	}
	if err := Decide(Bid{ID: "b2", Status: BidRejected}, BidAccepted); !errors.IsType(err, errors.TypeConflict) {
		t.Errorf("decided bid should conflict, got %v", err)
	}
}

func TestSortBidsByAmount(t *testing.T) {
	bids := []Bid{
		{ID: "a", Amount: decimal.NewFromInt(900000), SubmittedAt: day},
		{ID: "b", Amount: decimal.NewFromInt(750000), SubmittedAt: day.Add(time.Hour)},
		{ID: "c", Amount: decimal.NewFromInt(750000), SubmittedAt: day},
	}
	SortBidsByAmount(bids)
	if bids[0].ID != "c" || bids[1].ID != "b" || bids[2].ID != "a" {
		t.Errorf("unexpected order %s %s %s", bids[0].ID, bids[1].ID, bids[2].ID)
	}
}

func TestOpenTenders(t *testing.T) {
	tenders := []Tender{
		{Project: "Old Lekki", Location: types.LocationLekki, Date: day.Add(-48 * time.Hour)},
		{Project: "Ibadan Bungalow", Location: types.LocationIbadan, Date: day},
		{Project: "New Lekki", Location: types.LocationLekki, Date: day},
	}
	got := OpenTenders(tenders, "lagos")
	if len(got) != 2 || got[0].Project != "New Lekki" || got[1].Project != "Old Lekki" {
		t.Errorf("unexpected tenders %+v", got)
	}
	if len(OpenTenders(tenders, "")) != 3 {
		t.Error("empty query should list every tender")
	}
}
