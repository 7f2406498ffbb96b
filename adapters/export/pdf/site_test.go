package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sitemate/core/site"
	"sitemate/internal/errors"
)

func TestExpenseLog(t *testing.T) {
	expenses := []site.Expense{
		{Item: "Cement delivery", Amount: decimal.NewFromInt(545000), Category: site.ExpenseMaterials, Date: time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)},
		{Item: "Mason (week 1)", Amount: decimal.NewFromInt(120000), Category: site.ExpenseLabor, Date: time.Date(2026, 6, 6, 0, 0, 0, 0, time.UTC)},
	}
	health := site.FinancialHealth(decimal.NewFromInt(500000), expenses)

	data, err := ExpenseLog("Lekki Duplex", health, expenses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("expected PDF header, got %q", data[:8])
	}

	if _, err := ExpenseLog("Lekki Duplex", health, nil); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error for an empty ledger, got %v", err)
	}
}

func TestStockReport(t *testing.T) {
	at := time.Date(2026, 6, 2, 9, 15, 0, 0, time.UTC)
	stock := []site.StockItem{{Item: "Cement", Quantity: 60, Unit: "bags", UpdatedAt: at}}
	log := []site.StockMovement{
		{Item: "Cement", Change: -40, Unit: "bags", Operation: site.StockOut, At: at},
		{Item: "Cement", Change: 100, Unit: "bags", Operation: site.StockIn, At: at.Add(-time.Hour)},
	}

	data, err := StockReport("Lekki Duplex", stock, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("expected PDF header, got %q", data[:8])
	}

	if _, err := StockReport("Lekki Duplex", nil, nil); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error for empty stock, got %v", err)
	}
}
