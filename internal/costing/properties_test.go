package costing

import (
	"encoding/json"
	"testing"

	"inventory-costing/internal/ledger"

	"github.com/shopspring/decimal"
)

func TestAppendLog(t *testing.T) {
	tx := &ledger.Transaction{ID: "p1"}

	appendLog(tx, propLiquidationLog, LogEntry{
		ID:       "s1",
		Quantity: decimal.NewFromInt(4),
		UnitCost: decimal.NewFromInt(10),
		Date:     "2024-02-01",
	})
	appendLog(tx, propLiquidationLog, LogEntry{
		ID:       "s2",
		Quantity: decimal.NewFromInt(6),
		UnitCost: decimal.NewFromInt(10),
		Date:     "2024-02-10",
	})

	var log []LogEntry
	if err := json.Unmarshal([]byte(tx.Property(propLiquidationLog)), &log); err != nil {
		t.Fatalf("log is not valid JSON: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("log has %d entries, want 2", len(log))
	}
	if log[0].ID != "s1" || log[1].ID != "s2" {
		t.Errorf("log order = %s, %s; want s1, s2", log[0].ID, log[1].ID)
	}
	if !log[1].Quantity.Equal(decimal.NewFromInt(6)) {
		t.Errorf("second entry quantity = %s, want 6", log[1].Quantity)
	}
}

func TestPreserveOriginal_OnlyOnce(t *testing.T) {
	lot := &ledger.Transaction{ID: "p1", Amount: decimal.NewFromInt(10)}
	lot.SetProperty(propTotalCost, "100")

	preserveOriginal(lot)
	lot.Amount = decimal.NewFromInt(6)
	lot.SetProperty(propTotalCost, "60")
	preserveOriginal(lot)

	if got := lot.Property(propOriginalQuantity); got != "10" {
		t.Errorf("original quantity = %q, want the first recorded value 10", got)
	}
	if got := lot.Property(propOriginalCost); got != "100" {
		t.Errorf("original cost = %q, want the first recorded value 100", got)
	}
}
