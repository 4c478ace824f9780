package costing

import (
	"encoding/json"

	"inventory-costing/internal/ledger"
	"github.com/shopspring/decimal"
)

// AgentID marks every transaction this engine creates, so a reset can tell
// synthesized records from source data.
const AgentID = "inventory-costing"

// Transaction properties. purchase_code correlates a purchase lot with its
// additional costs and credit notes across both books; the rest hold the
// engine's per-record state as explicit fields rather than free-form flags.
const (
	propPurchaseCode     = "purchase_code"
	propPurchaseInvoice  = "purchase_invoice"
	propSaleInvoice      = "sale_invoice"
	propCreditNote       = "credit_note"
	propTotalCost        = "total_cost"
	propOriginalQuantity = "original_quantity"
	propOriginalCost     = "original_cost"
	propParentID         = "parent_id"
	propAdditionalCosts  = "additional_costs"
	propCreditNoteAmount = "credit_note_amount"
	propPurchaseLog      = "purchase_log"
	propLiquidationLog   = "liquidation_log"
	propOrder            = "order"
	propQuantitySold     = "quantity_sold"
)

// Account properties persisted on a tracked good between invocations.
const (
	propNeedsRebuild    = "needs_rebuild"
	propLastCalculation = "last_calculation_date"
	propExchangeCode    = "exchange_code"
)

// saleRemoteID is the cross-reference a synthesized COGS posting carries back
// to the sale it prices.
func saleRemoteID(saleID string) string {
	return "sale_" + saleID
}

// tempRemoteID correlates a staged, not-yet-created lot with its ledger record
// across the create boundary.
func tempRemoteID(tempID string) string {
	return "temp_" + tempID
}

// LogEntry is one immutable consumption record appended to a sale's purchase
// log and a lot's liquidation log. Audit only; never re-parsed by the engine.
type LogEntry struct {
	ID       string          `json:"id"`
	Quantity decimal.Decimal `json:"qty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Date     string          `json:"date"`
}

// appendLog appends entries to the JSON log stored under key on tx.
func appendLog(tx *ledger.Transaction, key string, entries ...LogEntry) {
	var log []LogEntry
	if raw := tx.Property(key); raw != "" {
		_ = json.Unmarshal([]byte(raw), &log)
	}
	log = append(log, entries...)
	raw, err := json.Marshal(log)
	if err != nil {
		return
	}
	tx.SetProperty(key, string(raw))
}
