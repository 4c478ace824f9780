package costing

import (
	"context"
	"fmt"

	"inventory-costing/internal/ledger"
	"github.com/shopspring/decimal"
)

// matchSale consumes purchase lots in FIFO order until the sale's quantity is
// covered, splitting the last lot when only part of it is needed. Returns
// whether the sale was fully matched. An unmatched sale is left unchecked and
// surfaces as a soft warning on the summary: the aggregate quantity check
// passed, so a shortfall here means the ledger changed under us.
func (p *pass) matchSale(ctx context.Context, sale *ledger.Transaction, lots []*ledger.Transaction) (bool, error) {
	p.proc.Observe(sale)

	remaining := sale.Amount
	accumulated := decimal.Zero
	var purchaseLog []LogEntry

	for _, lot := range lots {
		if remaining.IsZero() {
			break
		}
		if lot.Checked {
			continue
		}
		// A lot without quantity contributes nothing and has no unit cost.
		if lot.Amount.Sign() <= 0 {
			continue
		}
		p.proc.Observe(lot)

		if err := p.adjustLotCost(ctx, lot); err != nil {
			return false, fmt.Errorf("failed to adjust cost of lot %s: %w", lot.ID, err)
		}
		cost := lot.DecimalProperty(propTotalCost)
		unitCost := cost.Div(lot.Amount)

		if remaining.GreaterThanOrEqual(lot.Amount) {
			// Whole lot consumed.
			accumulated = accumulated.Add(cost)
			remaining = remaining.Sub(lot.Amount)

			lot.Checked = true
			appendLog(lot, propLiquidationLog, LogEntry{
				ID:       sale.ID,
				Quantity: lot.Amount,
				UnitCost: unitCost,
				Date:     sale.Date,
			})
			purchaseLog = append(purchaseLog, LogEntry{
				ID:       lot.ID,
				Quantity: lot.Amount,
				UnitCost: unitCost,
				Date:     lot.Date,
			})
			p.proc.StageInventoryUpdate(lot)
			continue
		}

		// Partial consumption: the consumed quantity moves into a checked
		// child lot; the original keeps the remainder and stays unchecked
		// for later sales or passes.
		consumed := remaining
		remainder := lot.Amount.Sub(consumed)
		splitCost := consumed.Mul(unitCost)
		remainderCost := cost.Sub(splitCost)

		preserveOriginal(lot)
		lot.Amount = remainder
		lot.SetProperty(propTotalCost, remainderCost.String())
		p.proc.StageInventoryUpdate(lot)

		child := &ledger.Transaction{
			Date:        lot.Date,
			DateValue:   lot.DateValue,
			CreatedAt:   lot.CreatedAt,
			Amount:      consumed,
			Description: fmt.Sprintf("Split of lot %s", lot.Property(propPurchaseCode)),
			Debit:       lot.Debit,
			Credit:      lot.Credit,
			Checked:     true,
		}
		child.SetProperty(propPurchaseCode, lot.Property(propPurchaseCode))
		child.SetProperty(propParentID, lot.ID)
		child.SetProperty(propTotalCost, splitCost.String())
		appendLog(child, propLiquidationLog, LogEntry{
			ID:       sale.ID,
			Quantity: consumed,
			UnitCost: unitCost,
			Date:     sale.Date,
		})
		tempID := p.proc.StageInventoryCreate(child)

		purchaseLog = append(purchaseLog, LogEntry{
			ID:       tempID,
			Quantity: consumed,
			UnitCost: unitCost,
			Date:     lot.Date,
		})
		accumulated = accumulated.Add(splitCost)
		remaining = decimal.Zero
	}

	// Rounding to ledger precision absorbs division dust from repeated
	// unit-cost computations.
	if !p.invBook.Round(remaining).IsZero() {
		return false, nil
	}

	sale.Checked = true
	sale.SetProperty(propTotalCost, accumulated.String())
	appendLog(sale, propPurchaseLog, purchaseLog...)
	p.proc.StageInventoryUpdate(sale)

	if err := p.stageCOGSPosting(ctx, sale, accumulated); err != nil {
		return false, err
	}
	return true, nil
}

// stageCOGSPosting synthesizes the financial-book posting pricing the sale:
// the good's financial counterpart account is credited against the fixed
// cost-of-goods-sold account, cross-referenced back to the sale.
func (p *pass) stageCOGSPosting(ctx context.Context, sale *ledger.Transaction, cost decimal.Decimal) error {
	account, err := p.financialAccount(ctx)
	if err != nil {
		return err
	}

	posting := &ledger.Transaction{
		Date:        sale.Date,
		DateValue:   sale.DateValue,
		Amount:      p.finBook.Round(cost),
		Description: fmt.Sprintf("Cost of sale: %s", p.good.Name()),
		Debit:       &ledger.AccountRef{Name: p.cfg.COGSAccountName},
		Credit:      &ledger.AccountRef{ID: account.ID, Name: account.Name, Type: account.Type},
		Checked:     true,
	}
	posting.SetProperty(propQuantitySold, sale.Amount.String())
	if invoice := sale.Property(propSaleInvoice); invoice != "" {
		posting.SetProperty(propSaleInvoice, invoice)
	}
	posting.AddRemoteID(saleRemoteID(sale.ID))
	p.proc.StageFinancialCreate(posting)
	return nil
}
