package costing

import (
	"context"
	"fmt"

	"inventory-costing/internal/ledger"
)

// reset walks every record touching the good, in any checked state, and
// reverses what this engine synthesized: split children are trashed, split
// originals restored to their pre-calculation quantity and cost, sales
// stripped of their computed cost and unchecked, and the linked COGS postings
// trashed. Source records without engine markers are left alone. On success
// the rebuild flag and stored last-calculation date are cleared.
func (s *Service) reset(ctx context.Context, p *pass) (Summary, error) {
	q := ledger.Query{Account: p.good.Name()}
	txs, err := s.ledger.ListTransactions(ctx, p.invBook.ID, q.String())
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query inventory transactions: %w", err)
	}

	for _, tx := range txs {
		if tx.Trashed {
			continue
		}
		switch {
		case tx.HasProperty(propParentID):
			// Split child materialized by this engine.
			if tx.AgentID != AgentID {
				continue
			}
			p.proc.Observe(tx)
			tx.Checked = false
			p.proc.StageInventoryUpdate(tx)
			p.proc.StageInventoryTrash(tx)

		case tx.HasProperty(propPurchaseLog):
			// Matched sale.
			p.proc.Observe(tx)
			if err := s.trashCOGSPosting(ctx, p, tx); err != nil {
				return Summary{}, err
			}
			tx.DeleteProperty(propPurchaseLog)
			tx.DeleteProperty(propTotalCost)
			tx.Checked = false
			p.proc.StageInventoryUpdate(tx)

		case tx.HasProperty(propOriginalQuantity) || tx.HasProperty(propLiquidationLog):
			// Original lot that was split, consumed, or cost-adjusted.
			p.proc.Observe(tx)
			if raw := tx.Property(propOriginalQuantity); raw != "" {
				tx.Amount = tx.DecimalProperty(propOriginalQuantity)
				// A lot that never carried a cost must not come back with
				// an empty-string one.
				if original := tx.Property(propOriginalCost); original != "" {
					tx.SetProperty(propTotalCost, original)
				} else {
					tx.DeleteProperty(propTotalCost)
				}
			}
			tx.DeleteProperty(propOriginalQuantity)
			tx.DeleteProperty(propOriginalCost)
			tx.DeleteProperty(propLiquidationLog)
			tx.DeleteProperty(propAdditionalCosts)
			tx.DeleteProperty(propCreditNoteAmount)
			tx.Checked = false
			p.proc.StageInventoryUpdate(tx)

		case tx.HasProperty(propCreditNote) && tx.Checked:
			// Credit note whose effect lived in the now-trashed children.
			p.proc.Observe(tx)
			tx.Checked = false
			p.proc.StageInventoryUpdate(tx)
		}
	}

	if p.proc.HasLockedTransaction() {
		return summaryError(p.good.ID(), msgLockError), nil
	}
	if !p.proc.IsEmpty() {
		if err := p.proc.Commit(ctx); err != nil {
			return Summary{}, fmt.Errorf("reset commit failed: %w", err)
		}
	}

	p.good.SetNeedsRebuild(false)
	p.good.ClearLastCalculationDate()
	if _, err := s.ledger.UpdateAccount(ctx, p.invBook.ID, p.good.Account()); err != nil {
		return Summary{}, fmt.Errorf("failed to clear rebuild flag: %w", err)
	}
	return summaryOK(p.good.ID(), msgReseted), nil
}

// trashCOGSPosting locates the financial posting cross-referenced to the sale
// and stages it unchecked and trashed.
func (s *Service) trashCOGSPosting(ctx context.Context, p *pass, sale *ledger.Transaction) error {
	q := ledger.Query{RemoteID: saleRemoteID(sale.ID)}
	postings, err := s.ledger.ListTransactions(ctx, p.finBook.ID, q.String())
	if err != nil {
		return fmt.Errorf("failed to locate cost posting for sale %s: %w", sale.ID, err)
	}
	for _, posting := range postings {
		if posting.AgentID != AgentID {
			continue
		}
		p.proc.Observe(posting)
		posting.Checked = false
		p.proc.StageFinancialUpdate(posting)
		p.proc.StageFinancialTrash(posting)
	}
	return nil
}
