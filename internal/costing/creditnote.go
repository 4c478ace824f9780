package costing

import (
	"fmt"
	"sort"

	"inventory-costing/internal/ledger"
)

// applyCreditNotes stages the effect of every credit note against its
// matching lot before FIFO matching begins, since matching consumes the
// post-credit-note quantities. Returns a non-nil error summary when a credit
// note exceeds what remains in its lot; nothing is committed in that case.
func (p *pass) applyCreditNotes(b *buckets) *Summary {
	codes := make([]string, 0, len(b.creditNotes))
	for code := range b.creditNotes {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		note := b.creditNotes[code]
		lot, ok := b.purchases[code]
		if !ok {
			continue
		}
		p.proc.Observe(note)
		p.proc.Observe(lot)

		remaining := lot.Amount.Sub(note.Amount)
		if remaining.Sign() <= 0 {
			s := summaryError(p.good.ID(), msgCreditNoteError)
			return &s
		}

		preserveOriginal(lot)

		// The returned quantity takes its proportional share of the lot's
		// cost with it into a checked child lot cross-referenced to the
		// credit note; the original keeps the remainder.
		cost := lot.DecimalProperty(propTotalCost)
		childCost := note.Amount.Mul(cost.Div(lot.Amount))

		child := &ledger.Transaction{
			Date:        note.Date,
			DateValue:   note.DateValue,
			CreatedAt:   note.CreatedAt,
			Amount:      note.Amount,
			Description: fmt.Sprintf("Credit note against lot %s", code),
			Debit:       lot.Debit,
			Credit:      lot.Credit,
			Checked:     true,
		}
		child.SetProperty(propPurchaseCode, code)
		child.SetProperty(propParentID, lot.ID)
		child.SetProperty(propCreditNote, "true")
		child.SetProperty(propTotalCost, childCost.String())
		child.AddRemoteID(note.ID)
		p.proc.StageInventoryCreate(child)

		lot.Amount = remaining
		lot.SetProperty(propTotalCost, cost.Sub(childCost).String())
		// Doubles as the cost-adjustment marker: the resolver must not
		// subtract this credit note a second time.
		lot.SetProperty(propCreditNoteAmount, childCost.String())
		p.proc.StageInventoryUpdate(lot)

		note.Checked = true
		p.proc.StageInventoryUpdate(note)
	}
	return nil
}

// preserveOriginal records a lot's pre-split quantity and cost the first time
// it is reduced, so a reset can restore it.
func preserveOriginal(lot *ledger.Transaction) {
	if lot.HasProperty(propOriginalQuantity) {
		return
	}
	lot.SetProperty(propOriginalQuantity, lot.Amount.String())
	lot.SetProperty(propOriginalCost, lot.Property(propTotalCost))
}
