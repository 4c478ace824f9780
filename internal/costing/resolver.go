package costing

import (
	"context"
	"fmt"

	"inventory-costing/internal/ledger"
	"github.com/shopspring/decimal"
)

// resolveAdjustments searches the financial book within a bounded window
// around the lot's purchase date for postings linked by purchase code, and
// returns the summed additional costs (freight, duties) and credit-note
// amounts. Idempotent: the matcher runs it once per lot per pass, guarded by
// the adjustment markers written afterwards.
//
// An additional cost is a checked posting debiting the good's financial
// account with the lot's purchase code and an invoice marker different from
// the code itself (distinguishing it from the original purchase posting).
// A credit note is a checked posting crediting the account, carrying the
// credit-note marker and the same purchase code.
func (p *pass) resolveAdjustments(ctx context.Context, lot *ledger.Transaction) (additional, creditNotes decimal.Decimal, err error) {
	code := lot.Property(propPurchaseCode)
	if code == "" {
		return decimal.Zero, decimal.Zero, nil
	}

	purchaseDate, err := p.finBook.ParseDate(lot.Date)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid lot date %q: %w", lot.Date, err)
	}

	account, err := p.financialAccount(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	// Both bounds are exclusive, so each is pushed one day past the window
	// edge to keep postings dated exactly on the edge inside it.
	window := p.cfg.CostWindowMonths
	q := ledger.Query{
		Account: account.Name,
		After:   p.finBook.FormatDate(purchaseDate.AddDate(0, -window, -1)),
		Before:  p.finBook.FormatDate(purchaseDate.AddDate(0, window, 1)),
	}
	txs, err := p.ledger.ListTransactions(ctx, p.finBook.ID, q.String())
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to query cost adjustments: %w", err)
	}

	for _, tx := range txs {
		if !tx.Checked || tx.Property(propPurchaseCode) != code {
			continue
		}
		switch {
		case tx.HasProperty(propCreditNote) && tx.CreditsAccount(account.Name):
			creditNotes = creditNotes.Add(tx.Amount)
		case tx.DebitsAccount(account.Name) && tx.Property(propPurchaseInvoice) != "" && tx.Property(propPurchaseInvoice) != code:
			additional = additional.Add(tx.Amount)
		}
	}
	return additional, creditNotes, nil
}

// adjustLotCost folds resolved additional costs and credit notes into the
// lot's total cost, once per pass. The markers double as the re-entry guard
// against double counting on repeated passes.
func (p *pass) adjustLotCost(ctx context.Context, lot *ledger.Transaction) error {
	if lot.HasProperty(propAdditionalCosts) || lot.HasProperty(propCreditNoteAmount) {
		return nil
	}
	additional, creditNotes, err := p.resolveAdjustments(ctx, lot)
	if err != nil {
		return err
	}
	preserveOriginal(lot)
	cost := lot.DecimalProperty(propTotalCost).Add(additional).Sub(creditNotes)
	lot.SetProperty(propTotalCost, cost.String())
	lot.SetProperty(propAdditionalCosts, additional.String())
	lot.SetProperty(propCreditNoteAmount, creditNotes.String())
	return nil
}
