package costing

import (
	"context"
	"fmt"
	"time"

	"inventory-costing/internal/ledger"
	"github.com/shopspring/decimal"
)

// buckets is the classified, unresolved transaction stream of one good:
// sales, purchase lots keyed by purchase code, credit notes keyed by the
// purchase code they adjust, and the running quantity totals.
type buckets struct {
	sales       []*ledger.Transaction
	purchases   map[string]*ledger.Transaction
	creditNotes map[string]*ledger.Transaction

	totalSold      decimal.Decimal
	totalPurchased decimal.Decimal
}

// classify queries the inventory book for the good's unresolved transactions
// dated on/before the day after asOf and partitions them. Read-only: nothing
// is staged here.
//
// Partitioning, with the good on one side of every transaction:
//   - debit side is an outgoing-typed account  -> sale
//   - credit side is an incoming-typed account -> purchase lot
//   - debit side is incoming-typed and the record carries the credit-note
//     marker -> credit note
func (p *pass) classify(ctx context.Context, asOf time.Time) (*buckets, error) {
	// The platform's before: bound is exclusive, so the day after asOf is
	// included by bounding two days out.
	q := ledger.Query{
		Account: p.good.Name(),
		Before:  p.invBook.FormatDate(asOf.AddDate(0, 0, 2)),
	}
	txs, err := p.ledger.ListTransactions(ctx, p.invBook.ID, q.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory transactions: %w", err)
	}

	name := p.good.Name()
	b := &buckets{
		purchases:   map[string]*ledger.Transaction{},
		creditNotes: map[string]*ledger.Transaction{},
	}
	for _, tx := range txs {
		if tx.Checked || tx.Trashed {
			continue
		}
		switch {
		case tx.CreditsAccount(name) && tx.Debit != nil && tx.Debit.Type == ledger.Outgoing:
			b.sales = append(b.sales, tx)
			b.totalSold = b.totalSold.Add(tx.Amount)

		case tx.CreditsAccount(name) && tx.Debit != nil && tx.Debit.Type == ledger.Incoming && tx.HasProperty(propCreditNote):
			if code := tx.Property(propPurchaseCode); code != "" {
				b.creditNotes[code] = tx
				b.totalPurchased = b.totalPurchased.Sub(tx.Amount)
			}

		case tx.DebitsAccount(name) && tx.Credit != nil && tx.Credit.Type == ledger.Incoming:
			if code := tx.Property(propPurchaseCode); code != "" {
				b.purchases[code] = tx
				b.totalPurchased = b.totalPurchased.Add(tx.Amount)
			}
		}
	}
	return b, nil
}
