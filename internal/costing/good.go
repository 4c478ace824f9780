package costing

import (
	"time"

	"inventory-costing/internal/ledger"
)

// Good is one tracked good: an asset account in the inventory book whose
// transactions carry quantities. The engine owns only the rebuild flag and
// last-calculation date; everything else on the account belongs to the
// platform.
type Good struct {
	account *ledger.Account
}

// NewGood wraps an inventory-book account.
func NewGood(account *ledger.Account) *Good {
	return &Good{account: account}
}

// Account returns the underlying ledger account for persistence.
func (g *Good) Account() *ledger.Account { return g.account }

// ID returns the inventory account id.
func (g *Good) ID() string { return g.account.ID }

// Name returns the account name, shared with the financial counterpart.
func (g *Good) Name() string { return g.account.Name }

// ExchangeCode returns the good's currency code, derived from group
// membership on the platform and surfaced as an account property.
func (g *Good) ExchangeCode() string {
	return g.account.Property(propExchangeCode)
}

// NeedsRebuild reports whether prior calculation state is stale and must be
// reset before recomputation.
func (g *Good) NeedsRebuild() bool {
	return g.account.Property(propNeedsRebuild) == "true"
}

// SetNeedsRebuild flips the persisted rebuild flag.
func (g *Good) SetNeedsRebuild(v bool) {
	if v {
		g.account.SetProperty(propNeedsRebuild, "true")
		return
	}
	g.account.DeleteProperty(propNeedsRebuild)
}

// LastCalculationDate returns the as-of date of the last successful
// calculation, if any.
func (g *Good) LastCalculationDate() (time.Time, bool) {
	raw := g.account.Property(propLastCalculation)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SetLastCalculationDate records the as-of date of a successful calculation.
func (g *Good) SetLastCalculationDate(book *ledger.Book, t time.Time) {
	g.account.SetProperty(propLastCalculation, book.FormatDate(t))
}

// ClearLastCalculationDate removes the stored date after a reset.
func (g *Good) ClearLastCalculationDate() {
	g.account.DeleteProperty(propLastCalculation)
}
