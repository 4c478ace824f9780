package costing

import (
	"sort"
	"strings"

	"inventory-costing/internal/ledger"
)

// compareFIFO orders transactions for matching: date value ascending, then
// the explicit numeric order property (default 0), then creation timestamp.
// The id tie-break keeps the order strict and total even for records that are
// otherwise indistinguishable.
func compareFIFO(a, b *ledger.Transaction) int {
	if a.DateValue != b.DateValue {
		if a.DateValue < b.DateValue {
			return -1
		}
		return 1
	}
	ao, bo := a.IntProperty(propOrder), b.IntProperty(propOrder)
	if ao != bo {
		if ao < bo {
			return -1
		}
		return 1
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// sortFIFO sorts transactions in place in FIFO order.
func sortFIFO(txs []*ledger.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return compareFIFO(txs[i], txs[j]) < 0
	})
}
