package filters

import (
	"slices"

	"github.com/bcaldwell/bankreport/pkg/transactions"
)

// SortByDate returns a new slice ordered by canonical date. Equal dates keep
// their input order in both directions.
func SortByDate(txs []*transactions.Transaction, descending bool) []*transactions.Transaction {
	out := slices.Clone(txs)

	slices.SortStableFunc(out, func(a, b *transactions.Transaction) int {
		if descending {
			return b.Date().Compare(a.Date())
		}
		return a.Date().Compare(b.Date())
	})

	return out
}
