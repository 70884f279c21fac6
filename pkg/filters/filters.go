// Package filters selects, searches, counts and orders canonical
// transactions. Nothing here modifies its input: every operation returns a new
// slice holding the same records.
package filters

import (
	"strings"
	"time"

	"github.com/bcaldwell/bankreport/pkg/dates"
	"github.com/bcaldwell/bankreport/pkg/transactions"
)

type Predicate func(*transactions.Transaction) bool

// Where returns the transactions matching keep, in input order.
func Where(txs []*transactions.Transaction, keep Predicate) []*transactions.Transaction {
	out := make([]*transactions.Transaction, 0, len(txs))
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// ByStatus keeps transactions whose status equals status, ignoring case.
func ByStatus(txs []*transactions.Transaction, status string) []*transactions.Transaction {
	want := strings.TrimSpace(status)
	return Where(txs, func(tx *transactions.Transaction) bool {
		return strings.EqualFold(tx.Status().String(), want)
	})
}

// ByCurrency keeps transactions in the currency code, ignoring case.
func ByCurrency(txs []*transactions.Transaction, code string) []*transactions.Transaction {
	want := strings.TrimSpace(code)
	return Where(txs, func(tx *transactions.Transaction) bool {
		return strings.EqualFold(tx.CurrencyCode(), want)
	})
}

// ByDay keeps transactions that happened on the calendar day of day.
func ByDay(txs []*transactions.Transaction, day time.Time) []*transactions.Transaction {
	return Where(txs, func(tx *transactions.Transaction) bool {
		return dates.SameDay(tx.Date(), day)
	})
}

func Descriptions(txs []*transactions.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.Description())
	}
	return out
}
