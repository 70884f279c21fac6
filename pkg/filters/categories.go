package filters

import (
	"strings"

	"github.com/bcaldwell/bankreport/pkg/transactions"
)

// CountByCategory counts, for each category, the transactions whose
// description contains it (case-insensitive). A transaction is counted under
// every category it matches. Every requested category is present in the
// result, zero when nothing matched.
func CountByCategory(txs []*transactions.Transaction, categories []string) map[string]int {
	counts := make(map[string]int, len(categories))
	for _, category := range categories {
		counts[category] = 0
	}

	for _, tx := range txs {
		description := strings.ToLower(tx.Description())
		for category := range counts {
			if strings.Contains(description, strings.ToLower(category)) {
				counts[category]++
			}
		}
	}

	return counts
}
