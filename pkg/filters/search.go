package filters

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/bcaldwell/bankreport/pkg/transactions"
)

var ErrPattern = errors.New("invalid search pattern")

// FindByDescription keeps transactions whose description matches pattern, a
// case-insensitive regular expression. An empty pattern matches everything.
// An invalid pattern returns an empty result and an error wrapping ErrPattern.
func FindByDescription(txs []*transactions.Transaction, pattern string) ([]*transactions.Transaction, error) {
	if pattern == "" {
		return Where(txs, func(*transactions.Transaction) bool { return true }), nil
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return []*transactions.Transaction{}, fmt.Errorf("%w %q: %v", ErrPattern, pattern, err)
	}

	return Where(txs, func(tx *transactions.Transaction) bool {
		return re.MatchString(tx.Description())
	}), nil
}
