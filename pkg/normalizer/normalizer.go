// Package normalizer maps raw rows from any source file into canonical
// transactions. A row that cannot be fully coerced is discarded, never stored
// half-filled.
package normalizer

import (
	"fmt"
	"strings"

	"github.com/bcaldwell/bankreport/pkg/diagnostics"
	"github.com/bcaldwell/bankreport/pkg/transactions"
)

// Field names as they appear in source rows.
var (
	idKeys          = []string{"id"}
	statusKeys      = []string{"status", "state"}
	dateKeys        = []string{"date"}
	descriptionKeys = []string{"description"}
	fromKeys        = []string{"from", "from_party"}
	toKeys          = []string{"to", "to_party"}

	nestedAmountKeys = []string{"operationAmount", "operation_amount"}

	flatAmountKeys       = []string{"amount"}
	flatCurrencyKeys     = []string{"currency_code", "currency", "currency_name"}
	flatCurrencyNameKeys = []string{"currency_name"}
)

type Normalizer struct {
	rec diagnostics.Recorder
}

func New(rec diagnostics.Recorder) *Normalizer {
	if rec == nil {
		rec = diagnostics.Nop
	}
	return &Normalizer{rec: rec}
}

// NormalizeBatch normalizes every row of batch in order. Discarded rows are
// reported to the recorder and skipped; the batch always runs to the end.
func (n *Normalizer) NormalizeBatch(batch transactions.Batch) []*transactions.Transaction {
	result := make([]*transactions.Transaction, 0, len(batch.Rows))

	for i, row := range batch.Rows {
		tx, err := n.Normalize(i, row, batch.Schema)
		if err != nil {
			n.rec.Discard(i, err)
			continue
		}
		result = append(result, tx)
	}

	return result
}

// Normalize builds the canonical transaction for one raw row. The returned
// error is a *DiscardError.
func (n *Normalizer) Normalize(index int, row transactions.RawRow, schema transactions.SourceSchema) (*transactions.Transaction, error) {
	if row == nil {
		return nil, missing(index, "row")
	}

	// required fields present
	idValue, _, ok := lookup(row, idKeys...)
	if !ok {
		return nil, missing(index, "id")
	}
	statusValue, _, ok := lookup(row, statusKeys...)
	if !ok {
		return nil, missing(index, "status")
	}
	dateValue, _, ok := lookup(row, dateKeys...)
	if !ok {
		return nil, missing(index, "date")
	}

	cash, err := extractMoney(index, row, schema)
	if err != nil {
		return nil, err
	}

	id, ok := toInt64(idValue)
	if !ok {
		return nil, coercion(index, "id", idValue, "an integer")
	}

	amount, ok := toDecimal(cash.amount)
	if !ok {
		return nil, coercion(index, "amount", cash.amount, "a number")
	}

	date, err := toInstant(dateValue)
	if err != nil {
		return nil, discard(index, "date", err)
	}

	statusText, ok := stringValue(statusValue)
	if !ok {
		return nil, coercion(index, "status", statusValue, "text")
	}
	status := transactions.ParseStatus(statusText)
	if status == "" {
		return nil, missing(index, "status")
	}
	if !status.Known() {
		n.rec.Warn("normalizer", "unknown status kept", map[string]interface{}{"row": index, "status": status.String()})
	}

	currencyCode, ok := stringValue(cash.currencyCode)
	if !ok {
		return nil, coercion(index, "currency_code", cash.currencyCode, "text")
	}

	// optional fields default to empty strings
	return transactions.New(transactions.Fields{
		ID:           id,
		Description:  optionalString(row, descriptionKeys...),
		Amount:       amount,
		CurrencyCode: strings.ToUpper(currencyCode),
		CurrencyName: cash.currencyName,
		Date:         date,
		Status:       status,
		From:         optionalString(row, fromKeys...),
		To:           optionalString(row, toKeys...),
	}), nil
}

type money struct {
	amount       interface{}
	currencyCode interface{}
	currencyName string
}

func extractMoney(index int, row transactions.RawRow, schema transactions.SourceSchema) (money, error) {
	switch schema {
	case transactions.NestedJSON:
		return nestedMoney(index, row)
	case transactions.FlatTabular:
		return flatMoney(index, row)
	default:
		return money{}, discard(index, "schema", fmt.Errorf("%w: unknown source schema %s", ErrTypeCoercion, schema))
	}
}

// nestedMoney reads operationAmount{amount, currency{name, code}}.
func nestedMoney(index int, row transactions.RawRow) (money, error) {
	opValue, key, ok := lookup(row, nestedAmountKeys...)
	if !ok {
		return money{}, missing(index, key)
	}
	op, ok := asMap(opValue)
	if !ok {
		return money{}, coercion(index, key, opValue, "an object")
	}

	amount, _, ok := lookup(op, "amount")
	if !ok {
		return money{}, missing(index, key+".amount")
	}

	currencyValue, _, ok := lookup(op, "currency")
	if !ok {
		return money{}, missing(index, key+".currency")
	}
	currency, ok := asMap(currencyValue)
	if !ok {
		return money{}, coercion(index, key+".currency", currencyValue, "an object")
	}

	code, _, ok := lookup(currency, "code")
	if !ok {
		return money{}, missing(index, key+".currency.code")
	}

	return money{
		amount:       amount,
		currencyCode: code,
		currencyName: optionalString(currency, "name"),
	}, nil
}

// flatMoney reads amount and currency columns. A missing currency_code falls
// back to the currency or currency_name column.
func flatMoney(index int, row transactions.RawRow) (money, error) {
	amount, key, ok := lookup(row, flatAmountKeys...)
	if !ok {
		return money{}, missing(index, key)
	}

	code, key, ok := lookup(row, flatCurrencyKeys...)
	if !ok {
		return money{}, missing(index, key)
	}

	return money{
		amount:       amount,
		currencyCode: code,
		currencyName: optionalString(row, flatCurrencyNameKeys...),
	}, nil
}
