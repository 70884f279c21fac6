package normalizer

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/bcaldwell/bankreport/pkg/dates"
	"github.com/bcaldwell/bankreport/pkg/diagnostics"
	"github.com/bcaldwell/bankreport/pkg/transactions"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFlatRow(t *testing.T) {
	n := New(diagnostics.Nop)

	tx, err := n.Normalize(0, transactions.RawRow{
		"id":            "1",
		"state":         "executed",
		"date":          "2023-01-15",
		"amount":        "100.50",
		"currency_code": "RUB",
		"description":   "Оплата",
	}, transactions.FlatTabular)
	require.NoError(t, err)

	assert.Equal(t, int64(1), tx.ID())
	assert.Equal(t, transactions.Executed, tx.Status())
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), tx.Date())
	assert.True(t, tx.Amount().Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, "RUB", tx.CurrencyCode())
	assert.Equal(t, "Оплата", tx.Description())
	assert.Equal(t, "", tx.From())
	assert.Equal(t, "", tx.To())
}

func TestNormalizeNestedRow(t *testing.T) {
	var row transactions.RawRow
	dec := json.NewDecoder(bytes.NewBufferString(`{
		"id": 441945886,
		"state": "EXECUTED",
		"date": "2019-08-26T10:50:58.294041Z",
		"operationAmount": {"amount": "31957.58", "currency": {"name": "руб.", "code": "RUB"}},
		"description": "Перевод организации",
		"from": "Maestro 1596837868705199",
		"to": "Счет 64686473678894779589"
	}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&row))

	tx, err := New(nil).Normalize(0, row, transactions.NestedJSON)
	require.NoError(t, err)

	assert.Equal(t, int64(441945886), tx.ID())
	assert.Equal(t, "RUB", tx.CurrencyCode())
	assert.Equal(t, "руб.", tx.CurrencyName())
	assert.Equal(t, "31957.58", tx.Amount().String())
	assert.Equal(t, time.Date(2019, 8, 26, 10, 50, 58, 294041000, time.UTC), tx.Date())
	assert.Equal(t, "Maestro 1596837868705199", tx.From())
	assert.Equal(t, "Счет 64686473678894779589", tx.To())
}

func TestNormalizeNumericValues(t *testing.T) {
	tx, err := New(nil).Normalize(0, transactions.RawRow{
		"id":     float64(12),
		"status": "pending",
		"date":   "14.03.2023",
		"amount": 99.5,
		"currency": map[string]interface{}{
			"ignored": true,
		},
		"currency_code": "usd",
	}, transactions.FlatTabular)
	require.NoError(t, err)

	assert.Equal(t, int64(12), tx.ID())
	assert.Equal(t, "USD", tx.CurrencyCode())
	assert.Equal(t, "99.5", tx.Amount().String())
	assert.Equal(t, transactions.Pending, tx.Status())
}

func TestNormalizeCurrencyFallback(t *testing.T) {
	tx, err := New(nil).Normalize(0, transactions.RawRow{
		"id":            "5",
		"state":         "CANCELED",
		"date":          "2023-02-01T00:00:00Z",
		"amount":        "-15",
		"currency_name": "EUR",
	}, transactions.FlatTabular)
	require.NoError(t, err)

	assert.Equal(t, "EUR", tx.CurrencyCode())
	assert.Equal(t, "EUR", tx.CurrencyName())
	assert.True(t, tx.Amount().IsNegative())
}

func TestNormalizeDiscards(t *testing.T) {
	valid := func() transactions.RawRow {
		return transactions.RawRow{
			"id":            "1",
			"state":         "EXECUTED",
			"date":          "2023-01-15",
			"amount":        "100.50",
			"currency_code": "RUB",
		}
	}
	with := func(key string, value interface{}) transactions.RawRow {
		row := valid()
		row[key] = value
		return row
	}
	without := func(key string) transactions.RawRow {
		row := valid()
		delete(row, key)
		return row
	}

	tests := []struct {
		name    string
		row     transactions.RawRow
		field   string
		wantErr error
	}{
		{"nil row", nil, "row", ErrMissingField},
		{"missing id", without("id"), "id", ErrMissingField},
		{"missing state", without("state"), "status", ErrMissingField},
		{"blank state", with("state", "  "), "status", ErrMissingField},
		{"null date", with("date", nil), "date", ErrMissingField},
		{"missing amount", without("amount"), "amount", ErrMissingField},
		{"missing currency", without("currency_code"), "currency_code", ErrMissingField},
		{"bad id", with("id", "abc"), "id", ErrTypeCoercion},
		{"fractional id", with("id", 1.5), "id", ErrTypeCoercion},
		{"id at 2^63", with("id", math.Pow(2, 63)), "id", ErrTypeCoercion},
		{"id at -2^63", with("id", -math.Pow(2, 63)), "id", ErrTypeCoercion},
		{"bad amount", with("amount", "not_a_number"), "amount", ErrTypeCoercion},
		{"bad date", with("date", "yesterday"), "date", dates.ErrDateFormat},
		{"numeric status", with("state", true), "status", ErrTypeCoercion},
	}

	n := New(diagnostics.Nop)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := n.Normalize(4, tt.row, transactions.FlatTabular)
			assert.Nil(t, tx)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var discardErr *DiscardError
			require.ErrorAs(t, err, &discardErr)
			assert.Equal(t, 4, discardErr.Row)
			assert.Equal(t, tt.field, discardErr.Field)
		})
	}
}

func TestNormalizeNestedDiscards(t *testing.T) {
	base := func(op interface{}) transactions.RawRow {
		return transactions.RawRow{
			"id":              float64(100),
			"state":           "EXECUTED",
			"date":            "2023-02-01T00:00:00.000000Z",
			"description":     "Без суммы",
			"operationAmount": op,
		}
	}

	tests := []struct {
		name    string
		row     transactions.RawRow
		wantErr error
	}{
		{"null operation amount", base(nil), ErrMissingField},
		{"operation amount not an object", base("100"), ErrTypeCoercion},
		{"empty currency", base(map[string]interface{}{"amount": "100.00", "currency": map[string]interface{}{}}), ErrMissingField},
		{"missing amount", base(map[string]interface{}{"currency": map[string]interface{}{"code": "USD"}}), ErrMissingField},
		{"missing currency", base(map[string]interface{}{"amount": "1"}), ErrMissingField},
	}

	n := New(diagnostics.Nop)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(0, tt.row, transactions.NestedJSON)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeUnknownSchema(t *testing.T) {
	_, err := New(nil).Normalize(0, transactions.RawRow{"id": "1", "state": "x", "date": "2023-01-01"}, transactions.SourceSchema(7))
	assert.ErrorIs(t, err, ErrTypeCoercion)
}

func TestNormalizeBatchContinuesPastBadRows(t *testing.T) {
	c := diagnostics.NewCollector(diagnostics.NewLoggerWithWriter(&bytes.Buffer{}))
	n := New(c)

	txs := n.NormalizeBatch(transactions.Batch{
		Source: "transactions.csv",
		Schema: transactions.FlatTabular,
		Rows: []transactions.RawRow{
			{"id": "1", "state": "EXECUTED", "date": "2023-01-15", "amount": "10", "currency_code": "RUB"},
			{"id": "2", "state": "EXECUTED", "date": "2023-01-16", "amount": "not_a_number", "currency_code": "RUB"},
			nil,
			{"id": "4", "state": "refunded", "date": "2023-01-17", "amount": "30", "currency_code": "USD"},
		},
	})

	require.Len(t, txs, 2)
	assert.Equal(t, int64(1), txs[0].ID())
	assert.Equal(t, int64(4), txs[1].ID())
	assert.Equal(t, transactions.Status("REFUNDED"), txs[1].Status())

	discards := c.Discards()
	require.Len(t, discards, 2)
	assert.Equal(t, 1, discards[0].Row)
	assert.ErrorIs(t, discards[0].Err, ErrTypeCoercion)
	assert.Equal(t, 2, discards[1].Row)
	assert.ErrorIs(t, discards[1].Err, ErrMissingField)

	assert.Len(t, c.Warnings(), 1)
}

func TestDiscardErrorMessage(t *testing.T) {
	err := missing(3, "id")
	assert.Equal(t, `row 3: field "id": missing field`, err.Error())
}
