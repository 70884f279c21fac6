package transactions

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the canonical record produced by the normalizer. It has no
// setters: filtering and sorting hand out the same pointers in new slices.
type Transaction struct {
	id           int64
	description  string
	amount       decimal.Decimal
	currencyCode string
	currencyName string
	date         time.Time
	status       Status
	from         string
	to           string
}

// Fields holds already coerced values used to build a Transaction.
type Fields struct {
	ID           int64
	Description  string
	Amount       decimal.Decimal
	CurrencyCode string
	CurrencyName string
	Date         time.Time
	Status       Status
	From         string
	To           string
}

func New(f Fields) *Transaction {
	return &Transaction{
		id:           f.ID,
		description:  f.Description,
		amount:       f.Amount,
		currencyCode: f.CurrencyCode,
		currencyName: f.CurrencyName,
		date:         f.Date,
		status:       f.Status,
		from:         f.From,
		to:           f.To,
	}
}

func (t *Transaction) ID() int64 {
	return t.id
}

func (t *Transaction) Description() string {
	return t.description
}

func (t *Transaction) Amount() decimal.Decimal {
	return t.amount
}

func (t *Transaction) CurrencyCode() string {
	return t.currencyCode
}

// CurrencyName is the display label of the currency, empty when the source had none.
func (t *Transaction) CurrencyName() string {
	return t.currencyName
}

// Date is the canonical instant. Date-only sources are at midnight UTC.
func (t *Transaction) Date() time.Time {
	return t.date
}

func (t *Transaction) Status() Status {
	return t.status
}

// From is the unmasked payment source, empty when absent.
func (t *Transaction) From() string {
	return t.from
}

// To is the unmasked payment destination, empty when absent.
func (t *Transaction) To() string {
	return t.to
}

// Fields returns a copy of the record's values.
func (t *Transaction) Fields() Fields {
	return Fields{
		ID:           t.id,
		Description:  t.description,
		Amount:       t.amount,
		CurrencyCode: t.currencyCode,
		CurrencyName: t.currencyName,
		Date:         t.date,
		Status:       t.status,
		From:         t.from,
		To:           t.to,
	}
}

type jsonTransaction struct {
	ID           int64           `json:"id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	CurrencyName string          `json:"currency_name,omitempty"`
	Date         time.Time       `json:"date"`
	Status       Status          `json:"status"`
	From         string          `json:"from"`
	To           string          `json:"to"`
}

func (t *Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonTransaction(t.Fields()))
}
