// Package exporter writes canonical transactions to external sinks. Parties
// are always masked before they leave the process.
package exporter

import (
	"context"
	"fmt"

	"github.com/bcaldwell/bankreport/pkg/currency"
	"github.com/bcaldwell/bankreport/pkg/masks"
	"github.com/bcaldwell/bankreport/pkg/transactions"
	"github.com/shopspring/decimal"
)

type Exporter interface {
	Name() string
	Export(ctx context.Context, source string, txs []*transactions.Transaction) (int, error)
	Close() error
}

type Options struct {
	Masker *masks.Masker
	// Converter is optional; without it converted amounts are left empty.
	Converter *currency.Converter
	RunID     string
}

// record is the sink independent view of a transaction.
type record struct {
	key            string
	source         string
	tx             *transactions.Transaction
	from           string
	to             string
	converted      decimal.NullDecimal
	targetCurrency string
}

func Key(source string, id int64) string {
	return fmt.Sprintf("%s::%d", source, id)
}

func buildRecord(ctx context.Context, opts Options, source string, tx *transactions.Transaction) record {
	masker := opts.Masker
	if masker == nil {
		masker = masks.New(nil)
	}

	r := record{
		key:    Key(source, tx.ID()),
		source: source,
		tx:     tx,
	}

	if tx.From() != "" {
		r.from = masker.Mask(tx.From())
	}
	if tx.To() != "" {
		r.to = masker.Mask(tx.To())
	}

	if opts.Converter != nil {
		r.targetCurrency = opts.Converter.Target()
		converted, err := opts.Converter.Convert(ctx, tx.Amount(), tx.CurrencyCode())
		if err == nil {
			r.converted = decimal.NullDecimal{Decimal: converted.Round(2), Valid: true}
		}
	}

	return r
}
