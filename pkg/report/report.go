// Package report prints transactions for a terminal. Identifiers are masked
// here and nowhere earlier.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bcaldwell/bankreport/pkg/currency"
	"github.com/bcaldwell/bankreport/pkg/masks"
	"github.com/bcaldwell/bankreport/pkg/transactions"
	"github.com/fatih/color"
)

const (
	dateLayout       = "02.01.2006"
	separator        = "------------------------------"
	emptySelection   = "No transactions match the selected filters"
	unresolvedAmount = "unresolved"
)

var statusColors = map[transactions.Status]*color.Color{
	transactions.Executed: color.New(color.FgGreen),
	transactions.Canceled: color.New(color.FgRed),
	transactions.Pending:  color.New(color.FgYellow),
}

var (
	headerColor = color.New(color.Bold)
	dateColor   = color.New(color.FgCyan)
)

type Printer struct {
	out       io.Writer
	masker    *masks.Masker
	converter *currency.Converter
}

// NewPrinter writes to out. converter may be nil, in which case only the
// original amount is shown.
func NewPrinter(out io.Writer, masker *masks.Masker, converter *currency.Converter) *Printer {
	if masker == nil {
		masker = masks.New(nil)
	}

	return &Printer{out: out, masker: masker, converter: converter}
}

func (p *Printer) Print(ctx context.Context, txs []*transactions.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(p.out, emptySelection)
		return err
	}

	if _, err := headerColor.Fprintf(p.out, "Total transactions in selection: %d\n\n", len(txs)); err != nil {
		return err
	}

	for _, tx := range txs {
		if err := p.printTransaction(ctx, tx); err != nil {
			return err
		}
	}

	return nil
}

func (p *Printer) printTransaction(ctx context.Context, tx *transactions.Transaction) error {
	var b strings.Builder

	b.WriteString(dateColor.Sprint(tx.Date().Format(dateLayout)))
	b.WriteString(" " + tx.Description() + "\n")

	if parties := p.parties(tx); parties != "" {
		b.WriteString(parties + "\n")
	}

	fmt.Fprintf(&b, "Status: %s\n", statusWord(tx.Status()))
	fmt.Fprintf(&b, "Amount: %s %s\n", tx.Amount().String(), tx.CurrencyCode())

	if p.converter != nil && !strings.EqualFold(tx.CurrencyCode(), p.converter.Target()) {
		converted, err := p.converter.Convert(ctx, tx.Amount(), tx.CurrencyCode())
		switch {
		case err == nil:
			fmt.Fprintf(&b, "In %s: %s\n", p.converter.Target(), converted.StringFixed(2))
		case errors.Is(err, currency.ErrUnresolvedRate):
			fmt.Fprintf(&b, "In %s: %s\n", p.converter.Target(), unresolvedAmount)
		default:
			return err
		}
	}

	b.WriteString(separator + "\n")

	_, err := io.WriteString(p.out, b.String())
	return err
}

// parties renders "from -> to", or only the destination when the source is
// empty, for example when a deposit is opened.
func (p *Printer) parties(tx *transactions.Transaction) string {
	var from, to string
	if tx.From() != "" {
		from = p.masker.Mask(tx.From())
	}
	if tx.To() != "" {
		to = p.masker.Mask(tx.To())
	}

	switch {
	case from != "" && to != "":
		return from + " -> " + to
	case to != "":
		return to
	default:
		return from
	}
}

func statusWord(s transactions.Status) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(s.String())
	}
	return s.String()
}

// PrintCategories prints one "category: count" line per category in order.
// Categories missing from counts print as zero.
func (p *Printer) PrintCategories(counts map[string]int, order []string) error {
	if len(order) == 0 {
		_, err := fmt.Fprintln(p.out, "No categories configured")
		return err
	}

	if _, err := headerColor.Fprintln(p.out, "Transactions per category:"); err != nil {
		return err
	}

	for _, category := range order {
		if _, err := fmt.Fprintf(p.out, "  %s: %d\n", category, counts[category]); err != nil {
			return err
		}
	}

	return nil
}

// PrintJSON writes txs as an indented JSON array with identifiers masked.
func (p *Printer) PrintJSON(txs []*transactions.Transaction) error {
	masked := make([]*transactions.Transaction, 0, len(txs))
	for _, tx := range txs {
		f := tx.Fields()
		if f.From != "" {
			f.From = p.masker.Mask(f.From)
		}
		if f.To != "" {
			f.To = p.masker.Mask(f.To)
		}
		masked = append(masked, transactions.New(f))
	}

	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(masked)
}

func (p *Printer) PrintDescriptions(descriptions []string) error {
	if len(descriptions) == 0 {
		_, err := fmt.Fprintln(p.out, emptySelection)
		return err
	}

	if _, err := headerColor.Fprintf(p.out, "Descriptions in selection: %d\n", len(descriptions)); err != nil {
		return err
	}

	for _, d := range descriptions {
		if _, err := fmt.Fprintf(p.out, "  %s\n", d); err != nil {
			return err
		}
	}

	return nil
}
