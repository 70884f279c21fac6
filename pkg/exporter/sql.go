package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/bcaldwell/bankreport/pkg/postgresutils"
	"github.com/bcaldwell/bankreport/pkg/transactions"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"k8s.io/klog"
)

const defaultBatchSize = 500

type SQLTransaction struct {
	bun.BaseModel    `bun:"table:transactions"`
	Key              string `bun:",pk"`
	Source           string
	TransactionID    int64
	TransactionDate  time.Time
	TransactionMonth time.Time
	Description      string `bun:"type:text"`
	Status           string
	Currency         string
	CurrencyName     string
	Amount           decimal.Decimal     `bun:"type:numeric"`
	ConvertedAmount  decimal.NullDecimal `bun:"type:numeric"`
	TargetCurrency   string
	FromParty        string
	ToParty          string
	RunID            string
	UpdatedAt        time.Time
}

type SQLExporter struct {
	db        *bun.DB
	table     string
	batchSize int
	opts      Options
	now       func() time.Time
}

func NewSQLExporter(db *bun.DB, table string, batchSize int, opts Options) *SQLExporter {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &SQLExporter{
		db:        db,
		table:     table,
		batchSize: batchSize,
		opts:      opts,
		now:       time.Now,
	}
}

func (e *SQLExporter) Name() string {
	return "sql"
}

func (e *SQLExporter) Export(ctx context.Context, source string, txs []*transactions.Transaction) (int, error) {
	if err := e.migrate(ctx); err != nil {
		return 0, fmt.Errorf("error creating table %s: %w", e.table, err)
	}

	rows := make([]SQLTransaction, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, e.row(buildRecord(ctx, e.opts, source, tx)))
	}

	set := postgresutils.TableSetString(e.db, (*SQLTransaction)(nil), "key")

	written := 0
	for start := 0; start < len(rows); start += e.batchSize {
		end := min(start+e.batchSize, len(rows))
		chunk := rows[start:end]

		_, err := e.db.NewInsert().
			Model(&chunk).
			ModelTableExpr("?", bun.Ident(e.table)).
			On("CONFLICT (key) DO UPDATE").
			Set(set).
			Exec(ctx)
		if err != nil {
			return written, fmt.Errorf("error writing to sql: %w", err)
		}

		written += len(chunk)
	}

	klog.Infof("Wrote %d transactions from %s to sql table %s", written, source, e.table)

	return written, nil
}

func (e *SQLExporter) migrate(ctx context.Context) error {
	_, err := e.db.NewCreateTable().
		Model((*SQLTransaction)(nil)).
		ModelTableExpr("?", bun.Ident(e.table)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (e *SQLExporter) row(r record) SQLTransaction {
	t := r.tx.Date()

	return SQLTransaction{
		Key:              r.key,
		Source:           r.source,
		TransactionID:    r.tx.ID(),
		TransactionDate:  t,
		TransactionMonth: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()),
		Description:      r.tx.Description(),
		Status:           r.tx.Status().String(),
		Currency:         r.tx.CurrencyCode(),
		CurrencyName:     r.tx.CurrencyName(),
		Amount:           r.tx.Amount(),
		ConvertedAmount:  r.converted,
		TargetCurrency:   r.targetCurrency,
		FromParty:        r.from,
		ToParty:          r.to,
		RunID:            e.opts.RunID,
		UpdatedAt:        e.now().UTC(),
	}
}

func (e *SQLExporter) Close() error {
	return e.db.Close()
}
