package exporter

import (
	"context"
	"fmt"

	"github.com/bcaldwell/bankreport/pkg/config"
	"github.com/bcaldwell/bankreport/pkg/transactions"
	influx "github.com/influxdata/influxdb/client/v2"
	"k8s.io/klog"
)

func CreateInfluxClient(secrets config.InfluxSecrets) (influx.Client, error) {
	return influx.NewHTTPClient(influx.HTTPConfig{
		Addr:     secrets.InfluxEndpoint,
		Username: secrets.InfluxUsername,
		Password: secrets.InfluxPassword,
	})
}

type InfluxExporter struct {
	client      influx.Client
	database    string
	measurement string
	opts        Options
}

func NewInfluxExporter(client influx.Client, database, measurement string, opts Options) *InfluxExporter {
	return &InfluxExporter{
		client:      client,
		database:    database,
		measurement: measurement,
		opts:        opts,
	}
}

func (e *InfluxExporter) Name() string {
	return "influx"
}

func (e *InfluxExporter) Export(ctx context.Context, source string, txs []*transactions.Transaction) (int, error) {
	if err := e.createDatabase(); err != nil {
		return 0, err
	}

	bp, err := e.batch(ctx, source, txs)
	if err != nil {
		return 0, err
	}

	if err := e.client.Write(bp); err != nil {
		return 0, fmt.Errorf("error writing to influx: %w", err)
	}

	klog.Infof("Wrote %d points from %s to influx measurement %s", len(bp.Points()), source, e.measurement)

	return len(bp.Points()), nil
}

func (e *InfluxExporter) batch(ctx context.Context, source string, txs []*transactions.Transaction) (influx.BatchPoints, error) {
	bp, err := influx.NewBatchPoints(influx.BatchPointsConfig{
		Database:  e.database,
		Precision: "s",
	})
	if err != nil {
		return nil, fmt.Errorf("error creating batch points: %w", err)
	}

	for _, tx := range txs {
		pt, err := e.point(buildRecord(ctx, e.opts, source, tx))
		if err != nil {
			return nil, fmt.Errorf("error adding new point: %w", err)
		}
		bp.AddPoint(pt)
	}

	return bp, nil
}

func (e *InfluxExporter) point(r record) (*influx.Point, error) {
	tags := map[string]string{
		"source":   r.source,
		"status":   r.tx.Status().String(),
		"currency": r.tx.CurrencyCode(),
	}

	amount, _ := r.tx.Amount().Float64()
	fields := map[string]interface{}{
		"key":         r.key,
		"id":          r.tx.ID(),
		"amount":      amount,
		"description": r.tx.Description(),
		"from":        r.from,
		"to":          r.to,
	}

	if r.converted.Valid {
		converted, _ := r.converted.Decimal.Float64()
		fields["converted_amount"] = converted
		tags["target_currency"] = r.targetCurrency
	}

	if e.opts.RunID != "" {
		fields["run_id"] = e.opts.RunID
	}

	return influx.NewPoint(e.measurement, tags, fields, r.tx.Date())
}

func (e *InfluxExporter) createDatabase() error {
	q := influx.NewQuery(fmt.Sprintf("CREATE DATABASE %q", e.database), "", "")
	response, err := e.client.Query(q)
	if err != nil {
		return fmt.Errorf("error creating influx database %s: %w", e.database, err)
	}
	if response.Error() != nil {
		return fmt.Errorf("error creating influx database %s: %w", e.database, response.Error())
	}
	return nil
}

func (e *InfluxExporter) Close() error {
	return e.client.Close()
}
