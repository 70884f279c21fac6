package bankreport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bcaldwell/bankreport/pkg/config"
	"github.com/bcaldwell/bankreport/pkg/currency"
	"github.com/bcaldwell/bankreport/pkg/diagnostics"
	"github.com/bcaldwell/bankreport/pkg/exporter"
	"github.com/bcaldwell/bankreport/pkg/filters"
	"github.com/bcaldwell/bankreport/pkg/masks"
	"github.com/bcaldwell/bankreport/pkg/postgresutils"
	"github.com/bcaldwell/bankreport/pkg/report"
	"github.com/rs/zerolog"
	"k8s.io/klog"
)

// Env holds what every task needs. Zero values fall back to the loaded
// configuration, stdout and the diagnostics logger carried by the context.
type Env struct {
	Config  *config.Config
	Secrets *config.Secrets
	Out     io.Writer
	Log     *zerolog.Logger
}

type session struct {
	cfg       *config.Config
	secrets   *config.Secrets
	out       io.Writer
	collector *diagnostics.Collector
	masker    *masks.Masker
	converter *currency.Converter
}

func (e Env) session(ctx context.Context) (context.Context, *session) {
	s := &session{
		cfg:     e.Config,
		secrets: e.Secrets,
		out:     e.Out,
	}

	if s.cfg == nil {
		s.cfg = config.CurrentConfig()
	}
	if s.secrets == nil {
		s.secrets = config.CurrentSecrets()
	}
	if s.out == nil {
		s.out = os.Stdout
	}

	var log zerolog.Logger
	if e.Log != nil {
		log = *e.Log
	} else {
		log = diagnostics.FromContext(ctx)
	}

	s.collector = diagnostics.NewCollector(log)
	s.masker = masks.New(s.collector)
	s.converter = NewConverter(s.cfg.Currency, s.secrets.ExchangeRatesAPI)

	return diagnostics.WithContext(ctx, s.collector.Logger()), s
}

func (s *session) load(ctx context.Context) (Result, error) {
	return NewPipeline(s.cfg.Report, s.collector).Run(ctx)
}

func (s *session) summarize() {
	klog.Infof("Run %s finished with %d discarded rows and %d warnings", s.collector.RunID(), len(s.collector.Discards()), len(s.collector.Warnings()))
}

// NewConverter builds the converter for cfg. Without an API key only the
// target currency and static conversions resolve.
func NewConverter(cfg config.CurrencyConfig, secrets config.ExchangeRatesAPISecrets) *currency.Converter {
	opts := currency.Options{
		Target:      cfg.Target,
		Supported:   cfg.Supported,
		Conversions: cfg.Conversions,
	}

	if secrets.APIKey != "" {
		opts.Source = currency.NewAPIClient(cfg.Endpoint, secrets.APIKey)
	} else {
		klog.Warning("EXCHANGE_RATES_API_KEY is not set, only static currency conversions are available")
	}

	return currency.NewConverter(opts)
}

type ReportRunner struct {
	Env Env
}

func (r ReportRunner) Run() error {
	return r.RunContext(context.Background())
}

func (r ReportRunner) RunContext(ctx context.Context) error {
	ctx, s := r.Env.session(ctx)
	defer s.summarize()

	result, err := s.load(ctx)
	if err != nil {
		return err
	}

	printer := report.NewPrinter(s.out, s.masker, s.converter)
	if strings.EqualFold(s.cfg.Report.Format, config.FormatJSON) {
		return printer.PrintJSON(result.Selected)
	}

	s.converter.Prefetch(ctx, currencies(result))

	return printer.Print(ctx, result.Selected)
}

// DescriptionsRunner lists the description of every selected transaction.
type DescriptionsRunner struct {
	Env Env
}

func (r DescriptionsRunner) Run() error {
	return r.RunContext(context.Background())
}

func (r DescriptionsRunner) RunContext(ctx context.Context) error {
	ctx, s := r.Env.session(ctx)
	defer s.summarize()

	result, err := s.load(ctx)
	if err != nil {
		return err
	}

	return report.NewPrinter(s.out, s.masker, nil).PrintDescriptions(filters.Descriptions(result.Selected))
}

type CategoriesRunner struct {
	Env Env
}

func (r CategoriesRunner) Run() error {
	return r.RunContext(context.Background())
}

func (r CategoriesRunner) RunContext(ctx context.Context) error {
	ctx, s := r.Env.session(ctx)
	defer s.summarize()

	result, err := s.load(ctx)
	if err != nil {
		return err
	}

	categories := s.cfg.Report.Categories
	counts := filters.CountByCategory(result.Selected, categories)

	return report.NewPrinter(s.out, s.masker, nil).PrintCategories(counts, categories)
}

type ExportRunner struct {
	Env Env
	// Exporters overrides the sinks built from the configuration.
	Exporters []exporter.Exporter
}

func (r ExportRunner) Run() error {
	return r.RunContext(context.Background())
}

func (r ExportRunner) RunContext(ctx context.Context) error {
	ctx, s := r.Env.session(ctx)
	defer s.summarize()

	result, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.converter.Prefetch(ctx, currencies(result))

	opts := exporter.Options{
		Masker:    s.masker,
		Converter: s.converter,
		RunID:     s.collector.RunID(),
	}

	sinks := r.Exporters
	if sinks == nil {
		sinks, err = configuredExporters(s, opts)
		if err != nil {
			return err
		}
	}

	if len(sinks) == 0 {
		return fmt.Errorf("no export sinks configured")
	}

	var errs []error
	for _, sink := range sinks {
		n, err := sink.Export(ctx, result.Source, result.Selected)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s export: %w", sink.Name(), err))
		} else {
			klog.Infof("Exported %d transactions to %s", n, sink.Name())
		}

		if err := sink.Close(); err != nil {
			klog.Warningf("Error closing %s exporter: %s", sink.Name(), err)
		}
	}

	return errors.Join(errs...)
}

func configuredExporters(s *session, opts exporter.Options) ([]exporter.Exporter, error) {
	sinks := []exporter.Exporter{}
	export := s.cfg.Export

	if s.secrets.DatabaseURL != "" || s.secrets.SQL.SqlHost != "" {
		db, err := postgresutils.CreatePostgresClient(export.SQL.Database)
		if err != nil {
			return nil, fmt.Errorf("error connecting to postgres DB: %w", err)
		}
		klog.Infof("Connected to postgres database %v", export.SQL.Database)
		sinks = append(sinks, exporter.NewSQLExporter(db, export.SQL.Table, export.SQL.BatchSize, opts))
	}

	if s.secrets.Influx.InfluxEndpoint != "" {
		client, err := exporter.CreateInfluxClient(s.secrets.Influx)
		if err != nil {
			for _, sink := range sinks {
				sink.Close()
			}
			return nil, fmt.Errorf("error creating InfluxDB client: %w", err)
		}
		sinks = append(sinks, exporter.NewInfluxExporter(client, export.Influx.Database, export.Influx.Measurement, opts))
	}

	return sinks, nil
}

func currencies(result Result) []string {
	codes := make([]string, 0, len(result.Selected))
	for _, tx := range result.Selected {
		codes = append(codes, tx.CurrencyCode())
	}
	return codes
}
