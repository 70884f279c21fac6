// Package bankreport wires loading, normalization, filtering and sorting into
// the report, categories and export tasks.
package bankreport

import (
	"context"
	"errors"
	"strings"

	"github.com/bcaldwell/bankreport/pkg/config"
	"github.com/bcaldwell/bankreport/pkg/dates"
	"github.com/bcaldwell/bankreport/pkg/diagnostics"
	"github.com/bcaldwell/bankreport/pkg/filters"
	"github.com/bcaldwell/bankreport/pkg/loaders"
	"github.com/bcaldwell/bankreport/pkg/normalizer"
	"github.com/bcaldwell/bankreport/pkg/transactions"
	"k8s.io/klog"
)

const component = "pipeline"

type Result struct {
	Source string
	// Rows is the number of raw rows read from the source.
	Rows int
	// Normalized holds every canonical transaction in source order.
	Normalized []*transactions.Transaction
	// Selected is Normalized after filters and sorting.
	Selected []*transactions.Transaction
}

type Pipeline struct {
	report     config.ReportConfig
	rec        diagnostics.Recorder
	normalizer *normalizer.Normalizer
}

func NewPipeline(report config.ReportConfig, rec diagnostics.Recorder) *Pipeline {
	if rec == nil {
		rec = diagnostics.Nop
	}

	return &Pipeline{
		report:     report,
		rec:        rec,
		normalizer: normalizer.New(rec),
	}
}

// Run loads the configured source and returns the selected transactions. A
// missing source is the only error that stops a run; anything else unreadable
// is recorded and yields an empty result.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	result := Result{Source: p.report.Source}

	batch, err := loaders.Load(ctx, p.report.Source, loaders.Options{
		Sheet:     p.report.Sheet,
		Delimiter: p.report.CSVDelimiter,
	})
	if errors.Is(err, loaders.ErrSourceNotFound) {
		return result, err
	} else if err != nil {
		klog.Errorf("Failed to load %s: %s", p.report.Source, err)
		p.rec.Warn(component, "source could not be loaded", map[string]interface{}{"source": p.report.Source, "error": err.Error()})
		batch = transactions.Batch{Source: p.report.Source}
	}

	result.Rows = len(batch.Rows)
	result.Normalized = p.normalizer.NormalizeBatch(batch)
	result.Selected = p.Select(result.Normalized)

	logger := diagnostics.FromContext(ctx)
	logger.Info().
		Str("source", p.report.Source).
		Int("rows", result.Rows).
		Int("normalized", len(result.Normalized)).
		Int("selected", len(result.Selected)).
		Msg("batch normalized")

	return result, nil
}

// Select applies the configured filters in a fixed order then sorts.
func (p *Pipeline) Select(txs []*transactions.Transaction) []*transactions.Transaction {
	selected := txs

	if status := strings.TrimSpace(p.report.Status); status != "" {
		if !transactions.ParseStatus(status).Known() {
			p.rec.Warn(component, "filtering by unknown status", map[string]interface{}{"status": status})
		}
		selected = filters.ByStatus(selected, status)
	}

	if code := strings.TrimSpace(p.report.Currency); code != "" {
		selected = filters.ByCurrency(selected, code)
	}

	if day := strings.TrimSpace(p.report.Date); day != "" {
		d, err := dates.ParseDay(day)
		if err != nil {
			p.rec.Warn(component, "date filter not applied", map[string]interface{}{"date": day, "error": err.Error()})
		} else {
			selected = filters.ByDay(selected, d)
		}
	}

	if p.report.Search != "" {
		found, err := filters.FindByDescription(selected, p.report.Search)
		if err != nil {
			p.rec.Warn(component, "invalid search pattern", map[string]interface{}{"pattern": p.report.Search, "error": err.Error()})
		}
		selected = found
	}

	switch strings.ToLower(p.report.Sort) {
	case config.SortAscending:
		selected = filters.SortByDate(selected, false)
	case config.SortDescending:
		selected = filters.SortByDate(selected, true)
	}

	return selected
}
