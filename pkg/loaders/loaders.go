// Package loaders reads transaction source files into raw row batches.
package loaders

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bcaldwell/bankreport/pkg/transactions"
	"k8s.io/klog"
)

var (
	ErrSourceNotFound    = errors.New("source not found")
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

type Options struct {
	// Sheet selects the spreadsheet sheet, the first sheet when empty.
	Sheet string
	// Delimiter is the CSV field separator. Empty or "auto" detects ';' or ','
	// from the header line.
	Delimiter string
}

type decoder func(data []byte, opts Options) ([]transactions.RawRow, error)

type format struct {
	schema transactions.SourceSchema
	decode decoder
}

var formats = map[string]format{
	".json": {transactions.NestedJSON, decodeJSON},
	".csv":  {transactions.FlatTabular, decodeCSV},
	".xlsx": {transactions.FlatTabular, decodeXLSX},
}

// Load reads uri, a local path or a gs://bucket/object URL, and decodes it
// according to its extension.
func Load(ctx context.Context, uri string, opts Options) (transactions.Batch, error) {
	f, err := formatOf(uri)
	if err != nil {
		return transactions.Batch{}, err
	}

	data, err := read(ctx, uri)
	if err != nil {
		return transactions.Batch{}, err
	}

	rows, err := f.decode(data, opts)
	if err != nil {
		return transactions.Batch{}, fmt.Errorf("failed to decode %s: %w", uri, err)
	}

	klog.Infof("Loaded %d rows from %s", len(rows), uri)

	return transactions.Batch{
		Source: uri,
		Schema: f.schema,
		Rows:   rows,
	}, nil
}

func formatOf(uri string) (format, error) {
	ext := strings.ToLower(path.Ext(uri))
	f, ok := formats[ext]
	if !ok {
		return format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, uri)
	}
	return f, nil
}

func read(ctx context.Context, uri string) ([]byte, error) {
	if bucket, object, ok := parseGCSURI(uri); ok {
		return downloadObject(ctx, bucket, object)
	}

	data, err := os.ReadFile(uri)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, uri)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}

	return data, nil
}
