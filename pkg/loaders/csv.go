package loaders

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/bcaldwell/bankreport/pkg/transactions"
)

const utf8BOM = "\ufeff"

func decodeCSV(data []byte, opts Options) ([]transactions.RawRow, error) {
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	delimiter, err := csvDelimiter(data, opts.Delimiter)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return []transactions.RawRow{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to parse csv header: %w", err)
	}

	headerMap := generateHeaderMap(header)

	rows := []transactions.RawRow{}
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to parse csv row %d: %w", len(rows)+1, err)
		}

		rows = append(rows, recordToRow(line, headerMap))
	}

	return rows, nil
}

// csvDelimiter picks ';' when the header line has more semicolons than commas.
func csvDelimiter(data []byte, configured string) (rune, error) {
	switch configured {
	case "", "auto":
	default:
		r, size := utf8.DecodeRuneInString(configured)
		if size != len(configured) || r == '\n' || r == '"' {
			return 0, fmt.Errorf("invalid csv delimiter %q", configured)
		}
		return r, nil
	}

	line, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';', nil
	}
	return ',', nil
}

// generateHeaderMap maps each lower-cased, trimmed header name to its column.
// The first occurrence of a duplicated name wins.
func generateHeaderMap(record []string) map[string]int {
	m := make(map[string]int, len(record))
	for i, r := range record {
		name := strings.ToLower(strings.TrimSpace(r))
		if name == "" {
			continue
		}
		if _, ok := m[name]; !ok {
			m[name] = i
		}
	}
	return m
}

func recordToRow(record []string, headerMap map[string]int) transactions.RawRow {
	row := make(transactions.RawRow, len(headerMap))
	for name, i := range headerMap {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row
}
