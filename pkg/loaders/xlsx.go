package loaders

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/bcaldwell/bankreport/pkg/transactions"
	"github.com/xuri/excelize/v2"
)

var errNoSheets = errors.New("workbook has no sheets")

// Spreadsheet date cells carry serial numbers; they are rewritten into the
// ISO grammar the date parser accepts.
const xlsxDateColumn = "date"

const xlsxDateLayout = "2006-01-02T15:04:05"

func decodeXLSX(data []byte, opts Options) ([]transactions.RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errNoSheets
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	if len(records) == 0 {
		return []transactions.RawRow{}, nil
	}

	headerMap := generateHeaderMap(records[0])

	rows := make([]transactions.RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		// blank lines keep their index so discards point at the sheet row
		if len(record) == 0 {
			rows = append(rows, nil)
			continue
		}

		row := recordToRow(record, headerMap)
		if v, ok := row[xlsxDateColumn].(string); ok {
			row[xlsxDateColumn] = excelDate(v)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func excelDate(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}

	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}

	return t.Format(xlsxDateLayout)
}
