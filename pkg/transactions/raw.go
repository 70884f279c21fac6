package transactions

import "fmt"

// SourceSchema tells the normalizer which field layout a raw row uses.
type SourceSchema int

const (
	// NestedJSON rows carry the amount and currency in a nested
	// operationAmount{amount, currency{name, code}} object.
	NestedJSON SourceSchema = iota
	// FlatTabular rows come from CSV or spreadsheet columns
	// (amount, currency_code, currency_name).
	FlatTabular
)

func (s SourceSchema) String() string {
	switch s {
	case NestedJSON:
		return "NESTED_JSON"
	case FlatTabular:
		return "FLAT_TABULAR"
	default:
		return fmt.Sprintf("SourceSchema(%d)", int(s))
	}
}

// RawRow is one record as read from a source file. Values are strings,
// numbers (float64, json.Number, ints) or nested maps.
type RawRow map[string]interface{}

// Batch is every raw row read from one source file.
type Batch struct {
	Source string
	Schema SourceSchema
	Rows   []RawRow
}
