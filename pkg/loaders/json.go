package loaders

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bcaldwell/bankreport/pkg/transactions"
)

// decodeJSON expects a top-level list. Elements that are not objects become
// nil rows so row indices stay aligned with the file.
func decodeJSON(data []byte, _ Options) ([]transactions.RawRow, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var items []interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("expected a list of transactions: %w", err)
	}

	rows := make([]transactions.RawRow, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, transactions.RawRow(obj))
	}

	return rows, nil
}
