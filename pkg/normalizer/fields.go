package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bcaldwell/bankreport/pkg/dates"
	"github.com/bcaldwell/bankreport/pkg/transactions"
	"github.com/shopspring/decimal"
)

// lookup returns the first of keys holding a present, non-null, non-blank value.
func lookup(m map[string]interface{}, keys ...string) (interface{}, string, bool) {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, key, true
	}
	return nil, keys[0], false
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case transactions.RawRow:
		return m, true
	default:
		return nil, false
	}
}

// stringValue renders scalar values as text. Nested values are rejected.
func stringValue(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}

func optionalString(m map[string]interface{}, keys ...string) string {
	v, _, ok := lookup(m, keys...)
	if !ok {
		return ""
	}
	s, _ := stringValue(v)
	return s
}

func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		return i, err == nil
	case json.Number:
		i, err := val.Int64()
		return i, err == nil
	case float64:
		if val != math.Trunc(val) || math.Abs(val) >= math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case int:
		return int64(val), true
	case int64:
		return val, true
	case int32:
		return int64(val), true
	default:
		return 0, false
	}
}

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return d, err == nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	default:
		return decimal.Zero, false
	}
}

func toInstant(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	default:
		s, ok := stringValue(v)
		if !ok {
			return time.Time{}, dates.ErrDateFormat
		}
		return dates.Parse(s)
	}
}
