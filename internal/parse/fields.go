package parse

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// String returns m[key] when it is a string, "" otherwise.
func String(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Text flattens m[key] into a single string for storage.
// Strings pass through; lists and objects are JSON-encoded; numbers and
// booleans use their literal form; absent or null yields "".
func Text(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []any, map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int extracts an integer from m[key].
// Accepts JSON numbers, Go numeric types, and numeric strings; fractional
// values are truncated toward zero. Returns (0, false) when absent or unusable.
func Int(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		if f, err := v.Float64(); err == nil {
			return truncate(f)
		}
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return truncate(v)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return truncate(f)
		}
	}
	return 0, false
}

func truncate(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(math.Trunc(f)), true
}
