package record

import (
	"math"
	"strconv"
	"strings"

	"github.com/tair/stockroom/internal/storage"
)

// IntValue coerces a field value to an integer. Accepts any numeric type the
// JSON layer produces plus numeric strings; fractional values are rejected.
// Entities layer their own range rules on top.
func IntValue(v any) (int64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return integral(f)
	}
	n, ok := storage.AsNumber(v)
	if !ok {
		return 0, false
	}
	return integral(n)
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// StringValue returns v as a string when it is one.
func StringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
