package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Exact names the sensor app is known to emit for its time column.
var timestampExactNames = []string{
	"时间",
	"时间戳",
	"timestamp",
	"时间（秒）",
	"Time",
	"time",
}

// Common timestamp formats to try, most specific first. time.Parse accepts
// trailing fractional seconds even when the layout omits them.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02-Jan-2006",
}

// ResolveTimestampColumn picks the timestamp column: the first column, in
// schema order, whose name exactly matches a known time name, contains 时间,
// or case-insensitively contains "time". Resolution looks at names only and
// is idempotent; whether the values actually parse is ParseTimes' job.
func ResolveTimestampColumn(columns []string) string {
	for _, col := range columns {
		if isTimestampName(col) {
			return col
		}
	}
	return ""
}

func isTimestampName(col string) bool {
	for _, exact := range timestampExactNames {
		if col == exact {
			return true
		}
	}
	if strings.Contains(col, "时间") {
		return true
	}
	lower := strings.ToLower(col)
	return strings.Contains(lower, "time") || strings.Contains(lower, "timestamp")
}

// ParseTime parses a single timestamp value, trying the layout list and then
// unix seconds/milliseconds.
func ParseTime(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty timestamp value")
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}

	// Unix epoch fallback: the app sometimes exports 时间（秒） as raw seconds
	if unixVal, err := strconv.ParseInt(v, 10, 64); err == nil {
		switch {
		case unixVal > 0 && unixVal < 2147483647: // seconds
			return time.Unix(unixVal, 0), nil
		case unixVal >= 1000000000000 && unixVal < 4000000000000: // milliseconds
			return time.UnixMilli(unixVal), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// ParseTimes parses every value of a candidate timestamp column. Parsing is
// all-or-nothing: one bad value fails the whole column, and the caller falls
// back to sequence positions.
func ParseTimes(values []string) ([]time.Time, error) {
	times := make([]time.Time, len(values))
	for i, v := range values {
		t, err := ParseTime(v)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		times[i] = t
	}
	return times, nil
}
