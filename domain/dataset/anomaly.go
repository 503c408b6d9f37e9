package dataset

import (
	"math"
	"strconv"
	"strings"
)

// ValueAnomalyThreshold is the percent ceiling. A row whose DIF or RAW value
// exceeds it is treated as a sensor glitch and removed before pagination and
// charting. This threshold signal is independent of the explicit flag column:
// it never drives segmentation.
const ValueAnomalyThreshold = 1000.0

// Substrings that mark a column as the explicit anomaly flag.
var flagColumnMarkers = []string{"异常", "abnormal"}

// Flag cell values that mean "anomalous", compared lower-cased.
var truthyFlagValues = map[string]bool{
	"是":     true,
	"yes":   true,
	"true":  true,
	"异常":    true,
	"1":     true,
	"error": true,
	"err":   true,
}

// ParsePercent parses a percent-style metric cell: surrounding space and one
// trailing % are stripped, the rest must be a float. ok is false for values
// that do not parse; such rows are never flagged anomalous, they just drop
// out of the charted set.
func ParsePercent(value string) (float64, bool) {
	v := strings.TrimSpace(value)
	v = strings.TrimSuffix(v, "%")
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// IsValueAnomalous reports whether a parsed metric value exceeds the
// threshold.
func IsValueAnomalous(v float64) bool {
	return v > ValueAnomalyThreshold
}

// DetectFlagColumn returns the first column, in schema order, whose name
// contains 异常 or abnormal (case-insensitive). Empty when none.
func DetectFlagColumn(columns []string) string {
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, marker := range flagColumnMarkers {
			if strings.Contains(lower, marker) {
				return col
			}
		}
	}
	return ""
}

// FlagTruthy reports whether an explicit flag cell marks its row anomalous.
func FlagTruthy(value string) bool {
	return truthyFlagValues[strings.ToLower(strings.TrimSpace(value))]
}

// ExplicitFlag reports the explicit anomaly status of a row. Always false
// when the dataset has no flag column: the threshold signal does not feed
// segmentation.
func (d *Dataset) ExplicitFlag(row Row) bool {
	if d.FlagColumn == "" {
		return false
	}
	return FlagTruthy(row.Value(d.FlagColumn))
}

// MetricValue parses a metric column of a row.
func (d *Dataset) MetricValue(row Row, column string) (float64, bool) {
	return ParsePercent(row.Value(column))
}

// IsClean reports whether a row survives the value-anomaly exclusion: for
// each metric column present in the schema, the value must parse and stay at
// or under the threshold. Rows failing this never reach pagination or charts
// but remain in the filtered set used for counts and export.
func (d *Dataset) IsClean(row Row) bool {
	for _, col := range []string{ColDIF, ColRAW} {
		if !d.HasColumn(col) {
			continue
		}
		v, ok := ParsePercent(row.Value(col))
		if !ok || IsValueAnomalous(v) {
			return false
		}
	}
	return true
}
