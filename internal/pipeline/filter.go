package pipeline

import (
	"fmt"
	"time"

	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/domain/view"
)

// minuteTail widens a minute-precision range end so the whole final minute is
// included: 13:05 means "through 13:05:59.999999".
const minuteTail = 59*time.Second + 999999*time.Microsecond

// Engine applies the filter stages to one dataset. Stages run strictly in
// order: in-ear, user, ear side, time range, then the value-anomaly
// exclusion. Stages whose column is absent from the schema skip themselves.
type Engine struct {
	ds *dataset.Dataset
}

// NewEngine creates a filter engine bound to a dataset.
func NewEngine(ds *dataset.Dataset) *Engine {
	return &Engine{ds: ds}
}

// Filtered runs stages 1-4 and returns the rows used for summary counts and
// CSV export, plus any warnings (a skipped time stage is a warning, never an
// error).
func (e *Engine) Filtered(f view.FilterState) ([]dataset.Row, []string) {
	var warnings []string

	rows := e.ds.Rows
	rows = e.applyInclusion(rows, dataset.ColInEar, f.InEar)
	rows = e.applyUser(rows, f.User)
	rows = e.applyInclusion(rows, dataset.ColEarSide, f.EarSide)
	rows, timeWarning := e.applyTimeRange(rows, f)
	if timeWarning != "" {
		warnings = append(warnings, timeWarning)
	}

	return rows, warnings
}

// Clean runs stage 5: drops rows whose metric values exceed the anomaly
// threshold or do not parse. The result feeds pagination and charting only;
// counts and export keep seeing the pre-clean rows.
func (e *Engine) Clean(rows []dataset.Row) []dataset.Row {
	out := make([]dataset.Row, 0, len(rows))
	for _, row := range rows {
		if e.ds.IsClean(row) {
			out = append(out, row)
		}
	}
	return out
}

// applyInclusion keeps rows whose column value is in the selected set. An
// empty selection is the widget default "all values" and filters nothing.
func (e *Engine) applyInclusion(rows []dataset.Row, column string, selected []string) []dataset.Row {
	if len(selected) == 0 || !e.ds.HasColumn(column) {
		return rows
	}
	want := make(map[string]bool, len(selected))
	for _, v := range selected {
		want[v] = true
	}
	out := make([]dataset.Row, 0, len(rows))
	for _, row := range rows {
		if want[row.Value(column)] {
			out = append(out, row)
		}
	}
	return out
}

// applyUser keeps rows whose user cell equals the selection exactly. The
// wildcard 全部 (or an empty selection) filters nothing.
func (e *Engine) applyUser(rows []dataset.Row, user string) []dataset.Row {
	if user == "" || user == dataset.AllUsers || !e.ds.HasColumn(dataset.ColUser) {
		return rows
	}
	out := make([]dataset.Row, 0, len(rows))
	for _, row := range rows {
		if row.Value(dataset.ColUser) == user {
			out = append(out, row)
		}
	}
	return out
}

// applyTimeRange keeps rows inside the closed range [start, end']. The stage
// skips itself, with a warning, when the range is unusable: no resolved
// timestamp column, or start after end.
func (e *Engine) applyTimeRange(rows []dataset.Row, f view.FilterState) ([]dataset.Row, string) {
	if !f.HasTimeRange() {
		return rows, ""
	}
	if !e.ds.HasTimes() {
		return rows, "time filter ignored: dataset has no usable timestamp column"
	}

	start := *f.Start
	end := ExtendEndOfMinute(*f.End)
	if end.Before(start) {
		return rows, fmt.Sprintf("time filter ignored: start %s is after end %s",
			start.Format("2006-01-02 15:04:05"), f.End.Format("2006-01-02 15:04:05"))
	}

	out := make([]dataset.Row, 0, len(rows))
	for _, row := range rows {
		t, ok := e.ds.TimeAt(row.Index)
		if !ok {
			continue
		}
		if !t.Before(start) && !t.After(end) {
			out = append(out, row)
		}
	}
	return out, ""
}

// ExtendEndOfMinute widens a range end given with minute precision (zero
// seconds, zero subseconds) to cover its whole minute. Ends already carrying
// seconds are used as-is.
func ExtendEndOfMinute(end time.Time) time.Time {
	if end.Second() == 0 && end.Nanosecond() == 0 {
		return end.Add(minuteTail)
	}
	return end
}
