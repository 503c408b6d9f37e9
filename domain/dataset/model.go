package dataset

import (
	"time"

	"github.com/BurningYang107/sensor-data-viewer/domain/core"
)

// Well-known column names emitted by the sensor logging app. Column matching
// is exact text; files are expected to carry these headers verbatim.
const (
	ColInEar   = "是否入耳"
	ColUser    = "用户名"
	ColEarSide = "左右耳"
	ColMAC     = "MAC地址"
	ColDIF     = "DIF百分比"
	ColRAW     = "RAW百分比"
)

// AllUsers is the user-filter wildcard; selecting it disables the user stage.
const AllUsers = "全部"

// In-ear values the overview panel counts.
const (
	InEarYes = "是"
	InEarNo  = "否"
)

// Row is one record of the uploaded file. Values holds the raw cell text by
// column name. Index is the 0-based position in the original dataset; it
// survives filtering and is the charting fallback when no timestamp column
// resolves.
type Row struct {
	Index  int               `json:"index"`
	Values map[string]string `json:"values"`
}

// Value returns the raw cell text for a column, empty when absent.
func (r Row) Value(column string) string {
	return r.Values[column]
}

// Sequence returns the 1-based position used for the sequence x-axis.
func (r Row) Sequence() int {
	return r.Index + 1
}

// Dataset is the immutable in-memory table a session works against.
// Schema-dependent resolution (timestamp column, anomaly-flag column) happens
// once at construction; per-interaction pipeline runs only read the result,
// so no locking is needed after New returns.
type Dataset struct {
	ID          core.DatasetID          `json:"id"`
	SourceName  string                  `json:"source_name"`
	Fingerprint core.DatasetFingerprint `json:"fingerprint"`
	Columns     []string                `json:"columns"`
	Rows        []Row                   `json:"-"`

	// TimeColumn is the resolved timestamp column name, empty when no column
	// qualified. Times is row-aligned with Rows and non-nil only when every
	// value in TimeColumn parsed; a single bad value disables time semantics
	// for the whole dataset.
	TimeColumn string      `json:"time_column,omitempty"`
	Times      []time.Time `json:"-"`

	// FlagColumn is the explicit anomaly-flag column, empty when absent.
	FlagColumn string `json:"flag_column,omitempty"`

	Warnings []string  `json:"warnings,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// New builds an immutable Dataset from parsed table content. cells is one
// map per data row, keyed by column name. Timestamp and anomaly-flag columns
// are resolved here; a timestamp column whose values do not all parse
// degrades to a warning, never an error.
func New(sourceName string, columns []string, cells []map[string]string) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, core.ErrEmptyDataset
	}
	if len(cells) == 0 {
		return nil, core.ErrEmptyDataset
	}

	rows := make([]Row, len(cells))
	for i, c := range cells {
		rows[i] = Row{Index: i, Values: c}
	}

	ds := &Dataset{
		ID:          core.NewDatasetID(),
		SourceName:  sourceName,
		Fingerprint: core.ComputeDatasetFingerprint(columns, cells),
		Columns:     append([]string(nil), columns...),
		Rows:        rows,
		FlagColumn:  DetectFlagColumn(columns),
		LoadedAt:    time.Now(),
	}

	if col := ResolveTimestampColumn(columns); col != "" {
		values := make([]string, len(rows))
		for i, row := range rows {
			values[i] = row.Value(col)
		}
		times, err := ParseTimes(values)
		if err != nil {
			ds.Warnings = append(ds.Warnings, "column \""+col+"\" looks like a timestamp but did not parse: "+err.Error())
		} else {
			ds.TimeColumn = col
			ds.Times = times
		}
	}

	return ds, nil
}

// RowCount returns the number of data rows.
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// HasColumn reports whether the dataset schema contains the column.
func (d *Dataset) HasColumn(name string) bool {
	for _, col := range d.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// HasTimes reports whether time semantics are available.
func (d *Dataset) HasTimes() bool {
	return d.TimeColumn != "" && d.Times != nil
}

// DistinctValues returns the non-empty distinct values of a column in
// first-seen order. Returns nil when the column is absent.
func (d *Dataset) DistinctValues(column string) []string {
	if !d.HasColumn(column) {
		return nil
	}
	seen := make(map[string]bool)
	var values []string
	for _, row := range d.Rows {
		v := row.Value(column)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}

// Users returns the distinct user names, or nil when the user column is
// absent or carries no values at all (the filter widget is hidden then).
func (d *Dataset) Users() []string {
	return d.DistinctValues(ColUser)
}

// CountWhere counts rows whose column equals value exactly.
func (d *Dataset) CountWhere(column, value string) int {
	if !d.HasColumn(column) {
		return 0
	}
	n := 0
	for _, row := range d.Rows {
		if row.Value(column) == value {
			n++
		}
	}
	return n
}

// TimeBounds returns the earliest and latest resolved timestamps.
func (d *Dataset) TimeBounds() (min, max time.Time, ok bool) {
	if !d.HasTimes() || len(d.Times) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = d.Times[0], d.Times[0]
	for _, t := range d.Times[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return min, max, true
}

// TimeAt returns the resolved timestamp for a row by its original index.
func (d *Dataset) TimeAt(index int) (time.Time, bool) {
	if !d.HasTimes() || index < 0 || index >= len(d.Times) {
		return time.Time{}, false
	}
	return d.Times[index], true
}
