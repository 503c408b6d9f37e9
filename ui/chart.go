package ui

import (
	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/domain/view"
	"github.com/BurningYang107/sensor-data-viewer/internal/errors"
	"github.com/BurningYang107/sensor-data-viewer/internal/pipeline"
)

// ChartPayload is the chart contract sent to the browser. The client splits
// each series into one line per segment so lines break at flagged rows.
type ChartPayload struct {
	Variant string        `json:"variant"`
	Title   string        `json:"title"`
	XKind   string        `json:"x_kind"`
	XTitle  string        `json:"x_title"`
	YTitle  string        `json:"y_title"`
	Series  []ChartSeries `json:"series"`
}

// ChartSeries is one metric column drawn over the current page.
type ChartSeries struct {
	Name   string       `json:"name"`
	Column string       `json:"column"`
	Color  string       `json:"color"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is one row of the page projected onto the chart.
type ChartPoint struct {
	X         interface{}       `json:"x"`
	Y         *float64          `json:"y"`
	Segment   int               `json:"segment"`
	Anomalous bool              `json:"anomalous"`
	Isolated  bool              `json:"isolated"`
	Hover     map[string]string `json:"hover,omitempty"`
}

const (
	xKindTime     = "time"
	xKindSequence = "sequence"

	xTitleTime     = "时间"
	xTitleSequence = "数据序号"

	chartTimeLayout = "2006-01-02 15:04:05"
)

// BuildChart projects the current page onto the requested chart variant.
// A variant whose metric column is absent from the dataset is a user error.
func BuildChart(ds *dataset.Dataset, res *pipeline.Result, spec view.VariantSpec) (*ChartPayload, error) {
	for _, col := range spec.Columns {
		if !ds.HasColumn(col) {
			return nil, errors.MissingColumn(col)
		}
	}

	payload := &ChartPayload{
		Variant: string(spec.Variant),
		Title:   spec.Title,
		XKind:   xKindSequence,
		XTitle:  xTitleSequence,
		YTitle:  spec.YTitle(),
	}
	if ds.HasTimes() {
		payload.XKind = xKindTime
		payload.XTitle = xTitleTime
	}

	isolated := isolatedSegments(res.Segments)

	for i, col := range spec.Columns {
		series := ChartSeries{
			Name:   view.SeriesName(col),
			Column: col,
			Color:  spec.Colors[i],
			Points: make([]ChartPoint, len(res.Page.Rows)),
		}
		for j, row := range res.Page.Rows {
			point := ChartPoint{
				X:         row.Sequence(),
				Segment:   res.SegmentIDs[j],
				Anomalous: res.Flags[j],
				Isolated:  isolated[res.SegmentIDs[j]],
				Hover:     hoverFields(ds, row),
			}
			if payload.XKind == xKindTime {
				if t, ok := ds.TimeAt(row.Index); ok {
					point.X = t.Format(chartTimeLayout)
				}
			}
			if v, ok := ds.MetricValue(row, col); ok {
				y := v
				point.Y = &y
			}
			series.Points[j] = point
		}
		payload.Series = append(payload.Series, series)
	}

	return payload, nil
}

// isolatedSegments maps segment IDs to whether the segment is a single
// flagged row, which the chart draws as a lone marker instead of a line.
func isolatedSegments(segs []pipeline.Segment) map[int]bool {
	m := make(map[int]bool, len(segs))
	for _, seg := range segs {
		if seg.Isolated() {
			m[seg.ID] = true
		}
	}
	return m
}

// hoverFields collects the tooltip attributes of a row; absent columns are
// skipped.
func hoverFields(ds *dataset.Dataset, row dataset.Row) map[string]string {
	hover := make(map[string]string, len(view.HoverColumns))
	for _, col := range view.HoverColumns {
		if ds.HasColumn(col) {
			hover[col] = row.Value(col)
		}
	}
	if len(hover) == 0 {
		return nil
	}
	return hover
}
