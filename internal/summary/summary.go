// Package summary computes the overview panel: dataset-level counts plus
// distribution summaries of the metric series actually being charted.
package summary

import (
	"github.com/montanaflynn/stats"

	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/domain/view"
	"github.com/BurningYang107/sensor-data-viewer/internal/errors"
)

const defaultHistogramBuckets = 10

// Overview is the metrics panel for one interaction. Total/in-ear/out-ear
// counts always describe the whole dataset; FilteredRows and CleanRows
// describe the current filter selection.
type Overview struct {
	TotalRows    int             `json:"total_rows"`
	InEarRows    int             `json:"in_ear_rows"`
	OutEarRows   int             `json:"out_ear_rows"`
	FilteredRows int             `json:"filtered_rows"`
	CleanRows    int             `json:"clean_rows"`
	Series       []SeriesSummary `json:"series,omitempty"`
}

// SeriesSummary describes the distribution of one metric series over the
// charted (clean) rows.
type SeriesSummary struct {
	Name      string            `json:"name"`
	Column    string            `json:"column"`
	Count     int               `json:"count"`
	Mean      float64           `json:"mean"`
	StdDev    float64           `json:"std_dev"`
	Min       float64           `json:"min"`
	Max       float64           `json:"max"`
	Median    float64           `json:"median"`
	Q25       float64           `json:"q25"`
	Q75       float64           `json:"q75"`
	Histogram []HistogramBucket `json:"histogram,omitempty"`
}

// Build computes the overview for one interaction. filtered is the stage-4
// output, clean the stage-5 output; series summaries read the clean rows,
// matching what the charts draw.
func Build(ds *dataset.Dataset, filtered, clean []dataset.Row) (Overview, error) {
	overview := Overview{
		TotalRows:    ds.RowCount(),
		InEarRows:    ds.CountWhere(dataset.ColInEar, dataset.InEarYes),
		OutEarRows:   ds.CountWhere(dataset.ColInEar, dataset.InEarNo),
		FilteredRows: len(filtered),
		CleanRows:    len(clean),
	}

	for _, col := range []string{dataset.ColDIF, dataset.ColRAW} {
		if !ds.HasColumn(col) {
			continue
		}
		series, err := Summarize(view.SeriesName(col), col, metricValues(ds, clean, col))
		if err != nil {
			return Overview{}, errors.Wrapf(err, "failed to summarize %s", col)
		}
		overview.Series = append(overview.Series, series)
	}

	return overview, nil
}

// Summarize computes the distribution summary of one series. An empty series
// yields a zero summary, not an error: charts can be empty on a clean page.
func Summarize(name, column string, values []float64) (SeriesSummary, error) {
	summary := SeriesSummary{Name: name, Column: column, Count: len(values)}
	if len(values) == 0 {
		return summary, nil
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return summary, err
	}

	stdDev, err := stats.StandardDeviation(values)
	if err != nil {
		return summary, err
	}

	min, err := stats.Min(values)
	if err != nil {
		return summary, err
	}

	max, err := stats.Max(values)
	if err != nil {
		return summary, err
	}

	median, err := stats.Median(values)
	if err != nil {
		return summary, err
	}

	q25, err := stats.Percentile(values, 25)
	if err != nil {
		return summary, err
	}

	q75, err := stats.Percentile(values, 75)
	if err != nil {
		return summary, err
	}

	summary.Mean = mean
	summary.StdDev = stdDev
	summary.Min = min
	summary.Max = max
	summary.Median = median
	summary.Q25 = q25
	summary.Q75 = q75
	summary.Histogram = Histogram(values, defaultHistogramBuckets)

	return summary, nil
}

// metricValues collects the parseable values of a metric column, in row
// order. Clean rows always parse by construction, but the guard keeps this
// usable on arbitrary row sets.
func metricValues(ds *dataset.Dataset, rows []dataset.Row, column string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := ds.MetricValue(row, column); ok {
			values = append(values, v)
		}
	}
	return values
}
