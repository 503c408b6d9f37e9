package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
)

func TestSummarize(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	s, err := Summarize("DIF", dataset.ColDIF, values)
	require.NoError(t, err)

	assert.Equal(t, "DIF", s.Name)
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.InDelta(t, 1.0, s.Min, 1e-9)
	assert.InDelta(t, 5.0, s.Max, 1e-9)
	assert.InDelta(t, 3.0, s.Median, 1e-9)
	assert.NotEmpty(t, s.Histogram)
}

func TestSummarizeEmptySeries(t *testing.T) {
	s, err := Summarize("RAW", dataset.ColRAW, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Count)
	assert.Zero(t, s.Mean)
	assert.Empty(t, s.Histogram)
}

func TestHistogramBinning(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	buckets := Histogram(values, 2)

	require.Len(t, buckets, 2)
	assert.Equal(t, 5, buckets[0].Count)
	assert.Equal(t, 5, buckets[1].Count, "maximum value lands in the last bucket")
	assert.InDelta(t, 0, buckets[0].Low, 1e-9)
	assert.InDelta(t, 9, buckets[1].High, 1e-9)
}

func TestHistogramConstantSeries(t *testing.T) {
	buckets := Histogram([]float64{7, 7, 7}, 4)

	require.Len(t, buckets, 1)
	assert.Equal(t, 3, buckets[0].Count)
	assert.Equal(t, 7.0, buckets[0].Low)
	assert.Equal(t, 7.0, buckets[0].High)
}

func TestBuildOverview(t *testing.T) {
	ds, err := dataset.New("sensor.csv",
		[]string{dataset.ColInEar, dataset.ColDIF, dataset.ColRAW},
		[]map[string]string{
			{dataset.ColInEar: "是", dataset.ColDIF: "90%", dataset.ColRAW: "80%"},
			{dataset.ColInEar: "是", dataset.ColDIF: "92%", dataset.ColRAW: "82%"},
			{dataset.ColInEar: "否", dataset.ColDIF: "94%", dataset.ColRAW: "84%"},
		})
	require.NoError(t, err)

	filtered := ds.Rows[:2]
	clean := ds.Rows[:2]

	overview, err := Build(ds, filtered, clean)
	require.NoError(t, err)

	assert.Equal(t, 3, overview.TotalRows)
	assert.Equal(t, 2, overview.InEarRows)
	assert.Equal(t, 1, overview.OutEarRows)
	assert.Equal(t, 2, overview.FilteredRows)
	assert.Equal(t, 2, overview.CleanRows)

	require.Len(t, overview.Series, 2)
	assert.Equal(t, "DIF", overview.Series[0].Name)
	assert.InDelta(t, 91.0, overview.Series[0].Mean, 1e-9)
	assert.Equal(t, "RAW", overview.Series[1].Name)
	assert.Equal(t, 2, overview.Series[1].Count)
}

func TestBuildOverviewSkipsAbsentMetricColumns(t *testing.T) {
	ds, err := dataset.New("plain.csv",
		[]string{dataset.ColInEar},
		[]map[string]string{{dataset.ColInEar: "是"}})
	require.NoError(t, err)

	overview, err := Build(ds, ds.Rows, ds.Rows)
	require.NoError(t, err)

	assert.Empty(t, overview.Series)
	assert.Equal(t, 1, overview.TotalRows)
}
