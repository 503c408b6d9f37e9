package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/domain/view"
	"github.com/BurningYang107/sensor-data-viewer/internal/errors"
	"github.com/BurningYang107/sensor-data-viewer/internal/pipeline"
)

// chartFixture builds a four-row dataset where the third row carries the
// explicit anomaly flag, then runs the pipeline over it unfiltered.
func chartFixture(t *testing.T, withTime bool) (*dataset.Dataset, *pipeline.Result) {
	t.Helper()

	columns := []string{"用户名", "MAC地址", "左右耳", "是否入耳", "DIF百分比", "RAW百分比", "是否异常"}
	rows := [][]string{
		{"alice", "AA:01", "左", "是", "95%", "90%", "否"},
		{"bob", "AA:02", "右", "是", "94%", "91%", "否"},
		{"alice", "AA:01", "右", "是", "93%", "89%", "是"},
		{"bob", "AA:02", "左", "是", "92%", "88%", "否"},
	}
	times := []string{
		"2024-01-02 13:04:00",
		"2024-01-02 13:04:30",
		"2024-01-02 13:05:00",
		"2024-01-02 13:05:30",
	}

	if withTime {
		columns = append([]string{"时间"}, columns...)
	}
	cells := make([]map[string]string, len(rows))
	for i, row := range rows {
		values := row
		if withTime {
			values = append([]string{times[i]}, row...)
		}
		m := make(map[string]string, len(columns))
		for j, col := range columns {
			m[col] = values[j]
		}
		cells[i] = m
	}

	ds, err := dataset.New("chart.csv", columns, cells)
	require.NoError(t, err)

	res, err := pipeline.Run(pipeline.Input{Dataset: ds, Page: view.PageState{Page: 1}})
	require.NoError(t, err)
	return ds, res
}

func variantSpec(t *testing.T, v view.ChartVariant) view.VariantSpec {
	t.Helper()
	spec, ok := v.Spec()
	require.True(t, ok)
	return spec
}

func TestBuildChartTimeAxis(t *testing.T) {
	ds, res := chartFixture(t, true)

	chart, err := BuildChart(ds, res, variantSpec(t, view.ChartDIF))
	require.NoError(t, err)

	assert.Equal(t, "dif", chart.Variant)
	assert.Equal(t, "DIF数据变化趋势", chart.Title)
	assert.Equal(t, "time", chart.XKind)
	assert.Equal(t, "时间", chart.XTitle)
	assert.Equal(t, "DIF (%)", chart.YTitle)

	require.Len(t, chart.Series, 1)
	series := chart.Series[0]
	assert.Equal(t, "DIF", series.Name)
	assert.Equal(t, "#26D19C", series.Color)
	require.Len(t, series.Points, 4)

	assert.Equal(t, "2024-01-02 13:04:00", series.Points[0].X)
	require.NotNil(t, series.Points[0].Y)
	assert.InDelta(t, 95.0, *series.Points[0].Y, 1e-9)

	hover := series.Points[0].Hover
	require.NotNil(t, hover)
	assert.Equal(t, "alice", hover["用户名"])
	assert.Equal(t, "AA:01", hover["MAC地址"])
	assert.Equal(t, "左", hover["左右耳"])
	assert.Equal(t, "是", hover["是否入耳"])
}

func TestBuildChartSequenceAxisWithoutTimestamps(t *testing.T) {
	ds, res := chartFixture(t, false)

	chart, err := BuildChart(ds, res, variantSpec(t, view.ChartDIF))
	require.NoError(t, err)

	assert.Equal(t, "sequence", chart.XKind)
	assert.Equal(t, "数据序号", chart.XTitle)

	xs := make([]interface{}, len(chart.Series[0].Points))
	for i, p := range chart.Series[0].Points {
		xs[i] = p.X
	}
	assert.Equal(t, []interface{}{1, 2, 3, 4}, xs)
}

func TestBuildChartSegmentsBreakAtFlaggedRows(t *testing.T) {
	ds, res := chartFixture(t, true)

	chart, err := BuildChart(ds, res, variantSpec(t, view.ChartDIF))
	require.NoError(t, err)

	points := chart.Series[0].Points
	segments := make([]int, len(points))
	for i, p := range points {
		segments[i] = p.Segment
	}
	assert.Equal(t, []int{1, 1, 2, 3}, segments)
	assert.True(t, points[2].Anomalous)
	assert.True(t, points[2].Isolated, "lone flagged row should render as an isolated marker")
	assert.False(t, points[0].Isolated)
}

func TestBuildChartCompareCarriesBothSeries(t *testing.T) {
	ds, res := chartFixture(t, true)

	chart, err := BuildChart(ds, res, variantSpec(t, view.ChartCompare))
	require.NoError(t, err)

	assert.Equal(t, "DIF与RAW数据对比", chart.Title)
	assert.Equal(t, "百分比 (%)", chart.YTitle)
	require.Len(t, chart.Series, 2)
	assert.Equal(t, "DIF", chart.Series[0].Name)
	assert.Equal(t, "RAW", chart.Series[1].Name)
	assert.Equal(t, "#26D19C", chart.Series[0].Color)
	assert.Equal(t, "#FFA500", chart.Series[1].Color)

	require.NotNil(t, chart.Series[1].Points[0].Y)
	assert.InDelta(t, 90.0, *chart.Series[1].Points[0].Y, 1e-9)
}

func TestBuildChartMissingColumnIsUserError(t *testing.T) {
	columns := []string{"用户名", "DIF百分比"}
	cells := []map[string]string{
		{"用户名": "alice", "DIF百分比": "95%"},
		{"用户名": "bob", "DIF百分比": "94%"},
	}
	ds, err := dataset.New("nodif.csv", columns, cells)
	require.NoError(t, err)

	res, err := pipeline.Run(pipeline.Input{Dataset: ds, Page: view.PageState{Page: 1}})
	require.NoError(t, err)

	_, err = BuildChart(ds, res, variantSpec(t, view.ChartRAW))
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingColumn, errors.GetCode(err))
	assert.Contains(t, err.Error(), "RAW百分比")
}

func TestIsolatedSegments(t *testing.T) {
	segs := pipeline.Segments([]bool{false, true, false, true, true})

	isolated := isolatedSegments(segs)
	assert.False(t, isolated[1], "normal run is never isolated")
	assert.True(t, isolated[2], "lone flagged row renders as a marker")
	assert.False(t, isolated[3])
	assert.True(t, isolated[4], "adjacent flagged rows form separate one-row segments")
	assert.True(t, isolated[5])
}
