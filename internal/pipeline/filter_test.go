package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/domain/view"
)

func makeSensorDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	columns := []string{"时间", dataset.ColInEar, dataset.ColUser, dataset.ColEarSide, dataset.ColDIF, dataset.ColRAW, "是否异常"}
	cells := []map[string]string{
		{"时间": "2025-01-02 13:04:00", dataset.ColInEar: "是", dataset.ColUser: "alice", dataset.ColEarSide: "左", dataset.ColDIF: "95%", dataset.ColRAW: "90%", "是否异常": "否"},
		{"时间": "2025-01-02 13:04:30", dataset.ColInEar: "是", dataset.ColUser: "bob", dataset.ColEarSide: "右", dataset.ColDIF: "96%", dataset.ColRAW: "91%", "是否异常": "否"},
		{"时间": "2025-01-02 13:05:00", dataset.ColInEar: "否", dataset.ColUser: "alice", dataset.ColEarSide: "左", dataset.ColDIF: "1500%", dataset.ColRAW: "92%", "是否异常": "否"},
		{"时间": "2025-01-02 13:05:59", dataset.ColInEar: "是", dataset.ColUser: "alice", dataset.ColEarSide: "右", dataset.ColDIF: "97%", dataset.ColRAW: "93%", "是否异常": "是"},
		{"时间": "2025-01-02 13:06:00", dataset.ColInEar: "否", dataset.ColUser: "bob", dataset.ColEarSide: "左", dataset.ColDIF: "98%", dataset.ColRAW: "94%", "是否异常": "否"},
		{"时间": "2025-01-02 13:07:00", dataset.ColInEar: "是", dataset.ColUser: "alice", dataset.ColEarSide: "左", dataset.ColDIF: "n/a", dataset.ColRAW: "95%", "是否异常": "否"},
	}
	ds, err := dataset.New("sensor.csv", columns, cells)
	require.NoError(t, err)
	require.True(t, ds.HasTimes())
	return ds
}

func indicesOf(rows []dataset.Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Index
	}
	return out
}

func TestFilteredInEarInclusion(t *testing.T) {
	ds := makeSensorDataset(t)
	engine := NewEngine(ds)

	rows, warnings := engine.Filtered(view.FilterState{InEar: []string{"是"}})

	assert.Empty(t, warnings)
	assert.Equal(t, []int{0, 1, 3, 5}, indicesOf(rows))
}

func TestFilteredEmptySelectionFiltersNothing(t *testing.T) {
	ds := makeSensorDataset(t)
	engine := NewEngine(ds)

	rows, warnings := engine.Filtered(view.FilterState{})

	assert.Empty(t, warnings)
	assert.Len(t, rows, ds.RowCount())
}

func TestFilteredUserStage(t *testing.T) {
	ds := makeSensorDataset(t)
	engine := NewEngine(ds)

	alice, _ := engine.Filtered(view.FilterState{User: "alice"})
	assert.Equal(t, []int{0, 2, 3, 5}, indicesOf(alice))

	wildcard, _ := engine.Filtered(view.FilterState{User: dataset.AllUsers})
	assert.Len(t, wildcard, ds.RowCount(), "全部 disables the user stage")
}

// The two categorical inclusion stages commute: their order never changes
// the outcome.
func TestCategoricalStagesCommute(t *testing.T) {
	ds := makeSensorDataset(t)
	engine := NewEngine(ds)

	inEar := []string{"是"}
	earSide := []string{"左"}

	inEarFirst := engine.applyInclusion(engine.applyInclusion(ds.Rows, dataset.ColInEar, inEar), dataset.ColEarSide, earSide)
	earSideFirst := engine.applyInclusion(engine.applyInclusion(ds.Rows, dataset.ColEarSide, earSide), dataset.ColInEar, inEar)

	assert.Equal(t, indicesOf(inEarFirst), indicesOf(earSideFirst))
	assert.Equal(t, []int{0, 5}, indicesOf(inEarFirst))
}

func TestTimeRangeIsClosedAndMinuteExtended(t *testing.T) {
	ds := makeSensorDataset(t)
	engine := NewEngine(ds)

	start := time.Date(2025, 1, 2, 13, 4, 0, 0, time.UTC)
	end := time.Date(2025, 1, 2, 13, 5, 0, 0, time.UTC) // minute precision

	rows, warnings := engine.Filtered(view.FilterState{Start: &start, End: &end})

	assert.Empty(t, warnings)
	// 13:05 is extended through 13:05:59.999999, so 13:05:59 stays in and
	// 13:06:00 falls out.
	assert.Equal(t, []int{0, 1, 2, 3}, indicesOf(rows))
}

func TestTimeRangeEndWithSecondsIsNotExtended(t *testing.T) {
	ds := makeSensorDataset(t)
	engine := NewEngine(ds)

	start := time.Date(2025, 1, 2, 13, 4, 0, 0, time.UTC)
	end := time.Date(2025, 1, 2, 13, 5, 30, 0, time.UTC)

	rows, _ := engine.Filtered(view.FilterState{Start: &start, End: &end})

	assert.Equal(t, []int{0, 1, 2}, indicesOf(rows), "13:05:59 is outside an end that carries seconds")
}

func TestExtendEndOfMinute(t *testing.T) {
	minute := time.Date(2025, 1, 2, 13, 5, 0, 0, time.UTC)
	extended := ExtendEndOfMinute(minute)
	assert.Equal(t, minute.Add(59*time.Second+999999*time.Microsecond), extended)

	withSeconds := time.Date(2025, 1, 2, 13, 5, 30, 0, time.UTC)
	assert.Equal(t, withSeconds, ExtendEndOfMinute(withSeconds))

	withNanos := time.Date(2025, 1, 2, 13, 5, 0, 500, time.UTC)
	assert.Equal(t, withNanos, ExtendEndOfMinute(withNanos))
}

func TestInvertedTimeRangeSkipsStageWithWarning(t *testing.T) {
	ds := makeSensorDataset(t)
	engine := NewEngine(ds)

	start := time.Date(2025, 1, 2, 14, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 2, 13, 0, 0, 0, time.UTC)

	rows, warnings := engine.Filtered(view.FilterState{Start: &start, End: &end})

	assert.Len(t, rows, ds.RowCount(), "unusable range leaves rows untouched")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "time filter ignored")
}

func TestTimeRangeWithoutTimestampColumnSkipsWithWarning(t *testing.T) {
	ds, err := dataset.New("plain.csv",
		[]string{dataset.ColDIF},
		[]map[string]string{{dataset.ColDIF: "10%"}, {dataset.ColDIF: "11%"}})
	require.NoError(t, err)
	engine := NewEngine(ds)

	start := time.Date(2025, 1, 2, 13, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 2, 14, 0, 0, 0, time.UTC)

	rows, warnings := engine.Filtered(view.FilterState{Start: &start, End: &end})

	assert.Len(t, rows, 2)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "no usable timestamp column")
}

func TestCleanDropsValueAnomaliesAndUnparsables(t *testing.T) {
	ds := makeSensorDataset(t)
	engine := NewEngine(ds)

	clean := engine.Clean(ds.Rows)

	// Row 2 (1500%) and row 5 (n/a) drop; the explicitly flagged row 3 stays.
	assert.Equal(t, []int{0, 1, 3, 4}, indicesOf(clean))
}
