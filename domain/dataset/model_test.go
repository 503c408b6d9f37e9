package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BurningYang107/sensor-data-viewer/domain/core"
)

func TestNewResolvesSchema(t *testing.T) {
	ds, err := New("sensor.csv",
		[]string{"时间", "用户名", "是否异常", ColDIF},
		[]map[string]string{
			{"时间": "2025-01-02 13:04:05", "用户名": "alice", "是否异常": "否", ColDIF: "95%"},
			{"时间": "2025-01-02 13:04:06", "用户名": "bob", "是否异常": "是", ColDIF: "96%"},
		})
	require.NoError(t, err)

	assert.Equal(t, "时间", ds.TimeColumn)
	assert.True(t, ds.HasTimes())
	require.Len(t, ds.Times, 2)
	assert.Equal(t, "是否异常", ds.FlagColumn)
	assert.False(t, ds.Fingerprint.String() == "")
	assert.Empty(t, ds.Warnings)
	assert.Equal(t, 2, ds.RowCount())
	assert.Equal(t, 1, ds.Rows[0].Sequence())
}

func TestNewDegradesUnparsableTimestampColumn(t *testing.T) {
	ds, err := New("sensor.csv",
		[]string{"时间", ColDIF},
		[]map[string]string{
			{"时间": "2025-01-02 13:04:05", ColDIF: "95%"},
			{"时间": "around noon", ColDIF: "96%"},
		})
	require.NoError(t, err)

	// One bad value disables time semantics for the whole dataset.
	assert.Empty(t, ds.TimeColumn)
	assert.Nil(t, ds.Times)
	assert.False(t, ds.HasTimes())
	require.Len(t, ds.Warnings, 1)
	assert.Contains(t, ds.Warnings[0], "时间")
}

func TestNewRejectsEmptyInput(t *testing.T) {
	_, err := New("empty.csv", nil, nil)
	assert.ErrorIs(t, err, core.ErrEmptyDataset)

	_, err = New("headers-only.csv", []string{"a"}, nil)
	assert.ErrorIs(t, err, core.ErrEmptyDataset)
}

func TestDistinctValues(t *testing.T) {
	ds, err := New("sensor.csv",
		[]string{"左右耳"},
		[]map[string]string{
			{"左右耳": "左"},
			{"左右耳": "右"},
			{"左右耳": "左"},
			{"左右耳": ""},
		})
	require.NoError(t, err)

	assert.Equal(t, []string{"左", "右"}, ds.DistinctValues("左右耳"))
	assert.Nil(t, ds.DistinctValues("不存在"))
}

func TestUsers(t *testing.T) {
	withUsers, err := New("sensor.csv",
		[]string{ColUser},
		[]map[string]string{
			{ColUser: "alice"},
			{ColUser: "bob"},
			{ColUser: "alice"},
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, withUsers.Users())

	allEmpty, err := New("sensor.csv",
		[]string{ColUser, ColDIF},
		[]map[string]string{
			{ColUser: "", ColDIF: "1%"},
			{ColUser: "", ColDIF: "2%"},
		})
	require.NoError(t, err)
	assert.Nil(t, allEmpty.Users(), "all-empty user column hides the filter")

	noColumn, err := New("sensor.csv",
		[]string{ColDIF},
		[]map[string]string{{ColDIF: "1%"}})
	require.NoError(t, err)
	assert.Nil(t, noColumn.Users())
}

func TestCountWhere(t *testing.T) {
	ds, err := New("sensor.csv",
		[]string{ColInEar},
		[]map[string]string{
			{ColInEar: InEarYes},
			{ColInEar: InEarYes},
			{ColInEar: InEarNo},
		})
	require.NoError(t, err)

	assert.Equal(t, 2, ds.CountWhere(ColInEar, InEarYes))
	assert.Equal(t, 1, ds.CountWhere(ColInEar, InEarNo))
	assert.Equal(t, 0, ds.CountWhere("missing", InEarYes))
}

func TestTimeBounds(t *testing.T) {
	ds, err := New("sensor.csv",
		[]string{"时间"},
		[]map[string]string{
			{"时间": "2025-01-02 13:04:06"},
			{"时间": "2025-01-02 13:04:05"},
			{"时间": "2025-01-02 13:04:07"},
		})
	require.NoError(t, err)

	min, max, ok := ds.TimeBounds()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 2, 13, 4, 5, 0, time.UTC), min)
	assert.Equal(t, time.Date(2025, 1, 2, 13, 4, 7, 0, time.UTC), max)

	noTimes, err := New("sensor.csv",
		[]string{ColDIF},
		[]map[string]string{{ColDIF: "1%"}})
	require.NoError(t, err)
	_, _, ok = noTimes.TimeBounds()
	assert.False(t, ok)
}
