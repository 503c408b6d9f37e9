package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentIDsBreaksAroundAnomalousRows(t *testing.T) {
	flags := []bool{false, false, true, false, false, true, true}

	ids := SegmentIDs(flags)

	assert.Equal(t, []int{1, 1, 2, 3, 3, 4, 5}, ids)
}

func TestSegmentIDsEdgeShapes(t *testing.T) {
	tests := []struct {
		name     string
		flags    []bool
		expected []int
	}{
		{"empty", []bool{}, []int{}},
		{"single normal", []bool{false}, []int{1}},
		{"single anomalous", []bool{true}, []int{1}},
		{"all normal", []bool{false, false, false}, []int{1, 1, 1}},
		{"consecutive anomalous never merge", []bool{true, true, true}, []int{1, 2, 3}},
		{"anomalous tail", []bool{false, true}, []int{1, 2}},
		{"anomalous head", []bool{true, false}, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SegmentIDs(tt.flags))
		})
	}
}

func TestSegmentsGroupsRuns(t *testing.T) {
	flags := []bool{false, false, true, false, false, true, true}

	segments := Segments(flags)

	require.Len(t, segments, 5)

	assert.Equal(t, Segment{ID: 1, Start: 0, End: 1, Anomalous: false}, segments[0])
	assert.Equal(t, Segment{ID: 2, Start: 2, End: 2, Anomalous: true}, segments[1])
	assert.Equal(t, Segment{ID: 3, Start: 3, End: 4, Anomalous: false}, segments[2])
	assert.Equal(t, Segment{ID: 4, Start: 5, End: 5, Anomalous: true}, segments[3])
	assert.Equal(t, Segment{ID: 5, Start: 6, End: 6, Anomalous: true}, segments[4])

	assert.False(t, segments[0].Isolated())
	assert.True(t, segments[1].Isolated(), "length-1 anomalous run renders as a marker")
	assert.True(t, segments[3].Isolated())
	assert.True(t, segments[4].Isolated())
	assert.Equal(t, 2, segments[0].Length())
}

func TestSegmentsCoverEveryRowOnce(t *testing.T) {
	flags := []bool{false, true, true, false, true, false, false, true}

	segments := Segments(flags)

	covered := 0
	last := -1
	for _, s := range segments {
		assert.Equal(t, last+1, s.Start, "segments must be contiguous")
		covered += s.Length()
		last = s.End
	}
	assert.Equal(t, len(flags), covered)
}
