package pipeline

// Segment is a maximal run of page rows sharing explicit-anomaly status.
// Charts draw each segment as its own line piece, so the line visibly breaks
// around anomalous stretches.
type Segment struct {
	ID        int  `json:"id"`
	Start     int  `json:"start"` // page-relative offset of the first row
	End       int  `json:"end"`   // page-relative offset of the last row, inclusive
	Anomalous bool `json:"anomalous"`
}

// Length returns the number of rows in the segment.
func (s Segment) Length() int {
	return s.End - s.Start + 1
}

// Isolated reports a single anomalous row; the chart renders it as a
// standalone marker instead of a line piece.
func (s Segment) Isolated() bool {
	return s.Anomalous && s.Length() == 1
}

// SegmentIDs assigns a 1-based segment id to every page row from its
// explicit-anomaly flag. A new segment starts at the first row, whenever the
// flag changes, and after every anomalous row, so consecutive anomalous rows
// never merge into one run.
func SegmentIDs(flags []bool) []int {
	ids := make([]int, len(flags))
	id := 0
	for i := range flags {
		if i == 0 || flags[i] != flags[i-1] || flags[i-1] {
			id++
		}
		ids[i] = id
	}
	return ids
}

// Segments groups the flags into ordered segments.
func Segments(flags []bool) []Segment {
	ids := SegmentIDs(flags)
	var segments []Segment
	for i, id := range ids {
		if n := len(segments); n > 0 && segments[n-1].ID == id {
			segments[n-1].End = i
			continue
		}
		segments = append(segments, Segment{ID: id, Start: i, End: i, Anomalous: flags[i]})
	}
	return segments
}
