// Package pipeline turns one immutable dataset plus one explicit view state
// into everything a single dashboard interaction needs: filtered rows, the
// pagination window, per-row anomaly flags and chart segments. Every Run is a
// full recomputation; no state is carried between interactions.
package pipeline

import (
	"fmt"

	"github.com/BurningYang107/sensor-data-viewer/domain/core"
	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/domain/view"
	"github.com/BurningYang107/sensor-data-viewer/internal"
)

// Input is the complete state of one interaction.
type Input struct {
	Dataset *dataset.Dataset
	Filter  view.FilterState
	Page    view.PageState
}

// Result is everything computed for one interaction.
type Result struct {
	// Filtered holds the stage 1-4 output: summary counts and CSV export
	// read it. FilteredClean additionally excludes value-anomalous rows and
	// is what pagination and charts see.
	Filtered      []dataset.Row
	FilteredClean []dataset.Row

	Page view.Page

	// Flags, SegmentIDs and Segments are aligned with Page.Rows.
	Flags      []bool
	SegmentIDs []int
	Segments   []Segment

	Warnings []string
}

// Run executes the whole pipeline once. An empty stage-4 result returns
// core.ErrEmptyFilterResult: a user error, the dataset stays untouched.
func Run(in Input) (*Result, error) {
	if in.Dataset == nil {
		return nil, core.ErrDatasetNotFound
	}

	engine := NewEngine(in.Dataset)

	filtered, warnings := engine.Filtered(in.Filter)
	if len(filtered) == 0 {
		return nil, core.ErrEmptyFilterResult
	}

	clean := engine.Clean(filtered)

	page, clamped := Paginate(clean, in.Page.Page)
	if clamped {
		warnings = append(warnings, fmt.Sprintf("page %d is out of range, showing page %d of %d",
			in.Page.Page, page.Number, page.TotalPages))
	}

	flags := make([]bool, len(page.Rows))
	for i, row := range page.Rows {
		flags[i] = in.Dataset.ExplicitFlag(row)
	}

	internal.DefaultLogger.Debug("pipeline run: %d rows -> %d filtered -> %d clean, page %d/%d",
		in.Dataset.RowCount(), len(filtered), len(clean), page.Number, page.TotalPages)

	return &Result{
		Filtered:      filtered,
		FilteredClean: clean,
		Page:          page,
		Flags:         flags,
		SegmentIDs:    SegmentIDs(flags),
		Segments:      Segments(flags),
		Warnings:      warnings,
	}, nil
}
