package pipeline

import (
	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/domain/view"
)

// TotalPages returns max(1, ceil(n/PageSize)): an empty result still has one
// (empty) page so the pager never disappears.
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + view.PageSize - 1) / view.PageSize
}

// Paginate slices rows into the requested window. Pages are 1-based; a page
// outside [1, TotalPages] is clamped and reported so the caller can warn.
// Page boundaries partition the input: no row is dropped or duplicated.
func Paginate(rows []dataset.Row, page int) (view.Page, bool) {
	total := len(rows)
	totalPages := TotalPages(total)

	clamped := false
	if page < 1 {
		page = 1
		clamped = true
	}
	if page > totalPages {
		page = totalPages
		clamped = true
	}

	start := (page - 1) * view.PageSize
	end := start + view.PageSize
	if end > total {
		end = total
	}

	var window []dataset.Row
	if start < total {
		window = rows[start:end]
	}

	return view.Page{
		Number:     page,
		Size:       view.PageSize,
		TotalRows:  total,
		TotalPages: totalPages,
		Rows:       window,
	}, clamped
}
