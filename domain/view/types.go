package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
)

// PageSize is the fixed number of rows per page.
const PageSize = 30

// FilterState is the complete, explicit filter selection for one interaction.
// Every pipeline run receives it whole; nothing filter-related lives in
// ambient state. The zero value filters nothing. It round-trips through query
// strings, JSON and YAML, so any view is reproducible from its serialized
// state alone.
type FilterState struct {
	// InEar and EarSide are inclusion sets over the raw cell text. nil means
	// "all values", the widget default.
	InEar   []string `json:"in_ear,omitempty" yaml:"in_ear,omitempty"`
	EarSide []string `json:"ear_side,omitempty" yaml:"ear_side,omitempty"`

	// User is an exact match; empty or 全部 disables the stage.
	User string `json:"user,omitempty" yaml:"user,omitempty"`

	// Start/End bound a closed time range. Both must be set for the time
	// stage to run.
	Start *time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	End   *time.Time `json:"end,omitempty" yaml:"end,omitempty"`
}

// UserIsWildcard reports whether the user stage is disabled.
func (f FilterState) UserIsWildcard() bool {
	return f.User == "" || f.User == dataset.AllUsers
}

// HasTimeRange reports whether both ends of the time range are set.
func (f FilterState) HasTimeRange() bool {
	return f.Start != nil && f.End != nil
}

// IsZero reports whether the state filters nothing.
func (f FilterState) IsZero() bool {
	return len(f.InEar) == 0 && len(f.EarSide) == 0 && f.UserIsWildcard() && f.Start == nil && f.End == nil
}

// PageState selects the pagination window. Pages are 1-based.
type PageState struct {
	Page int `json:"page" yaml:"page"`
}

// Page is one pagination window over the clean filtered rows.
type Page struct {
	Number     int           `json:"page"`
	Size       int           `json:"page_size"`
	TotalRows  int           `json:"total_rows"`
	TotalPages int           `json:"total_pages"`
	Rows       []dataset.Row `json:"-"`
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// ChartVariant selects which metric series the chart draws.
type ChartVariant string

const (
	ChartDIF     ChartVariant = "dif"
	ChartRAW     ChartVariant = "raw"
	ChartCompare ChartVariant = "compare"
)

// VariantSpec is the fixed presentation contract of a chart variant: which
// metric columns it needs, and the title and line colors it renders with.
type VariantSpec struct {
	Variant ChartVariant `json:"variant"`
	Label   string       `json:"label"`
	Title   string       `json:"title"`
	Columns []string     `json:"columns"`
	Colors  []string     `json:"colors"`
}

var variantSpecs = []VariantSpec{
	{
		Variant: ChartDIF,
		Label:   "DIF趋势图",
		Title:   "DIF数据变化趋势",
		Columns: []string{dataset.ColDIF},
		Colors:  []string{"#26D19C"},
	},
	{
		Variant: ChartRAW,
		Label:   "RAW趋势图",
		Title:   "RAW数据变化趋势",
		Columns: []string{dataset.ColRAW},
		Colors:  []string{"#FFA500"},
	},
	{
		Variant: ChartCompare,
		Label:   "双系列对比",
		Title:   "DIF与RAW数据对比",
		Columns: []string{dataset.ColDIF, dataset.ColRAW},
		Colors:  []string{"#26D19C", "#FFA500"},
	},
}

// Variants returns the selector catalog in display order.
func Variants() []VariantSpec {
	return append([]VariantSpec(nil), variantSpecs...)
}

// ParseChartVariant parses a variant name; empty defaults to the DIF chart.
func ParseChartVariant(s string) (ChartVariant, error) {
	if s == "" {
		return ChartDIF, nil
	}
	for _, spec := range variantSpecs {
		if string(spec.Variant) == s {
			return spec.Variant, nil
		}
	}
	return "", fmt.Errorf("unknown chart variant %q", s)
}

// Spec returns the presentation contract for the variant.
func (v ChartVariant) Spec() (VariantSpec, bool) {
	for _, spec := range variantSpecs {
		if spec.Variant == v {
			return spec, true
		}
	}
	return VariantSpec{}, false
}

// SeriesName derives the legend name from a metric column: DIF百分比 -> DIF.
func SeriesName(column string) string {
	if trimmed := strings.TrimSuffix(column, "百分比"); trimmed != "" {
		return trimmed
	}
	return column
}

// YTitle is the y-axis caption: the series name for single-series charts, a
// generic percent caption for the comparison chart.
func (s VariantSpec) YTitle() string {
	if len(s.Columns) == 1 {
		return SeriesName(s.Columns[0]) + " (%)"
	}
	return "百分比 (%)"
}

// HoverColumns are the row attributes shown in chart tooltips, in display
// order; absent columns are skipped.
var HoverColumns = []string{
	dataset.ColUser,
	dataset.ColMAC,
	dataset.ColEarSide,
	dataset.ColInEar,
}
