package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BurningYang107/sensor-data-viewer/adapters/tabular"
	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/domain/view"
	"github.com/BurningYang107/sensor-data-viewer/internal/pipeline"
	"github.com/BurningYang107/sensor-data-viewer/internal/summary"
)

const timeDisplayLayout = "2006-01-02 15:04:05"

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show how a file will be interpreted: columns, time axis, flag column",
		Long: `Load a file and report the resolved schema without filtering anything:
row and column counts, which column drives the time axis (and its range),
which column carries the explicit anomaly flag, and the users present.

Example: sdv-cli inspect sensor_export.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, path string) error {
	ds, err := loadDataset(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source:      %s\n", ds.SourceName)
	fmt.Fprintf(out, "Rows:        %d\n", ds.RowCount())
	fmt.Fprintf(out, "Columns:     %d (%s)\n", len(ds.Columns), strings.Join(ds.Columns, ", "))

	if ds.HasTimes() {
		min, max, _ := ds.TimeBounds()
		fmt.Fprintf(out, "Time column: %s (%s .. %s)\n",
			ds.TimeColumn, min.Format(timeDisplayLayout), max.Format(timeDisplayLayout))
	} else if col := dataset.ResolveTimestampColumn(ds.Columns); col != "" {
		fmt.Fprintf(out, "Time column: %s (values did not parse, charts use the sequence axis)\n", col)
	} else {
		fmt.Fprintln(out, "Time column: none (charts use the sequence axis)")
	}

	if ds.FlagColumn != "" {
		fmt.Fprintf(out, "Flag column: %s\n", ds.FlagColumn)
	} else {
		fmt.Fprintln(out, "Flag column: none")
	}

	if users := ds.Users(); len(users) > 0 {
		fmt.Fprintf(out, "Users:       %s\n", strings.Join(users, ", "))
	}

	for _, w := range ds.Warnings {
		fmt.Fprintf(out, "Warning:     %s\n", w)
	}

	return nil
}

func newSummaryCmd() *cobra.Command {
	var filters filterFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary [file]",
		Short: "Print overview counts and metric statistics for a filter selection",
		Long: `Run the filter pipeline and print the overview panel: total/in-ear/out-ear
counts over the whole file, filtered and clean counts for the selection, and
distribution statistics of each metric series over the clean rows.

Example: sdv-cli summary sensor_export.csv --user alice --in-ear 是`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, args[0], &filters, asJSON)
		},
	}

	addFilterFlags(cmd, &filters)
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the overview as JSON")

	return cmd
}

func runSummary(cmd *cobra.Command, path string, filters *filterFlags, asJSON bool) error {
	ds, err := loadDataset(path)
	if err != nil {
		return err
	}

	filter, err := filters.resolve(cmd)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(pipeline.Input{Dataset: ds, Filter: filter, Page: view.PageState{Page: 1}})
	if err != nil {
		return err
	}

	overview, err := summary.Build(ds, res.Filtered, res.FilteredClean)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if asJSON {
		data, err := json.MarshalIndent(overview, "", "  ")
		if err != nil {
			return fmt.Errorf("encode overview: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	printWarnings(cmd, ds.Warnings, res.Warnings)

	fmt.Fprintf(out, "Total rows:    %d\n", overview.TotalRows)
	fmt.Fprintf(out, "In-ear rows:   %d\n", overview.InEarRows)
	fmt.Fprintf(out, "Out-ear rows:  %d\n", overview.OutEarRows)
	fmt.Fprintf(out, "Filtered rows: %d\n", overview.FilteredRows)
	fmt.Fprintf(out, "Clean rows:    %d\n", overview.CleanRows)

	for _, s := range overview.Series {
		fmt.Fprintf(out, "%s: n=%d mean=%.2f%% std=%.2f%% min=%.2f%% max=%.2f%% median=%.2f%%\n",
			s.Name, s.Count, s.Mean, s.StdDev, s.Min, s.Max, s.Median)
	}

	return nil
}

func newPageCmd() *cobra.Command {
	var filters filterFlags
	var page int

	cmd := &cobra.Command{
		Use:   "page [file]",
		Short: "Print one table page of the clean filtered rows",
		Long: `Run the filter pipeline and print one pagination window, 30 rows per page.
Rows marked by the explicit anomaly-flag column carry a leading "!", and every
row shows the chart segment id its page position falls into.

Example: sdv-cli page sensor_export.csv --user alice --page 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(cmd, args[0], &filters, page)
		},
	}

	addFilterFlags(cmd, &filters)
	cmd.Flags().IntVar(&page, "page", 1, "1-based page number")

	return cmd
}

func runPage(cmd *cobra.Command, path string, filters *filterFlags, page int) error {
	if page < 1 {
		return fmt.Errorf("page must be 1 or greater, got %d", page)
	}

	ds, err := loadDataset(path)
	if err != nil {
		return err
	}

	filter, err := filters.resolve(cmd)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(pipeline.Input{Dataset: ds, Filter: filter, Page: view.PageState{Page: page}})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printWarnings(cmd, ds.Warnings, res.Warnings)

	fmt.Fprintf(out, "Page %d/%d (%d rows match)\n",
		res.Page.Number, res.Page.TotalPages, res.Page.TotalRows)
	fmt.Fprintf(out, "     # seg | %s\n", strings.Join(ds.Columns, " | "))

	for i, row := range res.Page.Rows {
		marker := " "
		if res.Flags[i] {
			marker = "!"
		}
		cells := make([]string, len(ds.Columns))
		for j, col := range ds.Columns {
			cells[j] = row.Value(col)
		}
		fmt.Fprintf(out, "%s %4d %3d | %s\n", marker, row.Sequence(), res.SegmentIDs[i], strings.Join(cells, " | "))
	}

	return nil
}

func newExportCmd() *cobra.Command {
	var filters filterFlags
	var output string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the filtered rows to a BOM-prefixed CSV file",
		Long: `Run the filter pipeline and write the filtered rows (anomalous values
included, exactly as the dashboard exports them) to a UTF-8 BOM CSV in the
original column order.

Example: sdv-cli export sensor_export.csv --user alice -o alice.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], &filters, output)
		},
	}

	addFilterFlags(cmd, &filters)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default filtered_data_<rows>.csv)")

	return cmd
}

func runExport(cmd *cobra.Command, path string, filters *filterFlags, output string) error {
	ds, err := loadDataset(path)
	if err != nil {
		return err
	}

	filter, err := filters.resolve(cmd)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(pipeline.Input{Dataset: ds, Filter: filter, Page: view.PageState{Page: 1}})
	if err != nil {
		return err
	}

	if output == "" {
		output = tabular.ExportFilename(len(res.Filtered))
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := tabular.WriteCSV(f, ds.Columns, res.Filtered); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(res.Filtered), output)
	return nil
}

func printWarnings(cmd *cobra.Command, groups ...[]string) {
	for _, warnings := range groups {
		for _, w := range warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "Warning: %s\n", w)
		}
	}
}
