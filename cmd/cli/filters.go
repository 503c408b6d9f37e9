package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/BurningYang107/sensor-data-viewer/adapters/tabular"
	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/domain/view"
)

// filterFlags collects the filter selection shared by all commands.
type filterFlags struct {
	inEar      []string
	earSide    []string
	user       string
	from       string
	to         string
	presetPath string
}

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().StringArrayVar(&f.inEar, "in-ear", nil, `keep rows whose 是否入耳 value matches (repeatable)`)
	cmd.Flags().StringArrayVar(&f.earSide, "ear-side", nil, `keep rows whose 左右耳 value matches (repeatable)`)
	cmd.Flags().StringVar(&f.user, "user", "", `keep rows of one user ("全部" keeps all)`)
	cmd.Flags().StringVar(&f.from, "from", "", `start of the time range, e.g. "2024-01-02 13:04:00"`)
	cmd.Flags().StringVar(&f.to, "to", "", `end of the time range; minute precision covers the whole minute`)
	cmd.Flags().StringVar(&f.presetPath, "filters", "", "YAML filter preset file; explicit flags win")
}

// resolve builds the filter state: preset file first, then explicit flags on
// top.
func (f *filterFlags) resolve(cmd *cobra.Command) (view.FilterState, error) {
	var state view.FilterState

	if f.presetPath != "" {
		raw, err := os.ReadFile(f.presetPath)
		if err != nil {
			return state, fmt.Errorf("read filter preset: %w", err)
		}
		if err := yaml.Unmarshal(raw, &state); err != nil {
			return state, fmt.Errorf("parse filter preset %s: %w", f.presetPath, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("in-ear") {
		state.InEar = f.inEar
	}
	if flags.Changed("ear-side") {
		state.EarSide = f.earSide
	}
	if flags.Changed("user") {
		state.User = f.user
	}
	if f.from != "" {
		t, err := dataset.ParseTime(f.from)
		if err != nil {
			return state, fmt.Errorf("unparseable --from time %q", f.from)
		}
		state.Start = &t
	}
	if f.to != "" {
		t, err := dataset.ParseTime(f.to)
		if err != nil {
			return state, fmt.Errorf("unparseable --to time %q", f.to)
		}
		state.End = &t
	}

	return state, nil
}

// loadDataset reads a CSV or Excel file from disk into a dataset.
func loadDataset(path string) (*dataset.Dataset, error) {
	table, err := tabular.NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}

	cells := make([]map[string]string, len(table.Rows))
	for i, row := range table.Rows {
		cells[i] = row
	}
	return dataset.New(filepath.Base(path), table.Headers, cells)
}
