package tabular

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
)

// WriteCSV streams rows as CSV in the original column order, prefixed with a
// UTF-8 BOM so Excel renders the Chinese headers correctly. No index column
// is written.
func WriteCSV(w io.Writer, columns []string, rows []dataset.Row) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = row.Value(col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Index, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename names a download after its row count, matching what users
// already expect from the app: filtered_data_123.csv.
func ExportFilename(rowCount int) string {
	return fmt.Sprintf("filtered_data_%d.csv", rowCount)
}
