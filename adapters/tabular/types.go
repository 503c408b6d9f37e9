package tabular

// RawRowData represents one data row as raw string key-value pairs
type RawRowData map[string]string

// TableData represents a parsed tabular file
type TableData struct {
	Headers []string     // Column headers, trimmed, in file order
	Rows    []RawRowData // Data rows
}
