package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// utf8BOM is stripped from the head of CSV streams before parsing; exports
// from the sensor app usually carry it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DataReader parses sensor exports in CSV or XLSX form.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for a file on disk, picking the format from
// the extension. Anything that is not .csv is treated as a workbook.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the file into structured form.
func (r *DataReader) ReadData() (*TableData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
	}
	defer file.Close()

	switch r.fileType {
	case "csv":
		return readCSV(file)
	case "xlsx":
		return readWorkbook(file)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ReadFrom parses an already-open stream, picking the format from the
// original filename. Uploads land here.
func ReadFrom(rd io.Reader, filename string) (*TableData, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".csv" {
		return readCSV(rd)
	}
	return readWorkbook(rd)
}

func readCSV(rd io.Reader) (*TableData, error) {
	buffered := bufio.NewReader(rd)
	if head, err := buffered.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := buffered.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("failed to skip BOM: %w", err)
		}
	}

	reader := csv.NewReader(buffered)
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	readTime := time.Since(readStart)
	log.Printf("[DataReader] CSV data read in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return processRows(rows)
}

func readWorkbook(rd io.Reader) (*TableData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	log.Printf("[DataReader] workbook opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	// Always use Sheet1
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook must have at least a header row and one data row")
	}

	return processRows(rows)
}

// processRows converts raw string rows into TableData format
func processRows(rows [][]string) (*TableData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	var dataRows []RawRowData
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RawRowData)

		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}

		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] file processed (%d columns, %d rows)", len(headers), len(dataRows))

	return &TableData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}
