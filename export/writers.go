// Package export persists result tables to CSV and JSON files.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/anchorscan/anchorscan/models"
	"github.com/gocarina/gocsv"
)

// Default export filenames for the full table and a filtered view.
const (
	DefaultCSVName         = "anchor_text_results.csv"
	DefaultFilteredCSVName = "anchor_text_results_filtered.csv"
)

// RowWriter persists a result table.
type RowWriter interface {
	Write(table *models.ResultTable) error
	Close() error
	Validate() error
}

// CSVWriter writes a result table to a UTF-8 CSV file with a header row.
type CSVWriter struct {
	file *os.File
	mu   sync.Mutex
}

// NewCSVWriter opens filename for writing, creating directories as needed.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	return &CSVWriter{file: f}, nil
}

// Write renders the whole table. Tables without brand columns use the fixed
// three-column layout driven by struct tags; per-brand tables get one extra
// column per brand between Page Title and Anchor Text. An empty table still
// produces the header row.
func (cw *CSVWriter) Write(table *models.ResultTable) error {
	if table == nil {
		return fmt.Errorf("no result table")
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()

	if len(table.BrandColumns) == 0 {
		if err := gocsv.MarshalFile(&table.Rows, cw.file); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	}

	return cw.writeBrandColumns(table)
}

func (cw *CSVWriter) writeBrandColumns(table *models.ResultTable) error {
	writer := csv.NewWriter(cw.file)
	if err := writer.Write(table.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range table.Rows {
		record := make([]string, 0, 3+len(table.BrandColumns))
		record = append(record, row.SourceURL, row.PageTitle)
		for _, brand := range table.BrandColumns {
			record = append(record, row.BrandAnchors[brand])
		}
		record = append(record, row.AnchorText)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.file.Close()
}

// Validate ensures the file has content.
func (cw *CSVWriter) Validate() error {
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// JSONWriter writes result rows as newline-delimited JSON.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends table rows in JSONL format.
func (jw *JSONWriter) Write(table *models.ResultTable) error {
	if table == nil {
		return fmt.Errorf("no result table")
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()

	for i := range table.Rows {
		if err := jw.encoder.Encode(&table.Rows[i]); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

// WriteCSVFile writes table to path in one shot. Used by the interactive
// shell for export keys, where the writer lifecycle is a single call.
func WriteCSVFile(path string, table *models.ResultTable) error {
	w, err := NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(table); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
