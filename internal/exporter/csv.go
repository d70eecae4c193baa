package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"boardanalyzer/internal/report"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at dir
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{dir: dir, logger: logger.With("component", "csv_writer")}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()

	return writer.Error()
}

// WriteTables writes one CSV file per report sheet and returns their paths
// in sheet order.
func (w *CSVWriter) WriteTables(tables report.Tables) ([]string, error) {
	var paths []string
	for _, sheet := range tables.Sheets() {
		records := make([][]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			records = append(records, formatRow(row))
		}

		name := CSVFilename(sheet.Name)
		if err := w.WriteCSV(name, WriteOptions{
			Headers:   sheet.Headers,
			Records:   records,
			BOMPrefix: true,
		}); err != nil {
			return paths, fmt.Errorf("failed to export %s: %w", sheet.Name, err)
		}
		paths = append(paths, w.resolvePath(name))
	}
	return paths, nil
}

// CSVFilename maps a sheet name to its file name, e.g. "Quoted Prices" to
// "quoted_prices.csv".
func CSVFilename(sheet string) string {
	return strings.ReplaceAll(strings.ToLower(sheet), " ", "_") + ".csv"
}

func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.dir == "" {
		return filePath
	}
	return filepath.Join(w.dir, filePath)
}
