package exporter

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"boardanalyzer/internal/report"
)

// WorkbookContentType is the media type of an xlsx download.
const WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WorkbookFilename names a downloaded workbook after the day it was produced.
func WorkbookFilename(day time.Time) string {
	return fmt.Sprintf("planka_report_%s.xlsx", day.Format("2006-01-02"))
}

// WorkbookWriter renders report tables as an xlsx workbook, one sheet per table.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With("component", "workbook_writer")}
}

// Write renders tables and streams the workbook to w.
func (ww *WorkbookWriter) Write(w io.Writer, tables report.Tables) error {
	f, err := ww.build(tables)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Bytes renders tables into an in-memory workbook.
func (ww *WorkbookWriter) Bytes(tables report.Tables) ([]byte, error) {
	var buf bytes.Buffer
	if err := ww.Write(&buf, tables); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (ww *WorkbookWriter) build(tables report.Tables) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F7F7F7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	// Built-in format 2 is "0.00".
	averageStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}

	sheets := tables.Sheets()
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %q: %w", sheet.Name, err)
		}

		if err := writeSheet(f, sheet, headerStyle, averageStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to fill sheet %q: %w", sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)

	ww.logger.Debug("workbook rendered",
		slog.Int("sheets", len(sheets)),
		slog.Int("scope_rows", len(tables.Scope)),
		slog.Int("lane_rows", len(tables.Lanes)),
		slog.Int("label_rows", len(tables.Labels)))
	return f, nil
}

func writeSheet(f *excelize.File, sheet report.Sheet, headerStyle, averageStyle int) error {
	headers := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &headers); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
		return err
	}

	for r, row := range sheet.Rows {
		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, start, &values); err != nil {
			return err
		}

		for c, v := range row {
			if _, ok := v.(float64); !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet.Name, cell, cell, averageStyle); err != nil {
				return err
			}
		}
	}

	end, err := excelize.ColumnNumberToName(len(sheet.Headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet.Name, "A", end, columnWidth(sheet))
}

// columnWidth fits the widest label or header, within sane bounds.
func columnWidth(sheet report.Sheet) float64 {
	width := 12
	for _, h := range sheet.Headers {
		width = max(width, len(h)+2)
	}
	for _, row := range sheet.Rows {
		if len(row) == 0 {
			continue
		}
		if s, ok := row[0].(string); ok {
			width = max(width, len(s)+2)
		}
	}
	return float64(min(width, 60))
}
