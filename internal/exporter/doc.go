// Package exporter renders report tables for download.
//
// WorkbookWriter produces an xlsx workbook with the sheets Scope, Lane,
// Quoted Prices and All Labels, in that order. Every sheet starts with its
// header row, so an empty table still yields a labelled sheet.
//
// CSVWriter writes the same sheets as one UTF-8 CSV file each, prefixed with
// a BOM for Excel compatibility.
//
// Example usage:
//
//	tables := report.Aggregate(cards, report.DefaultConfig())
//
//	data, err := exporter.NewWorkbookWriter(logger).Bytes(tables)
//
//	paths, err := exporter.NewCSVWriter("out", logger).WriteTables(tables)
package exporter
