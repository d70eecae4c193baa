// Package services holds the analyzer's business logic between the HTTP
// handlers (or the CLI) and the core packages.
//
// AnalyzerService runs one pass per upload:
//
//	bytes -> board.ParseHTMLBytes -> Extractor -> report.Aggregate
//	      -> exporter.WorkbookWriter -> ReportRepository
//
// and records a span plus business metrics for it. HealthService reports
// build, runtime and report store state.
//
// Errors returned to callers are the *AppError sentinels in errors.go; the
// HTTP layer maps them to problem responses by type.
package services
