// Package http implements the HTTP handlers of the board analyzer. Handlers
// stay thin: they parse the request, call a service interface and format the
// response.
//
// # Routes
//
// The browser flow answers with HTML pages and plain-text errors:
//
//	GET  /               upload page
//	POST /analyze        analyse the multipart "file" field, render the result
//	GET  /download       workbook of the report named by the board_report cookie
//	GET  /download/{id}  workbook of a stored report
//
// The JSON API answers with RFC 7807 problem documents on error:
//
//	POST /api/reports               analyse an upload, 201 with the tables
//	GET  /api/reports/{id}          stored report as JSON
//	GET  /api/reports/{id}/workbook stored workbook
//	GET  /api/health                liveness, runtime and store statistics
//	GET  /api/version               build information
//
// # Testing
//
// Handlers depend on AnalyzerServiceInterface and HealthServiceInterface so
// tests substitute testify mocks and drive them with httptest.
package http
