// Package infrastructure wires the cross-cutting concerns: the JSON slog
// logger with trace correlation, OpenTelemetry providers (stdout traces,
// Prometheus metrics), the analyzer's business metrics and runtime gauges.
package infrastructure
