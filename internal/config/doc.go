// Package config provides centralized configuration management for the board
// analyzer.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources, later ones winning:
//
//	1. Default values (Default)
//	2. A YAML file: the path given to Load, else config.yaml or configs/config.yaml
//	3. Environment variables prefixed with BOARD_
//
// # Environment Variables
//
// Nested sections join their names with underscores:
//
//	BOARD_SERVER_PORT=8080
//	BOARD_LOGGING_LEVEL=debug
//	BOARD_UPLOAD_MAX_BYTES=33554432
//	BOARD_STORE_TTL=30m
//	BOARD_TELEMETRY_TRACE_EXPORTER=stdout
//	BOARD_REPORT_EXCLUDED_COLUMNS=Completed,Canceled
//
// # Validation
//
// Load validates the result with go-playground/validator struct tags and
// checks the report section through report.Config.Validate.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reportCfg := cfg.Report.ToReportConfig()
package config
