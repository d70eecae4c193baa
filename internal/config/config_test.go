package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardanalyzer/internal/report"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{".html", ".htm"}, cfg.Upload.Extensions)
	assert.Equal(t, 30*time.Minute, cfg.Store.TTL)
	assert.Equal(t, 100, cfg.Store.MaxEntries)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.Equal(t, report.DefaultConfig(), cfg.Report.ToReportConfig())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9090
  read_timeout: 5s
store:
  ttl: 10m
report:
  excluded_columns: [Done]
  won_column: Done
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 10*time.Minute, cfg.Store.TTL)
				assert.Equal(t, []string{"Done"}, cfg.Report.ExcludedColumns)
				assert.Equal(t, "Done", cfg.Report.WonColumn)
				assert.Equal(t, "Canceled", cfg.Report.LostColumn)
				assert.Len(t, cfg.Report.AllLabels, 34)
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"BOARD_SERVER_PORT":              "7070",
				"BOARD_LOGGING_LEVEL":            "debug",
				"BOARD_UPLOAD_MAX_BYTES":         "1024",
				"BOARD_REPORT_LANES":             "Contacted,Scheduled",
				"BOARD_TELEMETRY_TRACE_EXPORTER": "stdout",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, int64(1024), cfg.Upload.MaxBytes)
				assert.Equal(t, []string{"Contacted", "Scheduled"}, cfg.Report.Lanes)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"BOARD_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "unknown log output",
			file:    "logging:\n  output: syslog\n",
			wantErr: true,
		},
		{
			name:    "blank won column",
			file:    "report:\n  won_column: \"\"\n",
			wantErr: true,
		},
		{
			name:    "extension without dot",
			env:     map[string]string{"BOARD_UPLOAD_EXTENSIONS": "html"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
		{
			name:    "bad env value",
			env:     map[string]string{"BOARD_STORE_TTL": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestReportConfig_ToReportConfigCopies(t *testing.T) {
	section := Default().Report
	converted := section.ToReportConfig()
	converted.Lanes[0] = "changed"

	assert.Equal(t, "Receipt Confirmed <7 days", section.Lanes[0])
}
