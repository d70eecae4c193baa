package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"boardanalyzer/internal/report"
)

// EnvPrefix namespaces every environment variable, e.g. BOARD_SERVER_PORT.
const EnvPrefix = "BOARD"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Upload    UploadConfig    `yaml:"upload" envconfig:"UPLOAD"`
	Store     StoreConfig     `yaml:"store" envconfig:"STORE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// UploadConfig bounds what the analyzer accepts
type UploadConfig struct {
	MaxBytes   int64    `yaml:"max_bytes" envconfig:"MAX_BYTES" validate:"min=1"`
	Extensions []string `yaml:"extensions" envconfig:"EXTENSIONS" validate:"min=1,dive,startswith=."`
}

// StoreConfig controls how long generated reports stay downloadable
type StoreConfig struct {
	TTL             time.Duration `yaml:"ttl" envconfig:"TTL" validate:"gt=0"`
	MaxEntries      int           `yaml:"max_entries" envconfig:"MAX_ENTRIES" validate:"min=1"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" envconfig:"CLEANUP_INTERVAL" validate:"gt=0"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// ReportConfig carries the analyzer groupings
type ReportConfig struct {
	ExcludedColumns []string `yaml:"excluded_columns" envconfig:"EXCLUDED_COLUMNS"`
	Lanes           []string `yaml:"lanes" envconfig:"LANES"`
	FocusedLabels   []string `yaml:"focused_labels" envconfig:"FOCUSED_LABELS"`
	AllLabels       []string `yaml:"all_labels" envconfig:"ALL_LABELS"`
	WonColumn       string   `yaml:"won_column" envconfig:"WON_COLUMN"`
	LostColumn      string   `yaml:"lost_column" envconfig:"LOST_COLUMN"`
}

// ToReportConfig converts the section into the aggregator's configuration
func (r ReportConfig) ToReportConfig() report.Config {
	return report.Config{
		ExcludedColumns: append([]string(nil), r.ExcludedColumns...),
		Lanes:           append([]string(nil), r.Lanes...),
		FocusedLabels:   append([]string(nil), r.FocusedLabels...),
		AllLabels:       append([]string(nil), r.AllLabels...),
		WonColumn:       r.WonColumn,
		LostColumn:      r.LostColumn,
	}
}

func reportSection(c report.Config) ReportConfig {
	return ReportConfig{
		ExcludedColumns: c.ExcludedColumns,
		Lanes:           c.Lanes,
		FocusedLabels:   c.FocusedLabels,
		AllLabels:       c.AllLabels,
		WonColumn:       c.WonColumn,
		LostColumn:      c.LostColumn,
	}
}

var validate = validator.New()

// Load builds the configuration from defaults, then the YAML file at path
// (or the first config.yaml found when path is empty), then BOARD_*
// environment variables. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Report.ToReportConfig().Validate()
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Upload: UploadConfig{
			MaxBytes:   32 << 20, // 32MB
			Extensions: []string{".html", ".htm"},
		},
		Store: StoreConfig{
			TTL:             30 * time.Minute,
			MaxEntries:      100,
			CleanupInterval: 5 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Report: reportSection(report.DefaultConfig()),
	}
}
