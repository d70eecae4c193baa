package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"boardanalyzer/internal/infrastructure"
	"boardanalyzer/internal/store"
)

// BuildInfo identifies the running binary
type BuildInfo struct {
	Version   string
	BuildTime string
	Commit    string
}

// HealthService provides health check functionality
type HealthService struct {
	build     BuildInfo
	reports   ReportRepository
	runtime   *infrastructure.RuntimeMetrics
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                       `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Version   string                       `json:"version"`
	Runtime   *infrastructure.RuntimeStats `json:"runtime,omitempty"`
	Reports   *store.Stats                 `json:"reports,omitempty"`
}

// NewHealthService creates a health service. reports and rt may be nil.
func NewHealthService(build BuildInfo, reports ReportRepository, rt *infrastructure.RuntimeMetrics, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", build.Version),
		slog.String("build_time", build.BuildTime),
		slog.String("commit", build.Commit))

	return &HealthService{
		build:     build,
		reports:   reports,
		runtime:   rt,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// Health reports liveness plus runtime and report store statistics
func (hs *HealthService) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.build.Version,
	}

	if hs.runtime != nil {
		stats := hs.runtime.Snapshot()
		status.Runtime = &stats
	}
	if hs.reports != nil {
		stats := hs.reports.Stats()
		status.Reports = &stats
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.Duration("uptime", time.Since(hs.startTime)))
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.build.Version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.build.BuildTime != "" {
		result["build_time"] = hs.build.BuildTime
	}
	if hs.build.Commit != "" {
		result["commit"] = hs.build.Commit
	}
	return result
}
