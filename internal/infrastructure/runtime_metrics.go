package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a point-in-time view of the process, reported by the
// health endpoint.
type RuntimeStats struct {
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	SysMB         float64 `json:"sys_mb"`
	GCCount       uint32  `json:"gc_count"`
	LastGCPauseMS float64 `json:"last_gc_pause_ms"`
	CPUCount      int     `json:"cpu_count"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	StoredReports int     `json:"stored_reports"`
}

// RuntimeMetrics exports process gauges and the report store size. Values
// are read on each collection through a registered callback, so there is
// no polling goroutine.
type RuntimeMetrics struct {
	startTime    time.Time
	storeEntries func() int
	registration metric.Registration
}

// NewRuntimeMetrics registers the gauges on meter (the global meter when
// nil). storeEntries may be nil.
func NewRuntimeMetrics(meter metric.Meter, storeEntries func() int) (*RuntimeMetrics, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}
	rm := &RuntimeMetrics{startTime: time.Now(), storeEntries: storeEntries}

	goroutines, err := meter.Int64ObservableGauge(
		"process_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, fmt.Errorf("goroutine gauge: %w", err)
	}
	heap, err := meter.Int64ObservableGauge(
		"process_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("heap gauge: %w", err)
	}
	uptime, err := meter.Float64ObservableGauge(
		"process_uptime_seconds",
		metric.WithDescription("Seconds since the application started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("uptime gauge: %w", err)
	}
	stored, err := meter.Int64ObservableGauge(
		"report_store_entries",
		metric.WithDescription("Reports currently held for download"),
	)
	if err != nil {
		return nil, fmt.Errorf("store gauge: %w", err)
	}

	rm.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := rm.Snapshot()
		o.ObserveInt64(goroutines, int64(stats.Goroutines))
		o.ObserveInt64(heap, int64(stats.HeapAllocMB*1024*1024))
		o.ObserveFloat64(uptime, stats.UptimeSeconds)
		o.ObserveInt64(stored, int64(stats.StoredReports))
		return nil
	}, goroutines, heap, uptime, stored)
	if err != nil {
		return nil, fmt.Errorf("register runtime callback: %w", err)
	}

	return rm, nil
}

// Snapshot reads the current runtime statistics
func (rm *RuntimeMetrics) Snapshot() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(mem.HeapAlloc) / 1024 / 1024,
		SysMB:         float64(mem.Sys) / 1024 / 1024,
		GCCount:       mem.NumGC,
		LastGCPauseMS: float64(mem.PauseNs[(mem.NumGC+255)%256]) / 1e6,
		CPUCount:      runtime.NumCPU(),
		UptimeSeconds: time.Since(rm.startTime).Seconds(),
	}
	if rm.storeEntries != nil {
		stats.StoredReports = rm.storeEntries()
	}
	return stats
}

// Close unregisters the collection callback
func (rm *RuntimeMetrics) Close() error {
	if rm.registration == nil {
		return nil
	}
	return rm.registration.Unregister()
}
