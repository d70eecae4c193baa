package http

import (
	"context"

	"boardanalyzer/internal/services"
	"boardanalyzer/internal/store"
)

// AnalyzerServiceInterface is the part of services.AnalyzerService the
// handlers use
type AnalyzerServiceInterface interface {
	Analyze(ctx context.Context, req services.AnalyzeRequest) (store.Report, error)
	Get(ctx context.Context, id string) (store.Report, error)
}

// HealthServiceInterface is the part of services.HealthService the handlers
// use
type HealthServiceInterface interface {
	Health(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
