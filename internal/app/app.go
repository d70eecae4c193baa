package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"boardanalyzer/internal/config"
	apperrors "boardanalyzer/internal/errors"
	"boardanalyzer/internal/infrastructure"
	customMiddleware "boardanalyzer/internal/middleware"
	"boardanalyzer/internal/services"
	"boardanalyzer/internal/store"
	handlers "boardanalyzer/internal/transport/http"
	"boardanalyzer/internal/validation"
)

// AppName is shown in logs and the version endpoint.
const AppName = "Board Analyzer"

// Options carries what the caller decides rather than the configuration
type Options struct {
	Build services.BuildInfo
	// Logger overrides the logger built from the configuration.
	Logger *slog.Logger
	// Now overrides the clock used for ages and download names.
	Now func() time.Time
}

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	Logger         *slog.Logger
	Store          *store.ReportStore
	Analyzer       *services.AnalyzerService
	HealthService  *services.HealthService
	OTelProviders  *infrastructure.OTelProviders
	Metrics        *infrastructure.BusinessMetrics
	RuntimeMetrics *infrastructure.RuntimeMetrics
}

// NewApplication wires the application from cfg. Nothing is started until
// Run or Serve.
func NewApplication(cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid configuration", err)
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", opts.Build.Version),
		slog.Int("port", cfg.Server.Port))

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.OTelConfigFromTelemetry(cfg.Telemetry, opts.Build.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(opts); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := app.setupRouter(opts); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}
	app.createServer()

	return app, nil
}

// initializeServices initializes the store, metrics and services
func (a *Application) initializeServices(opts Options) error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	a.Store = store.NewReportStore(store.Options{
		TTL:             a.Config.Store.TTL,
		MaxEntries:      a.Config.Store.MaxEntries,
		CleanupInterval: a.Config.Store.CleanupInterval,
	}, a.Logger)

	a.RuntimeMetrics, err = infrastructure.NewRuntimeMetrics(a.OTelProviders.Meter, func() int {
		return a.Store.Stats().Entries
	})
	if err != nil {
		return fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	a.Analyzer, err = services.NewAnalyzerService(a.Store, services.AnalyzerOptions{
		Report:   a.Config.Report.ToReportConfig(),
		MaxBytes: a.Config.Upload.MaxBytes,
		Now:      opts.Now,
		Tracer:   a.OTelProviders.Tracer,
		Metrics:  metrics,
	}, a.Logger)
	if err != nil {
		return err
	}

	a.HealthService = services.NewHealthService(opts.Build, a.Store, a.RuntimeMetrics, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter(opts Options) error {
	reportHandler, err := handlers.NewReportHandler(a.Analyzer, handlers.ReportHandlerOptions{
		Validator: validation.NewFileValidator(a.Config.Upload.Extensions, a.Logger),
		Report:    a.Config.Report.ToReportConfig(),
		MaxBytes:  a.Config.Upload.MaxBytes,
		Now:       opts.Now,
	}, a.Logger)
	if err != nil {
		return err
	}
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	errorHandler := apperrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")

	r := chi.NewRouter()

	// Order: RequestID → RealIP → OTel → Logger/Recoverer → headers → rate limit → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Scrapes stay out of request metrics and the rate limiter
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(apperrors.NewErrorMiddleware(errorHandler, a.Logger).Handler)
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, errorHandler, a.Logger).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		reportHandler.WebRoutes(r)

		r.Route("/api", func(r chi.Router) {
			r.Mount("/reports", reportHandler.APIRoutes())
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/version", healthHandler.Version)
		})
	})

	a.Router = r
	return nil
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Router,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
		MaxHeaderBytes:    a.Config.Server.MaxHeaderBytes,
	}
}

// Handler returns the application's HTTP handler
func (a *Application) Handler() http.Handler {
	return a.Router
}

// Run listens on the configured port and serves until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln together with the report store janitor.
// When ctx is cancelled or either part fails, the server is shut down
// gracefully and telemetry is flushed.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Store.Run(gctx)
	})

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "Server listening",
			slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(ctx, "Shutting down application")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.stop()
	return err
}

// stop releases telemetry resources once the server is down
func (a *Application) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if a.RuntimeMetrics != nil {
		if err := a.RuntimeMetrics.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error unregistering runtime metrics", slog.String("error", err.Error()))
		}
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}
	a.Logger.InfoContext(ctx, "Application shutdown complete")
}
