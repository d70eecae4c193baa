package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"boardanalyzer/internal/board"
	apperrors "boardanalyzer/internal/errors"
	"boardanalyzer/internal/exporter"
	"boardanalyzer/internal/infrastructure"
	"boardanalyzer/internal/report"
	"boardanalyzer/internal/store"
)

// ReportRepository keeps finished reports for later download
type ReportRepository interface {
	Put(r store.Report) store.Report
	Get(id string) (store.Report, bool)
	Stats() store.Stats
}

// AnalyzeRequest is one board export to analyse
type AnalyzeRequest struct {
	// SourceName is the uploaded or local file name.
	SourceName string
	// Channel labels metrics: "web", "api" or "cli".
	Channel string
	Data    []byte
	// ReferenceDate overrides the clock when non-zero.
	ReferenceDate time.Time
}

// AnalyzerOptions configures an AnalyzerService
type AnalyzerOptions struct {
	Report report.Config
	// MaxBytes bounds the document size; <= 0 disables the check.
	MaxBytes int64
	Now      func() time.Time
	Tracer   trace.Tracer
	Metrics  *infrastructure.BusinessMetrics
}

// AnalyzerService runs one extraction and aggregation pass per request and
// keeps the result in a ReportRepository.
type AnalyzerService struct {
	extractor *board.Extractor
	workbook  *exporter.WorkbookWriter
	reports   ReportRepository
	cfg       report.Config
	maxBytes  int64
	now       func() time.Time
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewAnalyzerService validates the report configuration and builds the
// service.
func NewAnalyzerService(reports ReportRepository, opts AnalyzerOptions, logger *slog.Logger) (*AnalyzerService, error) {
	if reports == nil {
		return nil, fmt.Errorf("report repository is required")
	}
	if err := opts.Report.Validate(); err != nil {
		return nil, apperrors.NewConfigError("report configuration", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(infrastructure.MeterName)
	}

	return &AnalyzerService{
		extractor: board.NewExtractor(logger),
		workbook:  exporter.NewWorkbookWriter(logger),
		reports:   reports,
		cfg:       opts.Report,
		maxBytes:  opts.MaxBytes,
		now:       opts.Now,
		tracer:    opts.Tracer,
		metrics:   opts.Metrics,
		logger:    infrastructure.WithComponent(logger, "analyzer_service"),
	}, nil
}

// Analyze extracts the cards of req.Data, aggregates the four tables,
// renders the workbook and stores the result.
func (s *AnalyzerService) Analyze(ctx context.Context, req AnalyzeRequest) (store.Report, error) {
	ctx, span := s.tracer.Start(ctx, "board.analyze", trace.WithAttributes(
		attribute.String("board.source", req.SourceName),
		attribute.String("board.channel", req.Channel),
		attribute.Int("board.bytes", len(req.Data)),
	))
	defer span.End()

	start := time.Now()
	stored, stats, err := s.analyze(ctx, req)

	infrastructure.RecordAnalysisMetrics(ctx, s.metrics, infrastructure.AnalysisResult{
		Source:       req.Channel,
		Bytes:        len(req.Data),
		Cards:        stats.Cards,
		SkippedCards: stats.EmptySkip + stats.UndatedSkip,
		Duration:     time.Since(start),
		Err:          err,
	})

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "analysis failed",
			slog.String("source", req.SourceName),
			slog.Int("bytes", len(req.Data)),
			slog.String("error", err.Error()))
		return store.Report{}, err
	}

	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"report.id":   stored.ID,
		"board.cards": stats.Cards,
	})
	s.logger.InfoContext(ctx, "analysis complete",
		slog.String("report_id", stored.ID),
		slog.String("source", req.SourceName),
		slog.Int("cards", stats.Cards),
		slog.Int("priced", stats.Priced),
		slog.Int("undated_skipped", stats.UndatedSkip),
		slog.Duration("duration", time.Since(start)))
	return stored, nil
}

func (s *AnalyzerService) analyze(ctx context.Context, req AnalyzeRequest) (store.Report, board.ExtractStats, error) {
	var stats board.ExtractStats

	if len(req.Data) == 0 {
		return store.Report{}, stats, ErrNoDocument
	}
	if s.maxBytes > 0 && int64(len(req.Data)) > s.maxBytes {
		return store.Report{}, stats, ErrDocumentTooLarge.WithCause(
			fmt.Errorf("%d bytes exceeds the limit of %d", len(req.Data), s.maxBytes))
	}
	if err := ctx.Err(); err != nil {
		return store.Report{}, stats, err
	}

	reference := req.ReferenceDate
	if reference.IsZero() {
		reference = s.now()
	}

	cards, stats := s.extractor.ExtractWithStats(board.ParseHTMLBytes(req.Data), reference)
	tables := report.Aggregate(cards, s.cfg)

	if err := ctx.Err(); err != nil {
		return store.Report{}, stats, err
	}

	workbook, err := s.workbook.Bytes(tables)
	if err != nil {
		return store.Report{}, stats, apperrors.NewExportError("render workbook", err)
	}

	stored := s.reports.Put(store.Report{
		SourceName:    req.SourceName,
		ReferenceDate: time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, time.UTC),
		CardCount:     len(cards),
		Tables:        tables,
		Workbook:      workbook,
	})
	return stored, stats, nil
}

// Get returns a stored report by id
func (s *AnalyzerService) Get(ctx context.Context, id string) (store.Report, error) {
	r, ok := s.reports.Get(id)
	infrastructure.RecordReportLookup(ctx, s.metrics, ok)
	if !ok {
		s.logger.DebugContext(ctx, "report lookup missed", slog.String("report_id", id))
		return store.Report{}, ErrReportNotFound.WithCause(nil).WithContext("report_id", id)
	}
	return r, nil
}

// Config returns the report configuration in use
func (s *AnalyzerService) Config() report.Config {
	return s.cfg
}
