package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "boardanalyzer/internal/errors"
	"boardanalyzer/internal/exporter"
	"boardanalyzer/internal/report"
	"boardanalyzer/internal/services"
	"boardanalyzer/internal/store"
	"boardanalyzer/internal/validation"
)

// ReportCookie remembers the browser's current report id.
const ReportCookie = "board_report"

// FormReferenceDateField optionally overrides the day ages are counted
// from, in ReferenceDateLayout.
const (
	FormReferenceDateField = "reference_date"
	ReferenceDateLayout    = "2006-01-02"
)

// Plain-text messages of the browser flow.
const (
	msgNoFile   = "No file uploaded"
	msgNoReport = "No report available. Upload a file first."
)

// ReportHandlerOptions configures a ReportHandler
type ReportHandlerOptions struct {
	Validator *validation.FileValidator
	Report    report.Config
	MaxBytes  int64
	Now       func() time.Time
}

// ReportHandler serves the upload page, the result page, workbook downloads
// and the JSON report API.
type ReportHandler struct {
	service      AnalyzerServiceInterface
	validator    *validation.FileValidator
	pages        *Pages
	cfg          report.Config
	maxBytes     int64
	now          func() time.Time
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewReportHandler creates a new report handler
func NewReportHandler(service AnalyzerServiceInterface, opts ReportHandlerOptions, logger *slog.Logger) (*ReportHandler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pages, err := NewPages()
	if err != nil {
		return nil, err
	}
	if opts.Validator == nil {
		opts.Validator = validation.NewFileValidator([]string{".html", ".htm"}, logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &ReportHandler{
		service:      service,
		validator:    opts.Validator,
		pages:        pages,
		cfg:          opts.Report,
		maxBytes:     opts.MaxBytes,
		now:          opts.Now,
		logger:       logger.With(slog.String("handler", "report")),
		errorHandler: apperrors.NewErrorHandler(logger, false),
	}, nil
}

// WebRoutes mounts the browser flow at the root
func (h *ReportHandler) WebRoutes(r chi.Router) {
	r.Get("/", h.Index)
	r.Post("/analyze", h.Analyze)
	r.Get("/download", h.Download)
	r.Get("/download/{id}", h.DownloadByID)
}

// APIRoutes returns the JSON report API router
func (h *ReportHandler) APIRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.CreateReport)
	r.Get("/{id}", h.GetReport)
	r.Get("/{id}/workbook", h.GetWorkbook)

	return r
}

// Index handles GET /
func (h *ReportHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := indexPage{
		Accept:   strings.Join(h.validator.Extensions(), ","),
		Excluded: h.cfg.ExcludedColumns,
	}
	if err := h.pages.render(w, "index", data); err != nil {
		h.logger.ErrorContext(r.Context(), "index page failed", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Analyze handles POST /analyze: it analyses the uploaded export, remembers
// the report in a cookie and renders the result page.
func (h *ReportHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	rep, err := h.analyzeUpload(w, r, "web")
	if err != nil {
		h.plainError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     ReportCookie,
		Value:    rep.ID,
		Path:     "/",
		Expires:  rep.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	data := resultPage{
		SourceName:    rep.SourceName,
		CardCount:     rep.CardCount,
		ReferenceDate: rep.ReferenceDate,
		DownloadURL:   "/download/" + rep.ID,
		WonColumn:     h.cfg.WonColumn,
		LostColumn:    h.cfg.LostColumn,
		Tables:        rep.Tables,
	}
	if err := h.pages.render(w, "result", data); err != nil {
		h.logger.ErrorContext(r.Context(), "result page failed", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Download handles GET /download, serving the report named by the cookie
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(ReportCookie)
	if err != nil || cookie.Value == "" {
		http.Error(w, msgNoReport, http.StatusBadRequest)
		return
	}

	rep, err := h.service.Get(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			http.Error(w, msgNoReport, http.StatusBadRequest)
			return
		}
		h.plainError(w, r, err)
		return
	}
	h.writeWorkbook(w, rep)
}

// DownloadByID handles GET /download/{id}
func (h *ReportHandler) DownloadByID(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	h.writeWorkbook(w, rep)
}

// ReportResponse is the JSON view of a stored report
type ReportResponse struct {
	ID            string        `json:"id"`
	SourceName    string        `json:"source_name"`
	ReferenceDate string        `json:"reference_date"`
	CardCount     int           `json:"card_count"`
	CreatedAt     time.Time     `json:"created_at"`
	ExpiresAt     time.Time     `json:"expires_at"`
	Tables        report.Tables `json:"tables"`
	WorkbookURL   string        `json:"workbook_url"`
}

// Render implements render.Renderer
func (rr *ReportResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func newReportResponse(rep store.Report) *ReportResponse {
	return &ReportResponse{
		ID:            rep.ID,
		SourceName:    rep.SourceName,
		ReferenceDate: rep.ReferenceDate.Format(ReferenceDateLayout),
		CardCount:     rep.CardCount,
		CreatedAt:     rep.CreatedAt,
		ExpiresAt:     rep.ExpiresAt,
		Tables:        rep.Tables,
		WorkbookURL:   "/api/reports/" + rep.ID + "/workbook",
	}
}

// CreateReport handles POST /api/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.analyzeUpload(w, r, "api")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	if err := render.Render(w, r, newReportResponse(rep)); err != nil {
		h.errorHandler.HandleError(w, r, err)
	}
}

// GetReport handles GET /api/reports/{id}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if err := render.Render(w, r, newReportResponse(rep)); err != nil {
		h.errorHandler.HandleError(w, r, err)
	}
}

// GetWorkbook handles GET /api/reports/{id}/workbook
func (h *ReportHandler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeWorkbook(w, rep)
}

func (h *ReportHandler) analyzeUpload(w http.ResponseWriter, r *http.Request, channel string) (store.Report, error) {
	name, data, err := readUpload(w, r, h.maxBytes)
	if err != nil {
		return store.Report{}, err
	}
	if err := h.validator.ValidateExportName(name); err != nil {
		return store.Report{}, err
	}

	var reference time.Time
	if v := r.FormValue(FormReferenceDateField); v != "" {
		reference, err = time.Parse(ReferenceDateLayout, v)
		if err != nil {
			return store.Report{}, apperrors.NewAppValidationError("reference_date must be YYYY-MM-DD").WithCause(err)
		}
	}

	return h.service.Analyze(r.Context(), services.AnalyzeRequest{
		SourceName:    name,
		Channel:       channel,
		Data:          data,
		ReferenceDate: reference,
	})
}

func (h *ReportHandler) writeWorkbook(w http.ResponseWriter, rep store.Report) {
	w.Header().Set("Content-Type", exporter.WorkbookContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.WorkbookFilename(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(rep.Workbook); err != nil {
		h.logger.Warn("workbook write failed",
			slog.String("report_id", rep.ID),
			slog.String("error", err.Error()))
	}
}

// plainError answers the browser flow with a text body. The status comes
// from the same mapping the JSON API uses.
func (h *ReportHandler) plainError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoDocument) {
		http.Error(w, msgNoFile, http.StatusBadRequest)
		return
	}

	problem := h.errorHandler.ErrorToProblem(err, r)
	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("path", r.URL.Path))

	http.Error(w, problem.Detail, problem.Status)
}
