package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardanalyzer/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantDetail string
	}{
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("analyze: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "max bytes reader",
			err:        fmt.Errorf("read upload: %w", &http.MaxBytesError{Limit: 1024}),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantDetail: "The request body exceeds the maximum allowed size of 1024 bytes",
		},
		{
			name:       "validation app error",
			err:        fmt.Errorf("analyze: %w", NewAppValidationError("no document uploaded")),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantDetail: "no document uploaded",
		},
		{
			name:       "not found app error",
			err:        NewNotFoundError("report"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeReportNotFound,
			wantDetail: "report not found",
		},
		{
			name:       "too large app error",
			err:        NewTooLargeError("document exceeds 10 bytes"),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantDetail: "document exceeds 10 bytes",
		},
		{
			name:       "rate limit app error",
			err:        NewRateLimitError(3),
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
			wantDetail: "Rate limit exceeded. Please retry after 3 seconds",
		},
		{
			name:       "export app error hides cause",
			err:        NewExportError("write workbook", fmt.Errorf("secret path /tmp/x")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExportFailed,
			wantDetail: "The report could not be rendered",
		},
		{
			name:       "plain error",
			err:        fmt.Errorf("something odd"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantDetail: "An unexpected error occurred while processing your request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodPost, "/api/reports", nil)
			rec := httptest.NewRecorder()
			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/reports", body["instance"])
			assert.Contains(t, body, "trace_id")
			assert.NotContains(t, body, "stack")
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body["detail"])
			}
			assert.True(t, logs.ContainsMessage("request failed"))
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	h := NewErrorHandler(nil, false)
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, rec.Body.Len())
}

func TestErrorHandler_LogLevelFollowsStatus(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)
	req := httptest.NewRequest(http.MethodGet, "/download", nil)

	h.HandleError(httptest.NewRecorder(), req, NewNotFoundError("report"))
	h.HandleError(httptest.NewRecorder(), req, fmt.Errorf("boom"))

	assert.Len(t, logs.GetRecordsByLevel(slog.LevelWarn), 1)
	assert.Len(t, logs.GetRecordsByLevel(slog.LevelError), 1)
	testutil.AssertLogAttr(t, logs, "component", "error_handler")
}

func TestErrorHandler_AppErrorContextBecomesExtension(t *testing.T) {
	h := NewErrorHandler(nil, false)
	err := NewNotFoundError("report").WithContext("report_id", "abc")

	problem := h.ErrorToProblem(err, httptest.NewRequest(http.MethodGet, "/api/reports/abc", nil))

	assert.Equal(t, "abc", problem.Extensions["report_id"])
	assert.Equal(t, "NOT_FOUND", problem.Extensions["error_code"])
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	h := NewErrorHandler(nil, true)

	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("boom"))
	assert.Contains(t, decodeProblem(t, rec), "stack")

	rec = httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), NewNotFoundError("report"))
	assert.NotContains(t, decodeProblem(t, rec), "stack", "client errors never carry a stack")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewErrorHandler(nil, false)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeNotFound, body["type"])
	assert.NotEmpty(t, body["trace_id"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body = decodeProblem(t, rec)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.True(t, strings.Contains(body["detail"].(string), "DELETE"))
}
