package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("disk full")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantText string
	}{
		{"export", NewExportError("workbook", cause), ErrTypeExport, "[EXPORT] workbook: disk full"},
		{"validation", NewAppValidationError("no document"), ErrTypeValidation, "[VALIDATION] no document"},
		{"not found", NewNotFoundError("report"), ErrTypeNotFound, "[NOT_FOUND] report not found"},
		{"too large", NewTooLargeError("document too large"), ErrTypeTooLarge, "[TOO_LARGE] document too large"},
		{"config", NewConfigError("bad config", cause), ErrTypeConfig, "[CONFIG] bad config: disk full"},
		{"rate limit", NewRateLimitError(2), ErrTypeRateLimit, "[RATE_LIMIT] Rate limit exceeded. Please retry after 2 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantText, tt.err.Error())
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := fmt.Errorf("analyze: %w", NewExportError("render workbook", cause))

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeExport, appErr.Type)
}

func TestAppError_WithCauseKeepsSentinelIdentity(t *testing.T) {
	sentinel := NewTooLargeError("document too large")
	cause := fmt.Errorf("read body")

	wrapped := sentinel.WithCause(cause)

	assert.Nil(t, sentinel.Cause, "sentinel must not be mutated")
	assert.ErrorIs(t, wrapped, sentinel)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, NewTooLargeError("other message"))
	assert.NotErrorIs(t, wrapped, NewAppValidationError("document too large"))
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeNotFound, Message: "report not found"}
	err.WithContext("report_id", "abc").WithContext("ttl", "30m")

	assert.Equal(t, map[string]interface{}{"report_id": "abc", "ttl": "30m"}, err.Context)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeReportNotFound, "Not Found", "report not found", "/api/reports/x").
		WithExtension("trace_id", "req-1").
		WithExtension("status", "overridden?")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeReportNotFound, got["type"])
	assert.Equal(t, "Not Found", got["title"])
	assert.Equal(t, float64(http.StatusNotFound), got["status"], "standard fields win over extensions")
	assert.Equal(t, "report not found", got["detail"])
	assert.Equal(t, "/api/reports/x", got["instance"])
	assert.Equal(t, "req-1", got["trace_id"])
}

func TestProblemDetails_OmitsEmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: "Internal", Status: 500})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.NotContains(t, got, "detail")
	assert.NotContains(t, got, "instance")
}
