package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"boardanalyzer/internal/config"
	"boardanalyzer/internal/exporter"
	"boardanalyzer/internal/services"
	"boardanalyzer/internal/shared/testutil"
	handlers "boardanalyzer/internal/transport/http"
)

var testNow = time.Date(2023, 1, 12, 15, 30, 0, 0, time.UTC)

func newTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Server.ShutdownTimeout = 5 * time.Second
	if mutate != nil {
		mutate(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	app, err := NewApplication(cfg, Options{
		Build:  services.BuildInfo{Version: "1.0.0-test", Commit: "abc123"},
		Logger: logger,
		Now:    func() time.Time { return testNow },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.OTelProviders.Shutdown(context.Background()) })
	return app
}

func sampleExport() []byte {
	return testutil.NewBoardExport().
		Column("Contacted",
			"Received: 01/02/23 Install Quoted Price: $1,000",
			"Received: 01/10/23 Warranty",
			"no date here").
		Column("Completed",
			"Received: 12/28/22 Demand Repair Quoted Price $1,200").
		Column("Canceled",
			"Received: 01/11/23 Quoted Price: 450").
		Bytes()
}

func upload(t *testing.T, h http.Handler, path, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(handlers.FormFileField, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewApplication(t *testing.T) {
	app := newTestApp(t, nil)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Store)
	assert.NotNil(t, app.Analyzer)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.RuntimeMetrics)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, app.Router, app.Handler())
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	_, err := NewApplication(nil, Options{})
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Report.WonColumn = ""
	logger, _ := testutil.NewTestLogger(t)
	_, err = NewApplication(cfg, Options{Logger: logger})
	assert.Error(t, err)
}

func TestApplication_BrowserFlow(t *testing.T) {
	app := newTestApp(t, nil)
	h := app.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = upload(t, h, "/analyze", "board.html", sampleExport())
	require.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()
	assert.Contains(t, page, "<td>Total Value</td><td>1</td><td>$1000.00</td>")
	assert.Contains(t, page, "<td>Total Won (Completed)</td><td>1</td><td>$1200.00</td>")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/download", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, exporter.WorkbookContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "planka_report_2023-01-12.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Scope", "Lane", "Quoted Prices", "All Labels"}, f.GetSheetList())
}

func TestApplication_DownloadWithoutReport(t *testing.T) {
	app := newTestApp(t, nil)

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No report available. Upload a file first.")
}

func TestApplication_ReportAPI(t *testing.T) {
	app := newTestApp(t, nil)
	h := app.Handler()

	w := upload(t, h, "/api/reports", "board.htm", sampleExport())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created handlers.ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 4, created.CardCount)
	assert.Equal(t, "2023-01-12", created.ReferenceDate)
	require.NotEmpty(t, created.Tables.Scope)
	assert.Equal(t, 2, created.Tables.Scope[0].Count)
	assert.Equal(t, 6.0, created.Tables.Scope[0].AverageAgeDays)
	assert.Equal(t, int64(450), created.Tables.Prices.TotalLost)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, created.WorkbookURL, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, exporter.WorkbookContentType, w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reports/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplication_UploadLimit(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Upload.MaxBytes = 64
	})

	w := upload(t, app.Handler(), "/api/reports", "board.html", sampleExport())
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestApplication_HealthAndVersion(t *testing.T) {
	app := newTestApp(t, nil)
	h := app.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Contains(t, health, "reports")
	assert.Contains(t, health, "runtime")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var version map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &version))
	assert.Equal(t, "1.0.0-test", version["version"])
	assert.Equal(t, "abc123", version["commit"])
}

func TestApplication_Metrics(t *testing.T) {
	app := newTestApp(t, nil)
	h := app.Handler()

	upload(t, h, "/api/reports", "board.html", sampleExport())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "board_analyses_total")
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestApplication_NotFound(t *testing.T) {
	app := newTestApp(t, nil)

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, "/errors/not-found", problem["type"])
}

func TestApplication_RateLimit(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.1, Burst: 1}
	})
	h := app.Handler()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	// Metrics scrapes are not rate limited
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApplication_Serve(t *testing.T) {
	app := newTestApp(t, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/api/health", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = http.Get(url)
	assert.Error(t, err)
}
