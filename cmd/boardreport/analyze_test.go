package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"boardanalyzer/internal/shared/testutil"
)

func writeExport(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	export := testutil.NewBoardExport().
		Column("Contacted",
			"Received: 01/02/23 Install Quoted Price: $1,000",
			"Received: 01/10/23 Warranty").
		Column("Completed", "Received: 12/28/22 Quoted Price $1,200").
		Bytes()
	require.NoError(t, os.WriteFile(path, export, 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Only failures reach the log
	t.Setenv("BOARD_LOGGING_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeExport(t, dir, "board.html")
	out := filepath.Join(dir, "out", "report.xlsx")
	csvDir := filepath.Join(dir, "csv")

	stdout, err := execute(t, "analyze", input,
		"--out", out,
		"--csv-dir", csvDir,
		"--reference-date", "2023-01-12")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Analyzed 3 cards from board.html (ages as of 2023-01-12)")
	assert.Contains(t, stdout, "Workbook: "+out)
	assert.Regexp(t, `Won\s+1\s+1200\s+1200\.00`, stdout)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Scope", "Lane", "Quoted Prices", "All Labels"}, f.GetSheetList())

	rows, err := f.GetRows("Scope")
	require.NoError(t, err)
	require.Greater(t, len(rows), 1)
	assert.Equal(t, []string{"Scope", "Count", "Average Age (days)"}, rows[0])

	for _, name := range []string{"scope.csv", "lane.csv", "quoted_prices.csv", "all_labels.csv"} {
		assert.FileExists(t, filepath.Join(csvDir, name))
		assert.Contains(t, stdout, "CSV: "+filepath.Join(csvDir, name))
	}
}

func TestAnalyzeCommand_LogsCarryTraceID(t *testing.T) {
	dir := t.TempDir()
	input := writeExport(t, dir, "board.html")
	t.Setenv("BOARD_LOGGING_LEVEL", "info")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"analyze", input, "--out", filepath.Join(dir, "report.xlsx")})
	require.NoError(t, root.Execute())

	assert.Contains(t, stderr.String(), `"msg":"analysis complete"`)
	assert.Regexp(t, `"trace_id":"[0-9a-f-]{36}"`, stderr.String())
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeExport(t, dir, "board.html")
	pdf := filepath.Join(dir, "board.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing argument",
			args:    []string{"analyze"},
			wantErr: "accepts 1 arg",
		},
		{
			name:    "bad reference date",
			args:    []string{"analyze", input, "--reference-date", "12/01/2023"},
			wantErr: "invalid --reference-date",
		},
		{
			name:    "unsupported input",
			args:    []string{"analyze", pdf, "--out", filepath.Join(dir, "r.xlsx")},
			wantErr: "unsupported file type",
		},
		{
			name:    "missing input",
			args:    []string{"analyze", filepath.Join(dir, "absent.html")},
			wantErr: "does not exist",
		},
		{
			name:    "workbook without xlsx extension",
			args:    []string{"analyze", input, "--out", filepath.Join(dir, "report.csv")},
			wantErr: ".xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAnalyzeCommand_DefaultOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeExport(t, dir, "board.htm")

	cmd := newAnalyzeCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	t.Setenv("BOARD_LOGGING_LEVEL", "error")

	now := func() time.Time { return time.Date(2023, 1, 12, 8, 0, 0, 0, time.UTC) }
	opts := &analyzeOptions{csvDir: ""}
	// Relative default output lands in the working directory
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, runAnalyze(cmd, input, opts, now))
	assert.FileExists(t, filepath.Join(dir, "planka_report_2023-01-12.xlsx"))
	assert.True(t, strings.HasPrefix(stdout.String(), "Analyzed 3 cards"))
}

func TestVersionCommand(t *testing.T) {
	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "boardreport dev\n", stdout)
}
