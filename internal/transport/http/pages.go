package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"boardanalyzer/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFuncs = template.FuncMap{
	"join":  strings.Join,
	"money": money,
}

// money formats a quoted amount in dollars with two decimals.
func money(v any) string {
	switch n := v.(type) {
	case int64:
		return fmt.Sprintf("$%.2f", float64(n))
	case int:
		return fmt.Sprintf("$%.2f", float64(n))
	case float64:
		return fmt.Sprintf("$%.2f", n)
	default:
		return fmt.Sprintf("$%v", v)
	}
}

// Pages renders the upload and result pages
type Pages struct {
	tmpl *template.Template
}

// NewPages parses the embedded templates
func NewPages() (*Pages, error) {
	tmpl, err := template.New("pages").Funcs(pageFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return &Pages{tmpl: tmpl}, nil
}

type indexPage struct {
	Accept   string
	Excluded []string
}

type resultPage struct {
	SourceName    string
	CardCount     int
	ReferenceDate time.Time
	DownloadURL   string
	WonColumn     string
	LostColumn    string
	Tables        report.Tables
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (p *Pages) render(w http.ResponseWriter, name string, data any) error {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s page: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
