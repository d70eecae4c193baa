package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"boardanalyzer/internal/config"
	"boardanalyzer/internal/exporter"
	"boardanalyzer/internal/infrastructure"
	"boardanalyzer/internal/services"
	"boardanalyzer/internal/store"
	"boardanalyzer/internal/validation"
)

// ReferenceDateLayout is the --reference-date format.
const ReferenceDateLayout = "2006-01-02"

type analyzeOptions struct {
	configPath    string
	out           string
	csvDir        string
	referenceDate string
	logLevel      string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze <export.html>",
		Short: "Analyse a board export and write the report workbook",
		Long: `Reads a board HTML export, computes the Scope, Lane, Quoted Prices and
All Labels tables and writes them to an xlsx workbook. Ages are counted
from --reference-date, or today when it is omitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts, time.Now)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVarP(&opts.out, "out", "o", "", "workbook path (default planka_report_<date>.xlsx)")
	flags.StringVar(&opts.csvDir, "csv-dir", "", "also write one CSV per table into this directory")
	flags.StringVar(&opts.referenceDate, "reference-date", "", "count ages from this day (YYYY-MM-DD)")
	flags.StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, opts *analyzeOptions, now func() time.Time) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	// stdout carries the summary, so logs go to stderr
	logger, logFile, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	reference := now().UTC()
	if opts.referenceDate != "" {
		reference, err = time.Parse(ReferenceDateLayout, opts.referenceDate)
		if err != nil {
			return fmt.Errorf("invalid --reference-date %q, want YYYY-MM-DD: %w", opts.referenceDate, err)
		}
	}

	out := opts.out
	if out == "" {
		out = exporter.WorkbookFilename(reference)
	}

	validator := validation.NewFileValidator(cfg.Upload.Extensions, logger)
	if err := validator.ValidateExportFile(path, cfg.Upload.MaxBytes); err != nil {
		return err
	}
	if err := validator.ValidateWorkbookPath(out); err != nil {
		return err
	}
	if opts.csvDir != "" {
		if err := validator.ValidateOutputDirectory(opts.csvDir); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	analyzer, err := services.NewAnalyzerService(
		store.NewReportStore(store.Options{MaxEntries: 1}, logger),
		services.AnalyzerOptions{
			Report:   cfg.Report.ToReportConfig(),
			MaxBytes: cfg.Upload.MaxBytes,
			Now:      now,
		},
		logger,
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	rep, err := analyzer.Analyze(ctx, services.AnalyzeRequest{
		SourceName:    filepath.Base(path),
		Channel:       "cli",
		Data:          data,
		ReferenceDate: reference,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, rep.Workbook, 0644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	var csvPaths []string
	if opts.csvDir != "" {
		csvPaths, err = exporter.NewCSVWriter(opts.csvDir, logger).WriteTables(rep.Tables)
		if err != nil {
			return err
		}
	}

	logger.Info("Report written",
		slog.String("workbook", out),
		slog.Int("csv_files", len(csvPaths)))
	return printSummary(cmd.OutOrStdout(), rep, out, csvPaths)
}

func printSummary(w io.Writer, rep store.Report, workbook string, csvPaths []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Analyzed %d cards from %s (ages as of %s)\n\n",
		rep.CardCount, rep.SourceName, rep.ReferenceDate.Format(ReferenceDateLayout))

	fmt.Fprintln(tw, "Scope\tCount\tAverage Age (days)")
	for _, r := range rep.Tables.Scope {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\n", r.Scope, r.Count, r.AverageAgeDays)
	}
	fmt.Fprintln(tw)

	p := rep.Tables.Prices
	fmt.Fprintln(tw, "Quoted Prices\tCount\tTotal\tAverage")
	fmt.Fprintf(tw, "Value\t%d\t%d\t%.2f\n", p.ValueCount, p.TotalValue, p.AverageValue)
	fmt.Fprintf(tw, "Won\t%d\t%d\t%.2f\n", p.WonCount, p.TotalWon, p.AverageWon)
	fmt.Fprintf(tw, "Lost\t%d\t%d\t%.2f\n", p.LostCount, p.TotalLost, p.AverageLost)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Workbook: %s\n", workbook)
	for _, path := range csvPaths {
		fmt.Fprintf(tw, "CSV: %s\n", path)
	}
	return tw.Flush()
}
