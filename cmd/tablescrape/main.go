// Command tablescrape extracts an HTML table from a web page using an
// XPath selector, prints a preview, and exports it as CSV/XLSX with an
// optional bar chart of one numeric column.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"edacli/internal/chart"
	"edacli/internal/config"
	"edacli/internal/exporter"
	"edacli/internal/fetch"
	"edacli/internal/infrastructure"
	"edacli/internal/report"
	"edacli/internal/scrape"

	"github.com/google/uuid"
)

const defaultPageURL = "https://en.wikipedia.org/wiki/List_of_countries_and_dependencies_by_area"

func main() {
	pageURL := flag.String("url", defaultPageURL, "page to scrape")
	xpathExpr := flag.String("xpath", scrape.FirstWikiTableXPath, "XPath expression selecting the table node")
	outDir := flag.String("out", "", "output root directory (defaults to the executable directory)")
	format := flag.String("format", "csv", "export format: csv | xlsx | both")
	chartCol := flag.String("chart", "", "numeric column to render as a bar chart (optional)")
	labelCol := flag.String("labels", "", "column providing bar labels (defaults to the first column)")
	limit := flag.Int("limit", 10, "rows shown in the terminal preview")
	refresh := flag.Bool("refresh", false, "ignore the page cache and re-download")
	flag.Parse()

	paths, err := resolvePaths(*outDir)
	if err != nil {
		fmt.Printf("Error: Failed to initialize paths: %v\n", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Printf("Error: Failed to create required directories: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: Failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}
	cfg.Logging.FilePath = paths.GetLogPath("tablescrape.log")

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.WithRunID(context.Background(), uuid.New().String())

	logger.InfoContext(ctx, "starting table extraction",
		slog.String("url", *pageURL),
		slog.String("xpath", *xpathExpr),
		slog.String("format", *format))

	if err := run(ctx, cfg, paths, logger, *pageURL, *xpathExpr, *format, *chartCol, *labelCol, *limit, *refresh); err != nil {
		logger.ErrorContext(ctx, "table extraction failed", slog.String("error", err.Error()))
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger,
	pageURL, xpathExpr, format, chartCol, labelCol string, limit int, refresh bool) error {

	if err := validateURL(pageURL); err != nil {
		return err
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	fetcher := fetch.New(cfg.Fetch, paths, logger)
	body, cached, err := fetcher.Page(ctx, pageURL, refresh)
	if err != nil {
		return fmt.Errorf("fetch page: %w", err)
	}
	logger.InfoContext(ctx, "page fetched",
		slog.Int("bytes", len(body)),
		slog.Bool("from_cache", cached))

	table, err := scrape.Select(body, xpathExpr)
	if err != nil {
		return fmt.Errorf("select table: %w", err)
	}
	logger.InfoContext(ctx, "table extracted",
		slog.String("caption", table.Caption),
		slog.Int("columns", len(table.Headers)),
		slog.Int("rows", table.NumRows()))

	report.NewPrinter(os.Stdout).TablePreview(table, limit)

	if format == "csv" || format == "both" {
		if err := exporter.NewCSVWriter(paths).WriteTable(table, paths.ScrapedCSV); err != nil {
			return fmt.Errorf("export CSV: %w", err)
		}
		fmt.Printf("Wrote %s\n", paths.ScrapedCSV)
	}
	if format == "xlsx" || format == "both" {
		dest := paths.GetReportPath("scraped_table.xlsx")
		if err := exporter.NewWorkbookWriter().WriteTable(table, dest); err != nil {
			return fmt.Errorf("export XLSX: %w", err)
		}
		fmt.Printf("Wrote %s\n", dest)
	}

	if chartCol != "" {
		if err := renderColumnChart(table, chartCol, labelCol, paths); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "table extraction completed", slog.Int("rows", table.NumRows()))
	return nil
}

// renderColumnChart draws one numeric column against a label column
func renderColumnChart(table *scrape.Table, chartCol, labelCol string, paths *config.Paths) error {
	values, err := table.NumericColumn(chartCol)
	if err != nil {
		return fmt.Errorf("chart column: %w", err)
	}

	if labelCol == "" {
		labelCol = table.Headers[0]
	}
	labels, err := table.Column(labelCol)
	if err != nil {
		return fmt.Errorf("label column: %w", err)
	}

	dest := paths.GetChartPath(fmt.Sprintf("table_%s.png", sanitizeFilename(chartCol)))
	renderer := chart.NewRenderer()
	if err := renderer.SavePNG(dest, func(w io.Writer) error {
		return renderer.Bars(chartCol, labels, values, w)
	}); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	fmt.Printf("Wrote %s\n", dest)
	return nil
}

// resolvePaths roots the layout at an explicit directory when given
func resolvePaths(outDir string) (*config.Paths, error) {
	if outDir != "" {
		return config.PathsAt(outDir), nil
	}
	return config.GetPaths()
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	return nil
}

func validateFormat(format string) error {
	switch format {
	case "csv", "xlsx", "both":
		return nil
	}
	return fmt.Errorf("invalid format %q (want csv, xlsx or both)", format)
}

// sanitizeFilename keeps chart filenames shell-friendly
func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
