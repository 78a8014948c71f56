// Command factors runs the exploratory factor analysis pipeline on the
// forest fires dataset: download, adequacy checks, extraction, rotation,
// exports and charts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"edacli/internal/chart"
	"edacli/internal/config"
	"edacli/internal/dataset"
	"edacli/internal/exporter"
	"edacli/internal/factor"
	"edacli/internal/fetch"
	"edacli/internal/infrastructure"
	"edacli/internal/report"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func main() {
	dataFlag := flag.String("data", "", "dataset CSV path or URL (defaults to the configured UCI URL)")
	numFactors := flag.Int("factors", 0, "number of factors to retain (0 = Kaiser criterion)")
	rotate := flag.String("rotate", "varimax", "rotation method: varimax | none")
	drop := flag.String("drop", "", "comma-separated columns to exclude from the analysis")
	outDir := flag.String("out", "", "output root directory (defaults to the executable directory)")
	charts := flag.Bool("charts", true, "render scree, variance and loading charts")
	xlsx := flag.Bool("xlsx", true, "write the combined XLSX workbook")
	refresh := flag.Bool("refresh", false, "re-download the dataset even if already present")
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
	cfg.Logging.FilePath = paths.GetLogPath("factors.log")

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.WithRunID(context.Background(), uuid.New().String())

	rotation, err := parseRotation(*rotate)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	opts := runOptions{
		dataSource: *dataFlag,
		drop:       splitColumns(*drop),
		charts:     *charts,
		xlsx:       *xlsx,
		refresh:    *refresh,
		analysis: factor.Options{
			NumFactors:    *numFactors,
			MinEigenvalue: cfg.Analysis.MinEigenvalue,
			Rotation:      rotation,
		},
	}

	logger.InfoContext(ctx, "starting factor analysis",
		slog.Int("factors", *numFactors),
		slog.String("rotation", string(rotation)),
		slog.String("drop", *drop))

	if err := run(ctx, cfg, paths, logger, opts); err != nil {
		logger.ErrorContext(ctx, "factor analysis failed", slog.String("error", err.Error()))
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	dataSource string
	drop       []string
	charts     bool
	xlsx       bool
	refresh    bool
	analysis   factor.Options
}

func run(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, opts runOptions) error {
	csvPath, err := resolveDataset(ctx, cfg, paths, logger, opts.dataSource, opts.refresh)
	if err != nil {
		return err
	}

	data, err := dataset.LoadFile(csvPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", csvPath),
		slog.Int("rows", data.Rows()))

	printer := report.NewPrinter(os.Stdout)
	summaries := data.Summary()
	printer.DatasetSummary(summaries)

	matrix, names, err := data.Matrix(opts.drop...)
	if err != nil {
		return fmt.Errorf("build analysis matrix: %w", err)
	}

	analyzer := factor.NewAnalyzer(opts.analysis, logger)
	result, err := analyzer.Analyze(ctx, matrix, names)
	if err != nil {
		return fmt.Errorf("factor analysis: %w", err)
	}

	printer.Correlation(result)
	printer.Adequacy(result, cfg.Analysis.KMOThreshold)
	printer.Loadings(result)
	printer.VarianceExplained(result)

	written, err := exportResults(result, summaries, paths, opts.xlsx)
	if err != nil {
		return err
	}

	if opts.charts {
		charts, err := renderCharts(ctx, result, cfg.Analysis.MinEigenvalue, paths)
		if err != nil {
			return err
		}
		written = append(written, charts...)
		logger.InfoContext(ctx, "charts rendered", slog.Int("count", len(charts)))
	}

	for _, p := range written {
		fmt.Printf("Wrote %s\n", p)
	}

	logger.InfoContext(ctx, "factor analysis completed",
		slog.Int("observations", result.Observations),
		slog.Int("variables", len(result.Variables)),
		slog.Int("retained_factors", result.NumFactors),
		slog.Float64("kmo", result.KMO.Overall))

	return nil
}

// resolveDataset returns the path of the CSV to analyze, downloading it
// first when the source is a URL or unset
func resolveDataset(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, source string, refresh bool) (string, error) {
	if source != "" && !looksLikeURL(source) {
		if _, err := os.Stat(source); err != nil {
			return "", fmt.Errorf("dataset file %s: %w", source, err)
		}
		return source, nil
	}

	url := source
	if url == "" {
		url = cfg.Analysis.DatasetURL
	}

	dest := paths.DatasetCSV
	if refresh {
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("remove stale dataset: %w", err)
		}
	}

	fetcher := fetch.New(cfg.Fetch, paths, logger)
	downloaded, err := fetcher.File(ctx, url, dest)
	if err != nil {
		return "", fmt.Errorf("download dataset: %w", err)
	}
	if downloaded {
		fmt.Printf("Downloaded %s\n", dest)
	}

	return dest, nil
}

// exportResults writes the CSV and XLSX artifacts and returns the paths
// it wrote
func exportResults(result *factor.Result, summaries []dataset.ColumnSummary, paths *config.Paths, xlsx bool) ([]string, error) {
	csv := exporter.NewCSVWriter(paths)
	eigenvaluesCSV := paths.GetReportPath("eigenvalues.csv")

	if err := csv.WriteCorrelation(result, paths.CorrelationCSV); err != nil {
		return nil, fmt.Errorf("export correlation: %w", err)
	}
	if err := csv.WriteLoadings(result, paths.LoadingsCSV); err != nil {
		return nil, fmt.Errorf("export loadings: %w", err)
	}
	if err := csv.WriteEigenvalues(result, eigenvaluesCSV); err != nil {
		return nil, fmt.Errorf("export eigenvalues: %w", err)
	}
	written := []string{paths.CorrelationCSV, paths.LoadingsCSV, eigenvaluesCSV}

	if xlsx {
		if err := exporter.NewWorkbookWriter().WriteAnalysis(result, summaries, paths.AnalysisXLSX); err != nil {
			return nil, fmt.Errorf("export workbook: %w", err)
		}
		written = append(written, paths.AnalysisXLSX)
	}

	return written, nil
}

// renderCharts draws every chart concurrently, one goroutine per file,
// and returns the paths it wrote. Renders not yet started when a sibling
// fails are skipped via the group context.
func renderCharts(ctx context.Context, result *factor.Result, minEigenvalue float64, paths *config.Paths) ([]string, error) {
	renderer := chart.NewRenderer()
	g, gctx := errgroup.WithContext(ctx)

	screePath := paths.GetChartPath("scree.png")
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return renderer.SavePNG(screePath, func(w io.Writer) error {
			return renderer.Scree(result.Eigenvalues, minEigenvalue, w)
		})
	})

	cumulativePath := paths.GetChartPath("cumulative_variance.png")
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		return renderer.SavePNG(cumulativePath, func(w io.Writer) error {
			return renderer.CumulativeVariance(result.CumulativeVariance, w)
		})
	})

	loadingPaths := make([]string, result.NumFactors)
	for k := 0; k < result.NumFactors; k++ {
		k := k
		loadingPaths[k] = paths.GetChartPath(fmt.Sprintf("loadings_factor_%d.png", k+1))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return renderer.SavePNG(loadingPaths[k], func(w io.Writer) error {
				return renderer.Loadings(result, k, w)
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render charts: %w", err)
	}

	return append([]string{screePath, cumulativePath}, loadingPaths...), nil
}

func resolvePaths(outDir string) (*config.Paths, error) {
	if outDir != "" {
		return config.PathsAt(outDir), nil
	}
	return config.GetPaths()
}

func parseRotation(s string) (factor.RotationMethod, error) {
	switch strings.ToLower(s) {
	case "varimax":
		return factor.RotationVarimax, nil
	case "none", "":
		return factor.RotationNone, nil
	}
	return "", fmt.Errorf("invalid rotation %q (want varimax or none)", s)
}

// splitColumns parses a comma-separated column list, dropping empties
func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	var cols []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			cols = append(cols, part)
		}
	}
	return cols
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
