package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for ALL file paths in the application.
type Paths struct {
	ExecutableDir string
	DataDir       string
	CacheDir      string
	DownloadsDir  string
	ReportsDir    string
	ChartsDir     string
	LogsDir       string

	// Well-known output files
	DatasetCSV     string
	ScrapedCSV     string
	LoadingsCSV    string
	CorrelationCSV string
	AnalysisXLSX   string
}

// GetPaths returns the application paths relative to the executable location.
// All paths are relative to the executable directory, never the current
// working directory, so the tools behave the same wherever they are invoked.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return pathsFromRoot(filepath.Dir(exe)), nil
}

// PathsAt returns the application paths rooted at an explicit directory.
// Used by tests and by the -out flag on the command-line tools.
func PathsAt(root string) *Paths {
	return pathsFromRoot(root)
}

// pathsFromRoot builds the directory layout:
//
//	root/
//	  ├── data/
//	  │   ├── cache/       (fetched HTML pages, keyed by URL hash)
//	  │   ├── downloads/   (dataset CSV files)
//	  │   ├── reports/     (generated CSV/XLSX reports)
//	  │   └── charts/      (rendered PNG charts)
//	  └── logs/
func pathsFromRoot(root string) *Paths {
	dataDir := filepath.Join(root, "data")
	reportsDir := filepath.Join(dataDir, "reports")

	return &Paths{
		ExecutableDir: root,
		DataDir:       dataDir,
		CacheDir:      filepath.Join(dataDir, "cache"),
		DownloadsDir:  filepath.Join(dataDir, "downloads"),
		ReportsDir:    reportsDir,
		ChartsDir:     filepath.Join(dataDir, "charts"),
		LogsDir:       filepath.Join(root, "logs"),

		DatasetCSV:     filepath.Join(dataDir, "downloads", "forestfires.csv"),
		ScrapedCSV:     filepath.Join(reportsDir, "scraped_table.csv"),
		LoadingsCSV:    filepath.Join(reportsDir, "factor_loadings.csv"),
		CorrelationCSV: filepath.Join(reportsDir, "correlation_matrix.csv"),
		AnalysisXLSX:   filepath.Join(reportsDir, "factor_analysis.xlsx"),
	}
}

// EnsureDirectories creates all required directories if they do not exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.CacheDir,
		p.DownloadsDir,
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetCachePath returns a path inside the cache directory
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetDownloadPath returns a path inside the downloads directory
func (p *Paths) GetDownloadPath(filename string) string {
	return filepath.Join(p.DownloadsDir, filename)
}

// GetReportPath returns a path inside the reports directory
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetChartPath returns a path inside the charts directory
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetLogPath returns a path inside the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs the resolved layout for debugging
func (p *Paths) LogPathResolution() {
	slog.Debug("Resolved application paths",
		slog.String("executable_dir", p.ExecutableDir),
		slog.String("data_dir", p.DataDir),
		slog.String("cache_dir", p.CacheDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("charts_dir", p.ChartsDir),
		slog.String("logs_dir", p.LogsDir))
}
