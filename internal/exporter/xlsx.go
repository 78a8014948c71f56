package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"edacli/internal/dataset"
	"edacli/internal/factor"
	"edacli/internal/scrape"

	"github.com/xuri/excelize/v2"
)

// WorkbookWriter produces XLSX workbooks from analysis results
type WorkbookWriter struct{}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{}
}

// WriteAnalysis writes one workbook for a factor analysis run: a summary
// sheet with the adequacy tests, then correlation, loadings and
// eigenvalue sheets.
func (w *WorkbookWriter) WriteAnalysis(result *factor.Result, summaries []dataset.ColumnSummary, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	if err := w.writeSummarySheet(f, result, summaries); err != nil {
		return err
	}
	if err := w.writeMatrixSheet(f, "Correlation", result.Variables, func(i, j int) float64 {
		return result.Correlation.At(i, j)
	}, len(result.Variables)); err != nil {
		return err
	}
	if err := w.writeLoadingsSheet(f, result); err != nil {
		return err
	}
	if err := w.writeEigenvalueSheet(f, result); err != nil {
		return err
	}

	return saveWorkbook(f, path)
}

// WriteTable writes a scraped table as a single-sheet workbook
func (w *WorkbookWriter) WriteTable(t *scrape.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Data"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename data sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, toAnySlice(t.Headers)); err != nil {
		return err
	}
	for i, record := range t.Records {
		if err := setRow(f, sheet, i+2, toAnySlice(record)); err != nil {
			return err
		}
	}

	return saveWorkbook(f, path)
}

func (w *WorkbookWriter) writeSummarySheet(f *excelize.File, result *factor.Result, summaries []dataset.ColumnSummary) error {
	const sheet = "Summary"

	rows := [][]interface{}{
		{"Observations", result.Observations},
		{"Variables", len(result.Variables)},
		{"KMO", result.KMO.Overall},
		{"KMO adequacy", result.KMO.Adequacy()},
		{"Bartlett chi-square", result.Bartlett.ChiSquare},
		{"Bartlett df", result.Bartlett.DegreesOfFreedom},
		{"Bartlett p-value", result.Bartlett.PValue},
		{"Retained factors", result.NumFactors},
		{"Rotation", string(result.Rotation)},
		{},
		{"Column", "Count", "Mean", "StdDev", "Min", "Max"},
	}

	for _, s := range summaries {
		rows = append(rows, []interface{}{s.Name, s.Count, s.Mean, s.StdDev, s.Min, s.Max})
	}

	for i, row := range rows {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) writeMatrixSheet(f *excelize.File, sheet string, labels []string, at func(i, j int) float64, n int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	header := append([]interface{}{""}, toAnySlice(labels)...)
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		row := make([]interface{}, 0, n+1)
		row = append(row, labels[i])
		for j := 0; j < n; j++ {
			row = append(row, at(i, j))
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) writeLoadingsSheet(f *excelize.File, result *factor.Result) error {
	const sheet = "Loadings"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	header := []interface{}{"Variable"}
	for k := 1; k <= result.NumFactors; k++ {
		header = append(header, fmt.Sprintf("Factor %d", k))
	}
	header = append(header, "Communality", "MSA")
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, name := range result.Variables {
		row := []interface{}{name}
		for k := 0; k < result.NumFactors; k++ {
			row = append(row, result.Loadings.At(i, k))
		}
		row = append(row, result.Communalities[i], result.KMO.PerVariable[i])
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) writeEigenvalueSheet(f *excelize.File, result *factor.Result) error {
	const sheet = "Eigenvalues"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	if err := setRow(f, sheet, 1, []interface{}{"Component", "Eigenvalue", "Proportion", "Cumulative"}); err != nil {
		return err
	}

	p := float64(len(result.Eigenvalues))
	var running float64
	for i, v := range result.Eigenvalues {
		proportion := v / p
		running += proportion
		if err := setRow(f, sheet, i+2, []interface{}{i + 1, v, proportion, running}); err != nil {
			return err
		}
	}
	return nil
}

// setRow writes one row starting at column A
func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// saveWorkbook writes the workbook, creating the parent directory
func saveWorkbook(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// toAnySlice converts strings for excelize row writes
func toAnySlice(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
