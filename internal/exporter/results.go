package exporter

import (
	"fmt"

	"edacli/internal/factor"
	"edacli/internal/scrape"
)

// WriteTable streams a scraped table to CSV
func (w *CSVWriter) WriteTable(t *scrape.Table, filePath string) error {
	stream, err := w.CreateStreamWriter(filePath, t.Headers)
	if err != nil {
		return err
	}

	for i, record := range t.Records {
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return stream.Close()
}

// WriteCorrelation writes the correlation matrix with variable labels on
// both axes
func (w *CSVWriter) WriteCorrelation(result *factor.Result, filePath string) error {
	headers := append([]string{"variable"}, result.Variables...)

	records := make([][]string, len(result.Variables))
	for i, name := range result.Variables {
		row := make([]string, 0, len(result.Variables)+1)
		row = append(row, name)
		for j := range result.Variables {
			row = append(row, formatFloat(result.Correlation.At(i, j)))
		}
		records[i] = row
	}

	return w.WriteSimpleCSV(filePath, headers, records)
}

// WriteLoadings writes the (rotated) loading matrix with communalities
// and per-variable MSA
func (w *CSVWriter) WriteLoadings(result *factor.Result, filePath string) error {
	headers := []string{"variable"}
	for f := 1; f <= result.NumFactors; f++ {
		headers = append(headers, fmt.Sprintf("factor_%d", f))
	}
	headers = append(headers, "communality", "msa")

	records := make([][]string, len(result.Variables))
	for i, name := range result.Variables {
		row := make([]string, 0, len(headers))
		row = append(row, name)
		for f := 0; f < result.NumFactors; f++ {
			row = append(row, formatFloat(result.Loadings.At(i, f)))
		}
		row = append(row, formatFloat(result.Communalities[i]))
		row = append(row, formatFloat(result.KMO.PerVariable[i]))
		records[i] = row
	}

	return w.WriteSimpleCSV(filePath, headers, records)
}

// WriteEigenvalues writes every eigenvalue with its variance proportion
// so the scree curve can be rebuilt from the CSV alone
func (w *CSVWriter) WriteEigenvalues(result *factor.Result, filePath string) error {
	headers := []string{"component", "eigenvalue", "proportion", "cumulative"}

	p := float64(len(result.Eigenvalues))
	var running float64

	records := make([][]string, len(result.Eigenvalues))
	for i, v := range result.Eigenvalues {
		proportion := v / p
		running += proportion
		records[i] = []string{
			formatInt(i + 1),
			formatFloat(v),
			formatFloat(proportion),
			formatFloat(running),
		}
	}

	return w.WriteSimpleCSV(filePath, headers, records)
}
