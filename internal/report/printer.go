package report

import (
	"fmt"
	"io"

	"edacli/internal/dataset"
	"edacli/internal/factor"
	"edacli/internal/scrape"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Printer renders result tables to a writer, normally stdout
type Printer struct {
	out io.Writer
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// newTable returns a writer with the shared style applied
func (p *Printer) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

// TablePreview prints the first rows of a scraped table
func (p *Printer) TablePreview(t *scrape.Table, limit int) {
	preview := t.Limit(limit)

	title := t.Caption
	if title == "" {
		title = "Extracted table"
	}

	w := p.newTable(fmt.Sprintf("%s (%d of %d rows)", title, preview.NumRows(), t.NumRows()))

	header := make(table.Row, len(preview.Headers))
	for i, h := range preview.Headers {
		header[i] = h
	}
	w.AppendHeader(header)

	for _, record := range preview.Records {
		row := make(table.Row, len(record))
		for i, v := range record {
			row[i] = v
		}
		w.AppendRow(row)
	}

	w.Render()
}

// DatasetSummary prints descriptive statistics per numeric column
func (p *Printer) DatasetSummary(summaries []dataset.ColumnSummary) {
	w := p.newTable("Dataset summary")
	w.AppendHeader(table.Row{"Column", "Count", "Mean", "StdDev", "Min", "Max"})

	for _, s := range summaries {
		w.AppendRow(table.Row{
			s.Name,
			s.Count,
			fmt.Sprintf("%.3f", s.Mean),
			fmt.Sprintf("%.3f", s.StdDev),
			fmt.Sprintf("%.2f", s.Min),
			fmt.Sprintf("%.2f", s.Max),
		})
	}

	w.Render()
}

// Correlation prints the correlation matrix
func (p *Printer) Correlation(result *factor.Result) {
	w := p.newTable("Correlation matrix")

	header := table.Row{""}
	for _, name := range result.Variables {
		header = append(header, name)
	}
	w.AppendHeader(header)

	for i, name := range result.Variables {
		row := table.Row{name}
		for j := range result.Variables {
			row = append(row, fmt.Sprintf("%.3f", result.Correlation.At(i, j)))
		}
		w.AppendRow(row)
	}

	w.Render()
}

// Adequacy prints KMO, per-variable MSA and Bartlett's test together
// with the factorability verdict
func (p *Printer) Adequacy(result *factor.Result, kmoThreshold float64) {
	w := p.newTable("Sampling adequacy")
	w.AppendHeader(table.Row{"Measure", "Value"})
	w.AppendRow(table.Row{"KMO overall", fmt.Sprintf("%.4f (%s)", result.KMO.Overall, result.KMO.Adequacy())})
	w.AppendRow(table.Row{"Bartlett chi-square", fmt.Sprintf("%.2f", result.Bartlett.ChiSquare)})
	w.AppendRow(table.Row{"Bartlett df", result.Bartlett.DegreesOfFreedom})
	w.AppendRow(table.Row{"Bartlett p-value", fmt.Sprintf("%.6f", result.Bartlett.PValue)})
	w.Render()

	msa := p.newTable("Per-variable MSA")
	msa.AppendHeader(table.Row{"Variable", "MSA"})
	for i, name := range result.Variables {
		msa.AppendRow(table.Row{name, fmt.Sprintf("%.4f", result.KMO.PerVariable[i])})
	}
	msa.Render()

	verdict := "suitable for factor analysis"
	if result.KMO.Overall < kmoThreshold {
		verdict = "NOT suitable for factor analysis"
	}
	fmt.Fprintf(p.out, "KMO %.4f vs threshold %.2f: data is %s\n\n", result.KMO.Overall, kmoThreshold, verdict)
}

// Loadings prints the loading matrix with communalities
func (p *Printer) Loadings(result *factor.Result) {
	title := "Factor loadings"
	if result.Rotation == factor.RotationVarimax {
		title = "Factor loadings (varimax rotated)"
	}
	w := p.newTable(title)

	header := table.Row{"Variable"}
	for k := 1; k <= result.NumFactors; k++ {
		header = append(header, fmt.Sprintf("Factor %d", k))
	}
	header = append(header, "Communality")
	w.AppendHeader(header)

	for i, name := range result.Variables {
		row := table.Row{name}
		for k := 0; k < result.NumFactors; k++ {
			row = append(row, fmt.Sprintf("%.3f", result.Loadings.At(i, k)))
		}
		row = append(row, fmt.Sprintf("%.3f", result.Communalities[i]))
		w.AppendRow(row)
	}

	w.Render()
}

// VarianceExplained prints eigenvalues and the variance accounted for by
// each retained factor
func (p *Printer) VarianceExplained(result *factor.Result) {
	w := p.newTable("Variance explained")
	w.AppendHeader(table.Row{"Factor", "Eigenvalue", "Proportion", "Cumulative"})

	for k := 0; k < result.NumFactors; k++ {
		w.AppendRow(table.Row{
			k + 1,
			fmt.Sprintf("%.4f", result.Eigenvalues[k]),
			fmt.Sprintf("%.1f%%", result.ExplainedVariance[k]*100),
			fmt.Sprintf("%.1f%%", result.CumulativeVariance[k]*100),
		})
	}

	w.Render()
}
