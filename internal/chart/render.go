package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"edacli/internal/factor"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	defaultWidth  = 900
	defaultHeight = 500
)

// Renderer draws analysis charts as PNG images
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer creates a renderer with default dimensions
func NewRenderer() *Renderer {
	return &Renderer{Width: defaultWidth, Height: defaultHeight}
}

// Scree draws the eigenvalue scree plot with a horizontal retention
// threshold line (the Kaiser criterion at 1.0 by convention)
func (r *Renderer) Scree(eigenvalues []float64, threshold float64, w io.Writer) error {
	if len(eigenvalues) < 2 {
		return fmt.Errorf("scree plot needs at least 2 eigenvalues, have %d", len(eigenvalues))
	}

	xs := make([]float64, len(eigenvalues))
	thresholdYs := make([]float64, len(eigenvalues))
	for i := range eigenvalues {
		xs[i] = float64(i + 1)
		thresholdYs[i] = threshold
	}

	graph := chart.Chart{
		Title:  "Scree Plot",
		Width:  r.Width,
		Height: r.Height,
		XAxis: chart.XAxis{
			Name: "Component",
		},
		YAxis: chart.YAxis{
			Name: "Eigenvalue",
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Eigenvalues",
				XValues: xs,
				YValues: eigenvalues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    4,
				},
			},
			chart.ContinuousSeries{
				Name:    "Retention threshold",
				XValues: xs,
				YValues: thresholdYs,
				Style: chart.Style{
					StrokeColor:     chart.ColorRed,
					StrokeWidth:     1,
					StrokeDashArray: []float64{5, 5},
				},
			},
		},
	}

	return graph.Render(chart.PNG, w)
}

// CumulativeVariance draws the running explained-variance proportion of
// the retained factors
func (r *Renderer) CumulativeVariance(cumulative []float64, w io.Writer) error {
	if len(cumulative) == 0 {
		return fmt.Errorf("no variance proportions to plot")
	}

	// A single retained factor still gets a line by anchoring at zero
	xs := []float64{0}
	ys := []float64{0}
	for i, v := range cumulative {
		xs = append(xs, float64(i+1))
		ys = append(ys, v)
	}

	graph := chart.Chart{
		Title:  "Cumulative Explained Variance",
		Width:  r.Width,
		Height: r.Height,
		XAxis: chart.XAxis{
			Name: "Factors",
		},
		YAxis: chart.YAxis{
			Name:  "Proportion of variance",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Cumulative",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorGreen,
					StrokeWidth: 2,
					DotColor:    chart.ColorGreen,
					DotWidth:    4,
				},
			},
		},
	}

	return graph.Render(chart.PNG, w)
}

// Loadings draws the loading of every variable on one retained factor as
// a bar chart, signed, with a fixed [-1, 1] scale
func (r *Renderer) Loadings(result *factor.Result, factorIndex int, w io.Writer) error {
	if factorIndex < 0 || factorIndex >= result.NumFactors {
		return fmt.Errorf("factor index %d out of range (have %d factors)", factorIndex, result.NumFactors)
	}

	bars := make([]chart.Value, len(result.Variables))
	for i, name := range result.Variables {
		bars[i] = chart.Value{
			Label: name,
			Value: result.Loadings.At(i, factorIndex),
		}
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Factor %d Loadings", factorIndex+1),
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: 40,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: -1, Max: 1},
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}

// Bars draws a generic bar chart for a labeled numeric column, skipping
// NaN entries (cells that failed numeric parsing)
func (r *Renderer) Bars(title string, labels []string, values []float64, w io.Writer) error {
	if len(labels) != len(values) {
		return fmt.Errorf("have %d labels for %d values", len(labels), len(values))
	}

	var bars []chart.Value
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		bars = append(bars, chart.Value{Label: labels[i], Value: v})
	}
	if len(bars) == 0 {
		return fmt.Errorf("no numeric values to plot")
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   30,
		BarSpacing: 10,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}

// SavePNG renders into path, creating the parent directory
func (r *Renderer) SavePNG(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("render %s: %w", path, err)
	}

	return f.Close()
}
