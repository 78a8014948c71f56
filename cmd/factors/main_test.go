package main

import (
	"context"
	"path/filepath"
	"testing"

	"edacli/internal/config"
	"edacli/internal/dataset"
	"edacli/internal/factor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testResult() *factor.Result {
	return &factor.Result{
		Variables:    []string{"temp", "RH", "wind"},
		Observations: 100,
		Correlation: mat.NewSymDense(3, []float64{
			1.0, -0.5, 0.2,
			-0.5, 1.0, 0.1,
			0.2, 0.1, 1.0,
		}),
		KMO: factor.KMOResult{
			Overall:     0.62,
			PerVariable: []float64{0.6, 0.65, 0.61},
		},
		Bartlett: factor.BartlettResult{
			ChiSquare:        45.2,
			DegreesOfFreedom: 3,
			PValue:           0.0001,
		},
		Eigenvalues:        []float64{1.6, 0.9, 0.5},
		NumFactors:         2,
		Loadings:           mat.NewDense(3, 2, []float64{0.8, 0.1, -0.7, 0.2, 0.1, 0.9}),
		Unrotated:          mat.NewDense(3, 2, []float64{0.8, 0.1, -0.7, 0.2, 0.1, 0.9}),
		Communalities:      []float64{0.65, 0.53, 0.82},
		ExplainedVariance:  []float64{0.533, 0.3},
		CumulativeVariance: []float64{0.533, 0.833},
		Rotation:           factor.RotationVarimax,
	}
}

func TestSplitColumns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "area", []string{"area"}},
		{"multiple", "X,Y,rain", []string{"X", "Y", "rain"}},
		{"spaces trimmed", " X , Y ", []string{"X", "Y"}},
		{"empty parts dropped", "X,,Y,", []string{"X", "Y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitColumns(tt.input))
		})
	}
}

func TestLooksLikeURL(t *testing.T) {
	assert.True(t, looksLikeURL("https://archive.ics.uci.edu/static/public/162/forest+fires.zip"))
	assert.True(t, looksLikeURL("http://example.com/forestfires.csv"))
	assert.False(t, looksLikeURL("forestfires.csv"))
	assert.False(t, looksLikeURL("/data/forestfires.csv"))
	assert.False(t, looksLikeURL("C:\\data\\forestfires.csv"))
}

func TestExportResultsAnnouncesEveryFile(t *testing.T) {
	paths := config.PathsAt(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	summaries := []dataset.ColumnSummary{
		{Name: "temp", Count: 100, Mean: 18.9, StdDev: 5.8, Min: 2.2, Max: 33.3},
	}

	written, err := exportResults(testResult(), summaries, paths, true)
	require.NoError(t, err)

	// Every artifact written must be reported back, eigenvalues included
	assert.Equal(t, []string{
		paths.CorrelationCSV,
		paths.LoadingsCSV,
		paths.GetReportPath("eigenvalues.csv"),
		paths.AnalysisXLSX,
	}, written)
	for _, p := range written {
		assert.FileExists(t, p)
	}
}

func TestExportResultsWithoutWorkbook(t *testing.T) {
	paths := config.PathsAt(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	written, err := exportResults(testResult(), nil, paths, false)
	require.NoError(t, err)

	assert.Len(t, written, 3)
	assert.NotContains(t, written, paths.AnalysisXLSX)
	assert.NoFileExists(t, paths.AnalysisXLSX)
}

func TestRenderCharts(t *testing.T) {
	paths := config.PathsAt(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	written, err := renderCharts(context.Background(), testResult(), 1.0, paths)
	require.NoError(t, err)

	require.Len(t, written, 4)
	assert.Contains(t, written, paths.GetChartPath("scree.png"))
	assert.Contains(t, written, paths.GetChartPath("cumulative_variance.png"))
	assert.Contains(t, written, paths.GetChartPath("loadings_factor_1.png"))
	assert.Contains(t, written, paths.GetChartPath("loadings_factor_2.png"))
	for _, p := range written {
		assert.FileExists(t, p)
	}
}

func TestRenderChartsCancelledContext(t *testing.T) {
	paths := config.PathsAt(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := renderCharts(ctx, testResult(), 1.0, paths)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(paths.ChartsDir, "scree.png"))
}

func TestParseRotation(t *testing.T) {
	r, err := parseRotation("varimax")
	assert.NoError(t, err)
	assert.Equal(t, factor.RotationVarimax, r)

	r, err = parseRotation("NONE")
	assert.NoError(t, err)
	assert.Equal(t, factor.RotationNone, r)

	r, err = parseRotation("")
	assert.NoError(t, err)
	assert.Equal(t, factor.RotationNone, r)

	_, err = parseRotation("oblimin")
	assert.Error(t, err)
}
