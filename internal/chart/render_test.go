package chart

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"edacli/internal/factor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testResult() *factor.Result {
	return &factor.Result{
		Variables:          []string{"temp", "RH", "wind"},
		NumFactors:         2,
		Loadings:           mat.NewDense(3, 2, []float64{0.8, 0.1, -0.7, 0.2, 0.1, 0.9}),
		Eigenvalues:        []float64{1.6, 0.9, 0.5},
		CumulativeVariance: []float64{0.53, 0.83},
	}
}

func TestScree(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer().Scree([]float64{2.5, 1.2, 0.8, 0.4, 0.1}, 1.0, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "output is PNG")
}

func TestScreeTooFewValues(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer().Scree([]float64{2.5}, 1.0, &buf)
	assert.Error(t, err)
}

func TestCumulativeVariance(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer().CumulativeVariance([]float64{0.4, 0.7, 0.85}, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestCumulativeVarianceSingleFactor(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer().CumulativeVariance([]float64{0.6}, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestCumulativeVarianceEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewRenderer().CumulativeVariance(nil, &buf))
}

func TestLoadings(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer().Loadings(testResult(), 0, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestLoadingsIndexOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewRenderer().Loadings(testResult(), 2, &buf))
	assert.Error(t, NewRenderer().Loadings(testResult(), -1, &buf))
}

func TestBars(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer().Bars("Area", []string{"Russia", "Canada", "China"}, []float64{17.1, 9.9, 9.6}, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestBarsSkipsNaN(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer().Bars("Area", []string{"a", "b"}, []float64{1.0, math.NaN()}, &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestBarsAllNaN(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewRenderer().Bars("x", []string{"a"}, []float64{math.NaN()}, &buf))
}

func TestBarsLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewRenderer().Bars("x", []string{"a", "b"}, []float64{1}, &buf))
}

func TestSavePNG(t *testing.T) {
	r := NewRenderer()
	path := filepath.Join(t.TempDir(), "charts", "scree.png")

	err := r.SavePNG(path, func(w io.Writer) error {
		return r.Scree([]float64{2, 1, 0.5}, 1.0, w)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestSavePNGRemovesFileOnRenderFailure(t *testing.T) {
	r := NewRenderer()
	path := filepath.Join(t.TempDir(), "bad.png")

	err := r.SavePNG(path, func(io.Writer) error {
		return assert.AnError
	})
	require.Error(t, err)
	assert.NoFileExists(t, path)
}
